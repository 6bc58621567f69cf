package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/tasktracker/internal/audit"
	"github.com/mrlokans/tasktracker/internal/auth"
	"github.com/mrlokans/tasktracker/internal/database"
	auditRepo "github.com/mrlokans/tasktracker/internal/database/audit"
	todoRepo "github.com/mrlokans/tasktracker/internal/database/todos"
	"github.com/mrlokans/tasktracker/internal/database/users"
	"github.com/mrlokans/tasktracker/internal/metrics"
	"github.com/mrlokans/tasktracker/internal/todos"
)

type apiFixture struct {
	router  *gin.Engine
	db      *database.Database
	audit   *audit.Service
	metrics *metrics.Metrics
}

func setupAPI(t *testing.T, mutate ...func(*RouterConfig)) *apiFixture {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)

	auditService := audit.NewService(auditRepo.NewRepository(db.DB))
	t.Cleanup(func() {
		auditService.Wait()
		db.Close()
	})

	issuer, err := auth.NewTokenIssuer([]byte("router-test-secret"), time.Hour)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	cfg := RouterConfig{
		AuthService:   auth.NewService(users.NewRepository(db.DB), auth.NewHasher(4), issuer),
		TokenVerifier: issuer,
		TodoService:   todos.NewService(todoRepo.NewRepository(db.DB), m),
		AuditService:  auditService,
		Database:      db,
		Metrics:       m,
		Gatherer:      reg,
		Version:       "test",
	}
	for _, fn := range mutate {
		fn(&cfg)
	}

	return &apiFixture{router: NewRouter(cfg), db: db, audit: auditService, metrics: m}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// signUp registers and logs in a user, returning the access token.
func (f *apiFixture) signUp(t *testing.T, email string) string {
	t.Helper()
	creds := map[string]string{"email": email, "password": "secret1"}

	w := f.do(t, http.MethodPost, "/auth/register", creds, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/auth/login", creds, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp auth.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestNewRouter_PublicEndpoints(t *testing.T) {
	f := setupAPI(t)

	tests := []struct {
		path     string
		wantBody string
	}{
		{"/ping", `"pong"`},
		{"/health", `"healthy"`},
		{"/metrics", "tasktracker_http_requests_total"},
	}

	// one request first so the counter has a sample to expose
	f.do(t, http.MethodGet, "/ping", nil, "")

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := f.do(t, http.MethodGet, tt.path, nil, "")

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestNewRouter_MetricsDisabled(t *testing.T) {
	f := setupAPI(t, func(cfg *RouterConfig) {
		cfg.Metrics = nil
		cfg.Gatherer = nil
	})

	w := f.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewRouter_ProtectedRoutesRequireToken(t *testing.T) {
	f := setupAPI(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/todos"},
		{http.MethodPost, "/todos"},
		{http.MethodDelete, "/todos"},
		{http.MethodGet, "/todos/1"},
		{http.MethodPatch, "/todos/1"},
		{http.MethodDelete, "/todos/1"},
		{http.MethodGet, "/auth/me"},
		{http.MethodGet, "/audit/events"},
	}

	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			w := f.do(t, r.method, r.path, nil, "")

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "UNAUTHENTICATED")

			w = f.do(t, r.method, r.path, nil, "not-a-token")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestNewRouter_SecurityHeadersAndRequestID(t *testing.T) {
	f := setupAPI(t, func(cfg *RouterConfig) { cfg.HSTSMaxAge = 3600 })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "max-age=3600; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	assert.Len(t, w.Header().Get(audit.RequestIDHeader), 36)
}

func TestNewRouter_NoHSTSByDefault(t *testing.T) {
	f := setupAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestNewRouter_CORS(t *testing.T) {
	f := setupAPI(t, func(cfg *RouterConfig) {
		cfg.CORSOrigins = []string{"http://app.test"}
	})

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/todos", nil)
		req.Header.Set("Origin", "http://app.test")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://app.test", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	})

	t.Run("foreign origin is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "http://evil.test")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestNewRouter_CountsRequestsByRouteTemplate(t *testing.T) {
	f := setupAPI(t)
	token := f.signUp(t, "metrics@example.com")

	f.do(t, http.MethodGet, "/todos/41", nil, token)
	f.do(t, http.MethodGet, "/todos/42", nil, token)

	assert.Equal(t, 2.0, testutil.ToFloat64(
		f.metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/todos/:id", "404"),
	))
}

func TestNewRouter_AuditEvents(t *testing.T) {
	f := setupAPI(t)
	alice := f.signUp(t, "alice@example.com")
	bob := f.signUp(t, "bob@example.com")

	w := f.do(t, http.MethodPost, "/todos", map[string]string{"title": "alice's"}, alice)
	require.Equal(t, http.StatusCreated, w.Code)
	var todo struct{ ID uint }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todo))

	w = f.do(t, http.MethodDelete, "/todos/"+itoa(todo.ID), nil, bob)
	require.Equal(t, http.StatusForbidden, w.Code)
	w = f.do(t, http.MethodDelete, "/todos/"+itoa(todo.ID), nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	f.audit.Wait()

	t.Run("lists only the caller's events", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/audit/events", nil, bob)
		require.Equal(t, http.StatusOK, w.Code)

		var page struct {
			Data []struct {
				UserID uint   `json:"user_id"`
				Action string `json:"action"`
				Status string `json:"status"`
			} `json:"data"`
			Total int64 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))

		// bob registered second
		statuses := make(map[string]string, len(page.Data))
		for _, e := range page.Data {
			assert.Equal(t, uint(2), e.UserID)
			statuses[e.Action] = e.Status
		}
		assert.Equal(t, map[string]string{
			"register":    "success",
			"login":       "success",
			"todo_delete": "denied",
		}, statuses)
		assert.Equal(t, int64(3), page.Total)
	})

	t.Run("paginates", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/audit/events?limit=1", nil, alice)
		require.Equal(t, http.StatusOK, w.Code)

		var page PaginatedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, 1, page.Limit)
		assert.True(t, page.HasMore)
		assert.Greater(t, page.TotalPages, 1)
	})
}
