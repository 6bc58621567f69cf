package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mrlokans/tasktracker/internal/audit"
	"github.com/mrlokans/tasktracker/internal/auth"
	"github.com/mrlokans/tasktracker/internal/config"
	"github.com/mrlokans/tasktracker/internal/database"
	auditRepo "github.com/mrlokans/tasktracker/internal/database/audit"
	todoRepo "github.com/mrlokans/tasktracker/internal/database/todos"
	"github.com/mrlokans/tasktracker/internal/database/users"
	http_controllers "github.com/mrlokans/tasktracker/internal/http"
	"github.com/mrlokans/tasktracker/internal/metrics"
	"github.com/mrlokans/tasktracker/internal/scheduler"
	"github.com/mrlokans/tasktracker/internal/tasks"
	"github.com/mrlokans/tasktracker/internal/todos"
)

// ErrInvalidTokenTTL is returned by Build when JWT_TOKEN_TTL is missing,
// unparseable or not positive. Issued tokens would otherwise never expire.
var ErrInvalidTokenTTL = errors.New("JWT_TOKEN_TTL must be a positive duration such as 24h")

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Application is a fully wired server with its background workers running.
type Application struct {
	Router   *gin.Engine
	Shutdown ShutdownFunc
}

func Serve(router http.Handler, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -2 is syscall.SIGINT, plain kill sends syscall.SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests before the workers and the database go away
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// signingSecret returns the configured JWT secret or a random per-process one.
func signingSecret(cfg config.Auth) ([]byte, error) {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret), nil
	}

	secret, err := auth.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	log.Printf("WARNING: JWT_SECRET is not set. Generated a random secret; tokens will not survive a restart.")
	return []byte(secret), nil
}

// Build opens the database, wires every service and starts the background workers.
// The caller owns the returned Application and must call Shutdown.
func Build(cfg *config.Config, version string) (*Application, error) {
	if cfg.Auth.TokenTTL <= 0 {
		return nil, ErrInvalidTokenTTL
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var cleanups []func(ctx context.Context)
	shutdown := func(ctx context.Context) {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i](ctx)
		}
	}
	cleanups = append(cleanups, func(context.Context) {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	})
	fail := func(err error) (*Application, error) {
		shutdown(context.Background())
		return nil, err
	}

	secret, err := signingSecret(cfg.Auth)
	if err != nil {
		return fail(err)
	}
	issuer, err := auth.NewTokenIssuer(secret, cfg.Auth.TokenTTL)
	if err != nil {
		return fail(err)
	}

	var m *metrics.Metrics
	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		registry := metrics.NewRegistry()
		m = metrics.NewMetrics(registry)
		gatherer = registry
	}

	authService := auth.NewService(users.NewRepository(db.DB), auth.NewHasher(cfg.Auth.BcryptCost), issuer)
	todoService := todos.NewService(todoRepo.NewRepository(db.DB), m)
	auditService := audit.NewService(auditRepo.NewRepository(db.DB))
	cleanups = append(cleanups, func(context.Context) { auditService.Wait() })

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			return fail(fmt.Errorf("failed to initialize task queue: %w", err))
		}
		cleanups = append(cleanups, func(context.Context) {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		})

		taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditService, m))

		taskCtx, taskCancel := context.WithCancel(context.Background())
		taskClient.Start(taskCtx)
		cleanups = append(cleanups, func(ctx context.Context) {
			taskClient.Stop(ctx)
			taskCancel()
		})
	}

	if cfg.Audit.CleanupEnabled {
		if taskClient == nil {
			log.Printf("WARNING: Audit cleanup is enabled but the task queue is disabled. Old audit events will not be removed.")
		} else {
			cleanupScheduler := scheduler.NewAuditCleanupScheduler(taskClient, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
			if err := cleanupScheduler.Start(context.Background()); err != nil {
				return fail(fmt.Errorf("failed to start audit cleanup scheduler: %w", err))
			}
			cleanups = append(cleanups, func(context.Context) { cleanupScheduler.Stop() })
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		AuthService:   authService,
		TokenVerifier: issuer,
		TodoService:   todoService,
		AuditService:  auditService,
		Database:      db,
		Metrics:       m,
		Gatherer:      gatherer,
		CORSOrigins:   cfg.CORS.AllowedOrigins,
		HSTSMaxAge:    cfg.HTTP.HSTSMaxAge,
		Version:       version,
	})

	return &Application{Router: router, Shutdown: shutdown}, nil
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Task Tracker v%s", version)

	app, err := Build(cfg, version)
	if err != nil {
		log.Fatalf("%v", err)
	}

	Serve(app.Router, cfg, app.Shutdown)
}
