package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/tasktracker/internal/apperrors"
	"github.com/mrlokans/tasktracker/internal/audit"
	"github.com/mrlokans/tasktracker/internal/metrics"
)

// CredentialsRequest is the body of register and login requests.
// The binding tags must stay equal to EmailRules and PasswordRules.
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=6,max=14"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// AuthController handles authentication-related HTTP endpoints.
type AuthController struct {
	service *Service
	audit   *audit.Service
	metrics *metrics.Metrics
}

// NewAuthController creates a new authentication controller.
// auditService and m may be nil.
func NewAuthController(service *Service, auditService *audit.Service, m *metrics.Metrics) *AuthController {
	return &AuthController{
		service: service,
		audit:   auditService,
		metrics: m,
	}
}

// RegisterRoutes registers the public auth routes and the protected /auth/me.
func (ac *AuthController) RegisterRoutes(router gin.IRouter, requireAuth gin.HandlerFunc) {
	group := router.Group("/auth")
	group.POST("/register", ac.Register)
	group.POST("/login", ac.Login)
	group.GET("/me", requireAuth, ac.Me)
}

// Register creates an account and returns it without the password hash.
func (ac *AuthController) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := ac.service.Register(req.Email, req.Password)
	if ac.audit != nil {
		var userID uint
		if user != nil {
			userID = user.ID
		}
		ac.audit.LogRegister(userID, req.Email, audit.RequestInfoFrom(c), err)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[AUTH] Registered user %d", user.ID)
	c.JSON(http.StatusCreated, user)
}

// Login validates credentials and returns a session token.
func (ac *AuthController) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, claims, err := ac.service.Login(req.Email, req.Password)
	ac.metrics.ObserveLogin(loginResult(err))
	if err != nil {
		if ac.audit != nil {
			ac.audit.LogLoginFailed(req.Email, audit.RequestInfoFrom(c), err)
		}
		respondError(c, err)
		return
	}

	if ac.audit != nil {
		ac.audit.LogAuth(claims.UserID, "login", audit.RequestInfoFrom(c), true)
	}
	c.JSON(http.StatusOK, LoginResponse{AccessToken: token})
}

// Me returns the identity carried by the caller's token.
func (ac *AuthController) Me(c *gin.Context) {
	claims := GetClaims(c)
	if claims == nil {
		abortUnauthenticated(c, "authentication required")
		return
	}

	resp := gin.H{
		"id":    claims.UserID,
		"email": claims.Email,
	}
	if claims.ExpiresAt != nil {
		resp["expiresAt"] = claims.ExpiresAt.Time
	}
	c.JSON(http.StatusOK, resp)
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return metrics.LoginSuccess
	case errors.Is(err, apperrors.ErrNotFound):
		return metrics.LoginUnknownUser
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return metrics.LoginInvalidCredentials
	default:
		return metrics.LoginError
	}
}

// respondError maps a service error to its status. Uncategorized errors are
// logged and hidden from the client.
func respondError(c *gin.Context, err error) {
	if apperrors.KindOf(err) == apperrors.KindInternal {
		log.Printf("[AUTH] Internal error: %v", err)
	}
	c.JSON(apperrors.Response(err))
}

// respondBindError reports a malformed or invalid request body.
func respondBindError(c *gin.Context, err error) {
	body := apperrors.ErrorResponse{Error: "invalid request body", Code: string(apperrors.KindValidation)}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[strings.ToLower(fe.Field())] = fe.Tag()
		}
		body.Details = details
	}
	c.JSON(http.StatusBadRequest, body)
}
