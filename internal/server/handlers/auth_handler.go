package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/service/workflow"
)

// identityKey is the gin context key holding the authenticated identity.
const identityKey = "identity"

// Authenticator is the credential collaborator.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string, scope models.Scope) (models.Identity, error)
	Register(ctx context.Context, username, password string, scope models.Scope) error
}

// AuthHandler exposes login and registration.
type AuthHandler struct {
	svc    Authenticator
	logger *zap.Logger
}

// NewAuthHandler constructs the HTTP handler adapter.
func NewAuthHandler(svc Authenticator, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

// Login checks a username/password pair against the requested scope.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if req.Scope == "" {
		req.Scope = models.ScopeUser
	}

	id, err := h.svc.Authenticate(c.Request.Context(), req.Username, req.Password, req.Scope)
	if err != nil {
		h.logger.Info("login refused", zap.String("username", req.Username), zap.Error(err))
		fail(c, h.logger, err)
		return
	}

	ok(c, http.StatusOK, "authenticated", nil, id)
}

// Register creates an account. Mounted behind RequireScope(admin).
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if req.Scope == "" {
		req.Scope = models.ScopeUser
	}

	if err := h.svc.Register(c.Request.Context(), req.Username, req.Password, req.Scope); err != nil {
		fail(c, h.logger, err)
		return
	}

	ok(c, http.StatusCreated, "user registered", nil, models.Identity{Username: req.Username, Scope: req.Scope})
}

// RequireScope guards a route group with HTTP Basic credentials holding
// scope. The username becomes the workflow actor for the request.
func (h *AuthHandler) RequireScope(scope models.Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, found := c.Request.BasicAuth()
		if !found {
			c.Header("WWW-Authenticate", `Basic realm="stockledger"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{Success: false, Message: "credentials required"})
			return
		}

		id, err := h.svc.Authenticate(c.Request.Context(), username, password, scope)
		if err != nil {
			h.logger.Warn("request refused", zap.String("username", username), zap.String("scope", string(scope)), zap.Error(err))
			fail(c, h.logger, err)
			return
		}

		c.Set(identityKey, id)
		c.Request = c.Request.WithContext(workflow.WithActor(c.Request.Context(), id.Username))
		c.Next()
	}
}
