package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// Handlers groups the HTTP adapters mounted by New.
type Handlers struct {
	Ledger      *handlers.LedgerHandler
	Auth        *handlers.AuthHandler
	Attachments *handlers.AttachmentHandler
}

// Options tunes the router.
type Options struct {
	MaxBodyBytes int64
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, opts Options, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	if opts.MaxBodyBytes > 0 {
		r.Use(maxBodyMiddleware(opts.MaxBodyBytes))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/auth/login", h.Auth.Login)

	api.POST("/issues", h.Ledger.SubmitIssue)
	api.POST("/storage", h.Ledger.SubmitStorage)
	api.GET("/inventory", h.Ledger.List)
	api.GET("/inventory/:id", h.Ledger.Get)
	api.GET("/pending", h.Ledger.Pending)
	api.GET("/transactions/:id", h.Ledger.Transaction)

	admin := api.Group("", h.Auth.RequireScope(models.ScopeAdmin))
	admin.POST("/auth/register", h.Auth.Register)
	admin.POST("/approve/:id", h.Ledger.Approve)
	admin.POST("/reject/:id", h.Ledger.Reject)
	admin.DELETE("/inventory/:id", h.Ledger.Delete)
	admin.PUT("/inventory/:id", h.Ledger.Update)

	if h.Attachments != nil {
		api.GET("/attachments", h.Attachments.List)
		admin.DELETE("/attachments/:name", h.Attachments.Delete)
		admin.POST("/attachments/:name/rename", h.Attachments.Rename)
	}

	logger.Info("router initialized")

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// maxBodyMiddleware rejects declared oversize payloads up front and caps the
// rest while they are read.
func maxBodyMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, models.Response{Success: false, Message: "payload too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")))
	}
}
