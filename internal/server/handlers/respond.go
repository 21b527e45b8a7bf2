package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/repository/blob"
	"github.com/mamadbah2/stockledger/internal/service/auth"
	"github.com/mamadbah2/stockledger/internal/service/workflow"
)

func ok(c *gin.Context, status int, message string, count *int, data any) {
	c.JSON(status, models.Response{Success: true, Message: message, Count: count, Data: data})
}

func countOf(n int) *int { return &n }

// statusFor maps a service error to the HTTP status it is reported with.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrUserExists), errors.Is(err, blob.ErrExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidScope), errors.Is(err, auth.ErrMissingCredentials), errors.Is(err, blob.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, blob.ErrNotFound):
		return http.StatusNotFound
	}

	switch workflow.Outcome(err) {
	case "validation":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "conflict":
		return http.StatusConflict
	case "dependency":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error envelope. Server-side failures are logged and their
// detail withheld from the client.
func fail(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		message = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, models.Response{Success: false, Message: message})
}

// badRequest reports a body that could not be bound. Bodies cut off by the
// size limit are reported as 413.
func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		logger.Warn("request body too large", zap.String("path", c.FullPath()), zap.Int64("limit", tooLarge.Limit))
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, models.Response{Success: false, Message: "payload too large"})
		return
	}
	logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusBadRequest, models.Response{Success: false, Message: "invalid request body: " + err.Error()})
}
