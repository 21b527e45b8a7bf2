package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/repository/blob"
)

// AttachmentHandler manages the attachment archive directly.
type AttachmentHandler struct {
	store  blob.Store
	logger *zap.Logger
}

// NewAttachmentHandler constructs the HTTP handler adapter.
func NewAttachmentHandler(store blob.Store, logger *zap.Logger) *AttachmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttachmentHandler{store: store, logger: logger}
}

// List returns archived files, optionally filtered by ?prefix=.
func (h *AttachmentHandler) List(c *gin.Context) {
	items, err := h.store.List(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, string(h.store.Driver()), countOf(len(items)), items)
}

// Delete removes the file named :name.
func (h *AttachmentHandler) Delete(c *gin.Context) {
	removed, err := h.store.Delete(c.Request.Context(), c.Param("name"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	if !removed {
		fail(c, h.logger, blob.ErrNotFound)
		return
	}
	ok(c, http.StatusOK, "attachment deleted", countOf(1), nil)
}

// Rename moves :name to the posted new_name.
func (h *AttachmentHandler) Rename(c *gin.Context) {
	var req models.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	if err := h.store.Rename(c.Request.Context(), c.Param("name"), req.NewName); err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, "attachment renamed", nil, gin.H{"name": req.NewName})
}
