package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/ledger"
	"github.com/mamadbah2/stockledger/internal/service/workflow"
)

// Ledger is the workflow surface exposed over HTTP.
type Ledger interface {
	SubmitIssue(ctx context.Context, batch models.Batch) (workflow.Result, error)
	SubmitStorage(ctx context.Context, batch models.Batch) (workflow.Result, error)
	Approve(ctx context.Context, key ledger.Key, approver, signature string) (workflow.Result, error)
	Reject(ctx context.Context, key ledger.Key, reason string) (workflow.Result, error)
	Delete(ctx context.Context, key ledger.Key) (workflow.Result, error)
	Update(ctx context.Context, key ledger.Key, batch models.Batch) (workflow.Result, error)
	ListInventory(ctx context.Context) ([]models.InventoryRecord, error)
	GetComponent(ctx context.Context, key ledger.Key) (models.InventoryRecord, error)
	GetTransaction(ctx context.Context, key ledger.Key) ([]models.InventoryRecord, error)
	ListPending(ctx context.Context) ([]models.Group, error)
}

// LedgerHandler serves the inventory workflow.
type LedgerHandler struct {
	svc    Ledger
	logger *zap.Logger
}

// NewLedgerHandler constructs the HTTP handler adapter.
func NewLedgerHandler(svc Ledger, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{svc: svc, logger: logger}
}

// SubmitIssue records an issue batch.
func (h *LedgerHandler) SubmitIssue(c *gin.Context) {
	h.submit(c, h.svc.SubmitIssue)
}

// SubmitStorage records a storage batch.
func (h *LedgerHandler) SubmitStorage(c *gin.Context) {
	h.submit(c, h.svc.SubmitStorage)
}

func (h *LedgerHandler) submit(c *gin.Context, run func(context.Context, models.Batch) (workflow.Result, error)) {
	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	res, err := run(c.Request.Context(), toBatch(req))
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	ok(c, http.StatusCreated, res.Message, countOf(res.Count), res.Records)
}

// Approve approves every record of the transaction or component in :id.
func (h *LedgerHandler) Approve(c *gin.Context) {
	key, good := h.key(c)
	if !good {
		return
	}

	var req models.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, h.logger, err)
		return
	}

	res, err := h.svc.Approve(c.Request.Context(), key, req.Approver, req.Signature)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	ok(c, http.StatusOK, res.Message, countOf(res.Count), nil)
}

// Reject rejects every record of the transaction or component in :id.
func (h *LedgerHandler) Reject(c *gin.Context) {
	key, good := h.key(c)
	if !good {
		return
	}

	var req models.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	res, err := h.svc.Reject(c.Request.Context(), key, req.Reason)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	ok(c, http.StatusOK, res.Message, countOf(res.Count), nil)
}

// Delete removes the records matching :id.
func (h *LedgerHandler) Delete(c *gin.Context) {
	key, good := h.key(c)
	if !good {
		return
	}

	res, err := h.svc.Delete(c.Request.Context(), key)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	ok(c, http.StatusOK, res.Message, countOf(res.Count), nil)
}

// Update replaces the records matching :id with the posted batch.
func (h *LedgerHandler) Update(c *gin.Context) {
	key, good := h.key(c)
	if !good {
		return
	}

	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	res, err := h.svc.Update(c.Request.Context(), key, toBatch(req))
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	ok(c, http.StatusOK, res.Message, countOf(res.Count), res.Records)
}

// List returns the whole inventory.
func (h *LedgerHandler) List(c *gin.Context) {
	records, err := h.svc.ListInventory(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, "inventory", countOf(len(records)), records)
}

// Get returns the first record matching :id.
func (h *LedgerHandler) Get(c *gin.Context) {
	key, good := h.key(c)
	if !good {
		return
	}

	record, err := h.svc.GetComponent(c.Request.Context(), key)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, "component", nil, record)
}

// Transaction returns every line of the transaction in :id.
func (h *LedgerHandler) Transaction(c *gin.Context) {
	key, good := h.key(c)
	if !good {
		return
	}

	records, err := h.svc.GetTransaction(c.Request.Context(), key)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, "transaction", countOf(len(records)), records)
}

// Pending returns one representative per pending transaction.
func (h *LedgerHandler) Pending(c *gin.Context) {
	groups, err := h.svc.ListPending(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, "pending", countOf(len(groups)), groups)
}

// key resolves :id and the optional ?kind= into a ledger key.
func (h *LedgerHandler) key(c *gin.Context) (ledger.Key, bool) {
	key, err := ledger.ParseKey(c.Query("kind"), c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return ledger.Key{}, false
	}
	return key, true
}

func toBatch(req models.BatchRequest) models.Batch {
	batch := models.Batch{
		Type:          req.Type,
		TransactionNo: req.TransactionNo,
		SubmittedBy:   req.SubmittedBy,
		Items:         make([]models.LineItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		line := models.LineItem{Fields: models.InventoryRecord(item.Fields)}
		if line.Fields == nil {
			line.Fields = models.InventoryRecord{}
		}
		if a := item.Attachment; a != nil {
			line.Attachment = &models.Upload{
				Name:        a.Name,
				ContentType: a.ContentType,
				Body:        bytes.NewReader(a.Data),
			}
		}
		batch.Items = append(batch.Items, line)
	}
	return batch
}
