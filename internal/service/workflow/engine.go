// Package workflow applies batch mutations to the inventory ledger. Every
// operation loads the whole collection, computes the new one in memory and
// writes it back, serialised by a single-writer lock.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/ledger"
	"github.com/mamadbah2/stockledger/internal/metrics"
)

const dateLayout = "2006-01-02 15:04:05"

// RecordStore loads and saves the full collection.
type RecordStore interface {
	Load(ctx context.Context) ([]models.InventoryRecord, error)
	Save(ctx context.Context, records []models.InventoryRecord) error
}

// AttachmentStore archives uploaded files and hands back a reference.
type AttachmentStore interface {
	Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, name string) (bool, error)
}

// AuditSink receives an event after every successful mutation.
type AuditSink interface {
	SaveEvent(ctx context.Context, event models.AuditEvent) error
}

// Options tunes the engine.
type Options struct {
	// AllowRestamp lets approve/reject overwrite records that are already
	// Approved or Rejected.
	AllowRestamp bool
	// Location is used for the date stamps; UTC when nil.
	Location *time.Location
}

// Result summarises a mutation.
type Result struct {
	Count   int                      `json:"count"`
	Message string                   `json:"message"`
	Records []models.InventoryRecord `json:"records,omitempty"`
}

// Engine is the single owner of the record store.
type Engine struct {
	mu          sync.RWMutex
	store       RecordStore
	attachments AttachmentStore
	audit       AuditSink
	opts        Options
	logger      *zap.Logger
	now         func() time.Time
}

// NewEngine wires an engine. attachments and audit may be nil.
func NewEngine(store RecordStore, attachments AttachmentStore, audit AuditSink, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Engine{
		store:       store,
		attachments: attachments,
		audit:       audit,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

type actorKey struct{}

// WithActor tags ctx with the identity performing the operation.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFrom(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// SubmitIssue appends an issue batch as pending records.
func (e *Engine) SubmitIssue(ctx context.Context, batch models.Batch) (Result, error) {
	return e.submit(ctx, "submit_issue", models.TypeIssued, batch)
}

// SubmitStorage appends a storage batch as pending records.
func (e *Engine) SubmitStorage(ctx context.Context, batch models.Batch) (Result, error) {
	return e.submit(ctx, "submit_storage", models.TypeStored, batch)
}

func (e *Engine) submit(ctx context.Context, op string, kind models.ComponentType, batch models.Batch) (res Result, err error) {
	defer func() { e.finish(op, res, err) }()

	if batch.Type != "" && batch.Type != kind {
		return Result{}, fmt.Errorf("%w: batch type %q does not match %q", ledger.ErrValidation, batch.Type, kind)
	}
	batch.Type = kind
	if err := validateBatch(batch); err != nil {
		return Result{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	records, err := e.load(ctx)
	if err != nil {
		return Result{}, err
	}

	created, refs, err := e.build(ctx, records, batch)
	if err != nil {
		return Result{}, err
	}

	if err := e.save(ctx, append(records, created...), refs); err != nil {
		return Result{}, err
	}

	res = Result{
		Count:   len(created),
		Message: fmt.Sprintf("%d item(s) submitted", len(created)),
		Records: created,
	}
	txKey, _ := created[0].TransactionKey()
	e.record(ctx, op, txKey, res.Count, firstNonEmpty(batch.SubmittedBy, actorFrom(ctx)), "")
	return res, nil
}

// Approve marks every record matching key as Approved and stamps the approver.
// An authenticated actor on ctx is always the one stamped; a differing
// approver argument is only kept in the audit trail.
func (e *Engine) Approve(ctx context.Context, key ledger.Key, approver, signature string) (Result, error) {
	var detail string
	if actor := actorFrom(ctx); actor != "" {
		if approver != "" && approver != actor {
			detail = "requested approver " + approver
			e.logger.Warn("approver overridden by authenticated actor",
				zap.String("key", key.String()), zap.String("requested", approver), zap.String("actor", actor))
		}
		approver = actor
	}
	if approver == "" {
		e.finish("approve", Result{}, ledger.ErrValidation)
		return Result{}, fmt.Errorf("%w: approver identity required", ledger.ErrValidation)
	}

	return e.transition(ctx, "approve", key, approver, detail, func(r models.InventoryRecord, stamp string) {
		r[models.FieldStatus] = string(models.StatusApproved)
		r[models.FieldApprovedBy] = approver
		r[models.FieldApprovalDate] = stamp
		r[models.FieldApprovalSignature] = signature
	})
}

// Reject marks every record matching key as Rejected with reason.
func (e *Engine) Reject(ctx context.Context, key ledger.Key, reason string) (Result, error) {
	if reason == "" {
		e.finish("reject", Result{}, ledger.ErrValidation)
		return Result{}, fmt.Errorf("%w: rejection reason required", ledger.ErrValidation)
	}

	return e.transition(ctx, "reject", key, actorFrom(ctx), "", func(r models.InventoryRecord, stamp string) {
		r[models.FieldStatus] = string(models.StatusRejected)
		r[models.FieldRejectionReason] = reason
		r[models.FieldRejectionDate] = stamp
	})
}

func (e *Engine) transition(ctx context.Context, op string, key ledger.Key, actor, detail string, apply func(models.InventoryRecord, string)) (res Result, err error) {
	defer func() { e.finish(op, res, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	records, err := e.load(ctx)
	if err != nil {
		return Result{}, err
	}

	stamp := e.now().In(e.opts.Location).Format(dateLayout)
	var matched, skipped int
	var changed []models.InventoryRecord
	for _, r := range records {
		if !key.Matches(r) {
			continue
		}
		matched++
		if r.Status().Terminal() && !e.opts.AllowRestamp {
			skipped++
			continue
		}
		apply(r, stamp)
		changed = append(changed, r)
	}

	if matched == 0 {
		return Result{}, fmt.Errorf("%w: %s", ledger.ErrNotFound, key)
	}
	if len(changed) == 0 {
		return Result{}, fmt.Errorf("%w: all %d record(s) for %s are already final", ledger.ErrInvalidTransition, matched, key)
	}

	if err := e.save(ctx, records, nil); err != nil {
		return Result{}, err
	}

	if skipped > 0 {
		e.logger.Info("terminal records left untouched", zap.String("op", op), zap.String("key", key.String()), zap.Int("skipped", skipped))
	}

	res = Result{
		Count:   len(changed),
		Message: fmt.Sprintf("%d record(s) updated", len(changed)),
		Records: changed,
	}
	e.record(ctx, op, key.String(), res.Count, actor, detail)
	return res, nil
}

// Delete removes every record matching key.
func (e *Engine) Delete(ctx context.Context, key ledger.Key) (res Result, err error) {
	defer func() { e.finish("delete", res, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	records, err := e.load(ctx)
	if err != nil {
		return Result{}, err
	}

	removed, rest := ledger.Partition(records, key)
	if len(removed) == 0 {
		return Result{}, fmt.Errorf("%w: %s", ledger.ErrNotFound, key)
	}

	if err := e.save(ctx, rest, nil); err != nil {
		return Result{}, err
	}

	res = Result{Count: len(removed), Message: fmt.Sprintf("%d record(s) deleted", len(removed))}
	e.record(ctx, "delete", key.String(), res.Count, actorFrom(ctx), "")
	return res, nil
}

// Update drops every record matching key and submits batch on top of the
// remaining collection, so new identifiers continue from the remaining
// maximum. Type and transaction number default to those of the replaced
// records.
func (e *Engine) Update(ctx context.Context, key ledger.Key, batch models.Batch) (res Result, err error) {
	defer func() { e.finish("update", res, err) }()

	if len(batch.Items) == 0 {
		return Result{}, fmt.Errorf("%w: batch has no line items", ledger.ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	records, err := e.load(ctx)
	if err != nil {
		return Result{}, err
	}

	removed, rest := ledger.Partition(records, key)
	if len(removed) == 0 {
		return Result{}, fmt.Errorf("%w: %s", ledger.ErrNotFound, key)
	}

	if batch.Type == "" {
		batch.Type = removed[0].Type()
	}
	if batch.TransactionNo == "" && batch.Type.Valid() {
		batch.TransactionNo = removed[0].String(batch.Type.TransactionField())
	}
	if err := validateBatch(batch); err != nil {
		return Result{}, err
	}

	created, refs, err := e.build(ctx, rest, batch)
	if err != nil {
		return Result{}, err
	}

	if err := e.save(ctx, append(rest, created...), refs); err != nil {
		return Result{}, err
	}

	res = Result{
		Count:   len(created),
		Message: fmt.Sprintf("%d record(s) replaced by %d", len(removed), len(created)),
		Records: created,
	}
	e.record(ctx, "update", key.String(), res.Count, firstNonEmpty(batch.SubmittedBy, actorFrom(ctx)), fmt.Sprintf("removed %d", len(removed)))
	return res, nil
}

// ListInventory returns the whole collection.
func (e *Engine) ListInventory(ctx context.Context) ([]models.InventoryRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.load(ctx)
}

// GetComponent returns the first record matching key.
func (e *Engine) GetComponent(ctx context.Context, key ledger.Key) (models.InventoryRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	records, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	r, ok := ledger.First(records, key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrNotFound, key)
	}
	return r, nil
}

// GetTransaction returns every record matching key.
func (e *Engine) GetTransaction(ctx context.Context, key ledger.Key) ([]models.InventoryRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	records, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	matched := ledger.Find(records, key)
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: %s", ledger.ErrNotFound, key)
	}
	return matched, nil
}

// ListPending returns one representative per pending transaction.
func (e *Engine) ListPending(ctx context.Context) ([]models.Group, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	records, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.PendingGroups(records), nil
}

func validateBatch(batch models.Batch) error {
	if len(batch.Items) == 0 {
		return fmt.Errorf("%w: batch has no line items", ledger.ErrValidation)
	}
	if !batch.Type.Valid() {
		return fmt.Errorf("%w: unknown component type %q", ledger.ErrValidation, batch.Type)
	}

	keyField := batch.Type.TransactionField()
	otherField := models.FieldStorageNo
	if keyField == models.FieldStorageNo {
		otherField = models.FieldIssueNo
	}

	for i, item := range batch.Items {
		if err := validateFields(item.Fields); err != nil {
			return fmt.Errorf("%w: item %d %w", ledger.ErrValidation, i+1, err)
		}
		if item.Fields.String(otherField) != "" {
			return fmt.Errorf("%w: item %d carries %s on a %s batch", ledger.ErrValidation, i+1, otherField, batch.Type)
		}
		if item.Fields.String(keyField) == "" && batch.TransactionNo == "" {
			return fmt.Errorf("%w: item %d has no %s", ledger.ErrValidation, i+1, keyField)
		}
		if a := item.Attachment; a != nil && (path.Base(a.Name) == "." || path.Base(a.Name) == "/" || a.Body == nil) {
			return fmt.Errorf("%w: item %d has an unnamed or empty attachment", ledger.ErrValidation, i+1)
		}
	}
	return nil
}

// validateFields accepts trimmed, non-empty column names carrying scalar
// values only. Names that differ from their trimmed form would collide with
// another column once the table is read back.
func validateFields(fields models.InventoryRecord) error {
	for name, v := range fields {
		if name == "" || name != strings.TrimSpace(name) {
			return fmt.Errorf("has an invalid field name %q", name)
		}
		switch v.(type) {
		case nil, string, bool, json.Number,
			float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		default:
			return fmt.Errorf("field %q is not a scalar value", name)
		}
	}
	return nil
}

// build mints identifiers against the prospective collection and stores
// attachments. On failure every attachment already stored is removed again.
func (e *Engine) build(ctx context.Context, base []models.InventoryRecord, batch models.Batch) ([]models.InventoryRecord, []string, error) {
	prospective := make([]models.InventoryRecord, len(base), len(base)+len(batch.Items))
	copy(prospective, base)

	stamp := e.now().In(e.opts.Location).Format(dateLayout)
	keyField := batch.Type.TransactionField()

	var refs []string
	created := make([]models.InventoryRecord, 0, len(batch.Items))
	for i, item := range batch.Items {
		rec := item.Fields.Clone()
		for _, f := range []string{
			models.FieldApprovedBy, models.FieldApprovalDate, models.FieldApprovalSignature,
			models.FieldRejectionReason, models.FieldRejectionDate, models.FieldAttachment,
		} {
			delete(rec, f)
		}

		rec[models.FieldComponentID] = ledger.NextComponentID(prospective)
		rec[models.FieldStatus] = string(models.StatusPending)
		rec[models.FieldType] = string(batch.Type)
		if rec.String(keyField) == "" {
			rec[keyField] = batch.TransactionNo
		}
		if batch.SubmittedBy != "" && !rec.Has(models.FieldSubmittedBy) {
			rec[models.FieldSubmittedBy] = batch.SubmittedBy
		}
		rec[models.FieldSubmissionDate] = stamp

		if item.Attachment != nil {
			ref, err := e.storeAttachment(ctx, rec.ComponentID(), item.Attachment)
			if err != nil {
				e.discard(ctx, refs)
				return nil, nil, fmt.Errorf("%w: item %d attachment: %w", ledger.ErrDependency, i+1, err)
			}
			refs = append(refs, ref)
			rec[models.FieldAttachment] = ref
		}

		prospective = append(prospective, rec)
		created = append(created, rec)
	}
	return created, refs, nil
}

func (e *Engine) storeAttachment(ctx context.Context, componentID string, up *models.Upload) (string, error) {
	if e.attachments == nil {
		return "", errors.New("no attachment store configured")
	}
	name := fmt.Sprintf("%s-%s-%s", componentID, uuid.NewString()[:8], path.Base(up.Name))
	return e.attachments.Put(ctx, name, up.Body, up.ContentType)
}

// discard removes attachments whose batch was not persisted.
func (e *Engine) discard(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if _, err := e.attachments.Delete(ctx, ref); err != nil {
			e.logger.Error("failed to remove orphaned attachment", zap.String("ref", ref), zap.Error(err))
		}
	}
}

func (e *Engine) load(ctx context.Context) ([]models.InventoryRecord, error) {
	records, err := e.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrPersistence, err)
	}
	return records, nil
}

func (e *Engine) save(ctx context.Context, records []models.InventoryRecord, refs []string) error {
	if err := e.store.Save(ctx, records); err != nil {
		if len(refs) > 0 {
			e.discard(ctx, refs)
		}
		return fmt.Errorf("%w: %w", ledger.ErrPersistence, err)
	}
	return nil
}

func (e *Engine) record(ctx context.Context, op, key string, count int, actor, detail string) {
	metrics.WorkflowRecords.WithLabelValues(op).Add(float64(count))
	if e.audit == nil {
		return
	}
	event := models.AuditEvent{
		Operation: op,
		Key:       key,
		Count:     count,
		Actor:     actor,
		Detail:    detail,
		At:        e.now().UTC(),
	}
	if err := e.audit.SaveEvent(ctx, event); err != nil {
		e.logger.Warn("failed to record audit event", zap.String("op", op), zap.Error(err))
	}
}

func (e *Engine) finish(op string, res Result, err error) {
	outcome := Outcome(err)
	metrics.WorkflowOperations.WithLabelValues(op, outcome).Inc()
	switch outcome {
	case "ok":
		e.logger.Info("ledger operation completed", zap.String("op", op), zap.Int("count", res.Count))
	case "persistence", "dependency", "error":
		e.logger.Error("ledger operation failed", zap.String("op", op), zap.Error(err))
	default:
		e.logger.Debug("ledger operation refused", zap.String("op", op), zap.String("outcome", outcome), zap.Error(err))
	}
}

// Outcome classifies err into the label used for metrics and transport mapping.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ledger.ErrValidation):
		return "validation"
	case errors.Is(err, ledger.ErrNotFound):
		return "not_found"
	case errors.Is(err, ledger.ErrInvalidTransition):
		return "conflict"
	case errors.Is(err, ledger.ErrPersistence):
		return "persistence"
	case errors.Is(err, ledger.ErrDependency):
		return "dependency"
	default:
		return "error"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
