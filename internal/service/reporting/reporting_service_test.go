package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/ledger"
)

type stubLedger struct {
	records []models.InventoryRecord
	err     error
}

func (s stubLedger) ListInventory(ctx context.Context) ([]models.InventoryRecord, error) {
	return s.records, s.err
}

func (s stubLedger) ListPending(ctx context.Context) ([]models.Group, error) {
	return ledger.PendingGroups(s.records), s.err
}

func rec(id, status, issue, date string) models.InventoryRecord {
	return models.InventoryRecord{
		models.FieldComponentID:    id,
		models.FieldStatus:         status,
		models.FieldType:           string(models.TypeIssued),
		models.FieldIssueNo:        issue,
		models.FieldSubmittedBy:    "clerk",
		models.FieldSubmissionDate: date,
	}
}

func TestPendingDigest(t *testing.T) {
	records := []models.InventoryRecord{
		rec("CMP-001", "Pending", "ISS-1", "2026-03-10 08:00:00"),
		rec("CMP-002", "Pending", "ISS-1", "2026-03-10 08:00:00"),
		rec("CMP-003", "Approved", "ISS-2", "2026-03-09 08:00:00"),
		rec("CMP-004", "Pending", "ISS-3", "2026-03-12 08:00:00"),
		rec("CMP-005", "Rejected", "ISS-4", "2026-03-08 08:00:00"),
	}
	svc := NewService(stubLedger{records: records}, time.UTC, nil)

	now := time.Date(2026, 3, 13, 8, 0, 0, 0, time.UTC)
	d, err := svc.PendingDigest(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 2, d.Pending)
	assert.Equal(t, 3, d.PendingLines)
	assert.Equal(t, 1, d.Approved)
	assert.Equal(t, 1, d.Rejected)
	assert.Equal(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), d.Oldest)
	assert.Contains(t, d.Text, "2 transaction(s) pending, 3 line(s) in total.")
	assert.Contains(t, d.Text, "- ISS-1: issue, 2 line(s) by clerk")
	assert.Contains(t, d.Text, "(3d)")
}

func TestPendingDigest_Empty(t *testing.T) {
	svc := NewService(stubLedger{}, nil, nil)

	d, err := svc.PendingDigest(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, d.Pending)
	assert.Contains(t, d.Text, "Nothing awaiting approval.")
}

func TestPendingDigest_LedgerError(t *testing.T) {
	svc := NewService(stubLedger{err: errors.New("disk gone")}, nil, nil)

	_, err := svc.PendingDigest(context.Background(), time.Now())
	assert.Error(t, err)
}
