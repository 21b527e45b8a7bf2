package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/ledger"
	"github.com/mamadbah2/stockledger/internal/repository/mongodb"
	"github.com/mamadbah2/stockledger/internal/repository/tabular"
	"github.com/mamadbah2/stockledger/internal/service/workflow"
)

type harness struct {
	engine *workflow.Engine
	audit  *mongodb.MemoryRepository
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	audit := mongodb.NewMemoryRepository()
	engine := workflow.NewEngine(tabular.NewStore(tabular.NewMemoryTable(), tabular.Options{}, nil), nil, audit, workflow.Options{}, nil)

	ctx := context.Background()
	_, err := engine.SubmitIssue(ctx, models.Batch{TransactionNo: "ISS-1", SubmittedBy: "clerk", Items: []models.LineItem{
		{Fields: models.InventoryRecord{models.FieldPartNumber: "PN-1", models.FieldQuantity: "4"}},
		{Fields: models.InventoryRecord{models.FieldPartNumber: "PN-2", models.FieldQuantity: "1"}},
	}})
	require.NoError(t, err)
	_, err = engine.SubmitStorage(ctx, models.Batch{TransactionNo: "STO-1", Items: []models.LineItem{
		{Fields: models.InventoryRecord{models.FieldPartNumber: "PN-3"}},
	}})
	require.NoError(t, err)

	return &harness{engine: engine, audit: audit}
}

func (h *harness) execute(args ...string) (string, error) {
	cmd := newRootCommand(func(ctx context.Context, opts *RootOptions) (Ledger, func(), error) {
		return h.engine, func() {}, nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPendingCommand_Text(t *testing.T) {
	h := newHarness(t)

	out, err := h.execute("pending")
	require.NoError(t, err)
	assert.Contains(t, out, "TRANSACTION")
	assert.Contains(t, out, "ISS-1")
	assert.Contains(t, out, "STO-1")
}

func TestListCommand_JSON(t *testing.T) {
	h := newHarness(t)

	out, err := h.execute("list", "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Count)
}

func TestShowCommand_Kind(t *testing.T) {
	h := newHarness(t)

	out, err := h.execute("show", "ISS-1")
	require.NoError(t, err)
	assert.Contains(t, out, "CMP-001")
	assert.Contains(t, out, "CMP-002")

	_, err = h.execute("show", "ISS-1", "--kind", "storage")
	assert.True(t, errors.Is(err, ledger.ErrNotFound))

	_, err = h.execute("show", "ISS-1", "--kind", "nonsense")
	assert.True(t, errors.Is(err, ledger.ErrValidation))
}

func TestApproveCommand_UsesActor(t *testing.T) {
	h := newHarness(t)

	out, err := h.execute("approve", "ISS-1", "--actor", "ops")
	require.NoError(t, err)
	assert.Contains(t, out, "2 record(s) updated")

	records, err := h.engine.GetTransaction(context.Background(), ledger.AnyKey("ISS-1"))
	require.NoError(t, err)
	for _, r := range records {
		assert.Equal(t, "ops", r.String(models.FieldApprovedBy))
	}

	events := h.audit.Events()
	assert.Equal(t, "ops", events[len(events)-1].Actor)
}

func TestRejectCommand_RequiresReason(t *testing.T) {
	h := newHarness(t)

	_, err := h.execute("reject", "STO-1")
	assert.Error(t, err)

	out, err := h.execute("reject", "STO-1", "--reason", "wrong bin")
	require.NoError(t, err)
	assert.Contains(t, out, "1 record(s) updated")
}

func TestDeleteCommand(t *testing.T) {
	h := newHarness(t)

	out, err := h.execute("delete", "CMP-002", "--kind", "component")
	require.NoError(t, err)
	assert.Contains(t, out, "1 record(s) deleted")

	_, err = h.execute("delete", "CMP-002")
	assert.True(t, errors.Is(err, ledger.ErrNotFound))
}

func TestRoot_InvalidFormat(t *testing.T) {
	h := newHarness(t)

	_, err := h.execute("list", "--format", "yaml")
	assert.Error(t, err)
}
