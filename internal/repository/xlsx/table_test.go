package xlsx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/repository/tabular"
)

func TestTable_MissingFile(t *testing.T) {
	table := NewTable(filepath.Join(t.TempDir(), "inventory.xlsx"), "Inventory", nil)

	_, err := table.ReadRows(context.Background())
	assert.True(t, errors.Is(err, tabular.ErrTableMissing))
}

func TestTable_WriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "inventory.xlsx")
	table := NewTable(path, "Inventory", nil)
	rows := [][]string{
		{"Component ID", "Status", "Issue No"},
		{"CMP-001", "Pending", "ISS-1"},
		{"CMP-002", "", "ISS-1"},
	}

	require.NoError(t, table.WriteRows(context.Background(), rows))
	got, err := table.ReadRows(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, rows[0], got[0])
	assert.Equal(t, "CMP-002", got[2][0])
	assert.Equal(t, "ISS-1", got[2][2])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary workbook left behind")
}

func TestTable_CorruptFileIsUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	_, err := NewTable(path, "Inventory", nil).ReadRows(context.Background())
	assert.True(t, errors.Is(err, tabular.ErrStoreUnreadable))
}

func TestTable_StoreRoundTripOnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	store := tabular.NewStore(NewTable(path, "Inventory", nil), tabular.Options{}, nil)

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
	_, err = os.Stat(path)
	require.NoError(t, err, "load should create the workbook")

	in := []models.InventoryRecord{
		{models.FieldComponentID: "CMP-001", models.FieldIssueNo: "ISS-1", models.FieldStatus: "Pending"},
		{models.FieldComponentID: "CMP-002", models.FieldStorageNo: "STO-1", models.FieldStatus: "Approved", "Grade": "A"},
	}
	require.NoError(t, store.Save(ctx, in))

	first, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NoError(t, store.Save(ctx, first))
	second, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
