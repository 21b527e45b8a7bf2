package tabular

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

type brokenTable struct {
	rows [][]string
	err  error
}

func (b *brokenTable) ReadRows(ctx context.Context) ([][]string, error) { return b.rows, b.err }
func (b *brokenTable) WriteRows(ctx context.Context, rows [][]string) error {
	b.rows, b.err = rows, nil
	return nil
}

func TestLoad_CreatesMissingTable(t *testing.T) {
	table := NewMemoryTable()
	store := NewStore(table, Options{}, nil)

	records, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)

	rows := table.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, models.CanonicalColumns, rows[0])
}

func TestLoad_DropsBlankRows(t *testing.T) {
	table := NewMemoryTable()
	require.NoError(t, table.WriteRows(context.Background(), [][]string{
		{"Component ID", "Part Number", "Status"},
		{"CMP-001", "", "Pending"},
		{"  ", " ", "Pending"},
		{},
		{"", "PN-9", "Pending"},
	}))

	records, err := NewStore(table, Options{}, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "CMP-001", records[0].ComponentID())
	assert.False(t, records[0].Has(models.FieldPartNumber))
	assert.Equal(t, "PN-9", records[1].String(models.FieldPartNumber))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryTable(), Options{}, nil)

	in := []models.InventoryRecord{
		{models.FieldComponentID: "CMP-001", models.FieldIssueNo: "ISS-1", models.FieldQuantity: float64(3), "Bin": "B-4"},
		{models.FieldComponentID: "CMP-002", models.FieldStorageNo: "STO-1", "Humidity": "40%"},
	}
	require.NoError(t, store.Save(ctx, in))

	first, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "3", first[0].String(models.FieldQuantity))
	assert.Equal(t, "B-4", first[0].String("Bin"))
	assert.False(t, first[0].Has("Humidity"))

	require.NoError(t, store.Save(ctx, first))
	second, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSave_HeaderPutsExtraColumnsAfterCanonicalOnes(t *testing.T) {
	table := NewMemoryTable()
	store := NewStore(table, Options{}, nil)
	require.NoError(t, store.Save(context.Background(), []models.InventoryRecord{
		{models.FieldComponentID: "CMP-001", "Zone": "Z", "Aisle": "A"},
	}))

	head := table.Rows()[0]
	n := len(models.CanonicalColumns)
	assert.Equal(t, models.CanonicalColumns, head[:n])
	assert.Equal(t, []string{"Aisle", "Zone"}, head[n:])
}

func TestSave_DetectsTruncatedWrite(t *testing.T) {
	table := NewMemoryTable()
	table.DropOnWrite = 1
	store := NewStore(table, Options{}, nil)

	err := store.Save(context.Background(), []models.InventoryRecord{
		{models.FieldComponentID: "CMP-001"},
		{models.FieldComponentID: "CMP-002"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVerification))
}

func TestSave_WriteFailure(t *testing.T) {
	table := NewMemoryTable()
	table.FailWrites = errors.New("disk full")
	store := NewStore(table, Options{}, nil)

	err := store.Save(context.Background(), []models.InventoryRecord{{models.FieldComponentID: "CMP-001"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestLoad_UnreadableTable(t *testing.T) {
	table := &brokenTable{err: ErrStoreUnreadable}

	_, err := NewStore(table, Options{}, nil).Load(context.Background())
	assert.True(t, errors.Is(err, ErrStoreUnreadable))

	records, err := NewStore(table, Options{Lenient: true}, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoad_DuplicateHeaderIsUnreadable(t *testing.T) {
	table := &brokenTable{rows: [][]string{{"Component ID", "Component ID"}, {"CMP-001", "CMP-002"}}}

	_, err := NewStore(table, Options{}, nil).Load(context.Background())
	assert.True(t, errors.Is(err, ErrStoreUnreadable))
}

func TestSave_PaddedFieldNamesShareTheTrimmedColumn(t *testing.T) {
	ctx := context.Background()
	table := NewMemoryTable()
	store := NewStore(table, Options{}, nil)

	require.NoError(t, store.Save(ctx, []models.InventoryRecord{
		{models.FieldComponentID: "CMP-001", "Part Number ": "PN-PAD", " Zone": "Z"},
		{models.FieldComponentID: "CMP-002", models.FieldPartNumber: "PN-2", "Part Number ": "ignored"},
	}))

	head := table.Rows()[0]
	n := len(models.CanonicalColumns)
	assert.Equal(t, []string{"Zone"}, head[n:])

	records, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "PN-PAD", records[0].String(models.FieldPartNumber))
	assert.Equal(t, "Z", records[0].String("Zone"))
	assert.Equal(t, "PN-2", records[1].String(models.FieldPartNumber))
}
