// Package tabular persists the inventory collection as one sheet: a header
// row of field names followed by one row per record. Every load reads the
// whole table and every save rewrites it.
package tabular

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/metrics"
)

var (
	// ErrTableMissing is returned by a Table whose backing sheet does not exist yet.
	ErrTableMissing = errors.New("table does not exist")
	// ErrStoreUnreadable marks a table that exists but cannot be parsed.
	ErrStoreUnreadable = errors.New("store unreadable")
	// ErrVerification marks a save whose read-back did not match what was written.
	ErrVerification = errors.New("post-write verification failed")
)

// Table is a whole-sheet backend: a spreadsheet file, a Google Sheet, or memory.
type Table interface {
	ReadRows(ctx context.Context) ([][]string, error)
	WriteRows(ctx context.Context, rows [][]string) error
}

// Options tunes Store behaviour.
type Options struct {
	// Lenient turns an unreadable table into an empty collection instead of
	// an ErrStoreUnreadable error.
	Lenient bool
}

// Store maps records to and from a Table.
type Store struct {
	table   Table
	lenient bool
	logger  *zap.Logger
}

// NewStore wires a Store over table.
func NewStore(table Table, opts Options, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{table: table, lenient: opts.Lenient, logger: logger}
}

// Load reads every record. A missing table is created empty. Rows with
// neither a component id nor a part number are blank spreadsheet rows and
// are dropped.
func (s *Store) Load(ctx context.Context) ([]models.InventoryRecord, error) {
	start := time.Now()
	defer func() { metrics.StoreDuration.WithLabelValues("load").Observe(time.Since(start).Seconds()) }()

	rows, err := s.table.ReadRows(ctx)
	if errors.Is(err, ErrTableMissing) {
		s.logger.Info("inventory table missing, creating empty one")
		if err := s.table.WriteRows(ctx, [][]string{header(nil)}); err != nil {
			return nil, fmt.Errorf("create empty table: %w", err)
		}
		return []models.InventoryRecord{}, nil
	}
	if err == nil {
		var records []models.InventoryRecord
		records, err = decodeRows(rows)
		if err == nil {
			return records, nil
		}
	}

	if s.lenient && errors.Is(err, ErrStoreUnreadable) {
		s.logger.Warn("inventory table unreadable, continuing with empty collection", zap.Error(err))
		return []models.InventoryRecord{}, nil
	}
	return nil, fmt.Errorf("load inventory table: %w", err)
}

// Save overwrites the table with records and reads it back to make sure the
// writer did not silently drop rows.
func (s *Store) Save(ctx context.Context, records []models.InventoryRecord) error {
	start := time.Now()
	rows := encodeRows(records)
	err := s.table.WriteRows(ctx, rows)
	metrics.StoreDuration.WithLabelValues("save").Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("write inventory table: %w", err)
	}

	reloaded, err := s.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerification, err)
	}

	expected := 0
	for _, r := range records {
		if !blank(r) {
			expected++
		}
	}
	if len(reloaded) != expected {
		s.logger.Error("inventory table verification mismatch", zap.Int("written", expected), zap.Int("read_back", len(reloaded)))
		return fmt.Errorf("%w: wrote %d records, read back %d", ErrVerification, expected, len(reloaded))
	}

	s.logger.Debug("inventory table saved", zap.Int("records", expected))
	return nil
}

func blank(r models.InventoryRecord) bool {
	return strings.TrimSpace(r.String(models.FieldComponentID)) == "" &&
		strings.TrimSpace(r.String(models.FieldPartNumber)) == ""
}

func decodeRows(rows [][]string) ([]models.InventoryRecord, error) {
	records := []models.InventoryRecord{}
	if len(rows) == 0 {
		return records, nil
	}

	columns := make([]string, len(rows[0]))
	seen := make(map[string]bool, len(rows[0]))
	for i, cell := range rows[0] {
		name := strings.TrimSpace(cell)
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrStoreUnreadable, name)
		}
		seen[name] = true
		columns[i] = name
	}

	for _, row := range rows[1:] {
		record := make(models.InventoryRecord)
		for i, cell := range row {
			if i >= len(columns) || columns[i] == "" || cell == "" {
				continue
			}
			record[columns[i]] = cell
		}
		if blank(record) {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

func encodeRows(records []models.InventoryRecord) [][]string {
	columns := header(records)
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, columns)
	for _, r := range records {
		r = trimKeys(r)
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = r.String(col)
		}
		rows = append(rows, row)
	}
	return rows
}

// trimKeys keys r by trimmed field name, the form decodeRows reads back.
// An exact name wins over a padded duplicate.
func trimKeys(r models.InventoryRecord) models.InventoryRecord {
	out := make(models.InventoryRecord, len(r))
	for field, v := range r {
		name := strings.TrimSpace(field)
		if name == "" {
			continue
		}
		if _, taken := out[name]; taken && name != field {
			continue
		}
		out[name] = v
	}
	return out
}

// header lists the canonical columns followed by any extra field found in
// records, sorted by name.
func header(records []models.InventoryRecord) []string {
	known := make(map[string]bool, len(models.CanonicalColumns))
	columns := make([]string, 0, len(models.CanonicalColumns))
	for _, c := range models.CanonicalColumns {
		known[c] = true
		columns = append(columns, c)
	}

	var extra []string
	for _, r := range records {
		for field := range r {
			name := strings.TrimSpace(field)
			if name == "" || known[name] {
				continue
			}
			known[name] = true
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(columns, extra...)
}
