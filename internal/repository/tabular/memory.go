package tabular

import (
	"context"
	"sync"
)

// MemoryTable keeps rows in memory. It backs tests and dry runs.
type MemoryTable struct {
	mu     sync.Mutex
	rows   [][]string
	exists bool

	// FailWrites makes WriteRows fail with this error when set.
	FailWrites error
	// DropOnWrite silently loses that many trailing rows on each write.
	DropOnWrite int
	// Writes counts successful WriteRows calls.
	Writes int
}

// NewMemoryTable returns a table that does not exist until first written.
func NewMemoryTable() *MemoryTable {
	return &MemoryTable{}
}

// ReadRows returns a copy of the stored rows.
func (m *MemoryTable) ReadRows(ctx context.Context) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return nil, ErrTableMissing
	}
	return copyRows(m.rows), nil
}

// WriteRows replaces the stored rows.
func (m *MemoryTable) WriteRows(ctx context.Context, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	kept := copyRows(rows)
	if m.DropOnWrite > 0 && len(kept) > 1 {
		cut := len(kept) - m.DropOnWrite
		if cut < 1 {
			cut = 1
		}
		kept = kept[:cut]
	}
	m.rows = kept
	m.exists = true
	m.Writes++
	return nil
}

// Rows returns a copy of the stored rows including the header.
func (m *MemoryTable) Rows() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyRows(m.rows)
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}
