package blob

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanName(t *testing.T) {
	valid := map[string]string{
		"datasheet.pdf":          "datasheet.pdf",
		"drawing..rev2.pdf":      "drawing..rev2.pdf",
		"archive/v1..v2/ds.pdf":  "archive/v1..v2/ds.pdf",
		"archive/./ds.pdf":       "archive/ds.pdf",
		"CMP-001-1a2b3c4d-x.pdf": "CMP-001-1a2b3c4d-x.pdf",
	}
	for in, want := range valid {
		got, err := CleanName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "  ", "..", "../etc/passwd", "a/../b", "a/..", "/abs.pdf", `dir\file.pdf`, "."} {
		_, err := CleanName(in)
		assert.True(t, errors.Is(err, ErrInvalidName), "%q should be rejected", in)
	}
}
