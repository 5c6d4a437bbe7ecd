package dedup_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getluma/emissions-extraction-service/internal/dedup"
)

func openTestIndex(t *testing.T) *dedup.Index {
	t.Helper()
	idx, err := dedup.Open(filepath.Join(t.TempDir(), "seen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestCheckRecordsFirstSighting(t *testing.T) {
	idx := openTestIndex(t)

	prior, err := idx.Check("abc123", "uploads/factura.pdf")
	require.NoError(t, err)
	assert.Nil(t, prior, "first sighting has no prior entry")

	prior, err = idx.Check("abc123", "uploads/copia.pdf")
	require.NoError(t, err)
	require.NotNil(t, prior)
	assert.Equal(t, "uploads/factura.pdf", prior.File)
	assert.False(t, prior.FirstSeen.IsZero())
}

func TestSeenDoesNotRecord(t *testing.T) {
	idx := openTestIndex(t)

	entry, err := idx.Seen("unknown")
	require.NoError(t, err)
	assert.Nil(t, entry)

	_, err = idx.Check("known", "a.pdf")
	require.NoError(t, err)

	entry, err = idx.Seen("known")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "a.pdf", entry.File)
}

func TestCount(t *testing.T) {
	idx := openTestIndex(t)

	n, err := idx.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, h := range []string{"h1", "h2", "h2"} {
		_, err := idx.Check(h, "f.pdf")
		require.NoError(t, err)
	}

	n, err = idx.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
