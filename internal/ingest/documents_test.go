package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/energy-bills/internal/common"
)

func touch(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestListDocuments_FiltersAndOrders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "b.pdf", "b")
	touch(t, dir, "a.pdf", "a")
	touch(t, dir, "notes.txt", "x")
	touch(t, dir, "UPPER.PDF", "x")
	touch(t, dir, "facture_26980081S.pdf", "x")

	docs, stats, err := ListDocuments(dir, ".pdf", []string{"facture_26980081S.pdf"})
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "a.pdf", docs[0].Name)
	assert.Equal(t, filepath.Join(dir, "a.pdf"), docs[0].Path)
	assert.Equal(t, "b.pdf", docs[1].Name)
	assert.Equal(t, uint32(5), stats.Scanned)
	assert.Equal(t, uint32(2), stats.Matched)
	assert.Equal(t, uint32(1), stats.Excluded)
}

func TestListDocuments_MissingFolder(t *testing.T) {
	t.Parallel()

	_, _, err := ListDocuments(filepath.Join(t.TempDir(), "nope"), ".pdf", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
	assert.Equal(t, "INPUT_ERROR", common.ErrorCode(err))
}

func TestHashFile(t *testing.T) {
	t.Parallel()

	p := touch(t, t.TempDir(), "a.pdf", "abc")
	got, err := HashFile(p)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", got)
}
