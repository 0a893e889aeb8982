package atomicfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileCreatesAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "Customers_export.csv")

	require.NoError(t, WriteFile(path, []byte("City\nBerlin"), 0o600))
	require.NoError(t, WriteFile(path, []byte("City\nLondon"), 0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "City\nLondon", string(data))

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm(), "perm 0 keeps the existing mode")
}

func TestWriteFailureLeavesTargetAndNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "datasets.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	boom := errors.New("boom")
	err := Write(path, 0, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
