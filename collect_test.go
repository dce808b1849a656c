package tablestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectFiles(t *testing.T) {
	t.Parallel()

	t.Run("walks directories and prefers uncompressed files", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o750))
		for _, name := range []string{"users.csv", "users.csv.gz", "orders.tsv.zst", "README.md", "nested/logs.ltsv"} {
			writeTestFile(t, dir, name, []byte("a\n1\n"))
		}

		files, err := CollectFiles(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "nested", "logs.ltsv"),
			filepath.Join(dir, "orders.tsv.zst"),
			filepath.Join(dir, "users.csv"),
		}, files)
	})

	t.Run("same file named twice is collected once", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := writeTestFile(t, dir, "a.csv", []byte("a\n1\n"))

		files, err := CollectFiles(path, path, dir)
		require.NoError(t, err)
		assert.Equal(t, []string{path}, files)
	})

	t.Run("different files for the same table", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name  string
			files []string
		}{
			{name: "same name in two directories", files: []string{"a/users.csv", "b/users.csv"}},
			{name: "same base name in two formats", files: []string{"users.csv", "users.tsv"}},
			{name: "compressed file from another directory", files: []string{"a/users.csv", "b/users.csv.gz"}},
		}
		for _, tt := range tests {
			dir := t.TempDir()
			require.NoError(t, os.MkdirAll(filepath.Join(dir, "a"), 0o750))
			require.NoError(t, os.MkdirAll(filepath.Join(dir, "b"), 0o750))
			for _, name := range tt.files {
				writeTestFile(t, dir, name, []byte("a\n1\n"))
			}

			_, err := CollectFiles(dir)
			assert.ErrorIs(t, err, ErrDuplicateTableName, tt.name)
		}
	})

	t.Run("explicit unsupported file", func(t *testing.T) {
		t.Parallel()
		path := writeTestFile(t, t.TempDir(), "notes.txt", []byte("x"))

		_, err := CollectFiles(path)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()
		_, err := CollectFiles(filepath.Join(t.TempDir(), "missing.csv"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
