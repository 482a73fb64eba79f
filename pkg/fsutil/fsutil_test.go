package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDocument(t *testing.T) {
	t.Run("writes verbatim to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.adoc")

		require.NoError(t, WriteDocument(path, "= Title\n\ncontent\n"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "= Title\n\ncontent\n", string(data))
	})

	t.Run("unwritable path fails", func(t *testing.T) {
		err := WriteDocument(filepath.Join(t.TempDir(), "no", "dir.adoc"), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "writing document")
	})
}

func TestCopyFile(t *testing.T) {
	t.Run("copies and creates target directory", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "src.png")
		require.NoError(t, os.WriteFile(src, []byte("bytes"), 0644))

		dst := filepath.Join(dir, "assets", "images", "dst.png")
		require.NoError(t, CopyFile(src, dst))

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "bytes", string(data))
	})

	t.Run("missing source fails", func(t *testing.T) {
		dir := t.TempDir()
		err := CopyFile(filepath.Join(dir, "missing"), filepath.Join(dir, "dst"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "opening")
	})
}
