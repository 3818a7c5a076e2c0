package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.xml", "b.XML", "c.pdf", "sub/d.xml"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("<a/>"), 0o644))
	}

	t.Run("directory", func(t *testing.T) {
		files, err := collectFiles([]string{dir}, ".xml")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			filepath.Join(dir, "a.xml"),
			filepath.Join(dir, "b.XML"),
			filepath.Join(dir, "sub", "d.xml"),
		}, files)
	})

	t.Run("glob", func(t *testing.T) {
		files, err := collectFiles([]string{filepath.Join(dir, "*")}, ".pdf")
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "c.pdf")}, files)
	})

	t.Run("explicit file keeps any extension", func(t *testing.T) {
		p := filepath.Join(dir, "c.pdf")
		files, err := collectFiles([]string{p}, ".xml")
		require.NoError(t, err)
		assert.Equal(t, []string{p}, files)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := collectFiles([]string{filepath.Join(dir, "missing.xml")}, ".xml")
		assert.Error(t, err)
	})
}
