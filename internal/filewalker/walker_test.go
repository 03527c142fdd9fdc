package filewalker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalk(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_second.txt", "a_first.TXT", "_notes.txt", "readme.md", "sub/c_third.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("k_x = { }"), 0644))
	}

	entries, err := NewWalker().Walk(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		rel, err := filepath.Rel(dir, e.Path)
		require.NoError(t, err)
		names = append(names, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"a_first.TXT", "b_second.txt", "sub/c_third.txt"}, names)
}

func TestWalk_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := NewWalker().Walk(path)
	assert.Error(t, err)
}
