package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"a.txt":          "hello",
		"dir/b.txt":      "12345678",
		"dir/sub/c.bin":  "xyz",
		"other/日本語.txt": "ü",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))
	return root
}

func TestCollect(t *testing.T) {
	root := buildTree(t)

	entries, err := Collect(root, Options{})
	require.NoError(t, err)

	var rels []string
	for _, e := range entries {
		rels = append(rels, e.Rel)
	}
	assert.Equal(t, []string{
		"a.txt",
		"dir",
		"dir/b.txt",
		"dir/sub",
		"dir/sub/c.bin",
		"empty",
		"other",
		"other/日本語.txt",
	}, rels)

	for _, e := range entries {
		switch e.Rel {
		case "dir/b.txt":
			assert.True(t, e.IsRegular())
			assert.Equal(t, int64(8), e.Size)
		case "empty":
			assert.True(t, e.IsDir())
			assert.Zero(t, e.Size)
		}
	}
}

func TestCollectSkip(t *testing.T) {
	root := buildTree(t)
	skipped := filepath.Join(root, "dir")

	entries, err := Collect(root, Options{Workers: 1, Skip: func(p string) bool { return p == skipped }})
	require.NoError(t, err)

	for _, e := range entries {
		assert.NotContains(t, e.Rel, "dir", "skipped subtree leaked: %s", e.Rel)
	}
}

func TestTotalSize(t *testing.T) {
	root := buildTree(t)

	size, err := TotalSize(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(5+8+3+len("ü")), size)

	empty := t.TempDir()
	size, err = TotalSize(empty, Options{})
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestTotalSizeIgnoresSymlinks(t *testing.T) {
	root := buildTree(t)
	if err := os.Symlink(filepath.Join(root, "dir"), filepath.Join(root, "loop")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	size, err := TotalSize(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(5+8+3+len("ü")), size)
}

func TestMissingRoot(t *testing.T) {
	_, err := Collect(filepath.Join(t.TempDir(), "nope"), Options{})
	assert.Error(t, err)

	_, err = TotalSize(filepath.Join(t.TempDir(), "nope"), Options{})
	assert.Error(t, err)
}
