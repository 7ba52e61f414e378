package sandfs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeNames(t *testing.T) {
	sb := newTestSandbox(t)

	tests := []struct {
		path   string
		name   string
		simple string
		ext    string
	}{
		{"docs/report.pdf", "report.pdf", "report", "pdf"},
		{"archive.tar.gz", "archive.tar.gz", "archive.tar", "gz"},
		{".profile", ".profile", ".profile", ""},
		{"Makefile", "Makefile", "Makefile", ""},
		{"日本語.テキスト", "日本語.テキスト", "日本語", "テキスト"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			n := sb.MustResolve(tt.path)
			assert.Equal(t, tt.name, n.Name())
			assert.Equal(t, tt.simple, n.SimpleName())
			assert.Equal(t, tt.ext, n.Extension())
		})
	}
}

func TestChildParentRoundTrip(t *testing.T) {
	sb := newTestSandbox(t)
	dir := sb.MustResolve("photos")

	child, err := dir.Child("cat.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir.Path(), "cat.jpg"), child.Path())
	assert.True(t, child.Parent().Equal(dir))
	assert.Equal(t, "photos/cat.jpg", child.Rel())
	assert.Nil(t, dir.LastError())
}

func TestParentAtRoot(t *testing.T) {
	sb := newTestSandbox(t)
	root := sb.Root()

	assert.Nil(t, root.Parent())
	assert.False(t, root.HasParent())
	assert.True(t, sb.MustResolve("a").HasParent())
	assert.True(t, sb.MustResolve("a/b/c").Root().Equal(root))

	n := sb.MustResolve("a/b")
	var hops int
	for p := n; p != nil; p = p.Parent() {
		hops++
	}
	assert.Equal(t, 3, hops)
}

func TestChildInvalidNames(t *testing.T) {
	sb := newTestSandbox(t)
	dir := sb.Root()

	tests := []struct {
		name     string
		child    string
		wantName bool
	}{
		{"empty", "", false},
		{"separator", "a/b", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"nul", "a\x00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := dir.Child(tt.child)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, ErrPath)
			if tt.wantName {
				assert.ErrorIs(t, err, ErrInvalidName)
			}
			assert.Equal(t, err, dir.LastError())
		})
	}

	_, err := dir.Child("ok")
	require.NoError(t, err)
	assert.Nil(t, dir.LastError())
}

func TestNodeURL(t *testing.T) {
	sb := newTestSandbox(t)
	n := sb.MustResolve("a b/c.txt")

	u := n.URL()
	assert.Equal(t, "file", u.Scheme)
	assert.Equal(t, filepath.ToSlash(n.Path()), u.Path)
	assert.Equal(t, n.Path(), n.String())
}

func TestNodeEqual(t *testing.T) {
	sb := newTestSandbox(t)
	assert.True(t, sb.MustResolve("a/b").Equal(sb.MustResolve("a/./b")))
	assert.False(t, sb.MustResolve("a").Equal(sb.MustResolve("b")))
	assert.False(t, sb.MustResolve("a").Equal(nil))
}
