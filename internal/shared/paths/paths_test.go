package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	base := filepath.FromSlash("/sandbox/app")

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{name: "relative", raw: "a/b", want: "/sandbox/app/a/b"},
		{name: "dot segments", raw: "a/./b/../c", want: "/sandbox/app/a/c"},
		{name: "trailing separator", raw: "a/b/", want: "/sandbox/app/a/b"},
		{name: "absolute", raw: "/sandbox/app/x", want: "/sandbox/app/x"},
		{name: "parent of base", raw: "..", want: "/sandbox"},
		{name: "empty", raw: "", wantErr: ErrEmpty},
		{name: "nul", raw: "a\x00b", wantErr: ErrNUL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, base)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ExpandHome("~")
	require.NoError(t, err)
	assert.Equal(t, home, got)

	got, err = ExpandHome("~/docs")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "docs"), got)

	got, err = ExpandHome("~other/docs")
	require.NoError(t, err)
	assert.Equal(t, "~other/docs", got)
}

func TestWithin(t *testing.T) {
	root := filepath.FromSlash("/sandbox")

	assert.True(t, Within(root, root))
	assert.True(t, Within(root, filepath.FromSlash("/sandbox/a")))
	assert.True(t, Within(root, filepath.FromSlash("/sandbox/a/b")))
	assert.False(t, Within(root, filepath.FromSlash("/sandbox2")))
	assert.False(t, Within(root, filepath.FromSlash("/")))
	assert.True(t, Within(string(filepath.Separator), filepath.FromSlash("/etc")))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("notes.txt"))
	assert.NoError(t, ValidateName("日本語.md"))
	assert.NoError(t, ValidateName(".hidden"))

	assert.ErrorIs(t, ValidateName(""), ErrEmpty)
	assert.ErrorIs(t, ValidateName("a/b"), ErrSeparator)
	assert.ErrorIs(t, ValidateName("."), ErrDotName)
	assert.ErrorIs(t, ValidateName(".."), ErrDotName)
	assert.ErrorIs(t, ValidateName("a\x00"), ErrNUL)
}

func TestSplitExt(t *testing.T) {
	tests := []struct {
		in, stem, ext string
	}{
		{"report.pdf", "report", "pdf"},
		{"archive.tar.gz", "archive.tar", "gz"},
		{"Makefile", "Makefile", ""},
		{".profile", ".profile", ""},
		{"trailing.", "trailing.", ""},
	}
	for _, tt := range tests {
		stem, ext := SplitExt(tt.in)
		assert.Equal(t, tt.stem, stem, tt.in)
		assert.Equal(t, tt.ext, ext, tt.in)
	}
}

func TestResolveSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.Mkdir(target, 0o755))
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	wantTarget, err := filepath.EvalSymlinks(target)
	require.NoError(t, err)

	got, err := ResolveSymlinks(filepath.Join(link, "missing", "leaf"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wantTarget, "missing", "leaf"), got)
}

func TestSafeJoin(t *testing.T) {
	dest := filepath.FromSlash("/out")

	got, err := SafeJoin(dest, "a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/out/a/b.txt"), got)

	_, err = SafeJoin(dest, "../evil")
	assert.ErrorIs(t, err, ErrEscape)

	_, err = SafeJoin(dest, "/etc/passwd")
	assert.ErrorIs(t, err, ErrEscape)

	_, err = SafeJoin(dest, "a/../../evil")
	assert.ErrorIs(t, err, ErrEscape)

	for _, name := range []string{".", "./", "sub/..", "a/../b", "./."} {
		_, err = SafeJoin(dest, name)
		assert.ErrorIs(t, err, ErrEscape, name)
	}

	got, err = SafeJoin(dest, "./a")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/out/a"), got)
}
