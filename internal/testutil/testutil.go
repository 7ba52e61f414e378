// Package testutil provides helpers shared by the package tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// DirMarker is the snapshot value recorded for directories.
const DirMarker = "/"

// Tree describes files to create: slash-separated relative paths mapped to
// contents. Keys ending in "/" create (empty) directories.
type Tree map[string]string

// WriteTree materialises tree below root, creating root when missing.
func WriteTree(t *testing.T, root string, tree Tree) {
	t.Helper()
	require.NoError(t, os.MkdirAll(root, 0o755))
	for rel, content := range tree {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(p, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// SampleTree is a small tree with nested, empty and non-ASCII entries.
func SampleTree() Tree {
	return Tree{
		"a.txt":               "alpha",
		"dir/b.txt":           "bravo!!",
		"dir/sub/c.bin":       string([]byte{0x00, 0xff, 0x10, 0x7f}),
		"empty/":              "",
		"日本語/ファイル.txt":        "こんにちは",
		"dir/sub/deeper/ü.md": "# ü",
	}
}

// Snapshot maps every entry below root (excluding root) to its contents.
// Directories map to DirMarker and symlinks to "-> target".
func Snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		switch {
		case d.Type()&os.ModeSymlink != 0:
			target, err := os.Readlink(p)
			if err != nil {
				return err
			}
			out[rel] = "-> " + target
		case d.IsDir():
			out[rel] = DirMarker
		default:
			b, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			out[rel] = string(b)
		}
		return nil
	})
	require.NoError(t, err)
	return out
}

// RequireSameTree fails the test unless both roots hold identical trees.
func RequireSameTree(t *testing.T, want, got string) {
	t.Helper()
	require.Equal(t, Snapshot(t, want), Snapshot(t, got))
}

// MockProgress records progress callbacks.
type MockProgress[T any] struct {
	mock.Mock
}

// NewMockProgress creates a recorder that accepts any event.
func NewMockProgress[T any](t *testing.T) *MockProgress[T] {
	t.Helper()
	m := new(MockProgress[T])
	m.On("Report", mock.Anything).Return().Maybe()
	return m
}

// Report mocks a progress callback.
func (m *MockProgress[T]) Report(ev T) {
	m.Called(ev)
}

// Events returns the recorded events in call order.
func (m *MockProgress[T]) Events() []T {
	out := make([]T, 0, len(m.Calls))
	for _, c := range m.Calls {
		out = append(out, c.Arguments.Get(0).(T))
	}
	return out
}
