// Package paths provides the path arithmetic behind sandboxed nodes.
//
// Everything here is pure string manipulation except ResolveSymlinks, which
// stats the longest existing prefix of a path.
package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Well-known directory names below the home sandbox root.
const (
	Documents = "Documents"
	Library   = "Library"
)

var (
	// ErrEmpty is returned for an empty path or name.
	ErrEmpty = errors.New("empty path")
	// ErrNUL is returned for input containing a NUL byte.
	ErrNUL = errors.New("path contains NUL byte")
	// ErrSeparator is returned for a child name containing a path separator.
	ErrSeparator = errors.New("name contains a path separator")
	// ErrDotName is returned for the child names "." and "..".
	ErrDotName = errors.New("name cannot be . or ..")
	// ErrEscape is returned when a path resolves outside its sandbox root.
	ErrEscape = errors.New("path escapes sandbox root")
)

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand ~: %w", err)
	}
	if p == "~" {
		return home, nil
	}
	return filepath.Join(home, p[2:]), nil
}

// Normalize turns raw into an absolute, cleaned path. Relative input is
// joined onto base. Trailing separators are dropped by Clean.
func Normalize(raw, base string) (string, error) {
	if raw == "" {
		return "", ErrEmpty
	}
	if strings.ContainsRune(raw, 0) {
		return "", ErrNUL
	}
	p, err := ExpandHome(raw)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(p) {
		if base == "" {
			if p, err = filepath.Abs(p); err != nil {
				return "", err
			}
		} else {
			p = filepath.Join(base, p)
		}
	}
	return filepath.Clean(p), nil
}

// ResolveSymlinks evaluates symlinks in the longest existing prefix of the
// absolute path p and re-appends the missing tail unchanged.
func ResolveSymlinks(p string) (string, error) {
	existing := p
	var tail []string
	for {
		resolved, err := filepath.EvalSymlinks(existing)
		if err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, tail[i])
			}
			return resolved, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return p, nil
		}
		tail = append(tail, filepath.Base(existing))
		existing = parent
	}
}

// Within reports whether p is root or lies below it. Both must be cleaned.
func Within(root, p string) bool {
	if p == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix)
}

// ValidateName checks that name is a single path element.
func ValidateName(name string) error {
	switch {
	case name == "":
		return ErrEmpty
	case strings.ContainsRune(name, 0):
		return ErrNUL
	case strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator):
		return ErrSeparator
	case name == "." || name == "..":
		return ErrDotName
	}
	return nil
}

// SplitExt splits a base name into its stem and extension (without the dot).
// Leading-dot names such as ".profile" have no extension.
func SplitExt(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// Rel returns p relative to root using forward slashes, as archive entries
// record it.
func Rel(root, p string) (string, error) {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// SafeJoin joins a slash-separated archive entry name onto dest. Names that
// land outside dest, name dest itself or carry a ".." element are rejected.
func SafeJoin(dest, name string) (string, error) {
	if name == "" || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrEmpty, name)
	}
	if filepath.IsAbs(filepath.FromSlash(name)) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrEscape, name)
	}
	for _, elem := range strings.Split(filepath.ToSlash(name), "/") {
		if elem == ".." {
			return "", fmt.Errorf("%w: %q", ErrEscape, name)
		}
	}
	dest = filepath.Clean(dest)
	target := filepath.Join(dest, filepath.FromSlash(name))
	if target == dest || !Within(dest, target) {
		return "", fmt.Errorf("%w: %q", ErrEscape, name)
	}
	return target, nil
}
