package sandfs

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/GriffinCanCode/sandfs/internal/walker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
)

// Attributes is a snapshot of a node's host metadata.
type Attributes struct {
	Mode       fs.FileMode
	Size       int64
	ModTime    time.Time
	AccessTime time.Time
	// CreationTime is the birth time where the platform records one and the
	// modification time otherwise; HasCreationTime tells the two apart.
	CreationTime    time.Time
	HasCreationTime bool
	UID             uint32
	GID             uint32
}

// IsDir reports whether the attributes describe a directory.
func (a *Attributes) IsDir() bool { return a.Mode.IsDir() }

// IsSymlink reports whether the node itself is a symbolic link.
func (a *Attributes) IsSymlink() bool { return a.Mode&fs.ModeSymlink != 0 }

// stat follows symlinks but still reports a dangling link as present. A
// node whose links lead out of the sandbox fails with ErrPath.
func (n *Node) stat() (fs.FileInfo, error) {
	if err := n.sb.confine(n.path, true); err != nil {
		return nil, err
	}
	fi, err := os.Stat(n.path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		if lfi, lerr := os.Lstat(n.path); lerr == nil {
			return lfi, nil
		}
	}
	return fi, err
}

// Exists reports whether anything is present at the node's path.
func (n *Node) Exists() bool {
	_, err := n.stat()
	return err == nil
}

// IsDir reports whether the node is an existing directory.
func (n *Node) IsDir() bool {
	fi, err := n.stat()
	return err == nil && fi.IsDir()
}

// IsFile reports whether the node exists and is not a directory.
func (n *Node) IsFile() bool {
	fi, err := n.stat()
	return err == nil && !fi.IsDir()
}

// Attributes returns the node's metadata. Symlinks are not followed.
func (n *Node) Attributes() (*Attributes, error) {
	start := n.sb.timer()
	if err := n.sb.confine(n.path, false); err != nil {
		return nil, n.finish(opStat, start, err)
	}
	fi, err := os.Lstat(n.path)
	if err != nil {
		return nil, n.finish(opStat, start, err)
	}
	a := &Attributes{
		Mode:         fi.Mode(),
		Size:         fi.Size(),
		ModTime:      fi.ModTime(),
		AccessTime:   fi.ModTime(),
		CreationTime: fi.ModTime(),
	}
	fillPlatformAttrs(n.path, fi, a)
	return a, n.finish(opStat, start, nil)
}

// ModTime returns the last modification time.
func (n *Node) ModTime() (time.Time, error) {
	a, err := n.Attributes()
	if err != nil {
		return time.Time{}, err
	}
	return a.ModTime, nil
}

// CreationTime returns the birth time, or the modification time on
// platforms that do not record one.
func (n *Node) CreationTime() (time.Time, error) {
	a, err := n.Attributes()
	if err != nil {
		return time.Time{}, err
	}
	return a.CreationTime, nil
}

// Size returns the length of a file or the summed length of every regular
// file below a directory. It returns 0 for a missing node and records
// ErrNotFound in LastError. A symlink counts as zero whatever it points at,
// the same as the walk over a directory counts it, so a directory's size is
// the sum of its children's.
func (n *Node) Size() int64 {
	size, _ := n.SizeE()
	return size
}

// SizeE is Size with the error returned. On a walk failure the partial sum
// is returned alongside the error.
func (n *Node) SizeE() (int64, error) {
	start := n.sb.timer()
	fi, err := n.stat()
	if err != nil {
		return 0, n.finish(opSize, start, err)
	}
	if lfi, err := os.Lstat(n.path); err == nil && lfi.Mode()&fs.ModeSymlink != 0 {
		return 0, n.finish(opSize, start, nil)
	}
	if !fi.IsDir() {
		return fi.Size(), n.finish(opSize, start, nil)
	}
	total, err := walker.TotalSize(n.path, walker.Options{Workers: n.sb.cfg.workers})
	return total, n.finish(opSize, start, err)
}

// Children returns the immediate entries of a directory. The sequence reads
// the directory afresh each time it is ranged over; read errors during a
// later range end the sequence early and are recorded in LastError.
func (n *Node) Children() (iter.Seq[*Node], error) {
	start := n.sb.timer()
	if err := n.requireDir(opList); err != nil {
		return nil, n.finish(opList, start, err)
	}
	n.finish(opList, start, nil)

	return func(yield func(*Node) bool) {
		entries, err := os.ReadDir(n.path)
		if err != nil {
			n.lastErr = newError(opList, n.path, err)
			return
		}
		for _, e := range entries {
			if !yield(&Node{sb: n.sb, path: filepath.Join(n.path, e.Name())}) {
				return
			}
		}
	}, nil
}

// ListChildren collects Children into a slice sorted by name.
func (n *Node) ListChildren() ([]*Node, error) {
	seq, err := n.Children()
	if err != nil {
		return nil, err
	}
	out := slices.Collect(seq)
	if n.lastErr != nil {
		return nil, n.lastErr
	}
	slices.SortFunc(out, func(a, b *Node) int { return strings.Compare(a.path, b.path) })
	return out, nil
}

// MimeType sniffs the content type of a file.
func (n *Node) MimeType() (string, error) {
	start := n.sb.timer()
	if err := n.requireFile(opMime); err != nil {
		return "", n.finish(opMime, start, err)
	}
	mt, err := mimetype.DetectFile(n.path)
	if err != nil {
		return "", n.finish(opMime, start, err)
	}
	return mt.String(), n.finish(opMime, start, nil)
}

// Glob returns the nodes below a directory matching a doublestar pattern
// such as "**/*.txt". Matches are sorted by path.
func (n *Node) Glob(pattern string) ([]*Node, error) {
	start := n.sb.timer()
	if !doublestar.ValidatePattern(pattern) {
		return nil, n.fail(opGlob, start, ErrPath, "invalid pattern %q", pattern)
	}
	if err := n.requireDir(opGlob); err != nil {
		return nil, n.finish(opGlob, start, err)
	}
	matches, err := doublestar.Glob(os.DirFS(n.path), pattern, doublestar.WithFilesOnly(), doublestar.WithNoFollow())
	if err != nil {
		return nil, n.finish(opGlob, start, err)
	}
	slices.Sort(matches)
	out := make([]*Node, 0, len(matches))
	for _, m := range matches {
		out = append(out, &Node{sb: n.sb, path: filepath.Join(n.path, filepath.FromSlash(m))})
	}
	return out, n.finish(opGlob, start, nil)
}

// requireDir returns nil when n is an existing directory.
func (n *Node) requireDir(op string) error {
	fi, err := n.stat()
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return kindError(op, n.path, ErrTypeMismatch, "not a directory")
	}
	return nil
}

// requireFile returns nil when n exists and is not a directory.
func (n *Node) requireFile(op string) error {
	fi, err := n.stat()
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return kindError(op, n.path, ErrTypeMismatch, "is a directory")
	}
	return nil
}
