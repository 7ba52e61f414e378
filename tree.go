package sandfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/GriffinCanCode/sandfs/internal/shared/paths"
)

// Delete removes the node, recursively for directories.
func (n *Node) Delete() error {
	start := n.sb.timer()
	if err := n.sb.confine(n.path, false); err != nil {
		return n.finish(opDelete, start, err)
	}
	if _, err := os.Lstat(n.path); err != nil {
		return n.finish(opDelete, start, err)
	}
	return n.finish(opDelete, start, os.RemoveAll(n.path))
}

// Clear empties a directory and keeps it. For anything else it behaves like
// Delete.
func (n *Node) Clear() error {
	start := n.sb.timer()
	if err := n.sb.confine(n.path, false); err != nil {
		return n.finish(opClear, start, err)
	}
	fi, err := os.Lstat(n.path)
	if err != nil {
		return n.finish(opClear, start, err)
	}
	if !fi.IsDir() {
		return n.finish(opClear, start, os.Remove(n.path))
	}
	entries, err := os.ReadDir(n.path)
	if err != nil {
		return n.finish(opClear, start, err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(n.path, e.Name())); err != nil {
			return n.finish(opClear, start, err)
		}
	}
	return n.finish(opClear, start, nil)
}

// MakeDirs creates the directory and any missing parents. It succeeds when
// the directory already exists.
func (n *Node) MakeDirs() error {
	start := n.sb.timer()
	if err := n.sb.confine(n.path, true); err != nil {
		return n.finish(opMakeDirs, start, err)
	}
	return n.finish(opMakeDirs, start, os.MkdirAll(n.path, 0o755))
}

// CopyTo duplicates the node at dst. Files replace files, directories merge
// into directories with colliding leaves overwritten, and an existing
// destination of the other type is removed first. Symlinks are copied as
// links. The first failure aborts the copy; what was already copied stays.
func (n *Node) CopyTo(dst *Node) error {
	start := n.sb.timer()
	fi, err := n.checkTransfer(opCopy, dst)
	if err != nil || fi == nil {
		return n.finish(opCopy, start, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst.path), 0o755); err != nil {
		return n.finish(opCopy, start, err)
	}
	return n.finish(opCopy, start, n.sb.copyEntry(n.path, dst.path, fi))
}

// MoveTo relocates the node to dst with the same overwrite rules as CopyTo.
// A rename is used when possible; moves across devices and merges into an
// existing directory fall back to copy and delete. n keeps naming the old
// path.
func (n *Node) MoveTo(dst *Node) error {
	start := n.sb.timer()
	fi, err := n.checkTransfer(opMove, dst)
	if err != nil || fi == nil {
		return n.finish(opMove, start, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst.path), 0o755); err != nil {
		return n.finish(opMove, start, err)
	}

	if dfi, err := os.Lstat(dst.path); err == nil {
		switch {
		case fi.IsDir() && dfi.IsDir():
			return n.finish(opMove, start, n.sb.copyThenRemove(n.path, dst.path, fi))
		case fi.IsDir() != dfi.IsDir():
			if err := os.RemoveAll(dst.path); err != nil {
				return n.finish(opMove, start, err)
			}
		}
	}

	err = os.Rename(n.path, dst.path)
	if errors.Is(err, syscall.EXDEV) {
		err = n.sb.copyThenRemove(n.path, dst.path, fi)
	}
	return n.finish(opMove, start, err)
}

// checkTransfer validates a copy or move. A nil FileInfo with a nil error
// means there is nothing to do.
func (n *Node) checkTransfer(op string, dst *Node) (fs.FileInfo, error) {
	if dst == nil {
		return nil, kindError(op, n.path, ErrPath, "nil destination")
	}
	if err := n.sb.confine(n.path, false); err != nil {
		return nil, err
	}
	if err := dst.sb.confine(dst.path, false); err != nil {
		return nil, newError(op, dst.path, err)
	}
	fi, err := os.Lstat(n.path)
	if err != nil {
		return nil, err
	}
	if n.Equal(dst) {
		return nil, nil
	}
	if fi.IsDir() && paths.Within(n.path, dst.path) {
		return nil, kindError(op, n.path, ErrPath, "destination %s is inside the source", dst.path)
	}
	if paths.Within(dst.path, n.path) {
		return nil, kindError(op, n.path, ErrPath, "destination %s contains the source", dst.path)
	}
	return fi, nil
}

func (s *Sandbox) copyThenRemove(src, dst string, fi fs.FileInfo) error {
	if err := s.copyEntry(src, dst, fi); err != nil {
		return err
	}
	return os.RemoveAll(src)
}

// copyEntry copies one entry and, for directories, everything below it.
func (s *Sandbox) copyEntry(src, dst string, fi fs.FileInfo) error {
	dfi, derr := os.Lstat(dst)
	exists := derr == nil

	switch {
	case fi.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		if exists {
			if err := os.RemoveAll(dst); err != nil {
				return err
			}
		}
		return os.Symlink(target, dst)

	case fi.IsDir():
		if exists && !dfi.IsDir() {
			if err := os.Remove(dst); err != nil {
				return err
			}
		}
		if err := os.MkdirAll(dst, 0o755); err != nil {
			return err
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		for _, e := range entries {
			cfi, err := e.Info()
			if err != nil {
				return err
			}
			if err := s.copyEntry(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name()), cfi); err != nil {
				return err
			}
		}
		if err := os.Chmod(dst, fi.Mode().Perm()); err != nil {
			return err
		}
		return os.Chtimes(dst, fi.ModTime(), fi.ModTime())

	case fi.Mode().IsRegular():
		if exists && dfi.IsDir() {
			if err := os.RemoveAll(dst); err != nil {
				return err
			}
		}
		if err := s.copyFile(src, dst, fi.Mode().Perm()); err != nil {
			return err
		}
		return os.Chtimes(dst, fi.ModTime(), fi.ModTime())
	}
	return kindError(opCopy, src, ErrTypeMismatch, "unsupported file type %s", fi.Mode().Type())
}

func (s *Sandbox) copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = s.writeAtomic(dst, perm, in)
	return err
}
