// Package walker enumerates directory trees with fastwalk.
//
// The callbacks fastwalk issues run on several goroutines; everything this
// package hands back is assembled under a lock and sorted, so callers see a
// deterministic, parent-before-child order.
package walker

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
)

// Entry describes one node found below the walk root.
type Entry struct {
	Path    string      // absolute host path
	Rel     string      // slash-separated path relative to the walk root
	Mode    fs.FileMode // lstat mode, symlinks are not followed
	Size    int64       // byte length for regular files, 0 otherwise
	ModTime time.Time
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Mode.IsDir() }

// IsRegular reports whether the entry is a regular file.
func (e Entry) IsRegular() bool { return e.Mode.IsRegular() }

// IsSymlink reports whether the entry is a symbolic link.
func (e Entry) IsSymlink() bool { return e.Mode&fs.ModeSymlink != 0 }

// Options controls a walk.
type Options struct {
	// Workers is the number of fastwalk goroutines; 0 uses fastwalk's default.
	Workers int
	// Skip excludes a path (and, for directories, its subtree).
	Skip func(path string) bool
}

func (o Options) config() *fastwalk.Config {
	return &fastwalk.Config{Follow: false, NumWorkers: o.Workers}
}

// Collect returns every entry below root, excluding root itself, sorted by
// relative path. The first error encountered aborts the walk.
func Collect(root string, opts Options) ([]Entry, error) {
	var (
		mu      sync.Mutex
		entries []Entry
	)

	err := fastwalk.Walk(opts.config(), root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if opts.Skip != nil && opts.Skip(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		e := Entry{
			Path:    path,
			Rel:     filepath.ToSlash(rel),
			Mode:    info.Mode(),
			ModTime: info.ModTime(),
		}
		if info.Mode().IsRegular() {
			e.Size = info.Size()
		}

		mu.Lock()
		entries = append(entries, e)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Rel < entries[j].Rel })
	return entries, nil
}

// TotalSize sums the sizes of every regular file below root. Symlinks are not
// followed and count as zero. The partial sum is returned with any error.
func TotalSize(root string, opts Options) (int64, error) {
	var total atomic.Int64

	err := fastwalk.Walk(opts.config(), root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		total.Add(info.Size())
		return nil
	})

	return total.Load(), err
}
