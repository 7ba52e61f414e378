package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/GriffinCanCode/sandfs/internal/shared/id"
	"github.com/GriffinCanCode/sandfs/internal/shared/paths"
	"github.com/GriffinCanCode/sandfs/internal/walker"
)

// DefaultChunkSize is the copy buffer used when Options.ChunkSize is zero.
const DefaultChunkSize = 64 * 1024

// tempPrefix names the hidden sibling an archive is assembled in.
const tempPrefix = "sandfs-archive"

// Options configures a Codec.
type Options struct {
	Format Format
	// Password is only honoured when HasPassword is true, so that an empty
	// string can be used as a password.
	Password    string
	HasPassword bool
	Encryption  Encryption
	Level       Level
	ChunkSize   int
	// Workers bounds the concurrent directory walk used to enumerate sources.
	Workers  int
	Progress ProgressFunc
}

// Entry describes one member of an archive.
type Entry struct {
	Name           string
	Size           int64
	CompressedSize int64
	ModTime        time.Time
	Mode           os.FileMode
	IsDir          bool
	Encrypted      bool
}

// Codec runs a single compress or extract job.
type Codec struct {
	opts Options

	mu      sync.Mutex
	state   State
	entries int
	total   int
	bytes   int64
}

// NewCodec creates an idle Codec.
func NewCodec(opts Options) *Codec {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	return &Codec{opts: opts}
}

// State returns the current lifecycle phase.
func (c *Codec) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Entries returns how many entries the job has processed.
func (c *Codec) Entries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries
}

// Bytes returns how many uncompressed bytes the job has processed.
func (c *Codec) Bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}

// Compress archives src, a file or directory, into dst. dst is written to a
// temporary sibling and renamed into place, replacing any existing file.
func (c *Codec) Compress(ctx context.Context, src, dst string) (err error) {
	if err := c.begin(StateCompressing); err != nil {
		return err
	}
	defer func() { c.end(err) }()

	if c.opts.HasPassword && !c.opts.Format.SupportsPassword() {
		return fmt.Errorf("%s: %w", c.opts.Format, ErrPasswordUnsupported)
	}

	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	sources, err := c.enumerate(src, dst, info)
	if err != nil {
		return err
	}
	c.setTotal(len(sources))

	tmpName := filepath.Join(filepath.Dir(dst), id.TempName(tempPrefix))
	tmp, err := os.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	switch c.opts.Format {
	case FormatZip:
		err = c.writeZip(ctx, tmp, sources)
	case FormatTarGzip, FormatTarZstd:
		err = c.writeTar(ctx, tmp, sources)
	default:
		err = fmt.Errorf("unsupported format %s", c.opts.Format)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return os.Rename(tmpName, dst)
}

// Extract unpacks src into the directory dst, creating it when missing.
// Encrypted zip entries are fully verified before anything is written.
func (c *Codec) Extract(ctx context.Context, src, dst string) (err error) {
	if err := c.begin(StateExtracting); err != nil {
		return err
	}
	defer func() { c.end(err) }()

	if c.opts.HasPassword && !c.opts.Format.SupportsPassword() {
		return fmt.Errorf("%s: %w", c.opts.Format, ErrPasswordUnsupported)
	}

	switch c.opts.Format {
	case FormatZip:
		return c.extractZip(ctx, src, dst)
	case FormatTarGzip, FormatTarZstd:
		return c.extractTar(ctx, src, dst)
	default:
		return fmt.Errorf("unsupported format %s", c.opts.Format)
	}
}

// List returns the entries of the archive at src without extracting it.
func List(src string, format Format) ([]Entry, error) {
	switch format {
	case FormatZip:
		return listZip(src)
	case FormatTarGzip, FormatTarZstd:
		return listTar(src, format)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

// source is one filesystem object scheduled for compression.
type source struct {
	path string
	rel  string
	info os.FileInfo
}

func (c *Codec) enumerate(src, dst string, info os.FileInfo) ([]source, error) {
	if info.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("%s: %w", src, ErrSymlink)
	}
	if !info.IsDir() {
		return []source{{path: src, rel: filepath.Base(src), info: info}}, nil
	}

	absDst, _ := filepath.Abs(dst)
	entries, err := walker.Collect(src, walker.Options{
		Workers: c.opts.Workers,
		Skip: func(p string) bool {
			if id.IsTempName(filepath.Base(p), tempPrefix) {
				return true
			}
			abs, _ := filepath.Abs(p)
			return abs == absDst
		},
	})
	if err != nil {
		return nil, err
	}

	out := make([]source, 0, len(entries))
	for _, e := range entries {
		if e.IsSymlink() {
			return nil, fmt.Errorf("%s: %w", e.Path, ErrSymlink)
		}
		fi, err := os.Lstat(e.Path)
		if err != nil {
			return nil, err
		}
		out = append(out, source{path: e.Path, rel: e.Rel, info: fi})
	}
	return out, nil
}

func (c *Codec) begin(to State) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrCodecUsed
	}
	c.state = to
	c.mu.Unlock()
	c.emit(ProgressEvent{State: to})
	return nil
}

func (c *Codec) end(err error) {
	c.mu.Lock()
	if err != nil {
		c.state = StateFailed
	} else {
		c.state = StateDone
	}
	ev := ProgressEvent{State: c.state, Entries: c.entries, TotalEntries: c.total, Bytes: c.bytes, Err: err}
	c.mu.Unlock()
	c.emit(ev)
}

func (c *Codec) setTotal(n int) {
	c.mu.Lock()
	c.total = n
	c.mu.Unlock()
}

func (c *Codec) advance(name string, n int64) {
	c.mu.Lock()
	c.entries++
	c.bytes += n
	ev := ProgressEvent{State: c.state, Entry: name, Entries: c.entries, TotalEntries: c.total, Bytes: c.bytes}
	c.mu.Unlock()
	c.emit(ev)
}

func (c *Codec) emit(ev ProgressEvent) {
	if c.opts.Progress != nil {
		c.opts.Progress(ev)
	}
}

// copyChunked streams src into dst through a fixed buffer. The reader and
// writer are wrapped so io.CopyBuffer cannot bypass the buffer.
func (c *Codec) copyChunked(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, c.opts.ChunkSize)
	return io.CopyBuffer(struct{ io.Writer }{dst}, struct{ io.Reader }{src}, buf)
}

// entryTarget maps an archive entry name onto dst. A directory entry for the
// archive root itself ("./") maps to dst; any other entry resolving to dst is
// malformed.
func entryTarget(dst, name string, dir bool) (string, error) {
	if dir && name != "" && path.Clean(name) == "." {
		return dst, nil
	}
	target, err := paths.SafeJoin(dst, name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return target, nil
}

// ensureDir makes p a directory, replacing a non-directory in the way.
func ensureDir(p string) error {
	if fi, err := os.Lstat(p); err == nil && !fi.IsDir() {
		if err := os.Remove(p); err != nil {
			return err
		}
	}
	return os.MkdirAll(p, 0o755)
}

// prepareFile clears the way for a regular file at p.
func prepareFile(p string) error {
	if err := ensureDir(filepath.Dir(p)); err != nil {
		return err
	}
	if fi, err := os.Lstat(p); err == nil && fi.IsDir() {
		return os.RemoveAll(p)
	}
	return nil
}

func filePerm(mode os.FileMode) os.FileMode {
	if perm := mode.Perm(); perm != 0 {
		return perm
	}
	return 0o644
}
