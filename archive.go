package sandfs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/GriffinCanCode/sandfs/internal/archive"
	"github.com/GriffinCanCode/sandfs/internal/monitoring"
	"github.com/GriffinCanCode/sandfs/internal/shared/paths"
)

// ArchiveFormat selects the container written by Compress.
type ArchiveFormat = archive.Format

const (
	FormatZip     = archive.FormatZip
	FormatTarGzip = archive.FormatTarGzip
	FormatTarZstd = archive.FormatTarZstd
)

// ZipEncryption selects the cipher for password-protected zips.
type ZipEncryption = archive.Encryption

const (
	ZipAES256 = archive.EncryptionAES256
	ZipAES192 = archive.EncryptionAES192
	ZipAES128 = archive.EncryptionAES128
	ZipCrypto = archive.EncryptionZipCrypto
)

// CompressionLevel selects the tar compression level.
type CompressionLevel = archive.Level

const (
	LevelDefault = archive.LevelDefault
	LevelFastest = archive.LevelFastest
	LevelBetter  = archive.LevelBetter
	LevelBest    = archive.LevelBest
)

// ArchiveState is the lifecycle phase reported to a ProgressFunc.
type ArchiveState = archive.State

const (
	StateIdle        = archive.StateIdle
	StateCompressing = archive.StateCompressing
	StateExtracting  = archive.StateExtracting
	StateDone        = archive.StateDone
	StateFailed      = archive.StateFailed
)

type (
	// ProgressEvent reports archive progress.
	ProgressEvent = archive.ProgressEvent
	// ProgressFunc receives archive progress synchronously.
	ProgressFunc = archive.ProgressFunc
	// ArchiveEntry describes a member of an archive.
	ArchiveEntry = archive.Entry
)

// ArchiveOption configures a single archive job.
type ArchiveOption func(*archiveSettings)

type archiveSettings struct {
	password    string
	hasPassword bool
	format      archive.Format
	formatSet   bool
	encryption  *archive.Encryption
	progress    ProgressFunc
}

// WithPassword encrypts entries when compressing and decrypts them when
// extracting. Only zip archives accept a password.
func WithPassword(password string) ArchiveOption {
	return func(s *archiveSettings) {
		s.password = password
		s.hasPassword = true
	}
}

// WithFormat selects the container format instead of deriving it from the
// file name.
func WithFormat(f ArchiveFormat) ArchiveOption {
	return func(s *archiveSettings) {
		s.format = f
		s.formatSet = true
	}
}

// WithEncryption overrides the sandbox's zip cipher for one job.
func WithEncryption(e ZipEncryption) ArchiveOption {
	return func(s *archiveSettings) { s.encryption = &e }
}

// WithProgress observes state changes and per-entry progress.
func WithProgress(fn ProgressFunc) ArchiveOption {
	return func(s *archiveSettings) { s.progress = fn }
}

func (n *Node) archiveOptions(name string, opts []ArchiveOption) archive.Options {
	var s archiveSettings
	for _, opt := range opts {
		opt(&s)
	}
	if !s.formatSet {
		s.format, _ = archive.DetectFormat(name)
	}
	enc := n.sb.cfg.encryption
	if s.encryption != nil {
		enc = *s.encryption
	}
	return archive.Options{
		Format:      s.format,
		Password:    s.password,
		HasPassword: s.hasPassword,
		Encryption:  enc,
		Level:       n.sb.cfg.level,
		ChunkSize:   n.sb.cfg.chunkSize,
		Workers:     n.sb.cfg.workers,
		Progress:    s.progress,
	}
}

// Compress archives the node, a file or a directory tree, into dst and
// returns dst. Entries are stored relative to the node. An existing dst is
// replaced. The format follows dst's extension unless WithFormat is given.
func (n *Node) Compress(dst *Node, opts ...ArchiveOption) (*Node, error) {
	return n.CompressContext(context.Background(), dst, opts...)
}

// CompressContext is Compress with cancellation checked between entries.
func (n *Node) CompressContext(ctx context.Context, dst *Node, opts ...ArchiveOption) (*Node, error) {
	start := n.sb.timer()
	if dst == nil {
		return nil, n.fail(opCompress, start, ErrPath, "nil destination")
	}
	if err := n.sb.confine(n.path, false); err != nil {
		return nil, n.finish(opCompress, start, err)
	}
	if err := dst.sb.confine(dst.path, false); err != nil {
		return nil, n.finish(opCompress, start, err)
	}
	if _, err := os.Lstat(n.path); err != nil {
		return nil, n.finish(opCompress, start, err)
	}
	if n.Equal(dst) || dst.contains(n) {
		return nil, n.fail(opCompress, start, ErrPath, "destination %s would replace the source", dst.path)
	}
	if fi, err := os.Lstat(dst.path); err == nil && fi.IsDir() {
		if err := os.RemoveAll(dst.path); err != nil {
			return nil, n.finish(opCompress, start, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(dst.path), 0o755); err != nil {
		return nil, n.finish(opCompress, start, err)
	}

	codec := archive.NewCodec(n.archiveOptions(dst.Name(), opts))
	err := codec.Compress(ctx, n.path, dst.path)
	n.sb.metrics.AddArchiveEntries(monitoring.DirectionWrite, codec.Entries())
	n.sb.metrics.AddBytes(monitoring.DirectionRead, codec.Bytes())
	if err != nil {
		return nil, n.finish(opCompress, start, err)
	}
	return dst, n.finish(opCompress, start, nil)
}

// Extract unpacks the archive at the node into the directory dst and
// returns dst. Encrypted entries are verified before anything is written,
// so a wrong password leaves dst untouched.
func (n *Node) Extract(dst *Node, opts ...ArchiveOption) (*Node, error) {
	return n.ExtractContext(context.Background(), dst, opts...)
}

// ExtractContext is Extract with cancellation checked between entries.
// Entries already written when the context ends are left in place.
func (n *Node) ExtractContext(ctx context.Context, dst *Node, opts ...ArchiveOption) (*Node, error) {
	start := n.sb.timer()
	if dst == nil {
		return nil, n.fail(opExtract, start, ErrPath, "nil destination")
	}
	if err := n.requireFile(opExtract); err != nil {
		return nil, n.finish(opExtract, start, err)
	}
	if n.Equal(dst) {
		return nil, n.fail(opExtract, start, ErrPath, "destination is the archive itself")
	}
	if err := dst.sb.confine(dst.path, false); err != nil {
		return nil, n.finish(opExtract, start, err)
	}

	codec := archive.NewCodec(n.archiveOptions(n.Name(), opts))
	err := codec.Extract(ctx, n.path, dst.path)
	n.sb.metrics.AddArchiveEntries(monitoring.DirectionRead, codec.Entries())
	n.sb.metrics.AddBytes(monitoring.DirectionWrite, codec.Bytes())
	if err != nil {
		return nil, n.finish(opExtract, start, err)
	}
	return dst, n.finish(opExtract, start, nil)
}

// Zip compresses the node into the sibling "<name>.zip", or the extension
// of the format chosen with WithFormat.
func (n *Node) Zip(opts ...ArchiveOption) (*Node, error) {
	start := n.sb.timer()
	parent := n.Parent()
	if parent == nil {
		return nil, n.fail(opCompress, start, ErrPath, "the sandbox root has no sibling")
	}
	format := archive.FormatZip
	var s archiveSettings
	for _, opt := range opts {
		opt(&s)
	}
	if s.formatSet {
		format = s.format
	}
	dst, err := parent.Child(n.Name() + format.Extension())
	if err != nil {
		return nil, n.finish(opCompress, start, err)
	}
	return n.Compress(dst, append([]ArchiveOption{WithFormat(format)}, opts...)...)
}

// UnZip extracts the archive into a sibling directory named after the
// archive without its extension.
func (n *Node) UnZip(opts ...ArchiveOption) (*Node, error) {
	start := n.sb.timer()
	parent := n.Parent()
	if parent == nil {
		return nil, n.fail(opExtract, start, ErrPath, "the sandbox root has no sibling")
	}
	name := archive.TrimExtension(n.Name())
	if name == n.Name() {
		name = n.SimpleName()
	}
	if name == n.Name() {
		return nil, n.fail(opExtract, start, ErrPath, "cannot derive a directory name from %q", n.Name())
	}
	dst, err := parent.Child(name)
	if err != nil {
		return nil, n.finish(opExtract, start, err)
	}
	return n.Extract(dst, opts...)
}

// ListArchive returns the entries of the archive at the node.
func (n *Node) ListArchive(opts ...ArchiveOption) ([]ArchiveEntry, error) {
	start := n.sb.timer()
	if err := n.requireFile(opListArchive); err != nil {
		return nil, n.finish(opListArchive, start, err)
	}
	o := n.archiveOptions(n.Name(), opts)
	entries, err := archive.List(n.path, o.Format)
	if err != nil {
		return nil, n.finish(opListArchive, start, err)
	}
	return entries, n.finish(opListArchive, start, nil)
}

// contains reports whether other lies strictly below n.
func (n *Node) contains(other *Node) bool {
	return other != nil && n.path != other.path && paths.Within(n.path, other.path)
}
