package sandfs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/GriffinCanCode/sandfs/internal/monitoring"
	"github.com/GriffinCanCode/sandfs/internal/shared/paths"
	"go.uber.org/zap"
)

// Sandbox is a directory tree that bounds every node resolved from it.
// A Sandbox is immutable after construction and safe for concurrent use;
// the nodes it hands out are not.
type Sandbox struct {
	root    string
	log     *zap.Logger
	metrics *monitoring.Metrics
	cfg     settings
}

// NewSandbox opens the sandbox rooted at root, creating the directory when
// it is missing. root may begin with "~" for the user's home directory.
func NewSandbox(root string, opts ...Option) (*Sandbox, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	p, err := paths.Normalize(root, "")
	if err != nil {
		return nil, newError(opOpen, root, err)
	}
	if err := os.MkdirAll(p, 0o755); err != nil {
		if classify(err) == ErrTypeMismatch {
			return nil, kindError(opOpen, p, ErrPath, "sandbox root is not a directory")
		}
		return nil, newError(opOpen, p, err)
	}
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return nil, newError(opOpen, p, err)
	}
	fi, err := os.Stat(resolved)
	if err != nil {
		return nil, newError(opOpen, resolved, err)
	}
	if !fi.IsDir() {
		return nil, kindError(opOpen, resolved, ErrPath, "sandbox root is not a directory")
	}
	if _, err := cfg.hash.newHash(); err != nil {
		return nil, kindError(opOpen, resolved, ErrIO, "%v", err)
	}

	metrics := cfg.metrics
	if metrics == nil && cfg.registerer != nil {
		metrics = monitoring.NewMetrics(cfg.registerer)
	}

	s := &Sandbox{
		root:    resolved,
		log:     cfg.logger.With(zap.String("sandbox", resolved)),
		metrics: metrics,
		cfg:     cfg,
	}
	s.log.Debug("Sandbox opened")
	return s, nil
}

// RootPath returns the resolved host path of the sandbox root.
func (s *Sandbox) RootPath() string {
	return s.root
}

// Root returns the node for the sandbox root.
func (s *Sandbox) Root() *Node {
	return &Node{sb: s, path: s.root}
}

// Resolve maps raw onto a node. Relative paths are taken from the sandbox
// root and "~" names the sandbox root itself. Symlinks in the existing part
// of the path are resolved before the containment check, so a link cannot
// be used to leave the sandbox.
func (s *Sandbox) Resolve(raw string) (*Node, error) {
	start := s.timer()
	n, err := s.resolve(raw)
	s.record(opResolve, raw, start, err)
	return n, err
}

// MustResolve is like Resolve but panics on error. Intended for tests and
// fixed paths.
func (s *Sandbox) MustResolve(raw string) *Node {
	n, err := s.Resolve(raw)
	if err != nil {
		panic(err)
	}
	return n
}

func (s *Sandbox) resolve(raw string) (*Node, error) {
	if raw == "~" || strings.HasPrefix(raw, "~/") || strings.HasPrefix(raw, "~"+string(filepath.Separator)) {
		raw = filepath.Join(s.root, raw[1:])
	}
	p, err := paths.Normalize(raw, s.root)
	if err != nil {
		return nil, newError(opResolve, raw, err)
	}
	p, err = paths.ResolveSymlinks(p)
	if err != nil {
		return nil, newError(opResolve, raw, err)
	}
	if !paths.Within(s.root, p) {
		return nil, newError(opResolve, raw, fmt.Errorf("%w: %s", paths.ErrEscape, p))
	}
	return &Node{sb: s, path: p}, nil
}

// Contains reports whether n belongs to this sandbox.
func (s *Sandbox) Contains(n *Node) bool {
	return n != nil && paths.Within(s.root, n.path)
}

// maxLinkHops bounds the dangling-link chain confine will follow.
const maxLinkHops = 40

// confine checks that p still resolves inside the sandbox once symlinks on
// disk are taken into account. Nodes built by Child, Children or Glob are
// joined lexically, so a link below the root can point them elsewhere.
// With follow unset the last element is not resolved, for operations that
// act on a link itself. With follow set a dangling link is chased to its
// target, since creating the file would create the target.
func (s *Sandbox) confine(p string, follow bool) error {
	if p == s.root {
		return nil
	}
	target := p
	if !follow {
		target = filepath.Dir(p)
	}
	resolved, err := paths.ResolveSymlinks(target)
	if err != nil {
		return err
	}
	if !follow {
		resolved = filepath.Join(resolved, filepath.Base(p))
	}
	for hops := 0; follow; hops++ {
		fi, err := os.Lstat(resolved)
		if err != nil || fi.Mode()&fs.ModeSymlink == 0 {
			break
		}
		if hops == maxLinkHops {
			return &fs.PathError{Op: "resolve", Path: p, Err: syscall.ELOOP}
		}
		dest, err := os.Readlink(resolved)
		if err != nil {
			return err
		}
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(filepath.Dir(resolved), dest)
		}
		if resolved, err = paths.ResolveSymlinks(filepath.Clean(dest)); err != nil {
			return err
		}
	}
	if !paths.Within(s.root, resolved) {
		return fmt.Errorf("%w: %s resolves to %s", paths.ErrEscape, p, resolved)
	}
	return nil
}

func (s *Sandbox) timer() *monitoring.Timer {
	return monitoring.NewTimer(s.metrics)
}

// record logs and meters one finished operation.
func (s *Sandbox) record(op, path string, start *monitoring.Timer, err error) {
	d := start.Stop(op, err)
	if err != nil {
		s.log.Warn("Operation failed",
			zap.String("op", op),
			zap.String("path", path),
			zap.Duration("duration", d),
			zap.Error(err))
		return
	}
	if ce := s.log.Check(zap.DebugLevel, "Operation completed"); ce != nil {
		ce.Write(zap.String("op", op), zap.String("path", path), zap.Duration("duration", d))
	}
}

// Operation names used in errors, logs and metrics labels.
const (
	opOpen        = "open"
	opResolve     = "resolve"
	opChild       = "child"
	opStat        = "stat"
	opSize        = "size"
	opHash        = "hash"
	opList        = "list"
	opMime        = "mime"
	opGlob        = "glob"
	opDelete      = "delete"
	opClear       = "clear"
	opMakeDirs    = "mkdirs"
	opCopy        = "copy"
	opMove        = "move"
	opRead        = "read"
	opWrite       = "write"
	opAppend      = "append"
	opCompress    = "compress"
	opExtract     = "extract"
	opListArchive = "list_archive"
)
