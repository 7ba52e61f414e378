package sandfs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/GriffinCanCode/sandfs/internal/archive"
	"github.com/GriffinCanCode/sandfs/internal/config"
	"github.com/GriffinCanCode/sandfs/internal/logging"
	"github.com/GriffinCanCode/sandfs/internal/monitoring"
	"github.com/GriffinCanCode/sandfs/internal/shared/paths"
	"go.uber.org/zap"
)

// Environment is the set of sandbox roots an application stores data in:
// a persistent home with Documents and Library below it, a cache root the
// system may purge, and a per-process temporary root.
type Environment struct {
	home   *Sandbox
	caches *Sandbox
	tmp    *Sandbox

	tmpOwned bool
	logger   *logging.Logger
}

// NewEnvironment builds the roots from SANDFS_* environment variables,
// falling back to the platform's config and cache directories. Options are
// applied to every root after the environment-derived settings.
func NewEnvironment(opts ...Option) (*Environment, error) {
	cfg := config.LoadOrDefault()

	logger, err := logging.New(logging.FromConfig(cfg.Logging))
	if err != nil {
		logger = logging.NewNop()
	}

	base := []Option{WithLogger(logger.Logger), WithChunkSize(cfg.Storage.ChunkSize), WithWalkWorkers(cfg.Storage.WalkWorkers)}
	if alg, err := ParseHashAlgorithm(cfg.Storage.HashAlgorithm); err == nil {
		base = append(base, WithHashAlgorithm(alg))
	} else {
		logger.Warn("Ignoring hash algorithm", zap.Error(err))
	}
	if enc, err := archive.ParseEncryption(cfg.Archive.Encryption); err == nil {
		base = append(base, WithZipEncryption(enc))
	} else {
		logger.Warn("Ignoring zip encryption", zap.Error(err))
	}
	if lvl, err := archive.ParseLevel(cfg.Archive.TarLevel); err == nil {
		base = append(base, WithCompressionLevel(lvl))
	} else {
		logger.Warn("Ignoring compression level", zap.Error(err))
	}
	all := append(base, opts...)

	// Collectors are registered once and shared by the three roots.
	probe := defaultSettings()
	for _, opt := range all {
		opt(&probe)
	}
	if probe.metrics == nil && probe.registerer != nil {
		all = append(all, withSharedMetrics(monitoring.NewMetrics(probe.registerer)))
	}

	env := &Environment{logger: logger}

	homeDir, err := cfg.HomeDir()
	if err != nil {
		return nil, err
	}
	if env.home, err = NewSandbox(homeDir, all...); err != nil {
		return nil, err
	}
	for _, name := range []string{paths.Documents, paths.Library} {
		dir, err := env.home.Root().Child(name)
		if err != nil {
			return nil, err
		}
		if err := dir.MakeDirs(); err != nil {
			return nil, err
		}
	}

	cachesDir, err := cfg.CachesDir()
	if err != nil {
		return nil, err
	}
	if env.caches, err = NewSandbox(cachesDir, all...); err != nil {
		return nil, err
	}

	tmpDir := cfg.TempDir()
	if tmpDir == "" {
		if tmpDir, err = os.MkdirTemp("", cfg.App.Name+"-*"); err != nil {
			return nil, fmt.Errorf("create temporary root: %w", err)
		}
		env.tmpOwned = true
	}
	if env.tmp, err = NewSandbox(tmpDir, all...); err != nil {
		if env.tmpOwned {
			_ = os.RemoveAll(tmpDir)
		}
		return nil, err
	}

	logger.Debug("Environment ready",
		zap.String("home", env.home.RootPath()),
		zap.String("caches", env.caches.RootPath()),
		zap.String("tmp", env.tmp.RootPath()))
	return env, nil
}

// Home returns the persistent sandbox root.
func (e *Environment) Home() *Node { return e.home.Root() }

// Documents returns Home/Documents, for user-visible persistent data.
func (e *Environment) Documents() *Node { return e.child(e.home, paths.Documents) }

// Library returns Home/Library, for persistent data the user never sees.
func (e *Environment) Library() *Node { return e.child(e.home, paths.Library) }

// Caches returns the cache root. Its content may be purged by the system.
func (e *Environment) Caches() *Node { return e.caches.Root() }

// Tmp returns the temporary root.
func (e *Environment) Tmp() *Node { return e.tmp.Root() }

// HomeSandbox, CachesSandbox and TmpSandbox expose the roots for Resolve.
func (e *Environment) HomeSandbox() *Sandbox   { return e.home }
func (e *Environment) CachesSandbox() *Sandbox { return e.caches }
func (e *Environment) TmpSandbox() *Sandbox    { return e.tmp }

// Close removes the temporary root when the environment created it and
// flushes the logger.
func (e *Environment) Close() error {
	var err error
	if e.tmpOwned {
		err = os.RemoveAll(e.tmp.RootPath())
	}
	_ = e.logger.Sync()
	return err
}

func (e *Environment) child(s *Sandbox, name string) *Node {
	return &Node{sb: s, path: filepath.Join(s.root, name)}
}
