package sandfs

import (
	"github.com/GriffinCanCode/sandfs/internal/archive"
	"github.com/GriffinCanCode/sandfs/internal/monitoring"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultChunkSize is the streaming buffer used for hashing, copying and
// archive work.
const DefaultChunkSize = archive.DefaultChunkSize

// Option configures a Sandbox.
type Option func(*settings)

type settings struct {
	logger     *zap.Logger
	registerer prometheus.Registerer
	metrics    *monitoring.Metrics
	hash       HashAlgorithm
	chunkSize  int
	workers    int
	encryption ZipEncryption
	level      CompressionLevel
}

func defaultSettings() settings {
	return settings{
		logger:    zap.NewNop(),
		hash:      HashSHA256,
		chunkSize: DefaultChunkSize,
	}
}

// WithLogger sets the logger used for operation logs. Nil keeps the no-op
// logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics registers operation metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *settings) { s.registerer = reg }
}

// withSharedMetrics reuses collectors that were already registered, so that
// several sandboxes can report into one registry.
func withSharedMetrics(m *monitoring.Metrics) Option {
	return func(s *settings) {
		s.metrics = m
		s.registerer = nil
	}
}

// WithHashAlgorithm selects the digest used by Node.Hash.
func WithHashAlgorithm(alg HashAlgorithm) Option {
	return func(s *settings) { s.hash = alg }
}

// WithChunkSize sets the streaming buffer size. Non-positive values are
// ignored.
func WithChunkSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithWalkWorkers bounds the concurrent walkers used by recursive reads.
// Zero selects the walker default.
func WithWalkWorkers(n int) Option {
	return func(s *settings) {
		if n >= 0 {
			s.workers = n
		}
	}
}

// WithZipEncryption selects the cipher used for password-protected zips.
func WithZipEncryption(e ZipEncryption) Option {
	return func(s *settings) { s.encryption = e }
}

// WithCompressionLevel selects the tar.gz and tar.zst compression level.
func WithCompressionLevel(l CompressionLevel) Option {
	return func(s *settings) { s.level = l }
}
