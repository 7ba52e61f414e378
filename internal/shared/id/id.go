// Package id generates ULIDs for names that must be unique and sort by
// creation time, such as temporary archive files.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator generates ULIDs from a shared entropy source.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the shared generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string.
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// TempName returns a hidden file name of the form ".<prefix>-<ulid>.tmp".
func TempName(prefix string) string {
	return fmt.Sprintf(".%s-%s.tmp", prefix, Default().GenerateString())
}

// IsTempName reports whether name was produced by TempName with prefix.
func IsTempName(name, prefix string) bool {
	head := "." + prefix + "-"
	if !strings.HasPrefix(name, head) || !strings.HasSuffix(name, ".tmp") {
		return false
	}
	return IsValid(strings.TrimSuffix(strings.TrimPrefix(name, head), ".tmp"))
}

// IsValid checks if an ID string is a valid ULID.
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}
