package sandfs

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/GriffinCanCode/sandfs/internal/monitoring"
	"golang.org/x/crypto/blake2b"
)

// HashAlgorithm names a content digest.
type HashAlgorithm string

const (
	HashMD5        HashAlgorithm = "md5"
	HashSHA1       HashAlgorithm = "sha1"
	HashSHA256     HashAlgorithm = "sha256"
	HashSHA512     HashAlgorithm = "sha512"
	HashBLAKE2b256 HashAlgorithm = "blake2b-256"
)

// ParseHashAlgorithm maps a name such as "SHA-256" onto a HashAlgorithm.
func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	alg := HashAlgorithm(strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", "")))
	switch alg {
	case "md5", "sha1", "sha256", "sha512":
		return alg, nil
	case "blake2b256", "blake2b":
		return HashBLAKE2b256, nil
	}
	return "", fmt.Errorf("unknown hash algorithm %q", name)
}

func (a HashAlgorithm) newHash() (hash.Hash, error) {
	switch a {
	case HashMD5:
		return md5.New(), nil
	case HashSHA1:
		return sha1.New(), nil
	case HashSHA256, "":
		return sha256.New(), nil
	case HashSHA512:
		return sha512.New(), nil
	case HashBLAKE2b256:
		return blake2b.New256(nil)
	}
	return nil, fmt.Errorf("unknown hash algorithm %q", string(a))
}

// Digest is the result of hashing a file.
type Digest struct {
	Algorithm HashAlgorithm
	Sum       []byte
}

// Hex returns the lowercase hex encoding of the sum.
func (d Digest) Hex() string { return hex.EncodeToString(d.Sum) }

// String returns "<algorithm>:<hex>".
func (d Digest) String() string { return string(d.Algorithm) + ":" + d.Hex() }

// Hash digests the file content with the sandbox's algorithm.
func (n *Node) Hash() (Digest, error) {
	return n.HashWith(n.sb.cfg.hash)
}

// HashWith digests the file content with alg. Content is streamed in
// chunks so large files are never held in memory.
func (n *Node) HashWith(alg HashAlgorithm) (Digest, error) {
	start := n.sb.timer()
	if alg == "" {
		alg = HashSHA256
	}
	h, err := alg.newHash()
	if err != nil {
		return Digest{}, n.fail(opHash, start, ErrIO, "%v", err)
	}
	if err := n.requireFile(opHash); err != nil {
		return Digest{}, n.finish(opHash, start, err)
	}

	f, err := os.Open(n.path)
	if err != nil {
		return Digest{}, n.finish(opHash, start, err)
	}
	defer f.Close()

	buf := make([]byte, n.sb.cfg.chunkSize)
	read, err := io.CopyBuffer(h, struct{ io.Reader }{f}, buf)
	n.sb.metrics.AddBytes(monitoring.DirectionRead, read)
	if err != nil {
		return Digest{}, n.finish(opHash, start, err)
	}
	return Digest{Algorithm: alg, Sum: h.Sum(nil)}, n.finish(opHash, start, nil)
}

// MD5 returns the hex MD5 of the file content.
func (n *Node) MD5() (string, error) {
	d, err := n.HashWith(HashMD5)
	if err != nil {
		return "", err
	}
	return d.Hex(), nil
}
