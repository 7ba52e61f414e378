package archive

import (
	"fmt"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/yeka/zip"
)

// Format identifies a container format.
type Format int

const (
	FormatZip Format = iota
	FormatTarGzip
	FormatTarZstd
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatTarGzip:
		return "tar.gz"
	case FormatTarZstd:
		return "tar.zst"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Extension returns the file extension for the format including the dot.
func (f Format) Extension() string {
	return "." + f.String()
}

// SupportsPassword reports whether entries of this format can be encrypted.
func (f Format) SupportsPassword() bool {
	return f == FormatZip
}

// DetectFormat guesses the format from a file name.
func DetectFormat(name string) (Format, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return FormatZip, true
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatTarGzip, true
	case strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tzst"):
		return FormatTarZstd, true
	}
	return FormatZip, false
}

// TrimExtension strips a recognised container extension from name.
func TrimExtension(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{".tar.gz", ".tar.zst", ".tgz", ".tzst", ".zip"} {
		if strings.HasSuffix(lower, ext) && len(name) > len(ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// Encryption selects the zip cipher used when a password is supplied.
type Encryption int

const (
	EncryptionAES256 Encryption = iota
	EncryptionAES192
	EncryptionAES128
	EncryptionZipCrypto
)

// ParseEncryption maps a config value onto an Encryption.
func ParseEncryption(s string) (Encryption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "aes256", "aes-256":
		return EncryptionAES256, nil
	case "aes192", "aes-192":
		return EncryptionAES192, nil
	case "aes128", "aes-128":
		return EncryptionAES128, nil
	case "zipcrypto", "standard":
		return EncryptionZipCrypto, nil
	}
	return EncryptionAES256, fmt.Errorf("unknown zip encryption %q", s)
}

func (e Encryption) method() zip.EncryptionMethod {
	switch e {
	case EncryptionAES192:
		return zip.AES192Encryption
	case EncryptionAES128:
		return zip.AES128Encryption
	case EncryptionZipCrypto:
		return zip.StandardEncryption
	default:
		return zip.AES256Encryption
	}
}

// Level selects the tar compression level.
type Level int

const (
	LevelDefault Level = iota
	LevelFastest
	LevelBetter
	LevelBest
)

// ParseLevel maps a config value onto a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return LevelDefault, nil
	case "fastest", "fast":
		return LevelFastest, nil
	case "better":
		return LevelBetter, nil
	case "best":
		return LevelBest, nil
	}
	return LevelDefault, fmt.Errorf("unknown compression level %q", s)
}

func (l Level) gzip() int {
	switch l {
	case LevelFastest:
		return gzip.BestSpeed
	case LevelBetter:
		return 7
	case LevelBest:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func (l Level) zstd() zstd.EncoderLevel {
	switch l {
	case LevelFastest:
		return zstd.SpeedFastest
	case LevelBetter:
		return zstd.SpeedBetterCompression
	case LevelBest:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}
