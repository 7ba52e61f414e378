package sandfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"syscall"

	"github.com/GriffinCanCode/sandfs/internal/archive"
	"github.com/GriffinCanCode/sandfs/internal/shared/paths"
)

// Error kinds. Every error returned by this package is an *Error whose Kind
// is one of these, so callers can branch with errors.Is.
var (
	// ErrPath is returned for malformed paths and for paths that resolve
	// outside their sandbox.
	ErrPath = errors.New("invalid path")
	// ErrInvalidName is returned for child names that are not a single path
	// element. It is a kind of ErrPath.
	ErrInvalidName = fmt.Errorf("%w: invalid name", ErrPath)
	// ErrNotFound is returned when the node does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPermission is returned when the host denies access.
	ErrPermission = errors.New("permission denied")
	// ErrTypeMismatch is returned when a file was expected and a directory
	// was found, or the other way round.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrEncoding is returned when content cannot be decoded or encoded.
	ErrEncoding = errors.New("encoding error")
	// ErrArchive is returned for malformed or unsafe archives.
	ErrArchive = errors.New("archive error")
	// ErrWrongPassword is returned when an encrypted archive entry cannot be
	// decrypted with the supplied password.
	ErrWrongPassword = errors.New("wrong password")
	// ErrIO is returned for any other host failure.
	ErrIO = errors.New("i/o error")
)

// Error records a failed node operation.
type Error struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil || e.Err == e.Kind {
		return fmt.Sprintf("sandfs: %s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("sandfs: %s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the underlying cause to errors.Is and
// errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// newError wraps err for op on path. Errors that already carry a kind are
// returned unchanged.
func newError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Path: path, Kind: classify(err), Err: err}
}

// kindError builds an error of an explicit kind.
func kindError(op, path string, kind error, format string, args ...any) error {
	var cause error
	if format != "" {
		cause = fmt.Errorf(format, args...)
	}
	return &Error{Op: op, Path: path, Kind: kind, Err: cause}
}

// classify maps host and internal errors onto a kind.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrPath), errors.Is(err, ErrNotFound), errors.Is(err, ErrPermission),
		errors.Is(err, ErrTypeMismatch), errors.Is(err, ErrEncoding), errors.Is(err, ErrArchive),
		errors.Is(err, ErrWrongPassword), errors.Is(err, ErrIO):
		return kindOf(err)

	case errors.Is(err, archive.ErrWrongPassword):
		return ErrWrongPassword
	case errors.Is(err, archive.ErrMalformed), errors.Is(err, archive.ErrPasswordUnsupported),
		errors.Is(err, archive.ErrSymlink), errors.Is(err, archive.ErrCodecUsed):
		return ErrArchive

	case errors.Is(err, paths.ErrSeparator), errors.Is(err, paths.ErrDotName):
		return ErrInvalidName
	case errors.Is(err, paths.ErrEmpty), errors.Is(err, paths.ErrNUL), errors.Is(err, paths.ErrEscape):
		return ErrPath

	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermission
	case errors.Is(err, syscall.ENOTDIR), errors.Is(err, syscall.EISDIR), errors.Is(err, fs.ErrExist):
		return ErrTypeMismatch
	case errors.Is(err, syscall.ENAMETOOLONG), errors.Is(err, syscall.ELOOP):
		return ErrPath
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrIO
	}
	return ErrIO
}

func kindOf(err error) error {
	for _, k := range []error{ErrInvalidName, ErrPath, ErrNotFound, ErrPermission, ErrTypeMismatch,
		ErrEncoding, ErrWrongPassword, ErrArchive, ErrIO} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrIO
}
