package archive

import "errors"

var (
	// ErrMalformed is returned when a container cannot be parsed or holds an
	// entry that cannot be materialised safely.
	ErrMalformed = errors.New("malformed archive")

	// ErrWrongPassword is returned when an encrypted entry fails to decrypt or
	// authenticate, or when no password was supplied for one.
	ErrWrongPassword = errors.New("wrong password")

	// ErrPasswordUnsupported is returned when a password is supplied for a
	// container format that cannot be encrypted.
	ErrPasswordUnsupported = errors.New("format does not support passwords")

	// ErrSymlink is returned when a symlink is met while compressing or
	// extracting.
	ErrSymlink = errors.New("symlinks are not archived")

	// ErrCodecUsed is returned when a Codec is asked to run a second job.
	ErrCodecUsed = errors.New("codec already ran")
)
