// Package errors defines the tagged error variants the core returns. Each
// variant is a DiskoError string constant, matching the taxonomy in the
// project's design notes: Invalid, NotFound, Exists, IsDir, NoSpace,
// Corrupt, and Io.
package errors

import (
	"fmt"
	"syscall"
)

type DiskoError string

const ErrInvalid = DiskoError("malformed argument")
const ErrNotFound = DiskoError("no such file or directory")
const ErrExists = DiskoError("file exists")
const ErrIsDir = DiskoError("is a directory")
const ErrNoSpace = DiskoError("no space left on device")
const ErrCorrupt = DiskoError("on-disk structure needs cleaning")
const ErrIo = DiskoError("input/output error")

func (e DiskoError) Error() string {
	return string(e)
}

// Errno maps a DiskoError to the POSIX code the CLI surface conventionally
// exits with. Commands themselves never touch syscall.Errno; this exists only
// for the narrow interface described in the external command surface.
func (e DiskoError) Errno() syscall.Errno {
	switch e {
	case ErrInvalid:
		return syscall.EINVAL
	case ErrNotFound:
		return syscall.ENOENT
	case ErrExists:
		return syscall.EEXIST
	case ErrIsDir:
		return syscall.EISDIR
	case ErrNoSpace:
		return syscall.ENOSPC
	case ErrCorrupt:
		return syscall.EUCLEAN
	case ErrIo:
		return syscall.EIO
	default:
		return syscall.EINVAL
	}
}

func (e DiskoError) WithMessage(message string) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), message),
		originalError: e,
	}
}

func (e DiskoError) WrapError(err error) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: e,
	}
}
