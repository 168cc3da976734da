package errors_test

import (
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-ext2/ext2fs/errors"
)

func TestErrno_MapsEachVariantToItsPOSIXCode(t *testing.T) {
	cases := map[errors.DiskoError]syscall.Errno{
		errors.ErrInvalid:  syscall.EINVAL,
		errors.ErrNotFound: syscall.ENOENT,
		errors.ErrExists:   syscall.EEXIST,
		errors.ErrIsDir:    syscall.EISDIR,
		errors.ErrNoSpace:  syscall.ENOSPC,
		errors.ErrCorrupt:  syscall.EUCLEAN,
		errors.ErrIo:       syscall.EIO,
	}
	for de, want := range cases {
		assert.Equal(t, want, de.Errno(), "Errno() for %q", de)
	}
}

func TestWithMessage_PrependsTheVariantText(t *testing.T) {
	err := errors.ErrNotFound.WithMessage("/a/b/c")
	assert.Equal(t, fmt.Sprintf("%s: %s", errors.ErrNotFound, "/a/b/c"), err.Error())
}

func TestWrapError_IncludesTheWrappedErrorText(t *testing.T) {
	inner := fmt.Errorf("disk read failed")
	err := errors.ErrIo.WrapError(inner)
	assert.Contains(t, err.Error(), inner.Error())
	assert.Contains(t, err.Error(), errors.ErrIo.Error())
}
