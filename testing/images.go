// Package testing provides fixture helpers for building in-memory images
// that the rest of the test suite mutates through the layout/command
// layers, mirroring the teacher's own testing/images.go but building images
// programmatically instead of decompressing stored blobs - these images are
// a fixed 128 KiB, far smaller than what the teacher's compressed fixtures
// target.
package testing

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/go-ext2/ext2fs/image"
	"github.com/go-ext2/ext2fs/layout"
)

// NewFixtureImage allocates a zero-filled, correctly-sized image buffer and
// formats it with inodesCount inodes and blocksCount blocks. It returns the
// formatted bytes directly (for layout.New and friends, which operate on a
// plain []byte) alongside a bytesextra-backed io.ReadWriteSeeker over the
// same slice, standing in for a real image file the way dargueta-disko's
// LoadDiskImage stood in for a compressed on-disk fixture.
func NewFixtureImage(t *testing.T, inodesCount, blocksCount uint32) (buf []byte, rws io.ReadWriteSeeker) {
	t.Helper()

	buf = make([]byte, image.Size)
	require.NoError(t, layout.Format(buf, inodesCount, blocksCount), "formatting fixture image")
	return buf, bytesextra.NewReadWriteSeeker(buf)
}

// NewBlankImage allocates a zero-filled, correctly-sized but unformatted
// image buffer, for tests exercising layout.Format itself.
func NewBlankImage(t *testing.T) []byte {
	t.Helper()
	return make([]byte, image.Size)
}

// NewFixtureFile formats a fixture image and writes it to a real file under
// t.TempDir(), for tests that exercise image.Open (and therefore the
// commands package, which needs a real file descriptor to mmap).
func NewFixtureFile(t *testing.T, inodesCount, blocksCount uint32) string {
	t.Helper()

	buf, _ := NewFixtureImage(t, inodesCount, blocksCount)
	path := filepath.Join(t.TempDir(), "fixture.img")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}
