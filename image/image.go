// Package image provides the byte-addressable, mutable window over an
// ext2-style image file that every other layer builds on.
package image

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/go-ext2/ext2fs/errors"
)

// BlockSize is the fixed block size this toolkit supports.
const BlockSize = 1024

// Size is the fixed total size of an image file: 128 KiB.
const Size = 128 * 1024

// TotalBlocks is the number of BlockSize-sized blocks in an image.
const TotalBlocks = Size / BlockSize

// Image is a shared, mutable mapping of an image file's contents. Mutations
// made through Bytes are visible to the backing file once Sync or Close runs.
type Image struct {
	file *os.File
	data []byte
}

// Open acquires a read-write mapping over the image file at path. The file
// must already exist and be exactly Size bytes; acquiring it is the caller's
// job (typically the CLI layer), but building the window over it is this
// layer's responsibility.
func Open(path string) (*Image, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.ErrIo.WrapError(err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.ErrIo.WrapError(err)
	}
	if info.Size() != Size {
		f.Close()
		return nil, errors.ErrInvalid.WithMessage(
			fmt.Sprintf("image must be exactly %d bytes, got %d", Size, info.Size()))
	}

	data, err := unix.Mmap(int(f.Fd()), 0, Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.ErrIo.WrapError(err)
	}

	return &Image{file: f, data: data}, nil
}

// OpenFile adopts an already-open file handle instead of a path. Used by
// callers (and tests) that already hold the descriptor.
func OpenFile(f *os.File) (*Image, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, errors.ErrIo.WrapError(err)
	}
	if info.Size() != Size {
		return nil, errors.ErrInvalid.WithMessage(
			fmt.Sprintf("image must be exactly %d bytes, got %d", Size, info.Size()))
	}

	data, err := unix.Mmap(int(f.Fd()), 0, Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.ErrIo.WrapError(err)
	}
	return &Image{file: f, data: data}, nil
}

// Bytes returns the full mutable byte window over the image.
func (img *Image) Bytes() []byte {
	return img.data
}

// Block returns the 1024-byte slice for the 0-based block index b, still
// backed by the shared mapping.
func (img *Image) Block(b uint32) []byte {
	off := int(b) * BlockSize
	return img.data[off : off+BlockSize]
}

// Sync flushes dirty pages to the backing file without releasing the
// mapping.
func (img *Image) Sync() error {
	if err := unix.Msync(img.data, unix.MS_SYNC); err != nil {
		return errors.ErrIo.WrapError(err)
	}
	return nil
}

// Close flushes outstanding writes, releases the mapping, and closes the
// backing file. Callers should defer Close immediately after a successful
// Open so the mapping is released - and persisted - on every exit path,
// including command errors.
func (img *Image) Close() error {
	if img.data == nil {
		return nil
	}

	syncErr := img.Sync()
	mapErr := unix.Munmap(img.data)
	img.data = nil
	closeErr := img.file.Close()

	if syncErr != nil {
		return syncErr
	}
	if mapErr != nil {
		return errors.ErrIo.WrapError(mapErr)
	}
	if closeErr != nil {
		return errors.ErrIo.WrapError(closeErr)
	}
	return nil
}

// Create makes a new zero-filled image file of the correct size at path,
// ready to be formatted. This is ambient tooling the six core commands never
// call, but which the CLI's "format" subcommand and the test suite both need
// to produce fixture images.
func Create(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.ErrIo.WrapError(err)
	}
	defer f.Close()

	if err := f.Truncate(Size); err != nil {
		return errors.ErrIo.WrapError(err)
	}
	return nil
}
