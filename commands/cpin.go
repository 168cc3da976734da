package commands

import (
	"io"
	"os"
	"time"

	"github.com/go-ext2/ext2fs/errors"
	"github.com/go-ext2/ext2fs/layout"
)

// CpIn copies a regular host file into the image at imagePath. The host file
// must exist and be regular; the image parent must exist and be a directory;
// the image leaf must not already exist.
func CpIn(s *Session, hostPath, imagePath string) error {
	info, err := os.Stat(hostPath)
	if err != nil {
		return errors.ErrNotFound.WrapError(err)
	}
	if !info.Mode().IsRegular() {
		return errors.ErrNotFound.WithMessage("host source must be a regular file")
	}

	parentNum, leaf, err := s.Resolver.Resolve(imagePath)
	if err != nil {
		return err
	}
	parent, err := s.Layout.Inode(parentNum)
	if err != nil {
		return err
	}
	if !parent.IsDir() {
		return errors.ErrNotFound
	}
	if _, err := s.Dirs.Lookup(parent, leaf); err == nil {
		return errors.ErrExists
	}

	size := uint32(info.Size())
	needed := (size + layout.BlockSize - 1) / layout.BlockSize
	if needed == 0 {
		needed = 1
	}
	if needed > s.Alloc.FreeBlocksAvailable() {
		return errors.ErrNoSpace
	}

	src, err := os.Open(hostPath)
	if err != nil {
		return errors.ErrIo.WrapError(err)
	}
	defer src.Close()

	childNum, child, err := s.Alloc.AllocInode()
	if err != nil {
		return err
	}
	child.SetMode(layout.ModeReg)
	child.SetLinksCount(1)
	child.SetSize(size)
	child.SetCtime(uint32(time.Now().Unix()))

	remaining := int64(size)
	for i := uint32(0); i < needed; i++ {
		blockNum, err := s.Alloc.AllocBlock()
		if err != nil {
			return err
		}
		child.SetDirectBlock(int(i), blockNum)

		block, err := s.Layout.Block(blockNum)
		if err != nil {
			return err
		}
		n := int64(layout.BlockSize)
		if remaining < n {
			n = remaining
		}
		if n > 0 {
			if _, err := io.ReadFull(src, block[:n]); err != nil {
				return errors.ErrIo.WrapError(err)
			}
		}
		remaining -= n
	}
	child.SetBlocks(needed)

	return s.Dirs.Insert(parent, childNum, leaf, layout.FileTypeReg)
}
