package commands

import (
	"time"

	"github.com/go-ext2/ext2fs/errors"
	"github.com/go-ext2/ext2fs/layout"
)

// Rm unlinks the regular file or symlink named by path. Directories are
// refused with ErrIsDir - this core has no rmdir. When the target's
// links_count reaches zero, its inode and data blocks are released but not
// zeroed, so a later Restore can recover them.
func Rm(s *Session, path string) error {
	parentNum, leaf, err := s.Resolver.Resolve(path)
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

	childNum, err := s.Dirs.Lookup(parent, leaf)
	if err != nil {
		return errors.ErrNotFound
	}
	child, err := s.Layout.Inode(childNum)
	if err != nil {
		return err
	}
	if child.IsDir() {
		return errors.ErrIsDir
	}

	if err := s.Dirs.Remove(parent, leaf); err != nil {
		return err
	}

	child.DecLinksCount()
	if child.LinksCount() == 0 {
		child.SetDtime(uint32(time.Now().Unix()))
		s.Alloc.FreeInode(childNum)
		for i := 0; i < layout.NumDirectBlocks; i++ {
			if b := child.DirectBlock(i); b != 0 {
				s.Alloc.FreeBlock(b)
			}
		}
	}
	return nil
}
