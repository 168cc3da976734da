package commands

import (
	"github.com/go-ext2/ext2fs/errors"
	"github.com/go-ext2/ext2fs/layout"
)

// Link creates a hard link at dstPath pointing at the same inode as
// srcPath. Unlike the source implementation, it increments the target
// inode's links_count - the source's omission was a bug, not behavior to
// preserve.
func Link(s *Session, srcPath, dstPath string) error {
	srcParentNum, srcLeaf, err := s.Resolver.Resolve(srcPath)
	if err != nil {
		return err
	}
	srcParent, err := s.Layout.Inode(srcParentNum)
	if err != nil {
		return err
	}
	if !srcParent.IsDir() {
		return errors.ErrNotFound
	}
	srcNum, err := s.Dirs.Lookup(srcParent, srcLeaf)
	if err != nil {
		return errors.ErrNotFound
	}
	src, err := s.Layout.Inode(srcNum)
	if err != nil {
		return err
	}
	if src.IsDir() {
		return errors.ErrIsDir
	}

	dstParentNum, dstLeaf, err := s.Resolver.Resolve(dstPath)
	if err != nil {
		return err
	}
	dstParent, err := s.Layout.Inode(dstParentNum)
	if err != nil {
		return err
	}
	if !dstParent.IsDir() {
		return errors.ErrNotFound
	}
	if _, err := s.Dirs.Lookup(dstParent, dstLeaf); err == nil {
		return errors.ErrExists
	}

	fileType := layout.FileTypeForMode(src.Mode())
	if err := s.Dirs.Insert(dstParent, srcNum, dstLeaf, fileType); err != nil {
		return err
	}
	src.IncLinksCount()
	return nil
}

// SymLink creates a symbolic link at dstPath whose contents are the literal
// bytes of srcPath (not resolved or validated - a dangling target is
// permitted, as with a real symlink).
func SymLink(s *Session, srcPath, dstPath string) error {
	dstParentNum, dstLeaf, err := s.Resolver.Resolve(dstPath)
	if err != nil {
		return err
	}
	dstParent, err := s.Layout.Inode(dstParentNum)
	if err != nil {
		return err
	}
	if !dstParent.IsDir() {
		return errors.ErrNotFound
	}
	if _, err := s.Dirs.Lookup(dstParent, dstLeaf); err == nil {
		return errors.ErrExists
	}

	size := uint32(len(srcPath))
	needed := (size + layout.BlockSize - 1) / layout.BlockSize
	if needed == 0 {
		needed = 1
	}
	if needed > s.Alloc.FreeBlocksAvailable() {
		return errors.ErrNoSpace
	}

	childNum, child, err := s.Alloc.AllocInode()
	if err != nil {
		return err
	}
	child.SetMode(layout.ModeLnk)
	child.SetLinksCount(1)
	child.SetSize(size)

	remaining := srcPath
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
		n := len(remaining)
		if n > layout.BlockSize {
			n = layout.BlockSize
		}
		copy(block, remaining[:n])
		remaining = remaining[n:]
	}
	child.SetBlocks(needed)

	return s.Dirs.Insert(dstParent, childNum, dstLeaf, layout.FileTypeSymlink)
}
