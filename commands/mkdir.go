package commands

import (
	"github.com/go-ext2/ext2fs/errors"
	"github.com/go-ext2/ext2fs/layout"
)

// Mkdir creates an empty directory at path. The parent must already exist
// and be a directory; the leaf must not already be present there.
func Mkdir(s *Session, path string) error {
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
	if _, err := s.Dirs.Lookup(parent, leaf); err == nil {
		return errors.ErrExists
	}

	childNum, child, err := s.Alloc.AllocInode()
	if err != nil {
		return err
	}
	blockNum, err := s.Alloc.AllocBlock()
	if err != nil {
		return err
	}

	child.SetMode(layout.ModeDir)
	child.SetLinksCount(2)
	child.SetSize(layout.BlockSize)
	child.SetBlocks(1)
	child.SetDirectBlock(0, blockNum)

	block, err := s.Layout.Block(blockNum)
	if err != nil {
		return err
	}
	selfLen := layout.PhysSize(1)
	layout.EncodeDirEntry(block, layout.DirEntry{
		Offset: 0, Inode: childNum, RecLen: selfLen, NameLen: 1, FileType: layout.FileTypeDir, Name: ".",
	})
	layout.EncodeDirEntry(block, layout.DirEntry{
		Offset: selfLen, Inode: parentNum, RecLen: layout.BlockSize - selfLen, NameLen: 2, FileType: layout.FileTypeDir, Name: "..",
	})

	parent.IncLinksCount()
	s.Layout.GroupDesc().IncUsedDirsCount()

	return s.Dirs.Insert(parent, childNum, leaf, layout.FileTypeDir)
}
