// Package layout provides typed accessors for the superblock, group
// descriptor, bitmaps, inode table, and directory-entry stream of an
// ext2-style image, enforcing the layout's fixed offsets and alignment.
package layout

import (
	"fmt"

	"github.com/go-ext2/ext2fs/errors"
)

// Layout is a typed view over an image's raw bytes.
type Layout struct {
	data []byte
}

// New wraps the full byte window of an image (image.Image.Bytes()) in a
// Layout.
func New(data []byte) *Layout {
	return &Layout{data: data}
}

func (l *Layout) block(b uint32) []byte {
	off := int(b) * BlockSize
	return l.data[off : off+BlockSize]
}

// SuperBlock returns a live view of the superblock, at block 1.
func (l *Layout) SuperBlock() *SuperBlock {
	return newSuperBlock(l.block(SuperblockNum))
}

// GroupDesc returns a live view of the (single) group descriptor, at block 2.
func (l *Layout) GroupDesc() *GroupDesc {
	return newGroupDesc(l.block(GroupDescNum))
}

// InodeBitmap returns a live, bounded view of the inode allocation bitmap.
// Bit i (0-based) represents inode number i+1.
func (l *Layout) InodeBitmap() BitView {
	gd := l.GroupDesc()
	sb := l.SuperBlock()
	return newBitView(l.block(gd.InodeBitmap()), sb.InodesCount())
}

// BlockBitmap returns a live, bounded view of the block allocation bitmap.
// Bit b (0-based) represents block number b+1.
func (l *Layout) BlockBitmap() BitView {
	gd := l.GroupDesc()
	sb := l.SuperBlock()
	return newBitView(l.block(gd.BlockBitmap()), sb.BlocksCount())
}

// Inode returns a live view of inode number n (1-based). Fails with
// ErrInvalid if n is out of [1, inodes_count].
func (l *Layout) Inode(n uint32) (*Inode, error) {
	sb := l.SuperBlock()
	if n < 1 || n > sb.InodesCount() {
		return nil, errors.ErrInvalid.WithMessage(
			fmt.Sprintf("invalid inode number %d: not in [1, %d]", n, sb.InodesCount()))
	}
	gd := l.GroupDesc()
	off := (n - 1) * InodeSize
	tableStart := gd.InodeTable() * BlockSize
	start := tableStart + off
	return newInode(l.data[start : start+InodeSize]), nil
}

// Block returns the raw 1024-byte contents of block number n (1-based).
// Fails with ErrInvalid if n is out of [1, blocks_count].
func (l *Layout) Block(n uint32) ([]byte, error) {
	sb := l.SuperBlock()
	if n < 1 || n > sb.BlocksCount() {
		return nil, errors.ErrInvalid.WithMessage(
			fmt.Sprintf("invalid block number %d: not in [1, %d]", n, sb.BlocksCount()))
	}
	return l.block(n), nil
}

// InodeTableBlocksNeeded returns how many blocks the inode table occupies
// for a given inode count.
func InodeTableBlocksNeeded(inodesCount uint32) uint32 {
	perBlock := uint32(BlockSize / InodeSize)
	return (inodesCount + perBlock - 1) / perBlock
}

// BitmapBlocksNeeded returns how many blocks a bitmap needs to cover count
// bits. This core always uses exactly one block for each bitmap (enforced by
// Format), but the helper documents why that's sufficient for the fixed
// 128 KiB image shape.
func BitmapBlocksNeeded(count uint32) uint32 {
	bits := uint32(BlockSize * 8)
	return (count + bits - 1) / bits
}

// Format stamps a brand new, single-group filesystem into data (normally
// image.Image.Bytes()): superblock, group descriptor, one-block bitmaps, an
// inode table sized for inodesCount inodes, and a root directory at inode 2
// containing only "." and "..". This is ambient tooling outside the six core
// commands, needed to produce the fixture images the commands operate on.
func Format(data []byte, inodesCount, blocksCount uint32) error {
	if BitmapBlocksNeeded(blocksCount) != 1 || BitmapBlocksNeeded(inodesCount) != 1 {
		return errors.ErrInvalid.WithMessage("inode/block counts must each fit in one bitmap block")
	}

	blockBitmapBlock := uint32(3)
	inodeBitmapBlock := uint32(4)
	inodeTableBlock := uint32(5)
	inodeTableBlocks := InodeTableBlocksNeeded(inodesCount)
	firstDataBlock := inodeTableBlock + inodeTableBlocks

	if firstDataBlock >= blocksCount {
		return errors.ErrInvalid.WithMessage("image too small for requested inode count")
	}

	l := New(data)

	sb := l.SuperBlock()
	sb.Init(inodesCount, blocksCount)

	gd := l.GroupDesc()
	gd.Init(blockBitmapBlock, inodeBitmapBlock, inodeTableBlock, blocksCount, inodesCount)

	blockBitmap := l.BlockBitmap()
	inodeBitmap := l.InodeBitmap()

	// Bits 0..firstDataBlock-1 mark blocks 1..firstDataBlock allocated: the
	// metadata blocks plus the first data block, which becomes the root's.
	for b := uint32(0); b < firstDataBlock; b++ {
		blockBitmap.Set(b)
	}
	// Reserved inodes 1..10 are permanently allocated.
	for i := uint32(0); i < 10; i++ {
		inodeBitmap.Set(i)
	}

	rootBlock := firstDataBlock
	blockBitmap.Set(rootBlock - 1)

	sb.SetFreeBlocksCount(blockBitmap.CountClear())
	sb.SetFreeInodesCount(inodeBitmap.CountClear())
	gd.SetFreeBlocksCount(blockBitmap.CountClear())
	gd.SetFreeInodesCount(inodeBitmap.CountClear())
	gd.IncUsedDirsCount()

	root, err := l.Inode(RootIno)
	if err != nil {
		return err
	}
	root.SetMode(ModeDir)
	root.SetLinksCount(2)
	root.SetSize(BlockSize)
	root.SetDirectBlock(0, rootBlock)

	block, err := l.Block(rootBlock)
	if err != nil {
		return err
	}
	selfLen := PhysSize(1)
	EncodeDirEntry(block, DirEntry{Offset: 0, Inode: RootIno, RecLen: selfLen, NameLen: 1, FileType: FileTypeDir, Name: "."})
	EncodeDirEntry(block, DirEntry{Offset: selfLen, Inode: RootIno, RecLen: BlockSize - selfLen, NameLen: 2, FileType: FileTypeDir, Name: ".."})

	return nil
}
