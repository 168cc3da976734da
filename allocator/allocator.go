// Package allocator hands out inode and block numbers while keeping the
// superblock, group descriptor, and bitmap counters mutually consistent.
package allocator

import (
	"time"

	"github.com/go-ext2/ext2fs/errors"
	"github.com/go-ext2/ext2fs/layout"
)

// Allocator allocates and releases inodes and blocks against a single
// Layout, in lowest-free-index-first order so behavior is reproducible.
type Allocator struct {
	layout *layout.Layout
}

// New wraps a Layout with allocation operations.
func New(l *layout.Layout) *Allocator {
	return &Allocator{layout: l}
}

// AllocInode scans the inode bitmap from index first_ino-1 upward, claims
// the first clear bit, decrements both free-inode counters, and returns the
// zero-initialized inode. Reserved inodes 1..10 are never considered because
// the scan starts at first_ino.
func (a *Allocator) AllocInode() (uint32, *layout.Inode, error) {
	sb := a.layout.SuperBlock()
	bm := a.layout.InodeBitmap()

	start := sb.FirstIno() - 1
	for i := start; i < bm.Count(); i++ {
		if bm.Test(i) {
			continue
		}
		bm.Set(i)

		gd := a.layout.GroupDesc()
		sb.SetFreeInodesCount(sb.FreeInodesCount() - 1)
		gd.SetFreeInodesCount(gd.FreeInodesCount() - 1)

		inum := i + 1
		ino, err := a.layout.Inode(inum)
		if err != nil {
			return 0, nil, err
		}
		ino.Reset(uint32(time.Now().Unix()))
		return inum, ino, nil
	}
	return 0, nil, errors.ErrNoSpace.WithMessage("no free inode")
}

// AllocBlock scans the block bitmap from index 0 upward, claims the first
// clear bit, decrements both free-block counters, and returns the block
// number. The block's contents are not zeroed.
func (a *Allocator) AllocBlock() (uint32, error) {
	sb := a.layout.SuperBlock()
	bm := a.layout.BlockBitmap()

	for i := uint32(0); i < bm.Count(); i++ {
		if bm.Test(i) {
			continue
		}
		bm.Set(i)

		gd := a.layout.GroupDesc()
		sb.SetFreeBlocksCount(sb.FreeBlocksCount() - 1)
		gd.SetFreeBlocksCount(gd.FreeBlocksCount() - 1)

		return i + 1, nil
	}
	return 0, errors.ErrNoSpace.WithMessage("no free block")
}

// FreeInode clears inode n's bitmap bit and increments both free-inode
// counters.
func (a *Allocator) FreeInode(n uint32) {
	sb := a.layout.SuperBlock()
	gd := a.layout.GroupDesc()
	bm := a.layout.InodeBitmap()

	bm.Clear(n - 1)
	sb.SetFreeInodesCount(sb.FreeInodesCount() + 1)
	gd.SetFreeInodesCount(gd.FreeInodesCount() + 1)
}

// FreeBlock clears block n's bitmap bit and increments both free-block
// counters.
func (a *Allocator) FreeBlock(n uint32) {
	sb := a.layout.SuperBlock()
	gd := a.layout.GroupDesc()
	bm := a.layout.BlockBitmap()

	bm.Clear(n - 1)
	sb.SetFreeBlocksCount(sb.FreeBlocksCount() + 1)
	gd.SetFreeBlocksCount(gd.FreeBlocksCount() + 1)
}

// FreeBlocksAvailable reports the current free-block count, used by commands
// that need to check space before committing a multi-block allocation (e.g.
// cp-in).
func (a *Allocator) FreeBlocksAvailable() uint32 {
	return a.layout.SuperBlock().FreeBlocksCount()
}
