package allocator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ext2/ext2fs/allocator"
	"github.com/go-ext2/ext2fs/layout"
	fixtures "github.com/go-ext2/ext2fs/testing"
)

func TestAllocInode_ScansFromFirstIno(t *testing.T) {
	buf, _ := fixtures.NewFixtureImage(t, 32, 128)
	l := layout.New(buf)
	alloc := allocator.New(l)

	n, ino, err := alloc.AllocInode()
	require.NoError(t, err)
	assert.EqualValues(t, 11, n)
	assert.EqualValues(t, 0, ino.Mode())
	assert.EqualValues(t, 0, ino.LinksCount())

	sb := l.SuperBlock()
	gd := l.GroupDesc()
	assert.Equal(t, sb.FreeInodesCount(), uint32(32-11))
	assert.Equal(t, gd.FreeInodesCount(), sb.FreeInodesCount())
}

func TestAllocInode_ExhaustionReturnsNoSpace(t *testing.T) {
	buf, _ := fixtures.NewFixtureImage(t, 12, 128)
	l := layout.New(buf)
	alloc := allocator.New(l)

	// inodes 1..10 reserved, 11..12 available: exactly 2 allocations possible.
	_, _, err := alloc.AllocInode()
	require.NoError(t, err)
	_, _, err = alloc.AllocInode()
	require.NoError(t, err)

	_, _, err = alloc.AllocInode()
	assert.Error(t, err)
}

func TestAllocBlock_LowestFreeIndexFirst(t *testing.T) {
	buf, _ := fixtures.NewFixtureImage(t, 32, 128)
	l := layout.New(buf)
	alloc := allocator.New(l)

	before := l.BlockBitmap().CountClear()
	b, err := alloc.AllocBlock()
	require.NoError(t, err)
	// Blocks 1..8 are metadata and block 9 is the root directory's, so the
	// lowest free block is 10.
	assert.EqualValues(t, 10, b)

	bm := l.BlockBitmap()
	assert.True(t, bm.Test(b-1))
	assert.Equal(t, before-1, bm.CountClear())
}

func TestFreeInode_RestoresCountersAndBit(t *testing.T) {
	buf, _ := fixtures.NewFixtureImage(t, 32, 128)
	l := layout.New(buf)
	alloc := allocator.New(l)

	n, _, err := alloc.AllocInode()
	require.NoError(t, err)

	before := l.SuperBlock().FreeInodesCount()
	alloc.FreeInode(n)

	assert.False(t, l.InodeBitmap().Test(n-1))
	assert.Equal(t, before+1, l.SuperBlock().FreeInodesCount())
}

func TestFreeBlocksAvailable_MatchesSuperBlock(t *testing.T) {
	buf, _ := fixtures.NewFixtureImage(t, 32, 128)
	l := layout.New(buf)
	alloc := allocator.New(l)

	assert.Equal(t, l.SuperBlock().FreeBlocksCount(), alloc.FreeBlocksAvailable())
}
