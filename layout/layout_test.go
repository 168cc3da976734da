package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ext2/ext2fs/layout"
	fixtures "github.com/go-ext2/ext2fs/testing"
)

func TestFormat_StampsConsistentSuperBlockAndGroupDesc(t *testing.T) {
	buf, _ := fixtures.NewFixtureImage(t, 32, 128)
	l := layout.New(buf)

	sb := l.SuperBlock()
	gd := l.GroupDesc()

	assert.EqualValues(t, 32, sb.InodesCount())
	assert.EqualValues(t, 128, sb.BlocksCount())
	assert.EqualValues(t, 11, sb.FirstIno())
	assert.Equal(t, sb.FreeInodesCount(), gd.FreeInodesCount())
	assert.Equal(t, sb.FreeBlocksCount(), gd.FreeBlocksCount())
	assert.EqualValues(t, 1, gd.UsedDirsCount())
}

func TestFormat_RootDirectoryHasDotAndDotDot(t *testing.T) {
	buf, _ := fixtures.NewFixtureImage(t, 32, 128)
	l := layout.New(buf)

	root, err := l.Inode(layout.RootIno)
	require.NoError(t, err)
	assert.True(t, root.IsDir())
	assert.EqualValues(t, 2, root.LinksCount())
	assert.EqualValues(t, layout.BlockSize, root.Size())

	block, err := l.Block(root.DirectBlock(0))
	require.NoError(t, err)

	self := layout.DecodeDirEntry(block, 0)
	assert.Equal(t, ".", self.Name)
	assert.EqualValues(t, layout.RootIno, self.Inode)

	parent := layout.DecodeDirEntry(block, self.RecLen)
	assert.Equal(t, "..", parent.Name)
	assert.EqualValues(t, layout.RootIno, parent.Inode)

	assert.EqualValues(t, layout.BlockSize, self.RecLen+parent.RecLen)
}

func TestInode_RejectsOutOfRangeNumbers(t *testing.T) {
	buf, _ := fixtures.NewFixtureImage(t, 32, 128)
	l := layout.New(buf)

	_, err := l.Inode(0)
	assert.Error(t, err)

	_, err = l.Inode(33)
	assert.Error(t, err)
}

func TestBlock_RejectsOutOfRangeNumbers(t *testing.T) {
	buf, _ := fixtures.NewFixtureImage(t, 32, 128)
	l := layout.New(buf)

	_, err := l.Block(0)
	assert.Error(t, err)

	_, err = l.Block(129)
	assert.Error(t, err)
}

func TestBitView_TestSetClear(t *testing.T) {
	buf, _ := fixtures.NewFixtureImage(t, 32, 128)
	l := layout.New(buf)
	bm := l.InodeBitmap()

	assert.False(t, bm.Test(20))
	bm.Set(20)
	assert.True(t, bm.Test(20))
	bm.Clear(20)
	assert.False(t, bm.Test(20))
}

func TestPhysSize_RoundsUpTo4ByteAlignment(t *testing.T) {
	assert.EqualValues(t, 12, layout.PhysSize(1))
	assert.EqualValues(t, 12, layout.PhysSize(4))
	assert.EqualValues(t, 16, layout.PhysSize(5))
}
