package pathresolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ext2/ext2fs/allocator"
	"github.com/go-ext2/ext2fs/dirstream"
	"github.com/go-ext2/ext2fs/errors"
	"github.com/go-ext2/ext2fs/layout"
	"github.com/go-ext2/ext2fs/pathresolver"
	fixtures "github.com/go-ext2/ext2fs/testing"
)

func newFixture(t *testing.T) (*layout.Layout, *allocator.Allocator, *dirstream.Stream, *pathresolver.Resolver) {
	t.Helper()
	buf, _ := fixtures.NewFixtureImage(t, 32, 128)
	l := layout.New(buf)
	alloc := allocator.New(l)
	ds := dirstream.New(l, alloc)
	return l, alloc, ds, pathresolver.New(l, ds)
}

func mkdir(t *testing.T, l *layout.Layout, alloc *allocator.Allocator, ds *dirstream.Stream, parentNum uint32, name string) uint32 {
	t.Helper()
	parent, err := l.Inode(parentNum)
	require.NoError(t, err)

	childNum, child, err := alloc.AllocInode()
	require.NoError(t, err)
	blockNum, err := alloc.AllocBlock()
	require.NoError(t, err)

	child.SetMode(layout.ModeDir)
	child.SetLinksCount(2)
	child.SetSize(layout.BlockSize)
	child.SetDirectBlock(0, blockNum)

	block, err := l.Block(blockNum)
	require.NoError(t, err)
	selfLen := layout.PhysSize(1)
	layout.EncodeDirEntry(block, layout.DirEntry{Offset: 0, Inode: childNum, RecLen: selfLen, NameLen: 1, FileType: layout.FileTypeDir, Name: "."})
	layout.EncodeDirEntry(block, layout.DirEntry{Offset: selfLen, Inode: parentNum, RecLen: layout.BlockSize - selfLen, NameLen: 2, FileType: layout.FileTypeDir, Name: ".."})

	require.NoError(t, ds.Insert(parent, childNum, name, layout.FileTypeDir))
	return childNum
}

func TestResolveDir_Root(t *testing.T) {
	_, _, _, r := newFixture(t)

	n, err := r.ResolveDir("/")
	require.NoError(t, err)
	assert.EqualValues(t, layout.RootIno, n)
}

func TestResolveDir_StrictComponentByComponent(t *testing.T) {
	l, alloc, ds, r := newFixture(t)
	a := mkdir(t, l, alloc, ds, layout.RootIno, "a")
	b := mkdir(t, l, alloc, ds, a, "b")

	n, err := r.ResolveDir("/a")
	require.NoError(t, err)
	assert.Equal(t, a, n)

	n, err = r.ResolveDir("/a/b")
	require.NoError(t, err)
	assert.Equal(t, b, n)

	n, err = r.ResolveDir("/a/b/")
	require.NoError(t, err)
	assert.Equal(t, b, n, "trailing slash is trimmed")
}

func TestResolveDir_NameMatchingElsewhereInTreeDoesNotResolve(t *testing.T) {
	l, alloc, ds, r := newFixture(t)
	mkdir(t, l, alloc, ds, layout.RootIno, "a")
	// "b" only exists under some other directory, not under "a" - a buggy
	// whole-tree search could resolve "/a/b" anyway. Strict descent must not.
	other := mkdir(t, l, alloc, ds, layout.RootIno, "other")
	mkdir(t, l, alloc, ds, other, "b")

	_, err := r.ResolveDir("/a/b")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestResolve_SplitsParentAndLeaf(t *testing.T) {
	l, alloc, ds, r := newFixture(t)
	a := mkdir(t, l, alloc, ds, layout.RootIno, "a")

	parentNum, leaf, err := r.Resolve("/a/newfile")
	require.NoError(t, err)
	assert.Equal(t, a, parentNum)
	assert.Equal(t, "newfile", leaf)
}

func TestResolve_NonAbsolutePathIsInvalid(t *testing.T) {
	_, _, _, r := newFixture(t)

	_, _, err := r.Resolve("relative/path")
	assert.ErrorIs(t, err, errors.ErrInvalid)
}

func TestResolveDir_ThroughNonDirectoryComponentFails(t *testing.T) {
	l, alloc, ds, r := newFixture(t)
	root, err := l.Inode(layout.RootIno)
	require.NoError(t, err)

	fileNum, file, err := alloc.AllocInode()
	require.NoError(t, err)
	file.SetMode(layout.ModeReg)
	require.NoError(t, ds.Insert(root, fileNum, "f", layout.FileTypeReg))

	_, err = r.ResolveDir("/f/x")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
