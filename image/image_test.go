package image_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ext2/ext2fs/image"
)

func TestCreate_MakesCorrectlySizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.img")
	require.NoError(t, image.Create(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, image.Size, info.Size())
}

func TestOpen_RejectsWrongSizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.img")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o644))

	_, err := image.Open(path)
	assert.Error(t, err)
}

func TestOpen_MutationsPersistAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rw.img")
	require.NoError(t, image.Create(path))

	img, err := image.Open(path)
	require.NoError(t, err)

	block := img.Block(5)
	copy(block, []byte("hello"))
	require.NoError(t, img.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), raw[5*image.BlockSize:5*image.BlockSize+5])
}

func TestClose_IsSafeToCallOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "once.img")
	require.NoError(t, image.Create(path))

	img, err := image.Open(path)
	require.NoError(t, err)
	require.NoError(t, img.Close())
}
