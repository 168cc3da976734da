// Package commands composes the Image, Layout, Allocator, DirStream, and
// PathResolver layers into the six on-disk operations this toolkit exposes,
// plus the read-only describe dump.
package commands

import (
	"github.com/go-ext2/ext2fs/allocator"
	"github.com/go-ext2/ext2fs/dirstream"
	"github.com/go-ext2/ext2fs/image"
	"github.com/go-ext2/ext2fs/layout"
	"github.com/go-ext2/ext2fs/pathresolver"
)

// Session holds one open image and the layers built over it. Every command
// in this package takes a *Session; nothing here keeps process-wide state.
type Session struct {
	Image    *image.Image
	Layout   *layout.Layout
	Alloc    *allocator.Allocator
	Dirs     *dirstream.Stream
	Resolver *pathresolver.Resolver
}

// Open acquires the image at path and builds the layer stack over it.
func Open(path string) (*Session, error) {
	img, err := image.Open(path)
	if err != nil {
		return nil, err
	}

	l := layout.New(img.Bytes())
	alloc := allocator.New(l)
	dirs := dirstream.New(l, alloc)
	resolver := pathresolver.New(l, dirs)

	return &Session{
		Image:    img,
		Layout:   l,
		Alloc:    alloc,
		Dirs:     dirs,
		Resolver: resolver,
	}, nil
}

// Close persists and releases the underlying image mapping. Callers should
// defer this immediately after a successful Open so every exit path -
// including a command returning an error - still flushes mutations made
// before the error.
func (s *Session) Close() error {
	return s.Image.Close()
}
