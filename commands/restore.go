package commands

import (
	"time"

	"github.com/go-ext2/ext2fs/dirstream"
	"github.com/go-ext2/ext2fs/errors"
)

// Restore undoes a prior Rm of the leaf named by path, returning its
// restored inode number. The leaf must not currently be live in its
// parent - a restore target that is already live, or whose inode slot was
// reused since removal, fails rather than aliasing a second file.
func Restore(s *Session, path string) (uint32, error) {
	parentNum, leaf, err := s.Resolver.Resolve(path)
	if err != nil {
		return 0, err
	}
	parent, err := s.Layout.Inode(parentNum)
	if err != nil {
		return 0, err
	}
	if !parent.IsDir() {
		return 0, errors.ErrNotFound
	}

	if _, err := s.Dirs.Lookup(parent, leaf); err == nil {
		return 0, errors.ErrExists
	}

	now := uint32(time.Now().Unix())
	inodeNum, err := s.Dirs.Restore(parent, leaf, now)
	if err != nil {
		switch err {
		case dirstream.ErrAlreadyLive:
			return 0, errors.ErrExists
		case dirstream.ErrOverwritten:
			return 0, errors.ErrNotFound
		default:
			return 0, err
		}
	}
	return inodeNum, nil
}
