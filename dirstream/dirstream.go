// Package dirstream reads and mutates the packed directory-entry stream
// held in a single directory inode's direct data blocks, enforcing the
// block-terminal rec_len invariant on every insert, remove, and restore.
package dirstream

import (
	"github.com/go-ext2/ext2fs/allocator"
	"github.com/go-ext2/ext2fs/errors"
	"github.com/go-ext2/ext2fs/layout"
)

// ErrAlreadyLive is returned by Restore when the named orphan's inode is
// already marked live in the inode bitmap - restoring it would alias a
// second, unrelated file.
var ErrAlreadyLive = errors.DiskoError("restore target inode is already live")

// ErrOverwritten is returned by Restore when the named orphan's inode slot
// was reused (dtime == 0) by something else since it was removed.
var ErrOverwritten = errors.DiskoError("restore target inode slot was reused")

// Entry is one live directory entry, with the block and offset it occupies
// so callers (such as fsck) can rewrite it in place without re-scanning.
type Entry struct {
	Block uint32
	layout.DirEntry
}

// Stream operates the directory-entry stream of one directory inode.
type Stream struct {
	layout *layout.Layout
	alloc  *allocator.Allocator
}

// New builds a Stream over l, using alloc for any block allocation that
// insert operations need.
func New(l *layout.Layout, alloc *allocator.Allocator) *Stream {
	return &Stream{layout: l, alloc: alloc}
}

// Iterator walks a directory's logical entry stream: the concatenation, in
// block-index order, of each direct block's entry sequence. It is finite and
// restartable (call Iter again for a fresh pass).
type Iterator struct {
	s        *Stream
	ino      *layout.Inode
	blockIdx int
	block    []byte
	blockNo  uint32
	offset   uint16
	sum      uint16
	done     bool
}

// Iter returns a fresh iterator over dirIno's entries.
func (s *Stream) Iter(dirIno *layout.Inode) *Iterator {
	it := &Iterator{s: s, ino: dirIno, blockIdx: -1}
	it.advanceBlock()
	return it
}

func (it *Iterator) advanceBlock() bool {
	it.blockIdx++
	if it.blockIdx >= layout.NumDirectBlocks {
		it.done = true
		return false
	}
	b := it.ino.DirectBlock(it.blockIdx)
	if b == 0 {
		it.done = true
		return false
	}
	block, err := it.s.layout.Block(b)
	if err != nil {
		it.done = true
		return false
	}
	it.blockNo = b
	it.block = block
	it.offset = 0
	it.sum = 0
	return true
}

// Next returns the next live entry, or ok=false once the stream is
// exhausted.
func (it *Iterator) Next() (Entry, bool) {
	for !it.done {
		if it.sum >= layout.BlockSize {
			it.advanceBlock()
			continue
		}
		e := layout.DecodeDirEntry(it.block, it.offset)
		entry := Entry{Block: it.blockNo, DirEntry: e}
		it.sum += e.RecLen
		it.offset += e.RecLen
		return entry, true
	}
	return Entry{}, false
}

// Lookup scans dirIno's entries for one named name, returning its inode
// number, or ErrNotFound.
func (s *Stream) Lookup(dirIno *layout.Inode, name string) (uint32, error) {
	it := s.Iter(dirIno)
	for {
		e, ok := it.Next()
		if !ok {
			return 0, errors.ErrNotFound
		}
		if e.Name == name {
			return e.Inode, nil
		}
	}
}

// lastEntryOffset returns the offset of the terminal entry in block: the one
// whose rec_len brings the running total to exactly BlockSize.
func lastEntryOffset(block []byte) uint16 {
	var offset, sum uint16
	for {
		recLen := layout.ReadRecLen(block, offset)
		if sum+recLen >= layout.BlockSize {
			return offset
		}
		sum += recLen
		offset += recLen
	}
}

// Insert places a new entry naming childIno in dirIno, splitting the
// terminal entry's slack if it has room, or allocating a new direct block
// otherwise.
func (s *Stream) Insert(dirIno *layout.Inode, childIno uint32, name string, fileType uint8) error {
	need := layout.PhysSize(len(name))

	highest := -1
	for i := layout.NumDirectBlocks - 1; i >= 0; i-- {
		if dirIno.DirectBlock(i) != 0 {
			highest = i
			break
		}
	}

	if highest >= 0 {
		blockNo := dirIno.DirectBlock(highest)
		block, err := s.layout.Block(blockNo)
		if err != nil {
			return err
		}
		termOff := lastEntryOffset(block)
		term := layout.DecodeDirEntry(block, termOff)
		phys := layout.PhysSize(len(term.Name))

		if term.RecLen-phys >= need {
			newOff := termOff + phys
			layout.WriteRecLen(block, termOff, phys)
			layout.EncodeDirEntry(block, layout.DirEntry{
				Offset:   newOff,
				Inode:    childIno,
				RecLen:   term.RecLen - phys,
				NameLen:  uint8(len(name)),
				FileType: fileType,
				Name:     name,
			})
			return nil
		}
	}

	for i := 0; i < layout.NumDirectBlocks; i++ {
		if dirIno.DirectBlock(i) != 0 {
			continue
		}
		blockNo, err := s.alloc.AllocBlock()
		if err != nil {
			return err
		}
		dirIno.SetDirectBlock(i, blockNo)
		block, err := s.layout.Block(blockNo)
		if err != nil {
			return err
		}
		layout.EncodeDirEntry(block, layout.DirEntry{
			Offset:   0,
			Inode:    childIno,
			RecLen:   layout.BlockSize,
			NameLen:  uint8(len(name)),
			FileType: fileType,
			Name:     name,
		})
		dirIno.AddSize(layout.BlockSize)
		return nil
	}

	return errors.ErrNoSpace.WithMessage("directory has no free direct block slot")
}

// Remove splices the entry named name out of dirIno's stream without
// shifting any bytes: its predecessor's rec_len absorbs it, leaving its
// bytes intact for a later Restore. If it was the first entry in its block,
// the whole block is released - the directory's size is not decreased.
func (s *Stream) Remove(dirIno *layout.Inode, name string) error {
	for i := 0; i < layout.NumDirectBlocks; i++ {
		blockNo := dirIno.DirectBlock(i)
		if blockNo == 0 {
			continue
		}
		block, err := s.layout.Block(blockNo)
		if err != nil {
			return err
		}

		var prevOffset uint16
		havePrev := false
		var offset, sum uint16
		for sum < layout.BlockSize {
			e := layout.DecodeDirEntry(block, offset)
			if e.Name == name {
				if havePrev {
					prevRecLen := layout.ReadRecLen(block, prevOffset)
					layout.WriteRecLen(block, prevOffset, prevRecLen+e.RecLen)
				} else {
					dirIno.SetDirectBlock(i, 0)
					s.alloc.FreeBlock(blockNo)
				}
				return nil
			}
			prevOffset = offset
			havePrev = true
			sum += e.RecLen
			offset += e.RecLen
		}
	}
	return errors.ErrNotFound
}

// Restore walks every allocated direct block's slack regions looking for an
// orphaned entry named name, and if eligible, splices it back into the live
// chain and reverses the bookkeeping Remove performed.
func (s *Stream) Restore(dirIno *layout.Inode, name string, now uint32) (uint32, error) {
	for i := 0; i < layout.NumDirectBlocks; i++ {
		blockNo := dirIno.DirectBlock(i)
		if blockNo == 0 {
			continue
		}
		block, err := s.layout.Block(blockNo)
		if err != nil {
			return 0, err
		}

		var headOffset, headSum uint16
		for headSum < layout.BlockSize {
			head := layout.DecodeDirEntry(block, headOffset)
			headLenTotal := head.RecLen
			physHead := layout.PhysSize(int(head.NameLen))

			for gap := physHead; gap < headLenTotal; {
				orphanOffset := headOffset + gap
				orphan := layout.DecodeDirEntry(block, orphanOffset)
				if orphan.Name == name {
					return s.restoreOrphan(block, headOffset, orphanOffset, gap, headLenTotal, orphan, now)
				}
				gap += layout.PhysSize(int(orphan.NameLen))
			}

			if headSum+headLenTotal >= layout.BlockSize {
				break
			}
			headOffset += headLenTotal
			headSum += headLenTotal
		}
	}
	return 0, errors.ErrNotFound
}

func (s *Stream) restoreOrphan(
	block []byte, headOffset, orphanOffset, gap, headLenTotal uint16, orphan layout.DirEntry, now uint32,
) (uint32, error) {
	inodeBitmap := s.layout.InodeBitmap()
	if inodeBitmap.Test(orphan.Inode - 1) {
		return 0, ErrAlreadyLive
	}

	oi, err := s.layout.Inode(orphan.Inode)
	if err != nil {
		return 0, err
	}
	if oi.Dtime() == 0 {
		return 0, ErrOverwritten
	}

	layout.WriteRecLen(block, orphanOffset, headLenTotal-gap)
	layout.WriteRecLen(block, headOffset, gap)

	sb := s.layout.SuperBlock()
	gd := s.layout.GroupDesc()

	inodeBitmap.Set(orphan.Inode - 1)
	sb.SetFreeInodesCount(sb.FreeInodesCount() - 1)
	gd.SetFreeInodesCount(gd.FreeInodesCount() - 1)

	oi.IncLinksCount()
	oi.SetDtime(0)
	oi.SetMtime(now)

	blockBitmap := s.layout.BlockBitmap()
	for i := 0; i < layout.NumDirectBlocks; i++ {
		b := oi.DirectBlock(i)
		if b == 0 || blockBitmap.Test(b-1) {
			continue
		}
		blockBitmap.Set(b - 1)
		sb.SetFreeBlocksCount(sb.FreeBlocksCount() - 1)
		gd.SetFreeBlocksCount(gd.FreeBlocksCount() - 1)
	}

	return orphan.Inode, nil
}
