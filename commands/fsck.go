package commands

import (
	"fmt"
	"io"

	"github.com/go-ext2/ext2fs/layout"
)

// Fsck sweeps the image for the enumerated set of repairable
// inconsistencies, fixing each in place and printing a "Fixed:" line for
// each field or entry it corrects plus a final summary line. A free-count
// fix adds the size of its correction to the repair count, so one "Fixed:"
// line can stand for several repairs. It returns the total repair count; fsck
// itself never fails the way the other five commands do.
func Fsck(s *Session, out io.Writer) (int, error) {
	sb := s.Layout.SuperBlock()
	gd := s.Layout.GroupDesc()
	inodeBitmap := s.Layout.InodeBitmap()
	blockBitmap := s.Layout.BlockBitmap()

	repairs := 0

	freeInodes := inodeBitmap.CountClear()
	if sb.FreeInodesCount() != freeInodes {
		repairs += fsckFixCounter(out, "superblock free_inodes_count", sb.FreeInodesCount(), freeInodes, sb.SetFreeInodesCount)
	}
	if gd.FreeInodesCount() != freeInodes {
		repairs += fsckFixCounter(out, "group descriptor free_inodes_count", gd.FreeInodesCount(), freeInodes, gd.SetFreeInodesCount)
	}

	freeBlocks := blockBitmap.CountClear()
	if sb.FreeBlocksCount() != freeBlocks {
		repairs += fsckFixCounter(out, "superblock free_blocks_count", sb.FreeBlocksCount(), freeBlocks, sb.SetFreeBlocksCount)
	}
	if gd.FreeBlocksCount() != freeBlocks {
		repairs += fsckFixCounter(out, "group descriptor free_blocks_count", gd.FreeBlocksCount(), freeBlocks, gd.SetFreeBlocksCount)
	}

	root, err := s.Layout.Inode(layout.RootIno)
	if err != nil {
		return repairs, err
	}
	if err := fsckWalkDir(s, root, out, &repairs); err != nil {
		return repairs, err
	}

	if repairs > 0 {
		fmt.Fprintf(out, "%d file system inconsistencies repaired!\n", repairs)
	} else {
		fmt.Fprintf(out, "No file system inconsistencies detected!\n")
	}
	return repairs, nil
}

func fsckFixCounter(out io.Writer, label string, have, want uint32, set func(uint32)) int {
	delta := fsckAbsDiff(have, want)
	fmt.Fprintf(out, "Fixed: %s was %d, should be %d\n", label, have, want)
	set(want)
	return int(delta)
}

func fsckAbsDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// fsckWalkDir walks dirIno's live entries (skipping "." and ".."), repairing
// each target inode's bookkeeping, and recurses into subdirectories. Only
// direct block pointers are consulted, matching the source's fsck: indirect
// pointers are neither bitmap-checked nor followed for sub-directory
// traversal.
func fsckWalkDir(s *Session, dirIno *layout.Inode, out io.Writer, repairs *int) error {
	it := s.Dirs.Iter(dirIno)
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		if e.Name == "." || e.Name == ".." {
			continue
		}

		target, err := s.Layout.Inode(e.Inode)
		if err != nil {
			continue
		}

		if wantType := layout.FileTypeForMode(target.Mode()); e.FileType != wantType {
			block, err := s.Layout.Block(e.Block)
			if err != nil {
				return err
			}
			corrected := e.DirEntry
			corrected.FileType = wantType
			layout.EncodeDirEntry(block, corrected)
			fmt.Fprintf(out, "Fixed: entry %q file_type corrected\n", e.Name)
			*repairs++
		}

		inodeBitmap := s.Layout.InodeBitmap()
		if !inodeBitmap.Test(e.Inode - 1) {
			inodeBitmap.Set(e.Inode - 1)
			sb := s.Layout.SuperBlock()
			gd := s.Layout.GroupDesc()
			sb.SetFreeInodesCount(sb.FreeInodesCount() - 1)
			gd.SetFreeInodesCount(gd.FreeInodesCount() - 1)
			fmt.Fprintf(out, "Fixed: inode %d marked allocated\n", e.Inode)
			*repairs++
		}

		if target.Dtime() != 0 {
			target.SetDtime(0)
			fmt.Fprintf(out, "Fixed: inode %d dtime cleared\n", e.Inode)
			*repairs++
		}

		blockBitmap := s.Layout.BlockBitmap()
		fixedBlocks := 0
		for i := 0; i < layout.NumDirectBlocks; i++ {
			b := target.DirectBlock(i)
			if b == 0 || blockBitmap.Test(b-1) {
				continue
			}
			blockBitmap.Set(b - 1)
			sb := s.Layout.SuperBlock()
			gd := s.Layout.GroupDesc()
			sb.SetFreeBlocksCount(sb.FreeBlocksCount() - 1)
			gd.SetFreeBlocksCount(gd.FreeBlocksCount() - 1)
			fixedBlocks++
		}
		if fixedBlocks > 0 {
			fmt.Fprintf(out, "Fixed: inode %d had %d block(s) marked allocated\n", e.Inode, fixedBlocks)
			*repairs++
		}

		if target.IsDir() {
			if err := fsckWalkDir(s, target, out, repairs); err != nil {
				return err
			}
		}
	}
	return nil
}
