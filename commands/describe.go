package commands

import (
	"fmt"
	"io"
)

// Describe prints a human-readable summary of the superblock and group
// descriptor, in the spirit of the source's readimage utility. It is
// read-only and participates in no invariant - useful for inspecting test
// fixtures, not one of the six mandated commands.
func Describe(s *Session, out io.Writer) error {
	sb := s.Layout.SuperBlock()
	gd := s.Layout.GroupDesc()

	fmt.Fprintf(out, "inodes_count:      %d\n", sb.InodesCount())
	fmt.Fprintf(out, "blocks_count:      %d\n", sb.BlocksCount())
	fmt.Fprintf(out, "free_inodes_count: %d\n", sb.FreeInodesCount())
	fmt.Fprintf(out, "free_blocks_count: %d\n", sb.FreeBlocksCount())
	fmt.Fprintf(out, "first_ino:         %d\n", sb.FirstIno())
	fmt.Fprintf(out, "block_bitmap:      block %d\n", gd.BlockBitmap())
	fmt.Fprintf(out, "inode_bitmap:      block %d\n", gd.InodeBitmap())
	fmt.Fprintf(out, "inode_table:       block %d\n", gd.InodeTable())
	fmt.Fprintf(out, "used_dirs_count:   %d\n", gd.UsedDirsCount())
	return nil
}
