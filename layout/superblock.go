package layout

import (
	"bytes"
	"encoding/binary"

	"github.com/noxer/bytewriter"
)

// RawSuperBlock is the on-disk superblock layout. Only a subset of the
// fields a real ext2 superblock carries are meaningful to this core (see
// spec); the rest round-trip untouched so an image stays byte-compatible
// with tools that check them.
type RawSuperBlock struct {
	InodesCount     uint32
	BlocksCount     uint32
	ReservedBlocks  uint32
	FreeBlocksCount uint32
	FreeInodesCount uint32
	FirstDataBlock  uint32
	LogBlockSize    uint32
	LogFragSize     uint32
	BlocksPerGroup  uint32
	FragsPerGroup   uint32
	InodesPerGroup  uint32
	MountTime       uint32
	WriteTime       uint32
	MountCount      uint16
	MaxMountCount   uint16
	Magic           uint16
	State           uint16
	Errors          uint16
	MinorRevLevel   uint16
	LastCheck       uint32
	CheckInterval   uint32
	CreatorOS       uint32
	RevLevel        uint32
	DefResUID       uint16
	DefResGID       uint16
	FirstIno        uint32
	InodeSize       uint16
	BlockGroupNr    uint16
}

// SuperBlock is a typed, live view over the superblock's 1024-byte region of
// the image. Every accessor reads or writes straight through to that region,
// so mutations are immediately visible to anything else holding the image.
type SuperBlock struct {
	region []byte
}

func newSuperBlock(region []byte) *SuperBlock {
	return &SuperBlock{region: region}
}

func (sb *SuperBlock) raw() RawSuperBlock {
	var r RawSuperBlock
	_ = binary.Read(bytes.NewReader(sb.region), binary.LittleEndian, &r)
	return r
}

func (sb *SuperBlock) put(r RawSuperBlock) {
	_ = binary.Write(bytewriter.New(sb.region), binary.LittleEndian, &r)
}

func (sb *SuperBlock) InodesCount() uint32 { return sb.raw().InodesCount }
func (sb *SuperBlock) BlocksCount() uint32 { return sb.raw().BlocksCount }
func (sb *SuperBlock) FirstIno() uint32    { return sb.raw().FirstIno }

func (sb *SuperBlock) FreeInodesCount() uint32 { return sb.raw().FreeInodesCount }
func (sb *SuperBlock) SetFreeInodesCount(v uint32) {
	r := sb.raw()
	r.FreeInodesCount = v
	sb.put(r)
}

func (sb *SuperBlock) FreeBlocksCount() uint32 { return sb.raw().FreeBlocksCount }
func (sb *SuperBlock) SetFreeBlocksCount(v uint32) {
	r := sb.raw()
	r.FreeBlocksCount = v
	sb.put(r)
}

// Init stamps a freshly formatted superblock into the region, for the
// inode/block counts given. first_ino is fixed at 11 (inodes 1..10 reserved).
func (sb *SuperBlock) Init(inodesCount, blocksCount uint32) {
	sb.put(RawSuperBlock{
		InodesCount:     inodesCount,
		BlocksCount:     blocksCount,
		FreeBlocksCount: blocksCount,
		FreeInodesCount: inodesCount,
		FirstDataBlock:  1,
		LogBlockSize:    0, // 1024 << 0
		BlocksPerGroup:  blocksCount,
		InodesPerGroup:  inodesCount,
		Magic:           SuperMagic,
		RevLevel:        1,
		FirstIno:        11,
		InodeSize:       InodeSize,
	})
}
