package layout

import (
	"bytes"
	"encoding/binary"

	"github.com/noxer/bytewriter"
)

// RawGroupDesc is the on-disk group descriptor layout. This core supports
// exactly one block group, so there is exactly one of these, at block 2.
type RawGroupDesc struct {
	BlockBitmap     uint32
	InodeBitmap     uint32
	InodeTable      uint32
	FreeBlocksCount uint16
	FreeInodesCount uint16
	UsedDirsCount   uint16
	Padding         uint16
	Reserved        [12]byte
}

// GroupDesc is a typed, live view over the group descriptor's region.
type GroupDesc struct {
	region []byte
}

func newGroupDesc(region []byte) *GroupDesc {
	return &GroupDesc{region: region}
}

func (gd *GroupDesc) raw() RawGroupDesc {
	var r RawGroupDesc
	_ = binary.Read(bytes.NewReader(gd.region), binary.LittleEndian, &r)
	return r
}

func (gd *GroupDesc) put(r RawGroupDesc) {
	_ = binary.Write(bytewriter.New(gd.region), binary.LittleEndian, &r)
}

func (gd *GroupDesc) BlockBitmap() uint32 { return gd.raw().BlockBitmap }
func (gd *GroupDesc) InodeBitmap() uint32 { return gd.raw().InodeBitmap }
func (gd *GroupDesc) InodeTable() uint32  { return gd.raw().InodeTable }

func (gd *GroupDesc) FreeBlocksCount() uint32 { return uint32(gd.raw().FreeBlocksCount) }
func (gd *GroupDesc) SetFreeBlocksCount(v uint32) {
	r := gd.raw()
	r.FreeBlocksCount = uint16(v)
	gd.put(r)
}

func (gd *GroupDesc) FreeInodesCount() uint32 { return uint32(gd.raw().FreeInodesCount) }
func (gd *GroupDesc) SetFreeInodesCount(v uint32) {
	r := gd.raw()
	r.FreeInodesCount = uint16(v)
	gd.put(r)
}

func (gd *GroupDesc) UsedDirsCount() uint32 { return uint32(gd.raw().UsedDirsCount) }
func (gd *GroupDesc) IncUsedDirsCount() {
	r := gd.raw()
	r.UsedDirsCount++
	gd.put(r)
}

// Init stamps the group descriptor for a freshly formatted image. Layout of
// the fixed metadata blocks: block 1 superblock, block 2 group descriptor,
// block 3 block bitmap, block 4 inode bitmap, block 5.. inode table.
func (gd *GroupDesc) Init(blockBitmapBlock, inodeBitmapBlock, inodeTableBlock, blocksCount, inodesCount uint32) {
	gd.put(RawGroupDesc{
		BlockBitmap:     blockBitmapBlock,
		InodeBitmap:     inodeBitmapBlock,
		InodeTable:      inodeTableBlock,
		FreeBlocksCount: uint16(blocksCount),
		FreeInodesCount: uint16(inodesCount),
		UsedDirsCount:   0,
	})
}
