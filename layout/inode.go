package layout

import (
	"bytes"
	"encoding/binary"

	"github.com/noxer/bytewriter"
)

// RawInode is the fixed 128-byte on-disk inode record.
type RawInode struct {
	Mode        uint16
	Uid         uint16
	Size        uint32
	Atime       uint32
	Ctime       uint32
	Mtime       uint32
	Dtime       uint32
	Gid         uint16
	LinksCount  uint16
	Blocks      uint32
	Flags       uint32
	Reserved1   uint32
	Block       [15]uint32
	Generation  uint32
	FileACL     uint32
	DirACL      uint32
	FragAddr    uint32
	Reserved2   [12]byte
}

// Inode is a typed, live view over one inode's 128-byte region.
type Inode struct {
	region []byte
}

func newInode(region []byte) *Inode {
	return &Inode{region: region}
}

func (ino *Inode) raw() RawInode {
	var r RawInode
	_ = binary.Read(bytes.NewReader(ino.region), binary.LittleEndian, &r)
	return r
}

func (ino *Inode) put(r RawInode) {
	_ = binary.Write(bytewriter.New(ino.region), binary.LittleEndian, &r)
}

func (ino *Inode) Mode() uint16 { return ino.raw().Mode }
func (ino *Inode) SetMode(m uint16) {
	r := ino.raw()
	r.Mode = m
	ino.put(r)
}

func (ino *Inode) FileType() uint16 { return ModeFileType(ino.Mode()) }
func (ino *Inode) IsDir() bool      { return ino.FileType() == ModeDir }
func (ino *Inode) IsReg() bool      { return ino.FileType() == ModeReg }
func (ino *Inode) IsLnk() bool      { return ino.FileType() == ModeLnk }

func (ino *Inode) Size() uint32 { return ino.raw().Size }
func (ino *Inode) SetSize(s uint32) {
	r := ino.raw()
	r.Size = s
	ino.put(r)
}
func (ino *Inode) AddSize(delta uint32) {
	r := ino.raw()
	r.Size += delta
	ino.put(r)
}

func (ino *Inode) LinksCount() uint16 { return ino.raw().LinksCount }
func (ino *Inode) SetLinksCount(n uint16) {
	r := ino.raw()
	r.LinksCount = n
	ino.put(r)
}
func (ino *Inode) IncLinksCount() {
	r := ino.raw()
	r.LinksCount++
	ino.put(r)
}
func (ino *Inode) DecLinksCount() {
	r := ino.raw()
	if r.LinksCount > 0 {
		r.LinksCount--
	}
	ino.put(r)
}

func (ino *Inode) Blocks() uint32 { return ino.raw().Blocks }
func (ino *Inode) SetBlocks(n uint32) {
	r := ino.raw()
	r.Blocks = n
	ino.put(r)
}

func (ino *Inode) Dtime() uint32 { return ino.raw().Dtime }
func (ino *Inode) SetDtime(t uint32) {
	r := ino.raw()
	r.Dtime = t
	ino.put(r)
}

func (ino *Inode) Ctime() uint32 { return ino.raw().Ctime }
func (ino *Inode) SetCtime(t uint32) {
	r := ino.raw()
	r.Ctime = t
	ino.put(r)
}

func (ino *Inode) Mtime() uint32 { return ino.raw().Mtime }
func (ino *Inode) SetMtime(t uint32) {
	r := ino.raw()
	r.Mtime = t
	ino.put(r)
}

func (ino *Inode) Atime() uint32 { return ino.raw().Atime }
func (ino *Inode) SetAtime(t uint32) {
	r := ino.raw()
	r.Atime = t
	ino.put(r)
}

// DirectBlock returns the i'th direct block pointer (0 <= i < NumDirectBlocks).
// A value of 0 means unused.
func (ino *Inode) DirectBlock(i int) uint32 {
	return ino.raw().Block[i]
}

func (ino *Inode) SetDirectBlock(i int, block uint32) {
	r := ino.raw()
	r.Block[i] = block
	ino.put(r)
}

// DirectBlocks returns all 12 direct block pointers at once.
func (ino *Inode) DirectBlocks() [NumDirectBlocks]uint32 {
	r := ino.raw()
	var out [NumDirectBlocks]uint32
	copy(out[:], r.Block[:NumDirectBlocks])
	return out
}

// Reset zero-initializes the inode record except atime/ctime, which are set
// to now; this is the shape alloc_inode's zero-initialization takes.
func (ino *Inode) Reset(now uint32) {
	ino.put(RawInode{Atime: now, Ctime: now})
}
