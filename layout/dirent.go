package layout

import "encoding/binary"

// DirEntry is a decoded view of one packed directory entry: inode (4 bytes),
// rec_len (2 bytes), name_len (1 byte), file_type (1 byte), name (name_len
// bytes, unpadded). Offset is this entry's byte offset within its block.
type DirEntry struct {
	Offset   uint16
	Inode    uint32
	RecLen   uint16
	NameLen  uint8
	FileType uint8
	Name     string
}

// PhysSize returns the physical size of an entry with the given name length:
// ceil((8 + name_len) / 4) * 4.
func PhysSize(nameLen int) uint16 {
	n := DirEntryHeaderSize + nameLen
	return uint16(((n + 3) / 4) * 4)
}

// DecodeDirEntry reads one directory entry starting at offset within block.
func DecodeDirEntry(block []byte, offset uint16) DirEntry {
	b := block[offset:]
	nameLen := b[6]
	return DirEntry{
		Offset:   offset,
		Inode:    binary.LittleEndian.Uint32(b[0:4]),
		RecLen:   binary.LittleEndian.Uint16(b[4:6]),
		NameLen:  nameLen,
		FileType: b[7],
		Name:     string(b[8 : 8+int(nameLen)]),
	}
}

// EncodeDirEntry writes e back to its Offset within block.
func EncodeDirEntry(block []byte, e DirEntry) {
	b := block[e.Offset:]
	binary.LittleEndian.PutUint32(b[0:4], e.Inode)
	binary.LittleEndian.PutUint16(b[4:6], e.RecLen)
	b[6] = e.NameLen
	b[7] = e.FileType
	copy(b[8:8+int(e.NameLen)], e.Name)
}

// WriteRecLen patches just the rec_len field of the entry at offset, without
// touching the rest of the entry.
func WriteRecLen(block []byte, offset, recLen uint16) {
	binary.LittleEndian.PutUint16(block[offset+4:offset+6], recLen)
}

// ReadRecLen reads just the rec_len field of the entry at offset.
func ReadRecLen(block []byte, offset uint16) uint16 {
	return binary.LittleEndian.Uint16(block[offset+4 : offset+6])
}
