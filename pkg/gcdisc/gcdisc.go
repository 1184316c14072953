// Package gcdisc reads the GameCube disc container: a header, a pointer
// to the embedded main executable (a dol.Reader), and a filesystem
// table. It is a byte-reader façade only; spec.md §6 does not use it
// beyond locating the main executable.
package gcdisc

import (
	"encoding/binary"

	"github.com/mvanbem/decompiler/pkg/dol"
)

// Size is the fixed size in bytes of a GameCube disc image.
const Size = 1459978240

const (
	headerSize                = 8
	mainExecutableOffset       = 0x420
	filesystemTableOffsetOffset = 0x424
	filesystemTableLengthOffset = 0x428
	rootEntryCountOffset        = 0x8
	stringTableEntrySize        = 0xc
)

// Reader parses a disc image held entirely in memory.
type Reader struct {
	data []byte
}

// NewReader wraps data as a disc image, panicking if it is shorter than
// Size.
func NewReader(data []byte) *Reader {
	return &Reader{data: data[:Size]}
}

// Header returns the disc's 8-byte header reader.
func (r *Reader) Header() *HeaderReader {
	return &HeaderReader{data: r.data[:headerSize]}
}

// MainExecutable locates and wraps the disc's embedded DOL image.
func (r *Reader) MainExecutable() *dol.Reader {
	offset := binary.BigEndian.Uint32(r.data[mainExecutableOffset:])
	return dol.NewReader(r.data[offset:])
}

// FsTable locates and wraps the disc's filesystem table.
func (r *Reader) FsTable() *FsTableReader {
	offset := binary.BigEndian.Uint32(r.data[filesystemTableOffsetOffset:])
	length := binary.BigEndian.Uint32(r.data[filesystemTableLengthOffset:])
	return &FsTableReader{data: r.data[offset : offset+length]}
}

// HeaderReader exposes the disc header's fixed fields.
type HeaderReader struct {
	data []byte
}

// GameCode is the 4-character game code.
func (h *HeaderReader) GameCode() string { return string(h.data[0:4]) }

// MakerCode is the 2-character maker code.
func (h *HeaderReader) MakerCode() string { return string(h.data[4:6]) }

// DiscID is the single-byte disc identifier (for multi-disc titles).
func (h *HeaderReader) DiscID() byte { return h.data[6] }

// Version is the single-byte disc version.
func (h *HeaderReader) Version() byte { return h.data[7] }

// FsTableReader exposes the filesystem table's root entry count and
// trailing string table; entry parsing beyond the count is unneeded by
// the decompiler core and is not implemented.
type FsTableReader struct {
	data []byte
}

// RootEntryCount is the number of entries (including the implicit root)
// in the filesystem table.
func (f *FsTableReader) RootEntryCount() uint32 {
	return binary.BigEndian.Uint32(f.data[rootEntryCountOffset:])
}

// StringTable returns the filename string table following the fixed-size
// entry array.
func (f *FsTableReader) StringTable() []byte {
	return f.data[uint64(f.RootEntryCount())*stringTableEntrySize:]
}
