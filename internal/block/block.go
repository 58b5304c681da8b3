// Package block implements the S4 block container: a typed,
// length-prefixed binary block with cursor-based read/write, and the
// document-level parse/serialize that turns a sequence of blocks into
// (and out of) a byte stream or its SQRLDATA text export.
package block

import (
	"encoding/binary"

	sqrlerrors "github.com/complex-gh/sqrlid/internal/errors"
)

// headerSize is the 4-byte (length, type) header every block starts
// with, per spec.md §6.1's on-disk layout.
const headerSize = 4

// Block is a typed, length-prefixed binary block with a cursor-based
// read/write API. Length is the block's total size including its
// 4-byte header; the cursor is a uint16 offset into the full block
// bytes, header included, so it sits at 4 at the start of the payload.
type Block struct {
	blockType uint16
	data      []byte // full block bytes, header included
	cur       uint16
}

// Init creates a new block of the given type and total length
// (header included), zero-filled.
func Init(blockType uint16, blockLength uint16) *Block {
	b := &Block{
		blockType: blockType,
		data:      make([]byte, blockLength),
	}
	binary.LittleEndian.PutUint16(b.data[0:2], blockLength)
	binary.LittleEndian.PutUint16(b.data[2:4], blockType)
	b.cur = headerSize
	return b
}

// ParseBlock reads a single block starting at offset off in buf. It
// returns the block and the offset immediately following it.
func ParseBlock(buf []byte, off int) (*Block, int, error) {
	if len(buf)-off < headerSize {
		return nil, off, sqrlerrors.NewBlockError("read", "header", sqrlerrors.ErrShortBuffer)
	}
	length := binary.LittleEndian.Uint16(buf[off : off+2])
	blockType := binary.LittleEndian.Uint16(buf[off+2 : off+4])
	if length < headerSize {
		return nil, off, sqrlerrors.NewBlockError("read", "length", sqrlerrors.ErrMalformedBlock)
	}
	end := off + int(length)
	if end > len(buf) {
		return nil, off, sqrlerrors.NewBlockError("read", "length", sqrlerrors.ErrShortBuffer)
	}

	data := make([]byte, length)
	copy(data, buf[off:end])
	return &Block{blockType: blockType, data: data, cur: headerSize}, end, nil
}

// BlockType returns the block's type field.
func (b *Block) BlockType() uint16 {
	return b.blockType
}

// BlockLength returns the block's total length, header included.
func (b *Block) BlockLength() uint16 {
	return uint16(len(b.data))
}

// Resize grows or shrinks the block's backing buffer to newSize,
// preserving existing content and zero-filling any growth. The length
// header field is updated to match.
func (b *Block) Resize(newSize uint16) {
	grown := make([]byte, newSize)
	n := len(b.data)
	if int(newSize) < n {
		n = int(newSize)
	}
	copy(grown, b.data[:n])
	b.data = grown
	binary.LittleEndian.PutUint16(b.data[0:2], newSize)
	if b.cur > newSize {
		b.cur = newSize
	}
}

// Seek moves the cursor to dest, or by dest bytes relative to the
// current cursor if offset is true. Returns the resulting cursor
// position, or an error if the destination falls outside the block.
func (b *Block) Seek(dest uint16, offset bool) (uint16, error) {
	target := dest
	if offset {
		target = b.cur + dest
	}
	if int(target) > len(b.data) {
		return b.cur, sqrlerrors.ErrOutOfRange
	}
	b.cur = target
	return b.cur, nil
}

// SeekBack moves the cursor to dest measured from the end of the
// block, or by dest bytes backward from the current cursor if offset
// is true.
func (b *Block) SeekBack(dest uint16, offset bool) (uint16, error) {
	var target int
	if offset {
		target = int(b.cur) - int(dest)
	} else {
		target = len(b.data) - int(dest)
	}
	if target < 0 || target > len(b.data) {
		return b.cur, sqrlerrors.ErrOutOfRange
	}
	b.cur = uint16(target)
	return b.cur, nil
}

// Read copies len(dst) bytes from the cursor and advances it.
func (b *Block) Read(dst []byte) error {
	end := int(b.cur) + len(dst)
	if end > len(b.data) {
		return sqrlerrors.ErrShortBuffer
	}
	copy(dst, b.data[b.cur:end])
	b.cur = uint16(end)
	return nil
}

// Write copies src to the cursor position and advances it.
func (b *Block) Write(src []byte) error {
	end := int(b.cur) + len(src)
	if end > len(b.data) {
		return sqrlerrors.ErrShortBuffer
	}
	copy(b.data[b.cur:end], src)
	b.cur = uint16(end)
	return nil
}

// ReadUint8 reads one byte at the cursor and advances it.
func (b *Block) ReadUint8() (uint8, error) {
	var v [1]byte
	if err := b.Read(v[:]); err != nil {
		return 0, err
	}
	return v[0], nil
}

// ReadUint16 reads a little-endian uint16 at the cursor and advances it.
func (b *Block) ReadUint16() (uint16, error) {
	var v [2]byte
	if err := b.Read(v[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(v[:]), nil
}

// ReadUint32 reads a little-endian uint32 at the cursor and advances it.
func (b *Block) ReadUint32() (uint32, error) {
	var v [4]byte
	if err := b.Read(v[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(v[:]), nil
}

// WriteUint8 writes one byte at the cursor and advances it.
func (b *Block) WriteUint8(v uint8) error {
	return b.Write([]byte{v})
}

// WriteUint16 writes a little-endian uint16 at the cursor and advances it.
func (b *Block) WriteUint16(v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return b.Write(buf[:])
}

// WriteUint32 writes a little-endian uint32 at the cursor and advances it.
func (b *Block) WriteUint32(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return b.Write(buf[:])
}

// Data returns the block's full bytes, header included.
func (b *Block) Data() []byte {
	return b.data
}

// DataAtCursor returns the block's bytes from the current cursor
// position to the end.
func (b *Block) DataAtCursor() []byte {
	return b.data[b.cur:]
}

// Payload returns the block's bytes after the 4-byte header.
func (b *Block) Payload() []byte {
	return b.data[headerSize:]
}
