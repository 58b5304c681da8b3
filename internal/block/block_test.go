package block

import (
	"bytes"
	"testing"

	sqrlerrors "github.com/complex-gh/sqrlid/internal/errors"
)

func TestInit(t *testing.T) {
	b := Init(7, 20)
	if b.BlockType() != 7 {
		t.Errorf("BlockType() = %d; want 7", b.BlockType())
	}
	if b.BlockLength() != 20 {
		t.Errorf("BlockLength() = %d; want 20", b.BlockLength())
	}
	if len(b.Data()) != 20 {
		t.Errorf("len(Data()) = %d; want 20", len(b.Data()))
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	b := Init(1, 4+8)
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	if err := b.Write(payload); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	if _, err := b.Seek(headerSize, false); err != nil {
		t.Fatalf("Seek() failed: %v", err)
	}

	out := make([]byte, len(payload))
	if err := b.Read(out); err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Errorf("Read() = %v; want %v", out, payload)
	}
}

func TestWriteShortBuffer(t *testing.T) {
	b := Init(1, 4+2)
	err := b.Write([]byte{1, 2, 3})
	if !sqrlerrors.Is(err, sqrlerrors.ErrShortBuffer) {
		t.Errorf("err = %v; want ErrShortBuffer", err)
	}
}

func TestReadWriteIntegers(t *testing.T) {
	b := Init(1, 4+1+2+4)

	if err := b.WriteUint8(0xAB); err != nil {
		t.Fatalf("WriteUint8() failed: %v", err)
	}
	if err := b.WriteUint16(0x1234); err != nil {
		t.Fatalf("WriteUint16() failed: %v", err)
	}
	if err := b.WriteUint32(0xDEADBEEF); err != nil {
		t.Fatalf("WriteUint32() failed: %v", err)
	}

	if _, err := b.Seek(headerSize, false); err != nil {
		t.Fatalf("Seek() failed: %v", err)
	}

	v8, err := b.ReadUint8()
	if err != nil || v8 != 0xAB {
		t.Errorf("ReadUint8() = %#x, %v; want 0xAB, nil", v8, err)
	}
	v16, err := b.ReadUint16()
	if err != nil || v16 != 0x1234 {
		t.Errorf("ReadUint16() = %#x, %v; want 0x1234, nil", v16, err)
	}
	v32, err := b.ReadUint32()
	if err != nil || v32 != 0xDEADBEEF {
		t.Errorf("ReadUint32() = %#x, %v; want 0xDEADBEEF, nil", v32, err)
	}
}

func TestSeekOutOfRange(t *testing.T) {
	b := Init(1, 10)
	if _, err := b.Seek(100, false); !sqrlerrors.Is(err, sqrlerrors.ErrOutOfRange) {
		t.Errorf("err = %v; want ErrOutOfRange", err)
	}
}

func TestSeekBack(t *testing.T) {
	b := Init(1, 10)
	pos, err := b.SeekBack(2, false)
	if err != nil {
		t.Fatalf("SeekBack() failed: %v", err)
	}
	if pos != 8 {
		t.Errorf("pos = %d; want 8", pos)
	}
}

func TestResizeGrow(t *testing.T) {
	b := Init(1, 8)
	_ = b.Write([]byte{1, 2, 3, 4})
	b.Resize(16)
	if b.BlockLength() != 16 {
		t.Errorf("BlockLength() = %d; want 16", b.BlockLength())
	}
	if len(b.Data()) != 16 {
		t.Errorf("len(Data()) = %d; want 16", len(b.Data()))
	}
}

func TestResizeShrink(t *testing.T) {
	b := Init(1, 16)
	b.Resize(8)
	if b.BlockLength() != 8 {
		t.Errorf("BlockLength() = %d; want 8", b.BlockLength())
	}
}

func TestParseBlockRoundTrip(t *testing.T) {
	b := Init(5, 4+4)
	_ = b.Write([]byte{0xAA, 0xBB, 0xCC, 0xDD})

	parsed, next, err := ParseBlock(b.Data(), 0)
	if err != nil {
		t.Fatalf("ParseBlock() failed: %v", err)
	}
	if next != len(b.Data()) {
		t.Errorf("next = %d; want %d", next, len(b.Data()))
	}
	if parsed.BlockType() != 5 {
		t.Errorf("BlockType() = %d; want 5", parsed.BlockType())
	}
	if !bytes.Equal(parsed.Payload(), []byte{0xAA, 0xBB, 0xCC, 0xDD}) {
		t.Errorf("Payload() = %v; want [AA BB CC DD]", parsed.Payload())
	}
}

func TestParseBlockShortHeader(t *testing.T) {
	_, _, err := ParseBlock([]byte{1, 2}, 0)
	if !sqrlerrors.Is(err, sqrlerrors.ErrShortBuffer) {
		t.Errorf("err = %v; want ErrShortBuffer", err)
	}
}

func TestParseBlockTruncatedPayload(t *testing.T) {
	// Declares length 20 but only 10 bytes follow.
	buf := make([]byte, 10)
	buf[0] = 20
	_, _, err := ParseBlock(buf, 0)
	if !sqrlerrors.Is(err, sqrlerrors.ErrShortBuffer) {
		t.Errorf("err = %v; want ErrShortBuffer", err)
	}
}
