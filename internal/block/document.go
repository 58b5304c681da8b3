package block

import (
	"encoding/base64"
	"strings"

	sqrlerrors "github.com/complex-gh/sqrlid/internal/errors"
)

// marker is the fixed ASCII prefix identifying the SQRLDATA text
// export variant of a document, per spec.md §6.1.
const marker = "SQRLDATA"

// lineWrap is the line length the text export wraps at.
const lineWrap = 72

// Document is an ordered sequence of blocks, read until input
// exhaustion. Unknown block types are retained verbatim so a
// load-then-save round trip preserves data this version doesn't
// understand.
type Document struct {
	Blocks []*Block
}

// Parse decodes a byte stream into a Document. If the stream begins
// with the base64 text-export marker, it is base64-decoded first.
func Parse(raw []byte) (*Document, error) {
	buf := raw
	if looksLikeTextExport(raw) {
		decoded, err := decodeTextExport(raw)
		if err != nil {
			return nil, sqrlerrors.NewBlockError("init", "", err)
		}
		buf = decoded
	}

	doc := &Document{}
	off := 0
	for off < len(buf) {
		b, next, err := ParseBlock(buf, off)
		if err != nil {
			return nil, err
		}
		doc.Blocks = append(doc.Blocks, b)
		off = next
	}
	return doc, nil
}

// Serialize concatenates every block's bytes in order.
func (d *Document) Serialize() []byte {
	var out []byte
	for _, b := range d.Blocks {
		out = append(out, b.Data()...)
	}
	return out
}

// SerializeText renders the document as the SQRLDATA text export: the
// literal ASCII marker followed by the URL-safe base64 of the block
// bytes, line-wrapped at 72 characters with CRLF terminators.
func (d *Document) SerializeText() string {
	encoded := marker + base64.RawURLEncoding.EncodeToString(d.Serialize())

	var sb strings.Builder
	for i := 0; i < len(encoded); i += lineWrap {
		end := i + lineWrap
		if end > len(encoded) {
			end = len(encoded)
		}
		sb.WriteString(encoded[i:end])
		sb.WriteString("\r\n")
	}
	return sb.String()
}

// FindByType returns the first block of the given type, or nil.
func (d *Document) FindByType(blockType uint16) *Block {
	for _, b := range d.Blocks {
		if b.BlockType() == blockType {
			return b
		}
	}
	return nil
}

// AllByType returns every block of the given type, in document order.
func (d *Document) AllByType(blockType uint16) []*Block {
	var out []*Block
	for _, b := range d.Blocks {
		if b.BlockType() == blockType {
			out = append(out, b)
		}
	}
	return out
}

func looksLikeTextExport(raw []byte) bool {
	if len(raw) >= len(marker) && string(raw[:len(marker)]) == marker {
		return true
	}
	// Accept a base64-encoded marker too, in case the caller already
	// stripped newlines but not the encoding.
	trimmed := stripLineBreaks(raw)
	decoded, err := base64.RawURLEncoding.DecodeString(string(trimmed))
	if err != nil {
		return false
	}
	return len(decoded) >= len(marker) && string(decoded[:len(marker)]) == marker
}

func decodeTextExport(raw []byte) ([]byte, error) {
	trimmed := stripLineBreaks(raw)
	literal := len(trimmed) >= len(marker) && string(trimmed[:len(marker)]) == marker
	if literal {
		trimmed = trimmed[len(marker):]
	}
	decoded, err := base64.RawURLEncoding.DecodeString(string(trimmed))
	if err != nil {
		// Parsers accept with-or-without padding; retry with the
		// standard (padded) alphabet decoder before giving up.
		decoded, err = base64.URLEncoding.DecodeString(string(trimmed))
		if err != nil {
			return nil, err
		}
	}
	if literal {
		return decoded, nil
	}
	if len(decoded) < len(marker) || string(decoded[:len(marker)]) != marker {
		return nil, sqrlerrors.ErrMalformedBlock
	}
	return decoded[len(marker):], nil
}

func stripLineBreaks(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for _, c := range raw {
		if c == '\r' || c == '\n' {
			continue
		}
		out = append(out, c)
	}
	return out
}
