package block

import sqrlerrors "github.com/complex-gh/sqrlid/internal/errors"

// Block type identifiers, per spec.md §3.2.
const (
	TypePassword   uint16 = 1 // User Access Password Block
	TypeRescueCode uint16 = 2 // Rescue Code Block
	TypePreviousIUK uint16 = 3 // Previous Identity Keys Block
)

// Fixed field widths shared by the typed block layouts.
const (
	ivSize   = 12
	saltSize = 16
	tagSize  = 16
	keySize  = 32
)

// PasswordBlock is the decoded form of a type-1 block: the
// EnScrypt-protected Identity Master Key and Identity Lock Key.
type PasswordBlock struct {
	IV             [ivSize]byte
	Salt           [saltSize]byte
	Log2N          uint8
	Iterations     uint32
	OptionFlags    uint16
	HintLength     uint8
	PWVerifySec    uint8
	IdleTimeoutMin uint16
	EncryptedIMK   [keySize]byte
	EncryptedILK   [keySize]byte
	Tag            [tagSize]byte
}

// passwordBlockLength is the total type-1 block length: header(4) +
// plaintext-length field(2) + IV(12) + salt(16) + log2N(1) +
// iterations(4) + flags(2) + hint(1) + pwverify(1) + idle(2) +
// IMK(32) + ILK(32) + tag(16) = 125.
const passwordBlockLength = 4 + 2 + ivSize + saltSize + 1 + 4 + 2 + 1 + 1 + 2 + keySize + keySize + tagSize

// aadLenPassword is the AAD length for type-1 GCM operations: the
// first 45 bytes of the forming block (everything up to and including
// the idle-timeout field), per spec.md §3.2.
const aadLenPassword = 45

// AADLenPassword, AADLenRescueCode and AADLenPreviousIUK expose the
// per-type AAD byte counts to callers outside this package that need
// to slice a placeholder-filled Block for encryption, rather than
// duplicating the wire layout.
const (
	AADLenPassword    = aadLenPassword
	AADLenRescueCode  = aadLenRescueCode
	AADLenPreviousIUK = aadLenPreviousIUK
)

// SaltSize, IVSize, KeySize and TagSize expose the shared field widths
// to callers outside this package that need to generate fresh
// salts/IVs when authoring a new block.
const (
	SaltSize = saltSize
	IVSize   = ivSize
	KeySize  = keySize
	TagSize  = tagSize
)

// EncodePasswordBlock serializes a PasswordBlock into its wire Block.
func EncodePasswordBlock(pb *PasswordBlock) *Block {
	b := Init(TypePassword, passwordBlockLength)
	plaintextLength := uint16(keySize + keySize) // IMK||ILK before encryption
	_ = b.WriteUint16(plaintextLength)
	_ = b.Write(pb.IV[:])
	_ = b.Write(pb.Salt[:])
	_ = b.WriteUint8(pb.Log2N)
	_ = b.WriteUint32(pb.Iterations)
	_ = b.WriteUint16(pb.OptionFlags)
	_ = b.WriteUint8(pb.HintLength)
	_ = b.WriteUint8(pb.PWVerifySec)
	_ = b.WriteUint16(pb.IdleTimeoutMin)
	_ = b.Write(pb.EncryptedIMK[:])
	_ = b.Write(pb.EncryptedILK[:])
	_ = b.Write(pb.Tag[:])
	return b
}

// AAD returns the additional authenticated data for a block: the first
// n bytes of its serialized form (AADLenPassword, AADLenRescueCode or
// AADLenPreviousIUK, depending on the block type).
func (b *Block) AAD(n int) []byte {
	return b.Data()[:n]
}

// DecodePasswordBlock parses a type-1 block's payload.
func DecodePasswordBlock(b *Block) (*PasswordBlock, error) {
	if b.BlockType() != TypePassword {
		return nil, sqrlerrors.NewBlockError("read", "type", sqrlerrors.ErrMalformedBlock)
	}
	if _, err := b.Seek(headerSize, false); err != nil {
		return nil, err
	}

	pb := &PasswordBlock{}
	if _, err := b.ReadUint16(); err != nil { // plaintext length, unused on decode
		return nil, err
	}
	if err := b.Read(pb.IV[:]); err != nil {
		return nil, err
	}
	if err := b.Read(pb.Salt[:]); err != nil {
		return nil, err
	}
	var err error
	if pb.Log2N, err = b.ReadUint8(); err != nil {
		return nil, err
	}
	if pb.Iterations, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if pb.OptionFlags, err = b.ReadUint16(); err != nil {
		return nil, err
	}
	if pb.HintLength, err = b.ReadUint8(); err != nil {
		return nil, err
	}
	if pb.PWVerifySec, err = b.ReadUint8(); err != nil {
		return nil, err
	}
	if pb.IdleTimeoutMin, err = b.ReadUint16(); err != nil {
		return nil, err
	}
	if err := b.Read(pb.EncryptedIMK[:]); err != nil {
		return nil, err
	}
	if err := b.Read(pb.EncryptedILK[:]); err != nil {
		return nil, err
	}
	if err := b.Read(pb.Tag[:]); err != nil {
		return nil, err
	}
	return pb, nil
}

// RescueCodeBlock is the decoded form of a type-2 block: the
// EnScrypt-protected Identity Unlock Key.
type RescueCodeBlock struct {
	Salt          [saltSize]byte
	Log2N         uint8
	Iterations    uint32
	EncryptedIUK  [keySize]byte
	Tag           [tagSize]byte
}

const rescueCodeBlockLength = 4 + 2 + saltSize + 1 + 4 + keySize + tagSize
const aadLenRescueCode = 25

// EncodeRescueCodeBlock serializes a RescueCodeBlock into its wire Block.
func EncodeRescueCodeBlock(rb *RescueCodeBlock) *Block {
	b := Init(TypeRescueCode, rescueCodeBlockLength)
	_ = b.WriteUint16(keySize) // plaintext length: IUK alone
	_ = b.Write(rb.Salt[:])
	_ = b.WriteUint8(rb.Log2N)
	_ = b.WriteUint32(rb.Iterations)
	_ = b.Write(rb.EncryptedIUK[:])
	_ = b.Write(rb.Tag[:])
	return b
}

// DecodeRescueCodeBlock parses a type-2 block's payload.
func DecodeRescueCodeBlock(b *Block) (*RescueCodeBlock, error) {
	if b.BlockType() != TypeRescueCode {
		return nil, sqrlerrors.NewBlockError("read", "type", sqrlerrors.ErrMalformedBlock)
	}
	if _, err := b.Seek(headerSize, false); err != nil {
		return nil, err
	}

	rb := &RescueCodeBlock{}
	if _, err := b.ReadUint16(); err != nil {
		return nil, err
	}
	if err := b.Read(rb.Salt[:]); err != nil {
		return nil, err
	}
	var err error
	if rb.Log2N, err = b.ReadUint8(); err != nil {
		return nil, err
	}
	if rb.Iterations, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if err := b.Read(rb.EncryptedIUK[:]); err != nil {
		return nil, err
	}
	if err := b.Read(rb.Tag[:]); err != nil {
		return nil, err
	}
	return rb, nil
}

// maxPIUKSlots is the maximum number of previous IUKs retained,
// per spec.md §3.3.
const maxPIUKSlots = 4

// PreviousIUKBlock is the decoded form of a type-3 block: up to four
// previous IUKs, newest-first, encrypted under the current MK as a
// single ciphertext. Count records how many of the four slots hold a
// real previous IUK; unused slots stay zero and are not covered by
// the authentication tag, since that can't be recovered from the
// ciphertext bytes themselves.
type PreviousIUKBlock struct {
	EditionCount uint16
	Count        uint8
	Encrypted    [maxPIUKSlots][keySize]byte
	Tag          [tagSize]byte
}

const previousIUKBlockLength = 4 + 2 + 2 + maxPIUKSlots*keySize + tagSize
const aadLenPreviousIUK = 4

// EncodePreviousIUKBlock serializes a PreviousIUKBlock into its wire Block.
func EncodePreviousIUKBlock(pb *PreviousIUKBlock) *Block {
	b := Init(TypePreviousIUK, previousIUKBlockLength)
	_ = b.WriteUint16(uint16(keySize) * uint16(pb.Count))
	_ = b.WriteUint16(pb.EditionCount)
	for i := range pb.Encrypted {
		_ = b.Write(pb.Encrypted[i][:])
	}
	_ = b.Write(pb.Tag[:])
	return b
}

// DecodePreviousIUKBlock parses a type-3 block's payload.
func DecodePreviousIUKBlock(b *Block) (*PreviousIUKBlock, error) {
	if b.BlockType() != TypePreviousIUK {
		return nil, sqrlerrors.NewBlockError("read", "type", sqrlerrors.ErrMalformedBlock)
	}
	if _, err := b.Seek(headerSize, false); err != nil {
		return nil, err
	}

	pb := &PreviousIUKBlock{}
	plaintextLength, err := b.ReadUint16()
	if err != nil {
		return nil, err
	}
	pb.Count = uint8(plaintextLength / keySize)
	if pb.EditionCount, err = b.ReadUint16(); err != nil {
		return nil, err
	}
	for i := range pb.Encrypted {
		if err := b.Read(pb.Encrypted[i][:]); err != nil {
			return nil, err
		}
	}
	if err := b.Read(pb.Tag[:]); err != nil {
		return nil, err
	}
	return pb, nil
}
