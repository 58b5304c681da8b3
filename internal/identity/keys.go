package identity

import (
	"encoding/binary"

	sqrlcrypto "github.com/complex-gh/sqrlid/internal/crypto"
)

// Slot identifies one of the key-hierarchy secrets an Identity holds.
type Slot int

const (
	SlotIUK Slot = iota
	SlotILK
	SlotMK
	SlotPIUK0
	SlotPIUK1
	SlotPIUK2
	SlotPIUK3
)

// maxPIUK is the number of previous IUKs retained across rekeys,
// per spec.md §3.3.
const maxPIUK = 4

// bin2rc converts a 64-byte (512-bit) entropy draw into a 24-digit
// decimal rescue code. The draw is treated as eight little-endian
// uint64 lanes; across three rounds, each lane contributes its
// current value mod 10 as a digit (and is then divided by 10),
// interleaved lane-by-lane so the output is lane0..7, lane0..7,
// lane0..7 — the literal algorithm of the original implementation's
// bin2rc, not merely its informal "interleaved" description.
func bin2rc(bin [64]byte) string {
	var lanes [8]uint64
	for k := 0; k < 8; k++ {
		lanes[k] = binary.LittleEndian.Uint64(bin[k*8 : k*8+8])
	}

	digits := make([]byte, 24)
	j := 0
	for round := 0; round < 3; round++ {
		for k := 0; k < 8; k++ {
			digits[j] = '0' + byte(lanes[k]%10)
			lanes[k] /= 10
			j++
		}
	}
	return string(digits)
}

// deriveILK computes the Identity Lock Key from an Identity Unlock
// Key via X25519 base-point multiplication.
func deriveILK(iuk [32]byte) ([32]byte, error) {
	var ilk [32]byte
	pk, err := sqrlcrypto.X25519BaseMult(iuk[:])
	if err != nil {
		return ilk, err
	}
	copy(ilk[:], pk)
	return ilk, nil
}

// deriveIMK computes the Identity Master Key from an Identity Unlock
// Key via EnHash.
func deriveIMK(iuk [32]byte) [32]byte {
	return sqrlcrypto.EnHash(iuk)
}

// siteKey derives a site-specific key from the Identity Master Key.
// Never persisted, per spec.md §3.3.
func siteKey(imk [32]byte, site string) []byte {
	return sqrlcrypto.HMACSHA256(imk[:], []byte(site))
}
