// Package crypto provides the cryptographic primitives facade for the
// identity core: EnHash, EnScrypt, AEAD, EdDSA, X25519, HMAC, and the
// secure-zeroing discipline every secret key passes through on release.
//
// This file contains memory zeroing utilities for secure cleanup of
// sensitive key material.
package crypto

import (
	"crypto/subtle"
	"hash"
)

// SecureZero overwrites a byte slice with zeros to prevent sensitive data
// from persisting in memory. This helps mitigate memory dump attacks and
// reduces the window during which keys are recoverable from RAM.
//
// Due to Go's garbage collector and potential compiler optimizations,
// this function cannot guarantee complete erasure, but the constant-time
// copy from a zero slice prevents the compiler from optimizing it away.
func SecureZero(b []byte) {
	if len(b) == 0 {
		return
	}
	zeros := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zeros)
}

// SecureZeroMultiple zeros multiple byte slices in a single call.
func SecureZeroMultiple(slices ...[]byte) {
	for _, s := range slices {
		SecureZero(s)
	}
}

// SecureZeroHash resets a hash.Hash state to prevent partial hash data
// from remaining in memory. Note: not all Hash implementations may fully
// clear their internal state on Reset().
func SecureZeroHash(h hash.Hash) {
	if h != nil {
		h.Reset()
	}
}

// KeyMaterial wraps sensitive key data with automatic zeroing on Close().
// Use this for temporary key storage that must be cleaned up.
//
// Example:
//
//	km := NewKeyMaterial(derivedKey)
//	defer km.Close()
//	// ... use km.Bytes() ...
type KeyMaterial struct {
	data   []byte
	closed bool
}

// NewKeyMaterial creates a new KeyMaterial wrapper.
// The data is copied to prevent modification of the original slice.
func NewKeyMaterial(data []byte) *KeyMaterial {
	if data == nil {
		return &KeyMaterial{}
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return &KeyMaterial{data: copied}
}

// Bytes returns the underlying key data.
// Returns nil if the KeyMaterial has been closed.
func (km *KeyMaterial) Bytes() []byte {
	if km.closed {
		return nil
	}
	return km.data
}

// Len returns the length of the key data.
func (km *KeyMaterial) Len() int {
	if km.closed || km.data == nil {
		return 0
	}
	return len(km.data)
}

// Close securely zeros the key data and marks it as closed.
// This method is idempotent - multiple calls are safe.
func (km *KeyMaterial) Close() {
	if km.closed || km.data == nil {
		return
	}
	SecureZero(km.data)
	km.data = nil
	km.closed = true
}

// IsClosed returns whether the KeyMaterial has been closed.
func (km *KeyMaterial) IsClosed() bool {
	return km.closed
}

// SecretMaterial holds the sensitive key slots an Identity carries
// across a single operation: the identity unlock key, the identity
// lock key, the master identity key, a slot for the previous IUK kept
// during a rekey, and the ephemeral key recovered from a hint unlock.
// Close() zeros every populated field; this should be deferred
// immediately after the struct is populated, matching §3.3's "zeroized
// on release... and on all error-handling exit paths" invariant.
type SecretMaterial struct {
	IUK       []byte
	ILK       []byte
	MK        []byte
	PIUK      []byte
	HintKey   []byte
	closed    bool
}

// Close securely zeros all cryptographic materials.
// This should be called via defer immediately after creating the struct.
func (sm *SecretMaterial) Close() {
	if sm.closed {
		return
	}
	SecureZeroMultiple(
		sm.IUK,
		sm.ILK,
		sm.MK,
		sm.PIUK,
		sm.HintKey,
	)
	sm.IUK = nil
	sm.ILK = nil
	sm.MK = nil
	sm.PIUK = nil
	sm.HintKey = nil
	sm.closed = true
}
