package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"hash"

	"golang.org/x/crypto/curve25519"

	sqrlerrors "github.com/complex-gh/sqrlid/internal/errors"
)

// RandomBytes generates n cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, sqrlerrors.NewCryptoError("rand", err)
	}
	return b, nil
}

// AESGCMEncrypt authenticates and encrypts plaintext under key/iv/aad,
// returning the ciphertext and a 16-byte authentication tag.
func AESGCMEncrypt(key, iv, aad, plaintext []byte) (ciphertext, tag []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, sqrlerrors.NewCryptoError("aesgcm", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, 16)
	if err != nil {
		return nil, nil, sqrlerrors.NewCryptoError("aesgcm", err)
	}
	sealed := gcm.Seal(nil, iv, plaintext, aad)
	n := len(sealed) - gcm.Overhead()
	return sealed[:n], sealed[n:], nil
}

// AESGCMDecrypt verifies tag and decrypts ciphertext under
// key/iv/aad. Returns ErrBadTag on authentication failure, with no
// distinction in the error surfaced between "wrong key" and "tampered
// ciphertext".
func AESGCMDecrypt(key, iv, aad, ciphertext, tag []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, sqrlerrors.NewCryptoError("aesgcm", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, 16)
	if err != nil {
		return nil, sqrlerrors.NewCryptoError("aesgcm", err)
	}
	sealed := append(append([]byte{}, ciphertext...), tag...)
	plaintext, err := gcm.Open(nil, iv, sealed, aad)
	if err != nil {
		return nil, sqrlerrors.ErrBadTag
	}
	return plaintext, nil
}

// Ed25519KeypairFromSeed derives an Ed25519 signing keypair from a
// 32-byte seed, matching spec.md's ed25519_keypair_from_seed.
func Ed25519KeypairFromSeed(seed []byte) (sk ed25519.PrivateKey, pk ed25519.PublicKey, err error) {
	if len(seed) != ed25519.SeedSize {
		return nil, nil, sqrlerrors.NewCryptoError("ed25519", errors.New("seed must be 32 bytes"))
	}
	sk = ed25519.NewKeyFromSeed(seed)
	pk = sk.Public().(ed25519.PublicKey)
	return sk, pk, nil
}

// Ed25519Sign signs msg with sk.
func Ed25519Sign(sk ed25519.PrivateKey, msg []byte) []byte {
	return ed25519.Sign(sk, msg)
}

// X25519BaseMult computes the X25519 base-point multiplication used to
// derive the Identity Lock Key from the Identity Unlock Key.
func X25519BaseMult(seed []byte) ([]byte, error) {
	if len(seed) != 32 {
		return nil, sqrlerrors.NewCryptoError("x25519", errors.New("seed must be 32 bytes"))
	}
	pk, err := curve25519.X25519(seed, curve25519.Basepoint)
	if err != nil {
		return nil, sqrlerrors.NewCryptoError("x25519", err)
	}
	return pk, nil
}

// HMACSHA256 computes HMAC-SHA256(key, msg), used to derive
// site-specific keys from the Identity Master Key: HMAC-SHA256(IMK,
// site-string).
func HMACSHA256(key, msg []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}

// NewHMAC returns a hash.Hash computing HMAC-SHA256 with key, for
// callers that need to stream data rather than hash it in one call.
func NewHMAC(key []byte) hash.Hash {
	return hmac.New(sha256.New, key)
}

// SHA256Sum is exposed as a typed primitive so higher layers never
// import crypto/sha256 directly.
func SHA256Sum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// SHA512Sum is exposed for the entropy pool's sponge.
func SHA512Sum(data []byte) [64]byte {
	return sha512.Sum512(data)
}
