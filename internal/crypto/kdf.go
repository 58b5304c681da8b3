package crypto

import (
	"crypto/sha256"
	"time"

	"golang.org/x/crypto/scrypt"

	sqrlerrors "github.com/complex-gh/sqrlid/internal/errors"
)

// EnHash implements SQRL's key-strengthening hash: sixteen rounds of
// SHA-256, with every round's output XOR-folded into a single 32-byte
// accumulator. y0 = SHA-256(in); y_i = SHA-256(y_{i-1}); out = y0 XOR
// y1 XOR ... XOR y15.
func EnHash(in [32]byte) [32]byte {
	var out [32]byte
	y := sha256.Sum256(in[:])
	xorInto(&out, y)
	for i := 1; i < 16; i++ {
		y = sha256.Sum256(y[:])
		xorInto(&out, y)
	}
	return out
}

func xorInto(dst *[32]byte, src [32]byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

// EnScryptParams bundles the knobs persisted alongside an EnScrypt
// output so decryption can reproduce it: the scrypt CPU/memory cost
// log2N, and how many outer XOR-accumulation iterations ran.
type EnScryptParams struct {
	Log2N      uint8
	Iterations uint32
}

const (
	// ScryptR and ScryptP are fixed per spec.md §4.B: r=256, p=1.
	ScryptR = 256
	ScryptP = 1

	// EnScryptKeySize is the size of the derived key and of the running
	// XOR accumulator.
	EnScryptKeySize = 32
)

// ProgressFunc reports 0-100 progress for a long-running operation. If
// it returns false, the operation is cancelled at the next outer
// iteration boundary.
type ProgressFunc func(percent int) bool

// EnScrypt iterates memory-hard scrypt (N=2^log2N, r=256, p=1), XORing
// each iteration's output into a running accumulator. If target > 0 it
// runs until that wall-clock duration elapses, counting the iterations
// it managed; otherwise it runs exactly iterations times. progress, if
// non-nil, is called after every outer iteration with 0-100 and may
// cancel the run by returning false, in which case EnScrypt returns
// ErrCancelled and the caller must discard the partial accumulator.
func EnScrypt(password, salt []byte, log2N uint8, iterations uint32, target time.Duration, progress ProgressFunc) ([EnScryptKeySize]byte, uint32, error) {
	var accum [EnScryptKeySize]byte
	n := uint64(1) << log2N

	timed := target > 0
	start := time.Now()
	var ran uint32

	runningSalt := salt
	for {
		if !timed && ran >= iterations {
			break
		}
		if timed && time.Since(start) >= target {
			break
		}

		out, err := scrypt.Key(password, runningSalt, int(n), ScryptR, ScryptP, EnScryptKeySize)
		if err != nil {
			return accum, ran, sqrlerrors.NewCryptoError("enscrypt", err)
		}
		for i := 0; i < EnScryptKeySize; i++ {
			accum[i] ^= out[i]
		}
		// Each round re-salts with its own output so successive
		// iterations visit independent scrypt states; the original
		// salt is not reused across rounds.
		runningSalt = out
		ran++

		if progress != nil {
			pct := 100
			if timed {
				pct = int(float64(time.Since(start)) / float64(target) * 100)
				if pct > 100 {
					pct = 100
				}
			} else if iterations > 0 {
				pct = int(float64(ran) / float64(iterations) * 100)
			}
			if !progress(pct) {
				SecureZero(accum[:])
				return accum, ran, sqrlerrors.ErrCancelled
			}
		}
	}

	return accum, ran, nil
}
