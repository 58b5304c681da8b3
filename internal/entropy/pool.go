// Package entropy implements the identity core's process-wide entropy
// pool: a background-fed SHA-512 sponge with conservative bit
// accounting, used to seed every fresh key the identity hierarchy
// generates.
package entropy

import (
	"crypto/sha512"
	"io"
	"runtime"
	"sync"
	"time"

	"golang.org/x/crypto/chacha20"

	sqrlerrors "github.com/complex-gh/sqrlid/internal/errors"
)

// Target is the default desired-entropy threshold (bits) the
// collector works toward before dropping from its fast to its slow
// sampling cadence.
const Target = 512

// Pool accumulates entropy into a running SHA-512 state and supplies
// seed bytes with a conservative bit-estimate. The zero value is not
// usable; construct with New.
type Pool struct {
	mu        sync.Mutex
	state     hashState
	estimated int
	target    int
	stopping  bool
	started   bool

	collector *collector
}

// hashState is the running SHA-512 accumulator. sha512.New returns a
// hash.Hash, which is what the accumulator actually needs: Write to
// feed it, Sum to finalize without resetting, Reset to reinitialize.
type hashState struct {
	h interface {
		io.Writer
		Sum([]byte) []byte
		Reset()
	}
}

func newHashState() hashState {
	return hashState{h: sha512.New()}
}

// New creates an entropy pool and starts its background collector.
// Matches spec.md §4.A's "worker is created lazily on first access" by
// being cheap enough to call eagerly from an Identity's constructor;
// callers that want the lazy-singleton behavior of the original can
// hold one package-level Pool behind a sync.Once.
func New() *Pool {
	p := &Pool{
		state:  newHashState(),
		target: Target,
	}
	p.addEntropyBracket(nil)
	p.collector = newCollector(p)
	p.collector.start()
	p.started = true
	return p
}

// Stop signals the background collector to exit at its next wake and
// zeroes the estimated-entropy counter. Per spec.md §5, subsequent
// pool use returns zero until a new Pool is constructed.
func (p *Pool) Stop() {
	p.mu.Lock()
	p.stopping = true
	p.mu.Unlock()
	if p.collector != nil {
		p.collector.stop()
	}
	p.mu.Lock()
	p.estimated = 0
	p.started = false
	p.mu.Unlock()
}

// addEntropyBracket mixes fast-flux entropy into the hash state. When
// seed is non-nil it is mixed in as well — used on both sides of
// finalization (the "anti-state-recovery bracket" of spec.md §4.A) so
// an attacker who snapshots the state can't predict outputs on either
// side of a draw.
func (p *Pool) addEntropyBracket(seed []byte) {
	ffe := sampleFastFlux()
	p.state.h.Write(ffe[:])
	if seed != nil {
		p.state.h.Write(seed)
	}
}

func (p *Pool) incrementEntropy(amount int) {
	p.estimated += amount
	if p.estimated >= p.target {
		p.collector.goSlow()
	}
}

// Add incorporates caller-supplied bytes plus a fast-flux snapshot
// into the running SHA-512 state and raises the estimated-entropy
// counter by 1 + len(msg)/64 bits.
func (p *Pool) Add(msg []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopping {
		return
	}
	ffe := sampleFastFlux()
	p.state.h.Write(msg)
	p.state.h.Write(ffe[:])
	p.incrementEntropy(1 + len(msg)/64)
}

// Get is the non-blocking draw: if the pool's estimated entropy is at
// least desiredBits, it finalizes the SHA-512 state into a 64-byte
// draw, reinitializes the state with the anti-state-recovery bracket,
// resets the estimate to zero, and returns the draw and the bits it
// represented. Otherwise it raises the target and returns
// ErrNoEntropy.
func (p *Pool) Get(desiredBits int) (draw [64]byte, receivedBits int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.estimated < desiredBits {
		p.target = desiredBits
		return draw, 0, sqrlerrors.ErrNoEntropy
	}

	p.addEntropyBracket(nil)
	sum := p.state.h.Sum(nil)
	copy(draw[:], sum)
	p.state.h.Reset()
	p.addEntropyBracket(draw[:])

	receivedBits = p.estimated
	p.estimated = 0
	p.target = Target
	p.collector.goFast()
	return draw, receivedBits, nil
}

// GetBlocking draws entropy like Get, but sleeps on the collector's
// slow cadence until desiredBits is available instead of returning
// ErrNoEntropy.
func (p *Pool) GetBlocking(desiredBits int) (draw [64]byte, receivedBits int) {
	p.mu.Lock()
	p.target = desiredBits
	p.mu.Unlock()

	for {
		p.mu.Lock()
		ready := p.estimated >= desiredBits
		p.mu.Unlock()
		if ready {
			break
		}
		time.Sleep(slowInterval)
		runtime.Gosched()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.addEntropyBracket(nil)
	sum := p.state.h.Sum(nil)
	copy(draw[:], sum)
	p.state.h.Reset()
	p.addEntropyBracket(draw[:])

	receivedBits = p.estimated
	p.estimated = 0
	p.target = Target
	p.collector.goFast()
	return draw, receivedBits
}

// Bytes produces n pseudorandom bytes. It draws up to 64 bytes of true
// entropy via GetBlocking, then, if n>64, expands with ChaCha20 keyed
// by that draw (first 32 bytes as key, next 12 as nonce).
func (p *Pool) Bytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, sqrlerrors.NewValidationError("n", "must be positive")
	}

	desired := 8 * n
	if n > 64 {
		desired = 8 * 64
	}
	if desired > Target {
		desired = Target
	}

	draw, _ := p.GetBlocking(desired)
	defer func() {
		zero := [64]byte{}
		draw = zero
	}()

	out := make([]byte, n)
	if n <= 64 {
		copy(out, draw[:n])
		return out, nil
	}

	key := draw[:32]
	nonce := draw[32:44]
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, sqrlerrors.NewCryptoError("entropy-expand", err)
	}
	c.XORKeyStream(out, out)
	return out, nil
}

// Estimate returns the current estimated bits of entropy available.
func (p *Pool) Estimate() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.estimated
}
