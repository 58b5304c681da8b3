// Package identity orchestrates components A-D (entropy, crypto
// primitives, S4 blocks, key hierarchy) into the Identity Store:
// load/save of the identity document, rekey, decrypt-on-demand,
// encrypt-on-save, and progress reporting, per spec.md §4.E.
package identity

import (
	"sync"
	"time"

	"github.com/complex-gh/sqrlid/internal/block"
	sqrlcrypto "github.com/complex-gh/sqrlid/internal/crypto"
	sqrlerrors "github.com/complex-gh/sqrlid/internal/errors"
	"github.com/complex-gh/sqrlid/internal/entropy"
	"github.com/complex-gh/sqrlid/internal/log"
)

// state is the Identity's position in the lifecycle state machine of
// spec.md §3.4 / §4.D.
type state int

const (
	stateEncryptedResident state = iota
	stateDecrypted
	stateHintLocked
	stateReleased
)

func (s state) String() string {
	switch s {
	case stateEncryptedResident:
		return "encrypted-resident"
	case stateDecrypted:
		return "decrypted"
	case stateHintLocked:
		return "hint-locked"
	case stateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// Tunable EnScrypt defaults. Real-world SQRL deployments calibrate
// log2N and the verify durations to the deploying hardware; these are
// this module's reference defaults, overridable via SetScryptCost and
// SetVerifyDurations.
const (
	DefaultLog2N           uint8         = 14
	DefaultPWVerifySec     uint8         = 5
	DefaultRescueVerifySec uint8         = 5
	HintLockTargetDuration time.Duration = 1 * time.Second
)

// Identity is the core's orchestrating object: it holds the resident
// (or encrypted-resident, or hint-locked) key hierarchy, the raw S4
// blocks retained for round-trip preservation, and drives EnScrypt/
// AES-GCM through internal/crypto and internal/block to implement
// load, save, rekey, hint-lock, and key access.
type Identity struct {
	mu sync.Mutex

	pool      *entropy.Pool
	callbacks HostCallbacks
	reporter  ProgressReporter

	state state

	// resident plaintext secrets. Each has a companion *Resident flag
	// since an all-zero array is itself a legal (if vanishingly
	// unlikely) secret value and can't be used as its own sentinel.
	iuk         [32]byte
	iukResident bool
	ilk         [32]byte
	ilkResident bool
	mk          [32]byte
	mkResident  bool
	piuk        [maxPIUK][32]byte
	piukValid   [maxPIUK]bool

	// credential cache and dirty flags driving save().
	password      string
	passwordDirty bool
	rescueCode    string
	rescueDirty   bool

	log2N           uint8
	pwVerifySec     uint8
	rescueVerifySec uint8
	hintLength      uint8
	idleTimeoutMin  uint16
	optionFlags     uint16
	editionCount    uint16

	// raw blocks retained from load(), consulted by key() for lazy
	// decryption and re-emitted on save() when their slot is clean.
	passwordRaw *block.Block
	rescueRaw   *block.Block
	previousRaw *block.Block
	unknown     []*block.Block

	hint *hintLockBundle
}

type hintLockBundle struct {
	hasIUK     bool
	salt       [16]byte
	params     sqrlcrypto.EnScryptParams
	iv         [12]byte
	ciphertext []byte
	tag        [16]byte
}

// Option configures an Identity at construction time.
type Option func(*Identity)

// WithCallbacks attaches the host credential callback.
func WithCallbacks(cb HostCallbacks) Option {
	return func(id *Identity) { id.callbacks = cb }
}

// WithReporter attaches the host progress callback.
func WithReporter(r ProgressReporter) Option {
	return func(id *Identity) { id.reporter = r }
}

func newIdentity(pool *entropy.Pool, opts ...Option) *Identity {
	id := &Identity{
		pool:            pool,
		callbacks:       noopCallbacks{},
		reporter:        noopReporter{},
		log2N:           DefaultLog2N,
		pwVerifySec:     DefaultPWVerifySec,
		rescueVerifySec: DefaultRescueVerifySec,
		hintLength:      4,
	}
	for _, opt := range opts {
		opt(id)
	}
	return id
}

// Create generates a fresh identity: a rescue code from one 512-bit
// pool draw, and an IUK from a second, independent 512-bit draw, per
// spec.md §4.D. ILK and MK are derived immediately; the identity
// enters the decrypted state directly, per spec.md §3.4.
func Create(pool *entropy.Pool, opts ...Option) (*Identity, error) {
	id := newIdentity(pool, opts...)
	id.mu.Lock()
	defer id.mu.Unlock()

	rescueDraw, _ := pool.GetBlocking(512)
	id.rescueCode = bin2rc(rescueDraw)
	id.rescueDirty = true

	iukDraw, _ := pool.GetBlocking(512)
	copy(id.iuk[:], iukDraw[:32])
	id.iukResident = true

	if err := id.rederiveFromIUK(); err != nil {
		return nil, err
	}

	id.passwordDirty = true
	id.state = stateDecrypted
	log.Debug("identity created")
	return id, nil
}

// rederiveFromIUK recomputes ILK and MK from the resident IUK and
// marks both resident. Callers must hold id.mu.
func (id *Identity) rederiveFromIUK() error {
	ilk, err := deriveILK(id.iuk)
	if err != nil {
		return err
	}
	id.ilk = ilk
	id.ilkResident = true
	id.mk = deriveIMK(id.iuk)
	id.mkResident = true
	return nil
}

// Release zeroizes every resident secret and transitions to the
// terminal released state. Idempotent.
func (id *Identity) Release() {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.releaseLocked()
}

func (id *Identity) releaseLocked() {
	log.Debug("identity released", log.String("prior_state", id.state.String()))
	sqrlcrypto.SecureZero(id.iuk[:])
	id.iukResident = false
	sqrlcrypto.SecureZero(id.ilk[:])
	id.ilkResident = false
	sqrlcrypto.SecureZero(id.mk[:])
	id.mkResident = false
	for i := range id.piuk {
		sqrlcrypto.SecureZero(id.piuk[i][:])
		id.piukValid[i] = false
	}
	if id.hint != nil {
		sqrlcrypto.SecureZero(id.hint.ciphertext)
		id.hint = nil
	}
	id.password = ""
	id.rescueCode = ""
	id.state = stateReleased
}

// IsHintLocked reports whether the identity is currently hint-locked.
func (id *Identity) IsHintLocked() bool {
	id.mu.Lock()
	defer id.mu.Unlock()
	return id.state == stateHintLocked
}

// GetHintLength returns the configured hint length in characters.
func (id *Identity) GetHintLength() uint8 {
	id.mu.Lock()
	defer id.mu.Unlock()
	return id.hintLength
}

// SetHintLength configures how many leading password characters form
// the hint-lock hint.
func (id *Identity) SetHintLength(n uint8) {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.hintLength = n
}

// GetRescueCode returns the 24-digit rescue code. It is only
// available in-memory for the session in which the identity was
// created or rekeyed; a loaded identity that hasn't regenerated its
// rescue code cannot recover it (the code itself is never persisted,
// only an EnScrypt-derived key over it).
func (id *Identity) GetRescueCode() (string, error) {
	id.mu.Lock()
	defer id.mu.Unlock()
	if id.rescueCode == "" {
		return "", sqrlerrors.ErrCredentialRequired
	}
	return id.rescueCode, nil
}

// SetPassword sets the password used to protect MK/ILK at rest and
// marks the password slot dirty so the next Save re-runs EnScrypt.
func (id *Identity) SetPassword(password string) {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.password = password
	id.passwordDirty = true
}

// SetRescueCode supplies the rescue code used to decrypt the IUK, and
// marks the rescue slot dirty so the next Save re-wraps it under a
// freshly salted EnScrypt run, mirroring SetPassword's treatment of
// the password slot.
func (id *Identity) SetRescueCode(code string) {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.rescueCode = code
	id.rescueDirty = true
}

// SetScryptCost overrides the EnScrypt log2(N) cost parameter applied
// by the next Save, in place of DefaultLog2N.
func (id *Identity) SetScryptCost(log2N uint8) {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.log2N = log2N
}

// SetVerifyDurations overrides how long the password and rescue-code
// EnScrypt runs target wall-clock-wise on the next Save, in place of
// DefaultPWVerifySec/DefaultRescueVerifySec.
func (id *Identity) SetVerifyDurations(pwSec, rescueSec uint8) {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.pwVerifySec = pwSec
	id.rescueVerifySec = rescueSec
}

// Info summarizes an identity's metadata without exposing resident key
// material, for host UIs that want to display document parameters.
type Info struct {
	State           string
	Log2N           uint8
	PWVerifySec     uint8
	RescueVerifySec uint8
	HintLength      uint8
	IdleTimeoutMin  uint16
	OptionFlags     uint16
	EditionCount    uint16
	HasPrevious     bool
}

// Info returns a snapshot of the identity's current metadata.
func (id *Identity) Info() Info {
	id.mu.Lock()
	defer id.mu.Unlock()
	return Info{
		State:           id.state.String(),
		Log2N:           id.log2N,
		PWVerifySec:     id.pwVerifySec,
		RescueVerifySec: id.rescueVerifySec,
		HintLength:      id.hintLength,
		IdleTimeoutMin:  id.idleTimeoutMin,
		OptionFlags:     id.optionFlags,
		EditionCount:    id.editionCount,
		HasPrevious:     id.previousRaw != nil,
	}
}

// RecoverFromRescueCode derives ILK and MK from the IUK recovered via
// the rescue code supplied through SetRescueCode, for the case where
// the password has been lost. The password slot is marked dirty so a
// subsequent SetPassword + Save re-wraps the hierarchy under a new
// password.
func (id *Identity) RecoverFromRescueCode() error {
	id.mu.Lock()
	defer id.mu.Unlock()

	if !id.iukResident {
		if err := id.resolveRescueSlotLocked(); err != nil {
			return err
		}
	}
	if err := id.rederiveFromIUK(); err != nil {
		return err
	}
	id.passwordDirty = true
	id.state = stateDecrypted
	return nil
}

// progressFunc turns the identity's ProgressReporter into the crypto
// package's ProgressFunc, cancelling the EnScrypt run the same way the
// teacher's OperationContext.IsCancelled() cancels a block loop: by
// returning false from the per-iteration callback.
func (id *Identity) progressFunc() sqrlcrypto.ProgressFunc {
	return func(percent int) bool {
		return id.reporter.OnProgress(percent)
	}
}

// Key materializes the secret held in slot, decrypting the backing S4
// block on first access if necessary. Per spec.md §4.D, decryption is
// deferred until the first Key request for a given slot.
func (id *Identity) Key(slot Slot) ([32]byte, error) {
	id.mu.Lock()
	defer id.mu.Unlock()
	return id.keyLocked(slot)
}

func (id *Identity) keyLocked(slot Slot) ([32]byte, error) {
	switch id.state {
	case stateReleased:
		return [32]byte{}, sqrlerrors.ErrCredentialRequired
	case stateHintLocked:
		return [32]byte{}, sqrlerrors.ErrHintLocked
	}

	switch slot {
	case SlotMK:
		if !id.mkResident {
			if err := id.resolvePasswordSlotsLocked(); err != nil {
				return [32]byte{}, err
			}
		}
		return id.mk, nil
	case SlotILK:
		if !id.ilkResident {
			if err := id.resolvePasswordSlotsLocked(); err != nil {
				return [32]byte{}, err
			}
		}
		return id.ilk, nil
	case SlotIUK:
		if !id.iukResident {
			if err := id.resolveRescueSlotLocked(); err != nil {
				return [32]byte{}, err
			}
		}
		return id.iuk, nil
	case SlotPIUK0, SlotPIUK1, SlotPIUK2, SlotPIUK3:
		idx := int(slot - SlotPIUK0)
		if !id.piukValid[idx] {
			if err := id.resolvePreviousSlotsLocked(); err != nil {
				return [32]byte{}, err
			}
		}
		if !id.piukValid[idx] {
			return [32]byte{}, sqrlerrors.ErrCredentialRequired
		}
		return id.piuk[idx], nil
	default:
		return [32]byte{}, sqrlerrors.NewValidationError("slot", "unknown slot")
	}
}

// resolvePasswordSlotsLocked decrypts the type-1 block, populating MK
// and ILK. If no password is cached it asks the host for one via
// HostCallbacks before giving up.
func (id *Identity) resolvePasswordSlotsLocked() error {
	if id.passwordRaw == nil {
		return sqrlerrors.ErrCredentialRequired
	}
	if id.password == "" {
		// The callback is a notification, not a synchronous prompt: the
		// host supplies the password via a later SetPassword call and
		// the caller retries Key. There is nothing to wait on here.
		id.callbacks.OnAuthenticationRequired(CredentialPassword)
		return sqrlerrors.ErrCredentialRequired
	}

	pb, err := block.DecodePasswordBlock(id.passwordRaw)
	if err != nil {
		return err
	}

	key, _, err := sqrlcrypto.EnScrypt([]byte(id.password), pb.Salt[:], pb.Log2N, pb.Iterations, 0, id.progressFunc())
	if err != nil {
		return err
	}
	defer sqrlcrypto.SecureZero(key[:])

	aad := id.passwordRaw.AAD(block.AADLenPassword)
	ciphertext := append(append([]byte{}, pb.EncryptedIMK[:]...), pb.EncryptedILK[:]...)
	plaintext, err := sqrlcrypto.AESGCMDecrypt(key[:], pb.IV[:], aad, ciphertext, pb.Tag[:])
	if err != nil {
		return err
	}
	defer sqrlcrypto.SecureZero(plaintext)

	copy(id.mk[:], plaintext[:32])
	id.mkResident = true
	copy(id.ilk[:], plaintext[32:64])
	id.ilkResident = true

	id.log2N = pb.Log2N
	id.hintLength = pb.HintLength
	id.pwVerifySec = pb.PWVerifySec
	id.idleTimeoutMin = pb.IdleTimeoutMin
	id.optionFlags = pb.OptionFlags
	id.state = stateDecrypted
	return nil
}

// resolveRescueSlotLocked decrypts the type-2 block, populating IUK.
func (id *Identity) resolveRescueSlotLocked() error {
	if id.rescueRaw == nil {
		return sqrlerrors.ErrCredentialRequired
	}
	if id.rescueCode == "" {
		id.callbacks.OnAuthenticationRequired(CredentialRescueCode)
		return sqrlerrors.ErrCredentialRequired
	}

	rb, err := block.DecodeRescueCodeBlock(id.rescueRaw)
	if err != nil {
		return err
	}

	key, _, err := sqrlcrypto.EnScrypt([]byte(id.rescueCode), rb.Salt[:], rb.Log2N, rb.Iterations, 0, id.progressFunc())
	if err != nil {
		return err
	}
	defer sqrlcrypto.SecureZero(key[:])

	aad := id.rescueRaw.AAD(block.AADLenRescueCode)
	var zeroIV [12]byte
	plaintext, err := sqrlcrypto.AESGCMDecrypt(key[:], zeroIV[:], aad, rb.EncryptedIUK[:], rb.Tag[:])
	if err != nil {
		return err
	}
	defer sqrlcrypto.SecureZero(plaintext)

	copy(id.iuk[:], plaintext)
	id.iukResident = true
	id.state = stateDecrypted
	return nil
}

// resolvePreviousSlotsLocked decrypts the type-3 block, populating
// whichever PIUK slots it carries. Requires MK resident, since the
// previous-IUK block is encrypted under MK rather than a
// password/rescue-derived key.
func (id *Identity) resolvePreviousSlotsLocked() error {
	if id.previousRaw == nil {
		return nil
	}
	if !id.mkResident {
		if err := id.resolvePasswordSlotsLocked(); err != nil {
			return err
		}
	}

	pb, err := block.DecodePreviousIUKBlock(id.previousRaw)
	if err != nil {
		return err
	}
	if int(pb.Count) > maxPIUK {
		return sqrlerrors.NewBlockError("read", "count", sqrlerrors.ErrMalformedBlock)
	}

	aad := id.previousRaw.AAD(block.AADLenPreviousIUK)
	var zeroIV [12]byte
	var ciphertext []byte
	for i := 0; i < int(pb.Count); i++ {
		ciphertext = append(ciphertext, pb.Encrypted[i][:]...)
	}
	plaintext, err := sqrlcrypto.AESGCMDecrypt(id.mk[:], zeroIV[:], aad, ciphertext, pb.Tag[:])
	if err != nil {
		return err
	}
	defer sqrlcrypto.SecureZero(plaintext)

	for i := 0; i < int(pb.Count) && i < maxPIUK; i++ {
		copy(id.piuk[i][:], plaintext[i*32:(i+1)*32])
		id.piukValid[i] = true
	}
	return nil
}

// Load parses an S4 document (raw bytes or SQRLDATA text export) into
// an encrypted-resident Identity. No decryption happens until the
// first Key call for a given slot.
func Load(data []byte, pool *entropy.Pool, opts ...Option) (*Identity, error) {
	doc, err := block.Parse(data)
	if err != nil {
		return nil, err
	}

	id := newIdentity(pool, opts...)
	id.mu.Lock()
	defer id.mu.Unlock()

	for _, b := range doc.Blocks {
		switch b.BlockType() {
		case block.TypePassword:
			id.passwordRaw = b
		case block.TypeRescueCode:
			id.rescueRaw = b
		case block.TypePreviousIUK:
			id.previousRaw = b
		default:
			id.unknown = append(id.unknown, b)
		}
	}
	if id.passwordRaw == nil {
		return nil, sqrlerrors.NewBlockError("load", "type1", sqrlerrors.ErrMalformedBlock)
	}

	pb, err := block.DecodePasswordBlock(id.passwordRaw)
	if err != nil {
		return nil, err
	}
	id.log2N = pb.Log2N
	id.hintLength = pb.HintLength
	id.pwVerifySec = pb.PWVerifySec
	id.idleTimeoutMin = pb.IdleTimeoutMin
	id.optionFlags = pb.OptionFlags
	if id.previousRaw != nil {
		prev, err := block.DecodePreviousIUKBlock(id.previousRaw)
		if err != nil {
			return nil, err
		}
		id.editionCount = prev.EditionCount
	}

	id.state = stateEncryptedResident
	log.Debug("identity loaded", log.Int("blocks", len(doc.Blocks)), log.Bool("has_previous", id.previousRaw != nil))
	return id, nil
}

// Save re-encrypts every dirty slot and serializes the identity back
// into S4 block form, per spec.md §4.E. Clean slots are re-emitted
// from their retained raw blocks unchanged. asText selects the
// SQRLDATA base64 text export over the raw binary form.
func (id *Identity) Save(asText bool) ([]byte, error) {
	id.mu.Lock()
	defer id.mu.Unlock()

	if id.state == stateReleased {
		return nil, sqrlerrors.ErrCredentialRequired
	}

	passBlock, err := id.buildPasswordBlockLocked()
	if err != nil {
		return nil, err
	}
	blocks := []*block.Block{passBlock}

	rescueBlock, err := id.buildRescueBlockLocked()
	if err != nil {
		return nil, err
	}
	if rescueBlock != nil {
		blocks = append(blocks, rescueBlock)
	}

	prevBlock, err := id.buildPreviousBlockLocked()
	if err != nil {
		return nil, err
	}
	if prevBlock != nil {
		blocks = append(blocks, prevBlock)
	}

	blocks = append(blocks, id.unknown...)
	doc := &block.Document{Blocks: blocks}

	log.Debug("identity saved", log.Int("blocks", len(blocks)), log.Bool("as_text", asText))
	if asText {
		return []byte(doc.SerializeText()), nil
	}
	return doc.Serialize(), nil
}

func (id *Identity) buildPasswordBlockLocked() (*block.Block, error) {
	if !id.passwordDirty && id.passwordRaw != nil {
		return id.passwordRaw, nil
	}
	if !id.mkResident || !id.ilkResident {
		return nil, sqrlerrors.ErrCredentialRequired
	}

	pb := &block.PasswordBlock{
		Log2N:          id.log2N,
		OptionFlags:    id.optionFlags,
		HintLength:     id.hintLength,
		PWVerifySec:    id.pwVerifySec,
		IdleTimeoutMin: id.idleTimeoutMin,
	}

	salt, err := sqrlcrypto.RandomBytes(block.SaltSize)
	if err != nil {
		return nil, err
	}
	copy(pb.Salt[:], salt)
	iv, err := sqrlcrypto.RandomBytes(block.IVSize)
	if err != nil {
		return nil, err
	}
	copy(pb.IV[:], iv)

	key, iterations, err := sqrlcrypto.EnScrypt([]byte(id.password), pb.Salt[:], pb.Log2N, 0, time.Duration(id.pwVerifySec)*time.Second, id.progressFunc())
	if err != nil {
		return nil, err
	}
	defer sqrlcrypto.SecureZero(key[:])
	pb.Iterations = iterations

	placeholder := block.EncodePasswordBlock(pb)
	aad := append([]byte{}, placeholder.AAD(block.AADLenPassword)...)

	plaintext := append(append([]byte{}, id.mk[:]...), id.ilk[:]...)
	defer sqrlcrypto.SecureZero(plaintext)
	ciphertext, tag, err := sqrlcrypto.AESGCMEncrypt(key[:], pb.IV[:], aad, plaintext)
	if err != nil {
		return nil, err
	}
	copy(pb.EncryptedIMK[:], ciphertext[:32])
	copy(pb.EncryptedILK[:], ciphertext[32:64])
	copy(pb.Tag[:], tag)

	final := block.EncodePasswordBlock(pb)
	id.passwordRaw = final
	id.passwordDirty = false
	return final, nil
}

func (id *Identity) buildRescueBlockLocked() (*block.Block, error) {
	if !id.rescueDirty {
		return id.rescueRaw, nil
	}
	if !id.iukResident || id.rescueCode == "" {
		return nil, sqrlerrors.ErrCredentialRequired
	}

	rb := &block.RescueCodeBlock{Log2N: id.log2N}
	salt, err := sqrlcrypto.RandomBytes(block.SaltSize)
	if err != nil {
		return nil, err
	}
	copy(rb.Salt[:], salt)

	key, iterations, err := sqrlcrypto.EnScrypt([]byte(id.rescueCode), rb.Salt[:], rb.Log2N, 0, time.Duration(id.rescueVerifySec)*time.Second, id.progressFunc())
	if err != nil {
		return nil, err
	}
	defer sqrlcrypto.SecureZero(key[:])
	rb.Iterations = iterations

	placeholder := block.EncodeRescueCodeBlock(rb)
	aad := append([]byte{}, placeholder.AAD(block.AADLenRescueCode)...)

	var zeroIV [block.IVSize]byte
	plaintext := append([]byte{}, id.iuk[:]...)
	defer sqrlcrypto.SecureZero(plaintext)
	ciphertext, tag, err := sqrlcrypto.AESGCMEncrypt(key[:], zeroIV[:], aad, plaintext)
	if err != nil {
		return nil, err
	}
	copy(rb.EncryptedIUK[:], ciphertext)
	copy(rb.Tag[:], tag)

	final := block.EncodeRescueCodeBlock(rb)
	id.rescueRaw = final
	id.rescueDirty = false
	return final, nil
}

func (id *Identity) buildPreviousBlockLocked() (*block.Block, error) {
	count := 0
	for _, v := range id.piukValid {
		if v {
			count++
		}
	}
	if count == 0 {
		return id.previousRaw, nil
	}
	if !id.mkResident {
		return nil, sqrlerrors.ErrCredentialRequired
	}

	pb := &block.PreviousIUKBlock{Count: uint8(count), EditionCount: id.editionCount}

	var plaintext []byte
	for i := 0; i < count; i++ {
		plaintext = append(plaintext, id.piuk[i][:]...)
	}
	defer sqrlcrypto.SecureZero(plaintext)

	placeholder := block.EncodePreviousIUKBlock(pb)
	aad := append([]byte{}, placeholder.AAD(block.AADLenPreviousIUK)...)

	var zeroIV [block.IVSize]byte
	ciphertext, tag, err := sqrlcrypto.AESGCMEncrypt(id.mk[:], zeroIV[:], aad, plaintext)
	if err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		copy(pb.Encrypted[i][:], ciphertext[i*32:(i+1)*32])
	}
	copy(pb.Tag[:], tag)

	final := block.EncodePreviousIUKBlock(pb)
	id.previousRaw = final
	return final, nil
}

// Rekey generates a fresh IUK and rescue code, sliding the previous
// IUK into PIUK0 and dropping the oldest retained PIUK slot. ILK and
// MK are re-derived from the new IUK immediately, per spec.md §4.D.
// The password and rescue-code blocks are marked dirty so the next
// Save re-wraps them under the new hierarchy.
func (id *Identity) Rekey() error {
	id.mu.Lock()
	defer id.mu.Unlock()

	if id.state == stateReleased {
		return sqrlerrors.ErrCredentialRequired
	}
	if id.state == stateHintLocked {
		return sqrlerrors.ErrHintLocked
	}
	if !id.iukResident {
		if err := id.resolveRescueSlotLocked(); err != nil {
			return err
		}
	}
	if !id.piukValid[0] {
		if err := id.resolvePreviousSlotsLocked(); err != nil {
			return err
		}
	}

	draw, _ := id.pool.GetBlocking(512)
	var newIUK [32]byte
	copy(newIUK[:], draw[:32])
	sqrlcrypto.SecureZero(draw[:])

	for i := maxPIUK - 1; i > 0; i-- {
		id.piuk[i] = id.piuk[i-1]
		id.piukValid[i] = id.piukValid[i-1]
	}
	id.piuk[0] = id.iuk
	id.piukValid[0] = true

	id.iuk = newIUK
	id.iukResident = true
	if err := id.rederiveFromIUK(); err != nil {
		return err
	}

	rescueDraw, _ := id.pool.GetBlocking(512)
	id.rescueCode = bin2rc(rescueDraw)
	id.rescueDirty = true
	id.passwordDirty = true
	id.editionCount++
	id.state = stateDecrypted
	log.Debug("identity rekeyed", log.Int("edition_count", int(id.editionCount)))
	return nil
}

// HintLock derives an ephemeral key from the leading hintLength
// characters of the cached password via EnScrypt, uses it to
// AES-GCM-encrypt IUK||ILK||MK into an in-memory bundle, zeroizes the
// resident plaintexts, and transitions to the hint-locked state. ILK
// and MK must be resident; an IUK that is not resident (a load unlocked
// by password alone) is encrypted as zeros and stays non-resident after
// HintUnlock. The
// bundle is session-only: it is not part of the S4 document, since
// spec.md §3.2 enumerates exactly three persisted block types.
func (id *Identity) HintLock() error {
	id.mu.Lock()
	defer id.mu.Unlock()

	if id.state != stateDecrypted {
		return sqrlerrors.ErrCredentialRequired
	}
	if !id.ilkResident || !id.mkResident {
		return sqrlerrors.ErrCredentialRequired
	}
	if int(id.hintLength) > len(id.password) {
		return sqrlerrors.NewValidationError("hintLength", "exceeds password length")
	}

	hintSecret := id.password[:id.hintLength]

	bundle := &hintLockBundle{hasIUK: id.iukResident}
	salt, err := sqrlcrypto.RandomBytes(block.SaltSize)
	if err != nil {
		return err
	}
	copy(bundle.salt[:], salt)
	iv, err := sqrlcrypto.RandomBytes(block.IVSize)
	if err != nil {
		return err
	}
	copy(bundle.iv[:], iv)

	key, iterations, err := sqrlcrypto.EnScrypt([]byte(hintSecret), bundle.salt[:], DefaultLog2N, 0, HintLockTargetDuration, id.progressFunc())
	if err != nil {
		return err
	}
	defer sqrlcrypto.SecureZero(key[:])
	bundle.params = sqrlcrypto.EnScryptParams{Log2N: DefaultLog2N, Iterations: iterations}

	plaintext := append(append(append([]byte{}, id.iuk[:]...), id.ilk[:]...), id.mk[:]...)
	defer sqrlcrypto.SecureZero(plaintext)

	ciphertext, tag, err := sqrlcrypto.AESGCMEncrypt(key[:], bundle.iv[:], nil, plaintext)
	if err != nil {
		return err
	}
	bundle.ciphertext = ciphertext
	copy(bundle.tag[:], tag)

	id.hint = bundle
	sqrlcrypto.SecureZero(id.iuk[:])
	id.iukResident = false
	sqrlcrypto.SecureZero(id.ilk[:])
	id.ilkResident = false
	sqrlcrypto.SecureZero(id.mk[:])
	id.mkResident = false
	id.state = stateHintLocked
	log.Debug("identity hint-locked")
	return nil
}

// HintUnlock reverses HintLock given the same leading password
// characters. Returns ErrBadTag on a wrong hint, with no other
// distinguishing error, so a wrong guess looks identical to any other
// authentication failure.
func (id *Identity) HintUnlock(hint string) error {
	id.mu.Lock()
	defer id.mu.Unlock()

	if id.state != stateHintLocked || id.hint == nil {
		return sqrlerrors.ErrCredentialRequired
	}

	key, _, err := sqrlcrypto.EnScrypt([]byte(hint), id.hint.salt[:], id.hint.params.Log2N, id.hint.params.Iterations, 0, id.progressFunc())
	if err != nil {
		return err
	}
	defer sqrlcrypto.SecureZero(key[:])

	plaintext, err := sqrlcrypto.AESGCMDecrypt(key[:], id.hint.iv[:], nil, id.hint.ciphertext, id.hint.tag[:])
	if err != nil {
		return err
	}
	if len(plaintext) != 96 {
		sqrlcrypto.SecureZero(plaintext)
		return sqrlerrors.ErrMalformedBlock
	}
	defer sqrlcrypto.SecureZero(plaintext)

	copy(id.iuk[:], plaintext[:32])
	id.iukResident = id.hint.hasIUK
	copy(id.ilk[:], plaintext[32:64])
	id.ilkResident = true
	copy(id.mk[:], plaintext[64:96])
	id.mkResident = true

	sqrlcrypto.SecureZero(id.hint.ciphertext)
	id.hint = nil
	id.state = stateDecrypted
	log.Debug("identity hint-unlocked")
	return nil
}
