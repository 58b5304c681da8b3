// Package errors provides typed errors for the identity core.
// This enables callers to use errors.Is()/errors.As() for specific error
// handling instead of matching on message strings.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the error kinds named in the identity core's
// error-handling design. Use errors.Is(err, ErrBadTag) etc. to check
// for a specific kind.
var (
	// ErrShortBuffer is returned by Block.read/write when the block does
	// not have the requested number of bytes remaining.
	ErrShortBuffer = errors.New("short buffer")

	// ErrOutOfRange is returned by Block.seek/seekBack when the
	// destination offset is outside the block.
	ErrOutOfRange = errors.New("cursor out of range")

	// ErrBadTag is returned when an AES-GCM authentication tag fails to
	// verify. It is also the uniform response surfaced for any KDF/crypto
	// failure on load, by design, so no oracle reveals which field
	// mismatched.
	ErrBadTag = errors.New("authentication failed")

	// ErrMalformedBlock is returned when a block's declared length does
	// not match its actual contents, or a required field is missing.
	ErrMalformedBlock = errors.New("malformed block")

	// ErrNoEntropy is returned by the non-blocking entropy Get when the
	// pool's estimated entropy is below the requested amount.
	ErrNoEntropy = errors.New("insufficient entropy available")

	// ErrHintLocked is returned by Identity.Key when the requested slot
	// is not resident and the identity is hint-locked.
	ErrHintLocked = errors.New("identity is hint-locked")

	// ErrCancelled is returned when a progress callback returns false/zero
	// and the in-flight operation unwinds.
	ErrCancelled = errors.New("operation cancelled")

	// ErrCredentialRequired is returned when a key slot cannot be
	// materialized without the host supplying a password or rescue code.
	ErrCredentialRequired = errors.New("credential required")

	// ErrOutOfMemory is returned when an allocation needed to service a
	// request could not be satisfied.
	ErrOutOfMemory = errors.New("out of memory")
)

// CryptoError represents an error during a cryptographic operation.
// It wraps the underlying error with operation context.
type CryptoError struct {
	Op  string // Operation name: "rand", "enscrypt", "aesgcm", "hmac", "ed25519", "x25519"
	Err error
}

func (e *CryptoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("crypto %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("crypto %s failed", e.Op)
}

func (e *CryptoError) Unwrap() error { return e.Err }

// NewCryptoError creates a new CryptoError.
func NewCryptoError(op string, err error) *CryptoError {
	return &CryptoError{Op: op, Err: err}
}

// BlockError represents an error encountered while reading or writing an
// S4 block.
type BlockError struct {
	Op    string // "read", "write", "seek", "resize", "init"
	Field string // field name, if applicable
	Err   error
}

func (e *BlockError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("block %s %s: %v", e.Op, e.Field, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("block %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("block %s failed", e.Op)
}

func (e *BlockError) Unwrap() error { return e.Err }

// NewBlockError creates a new BlockError.
func NewBlockError(op, field string, err error) *BlockError {
	return &BlockError{Op: op, Field: field, Err: err}
}

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Is checks if target matches any of our sentinel errors.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsCancelled checks if the error indicates a cancelled operation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsBadTag checks if the error indicates an authentication failure.
func IsBadTag(err error) bool {
	return errors.Is(err, ErrBadTag)
}

// IsHintLocked checks if the error indicates the identity is hint-locked.
func IsHintLocked(err error) bool {
	return errors.Is(err, ErrHintLocked)
}
