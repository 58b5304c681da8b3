package errors

import (
	"errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrShortBuffer", ErrShortBuffer},
		{"ErrOutOfRange", ErrOutOfRange},
		{"ErrBadTag", ErrBadTag},
		{"ErrMalformedBlock", ErrMalformedBlock},
		{"ErrNoEntropy", ErrNoEntropy},
		{"ErrHintLocked", ErrHintLocked},
		{"ErrCancelled", ErrCancelled},
		{"ErrCredentialRequired", ErrCredentialRequired},
		{"ErrOutOfMemory", ErrOutOfMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Error("sentinel error should not be nil")
			}
			if tt.err.Error() == "" {
				t.Error("sentinel error should have a message")
			}
		})
	}
}

func TestCryptoError(t *testing.T) {
	baseErr := errors.New("underlying error")
	cryptoErr := NewCryptoError("rand", baseErr)

	if cryptoErr.Error() != "crypto rand: underlying error" {
		t.Errorf("unexpected error message: %s", cryptoErr.Error())
	}

	if cryptoErr.Unwrap() != baseErr {
		t.Error("Unwrap should return underlying error")
	}

	cryptoErrNil := NewCryptoError("enscrypt", nil)
	if cryptoErrNil.Error() != "crypto enscrypt failed" {
		t.Errorf("unexpected error message for nil: %s", cryptoErrNil.Error())
	}
}

func TestBlockError(t *testing.T) {
	baseErr := errors.New("decode failed")
	blockErr := NewBlockError("read", "length", baseErr)

	if blockErr.Error() != "block read length: decode failed" {
		t.Errorf("unexpected error message: %s", blockErr.Error())
	}

	if blockErr.Unwrap() != baseErr {
		t.Error("Unwrap should return underlying error")
	}

	blockErrNoField := NewBlockError("seek", "", baseErr)
	if blockErrNoField.Error() != "block seek: decode failed" {
		t.Errorf("unexpected error message: %s", blockErrNoField.Error())
	}
}

func TestValidationError(t *testing.T) {
	validErr := NewValidationError("password", "must be at least 8 characters")

	expected := "validation: password: must be at least 8 characters"
	if validErr.Error() != expected {
		t.Errorf("unexpected error message: %s", validErr.Error())
	}
}

func TestIs(t *testing.T) {
	if !Is(ErrCancelled, ErrCancelled) {
		t.Error("Is should return true for same error")
	}

	if Is(ErrCancelled, ErrBadTag) {
		t.Error("Is should return false for different errors")
	}
}

func TestAs(t *testing.T) {
	cryptoErr := NewCryptoError("test", errors.New("test"))

	var target *CryptoError
	if !As(cryptoErr, &target) {
		t.Error("As should find CryptoError")
	}

	if target.Op != "test" {
		t.Errorf("unexpected Op: %s", target.Op)
	}
}

func TestWrap(t *testing.T) {
	baseErr := errors.New("base")
	wrapped := Wrap(baseErr, "context")

	if wrapped.Error() != "context: base" {
		t.Errorf("unexpected wrapped message: %s", wrapped.Error())
	}

	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestConvenienceFunctions(t *testing.T) {
	if !IsCancelled(ErrCancelled) {
		t.Error("IsCancelled should return true for ErrCancelled")
	}

	if IsCancelled(ErrBadTag) {
		t.Error("IsCancelled should return false for other errors")
	}

	if !IsBadTag(ErrBadTag) {
		t.Error("IsBadTag should return true for ErrBadTag")
	}

	if !IsHintLocked(ErrHintLocked) {
		t.Error("IsHintLocked should return true for ErrHintLocked")
	}
}
