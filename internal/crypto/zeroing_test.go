package crypto

import (
	"bytes"
	"testing"
)

func TestSecureZero(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	SecureZero(data)

	for i, b := range data {
		if b != 0 {
			t.Errorf("SecureZero: byte %d = %d; want 0", i, b)
		}
	}
}

func TestSecureZeroEmpty(t *testing.T) {
	SecureZero(nil)
	SecureZero([]byte{})
}

func TestSecureZeroLarge(t *testing.T) {
	data := make([]byte, 1024*1024) // 1 MiB
	for i := range data {
		data[i] = byte(i % 256)
	}

	SecureZero(data)

	zeros := make([]byte, len(data))
	if !bytes.Equal(data, zeros) {
		t.Error("SecureZero did not zero all bytes in large buffer")
	}
}

func TestSecureZeroMultiple(t *testing.T) {
	slice1 := []byte{1, 2, 3}
	slice2 := []byte{4, 5, 6, 7}
	slice3 := []byte{8, 9}

	SecureZeroMultiple(slice1, slice2, slice3)

	for i, b := range slice1 {
		if b != 0 {
			t.Errorf("slice1[%d] = %d; want 0", i, b)
		}
	}
	for i, b := range slice2 {
		if b != 0 {
			t.Errorf("slice2[%d] = %d; want 0", i, b)
		}
	}
	for i, b := range slice3 {
		if b != 0 {
			t.Errorf("slice3[%d] = %d; want 0", i, b)
		}
	}
}

func TestSecureZeroMultipleEmpty(t *testing.T) {
	SecureZeroMultiple()
	SecureZeroMultiple(nil)
	SecureZeroMultiple(nil, []byte{}, nil)
}

func TestSecureZeroHash(t *testing.T) {
	SecureZeroHash(nil)

	h := NewHMAC(make([]byte, 32))
	h.Write([]byte("test data"))
	SecureZeroHash(h)
}

func TestKeyMaterial(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	km := NewKeyMaterial(data)

	if !bytes.Equal(km.Bytes(), data) {
		t.Error("Bytes() should return equivalent data")
	}

	if &km.Bytes()[0] == &data[0] {
		t.Error("KeyMaterial should make a copy of data")
	}

	if km.Len() != len(data) {
		t.Errorf("Len() = %d; want %d", km.Len(), len(data))
	}

	if km.IsClosed() {
		t.Error("IsClosed() should be false before Close()")
	}
}

func TestKeyMaterialClose(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

	km := NewKeyMaterial(data)
	internalData := km.Bytes()

	km.Close()

	if !km.IsClosed() {
		t.Error("IsClosed() should be true after Close()")
	}

	if km.Bytes() != nil {
		t.Error("Bytes() should return nil after Close()")
	}

	if km.Len() != 0 {
		t.Errorf("Len() = %d; want 0 after Close()", km.Len())
	}

	zeros := make([]byte, len(internalData))
	if !bytes.Equal(internalData, zeros) {
		t.Error("Internal data should be zeroed after Close()")
	}
}

func TestKeyMaterialCloseIdempotent(t *testing.T) {
	km := NewKeyMaterial([]byte{1, 2, 3, 4})

	km.Close()
	km.Close()
	km.Close()

	if !km.IsClosed() {
		t.Error("Should remain closed after multiple Close() calls")
	}
}

func TestKeyMaterialNil(t *testing.T) {
	km := NewKeyMaterial(nil)

	if km.Bytes() != nil {
		t.Error("Bytes() should return nil for nil input")
	}

	if km.Len() != 0 {
		t.Error("Len() should be 0 for nil input")
	}

	km.Close()
}

func TestSecretMaterial(t *testing.T) {
	sm := &SecretMaterial{
		IUK:     []byte{1, 2, 3, 4},
		ILK:     []byte{5, 6, 7, 8},
		MK:      []byte{9, 10, 11, 12},
		PIUK:    []byte{13, 14, 15, 16},
		HintKey: []byte{17, 18, 19, 20},
	}

	iukRef := sm.IUK
	ilkRef := sm.ILK
	mkRef := sm.MK
	piukRef := sm.PIUK
	hintRef := sm.HintKey

	sm.Close()

	if sm.IUK != nil {
		t.Error("IUK should be nil after Close()")
	}
	if sm.ILK != nil {
		t.Error("ILK should be nil after Close()")
	}
	if sm.MK != nil {
		t.Error("MK should be nil after Close()")
	}
	if sm.PIUK != nil {
		t.Error("PIUK should be nil after Close()")
	}
	if sm.HintKey != nil {
		t.Error("HintKey should be nil after Close()")
	}

	zeros4 := make([]byte, 4)
	if !bytes.Equal(iukRef, zeros4) {
		t.Error("IUK data should be zeroed")
	}
	if !bytes.Equal(ilkRef, zeros4) {
		t.Error("ILK data should be zeroed")
	}
	if !bytes.Equal(mkRef, zeros4) {
		t.Error("MK data should be zeroed")
	}
	if !bytes.Equal(piukRef, zeros4) {
		t.Error("PIUK data should be zeroed")
	}
	if !bytes.Equal(hintRef, zeros4) {
		t.Error("HintKey data should be zeroed")
	}
}

func TestSecretMaterialCloseIdempotent(t *testing.T) {
	sm := &SecretMaterial{IUK: []byte{1, 2, 3, 4}}

	sm.Close()
	sm.Close()
	sm.Close()
}

func TestSecretMaterialNilFields(t *testing.T) {
	sm := &SecretMaterial{}
	sm.Close()
}

func TestSecureZeroConcurrent(t *testing.T) {
	const numGoroutines = 100
	const bufferSize = 1024

	buffers := make([][]byte, numGoroutines)
	for i := range buffers {
		buffers[i] = make([]byte, bufferSize)
		for j := range buffers[i] {
			buffers[i][j] = byte((i + j) % 256)
		}
	}

	done := make(chan bool, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(idx int) {
			SecureZero(buffers[idx])
			done <- true
		}(i)
	}

	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	zeros := make([]byte, bufferSize)
	for i, buf := range buffers {
		if !bytes.Equal(buf, zeros) {
			t.Errorf("Buffer %d not properly zeroed after concurrent SecureZero", i)
		}
	}
}

func TestKeyMaterialConcurrentClose(t *testing.T) {
	const numGoroutines = 100

	km := NewKeyMaterial([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16})
	internalData := km.Bytes()

	done := make(chan bool, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			km.Close()
			done <- true
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	if !km.IsClosed() {
		t.Error("KeyMaterial should be closed after concurrent Close()")
	}

	zeros := make([]byte, len(internalData))
	if !bytes.Equal(internalData, zeros) {
		t.Error("KeyMaterial data should be zeroed after concurrent Close()")
	}
}

func TestSecretMaterialConcurrentClose(t *testing.T) {
	const numGoroutines = 100

	sm := &SecretMaterial{
		IUK:     []byte{1, 2, 3, 4, 5, 6, 7, 8},
		ILK:     []byte{9, 10, 11, 12, 13, 14, 15, 16},
		MK:      []byte{17, 18, 19, 20, 21, 22, 23, 24},
		PIUK:    []byte{25, 26, 27, 28, 29, 30, 31, 32},
		HintKey: []byte{33, 34, 35, 36, 37, 38, 39, 40},
	}

	iukRef := sm.IUK
	hintRef := sm.HintKey

	done := make(chan bool, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			sm.Close()
			done <- true
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	zeros8 := make([]byte, 8)
	if !bytes.Equal(iukRef, zeros8) {
		t.Error("IUK should be zeroed after concurrent Close()")
	}
	if !bytes.Equal(hintRef, zeros8) {
		t.Error("HintKey should be zeroed after concurrent Close()")
	}
}
