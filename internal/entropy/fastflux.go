package entropy

import (
	"encoding/binary"
	"runtime"
	"time"
)

// fastFluxSize is the width of one fast-flux sample. The original
// implementation's struct sqrl_fast_flux_entropy is platform-specific
// (cursor position on Windows/macOS, /dev/urandom-adjacent counters on
// Linux); this is a portable substitute drawing on values Go exposes
// on every platform: wall clock, monotonic clock, and runtime memory
// statistics, all of which vary from call to call under normal
// process activity.
const fastFluxSize = 40

// sampleFastFlux captures a snapshot of cheap, rapidly-varying
// process and runtime state for mixing into the entropy pool between
// draws. It is not a source of cryptographic entropy by itself —
// it supplements, never replaces, caller-supplied entropy via Add.
func sampleFastFlux() [fastFluxSize]byte {
	var buf [fastFluxSize]byte

	now := time.Now()
	binary.LittleEndian.PutUint64(buf[0:8], uint64(now.UnixNano()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	binary.LittleEndian.PutUint64(buf[8:16], m.Mallocs)
	binary.LittleEndian.PutUint64(buf[16:24], m.Frees)
	binary.LittleEndian.PutUint64(buf[24:32], m.PauseTotalNs)
	binary.LittleEndian.PutUint32(buf[32:36], uint32(m.NumGC))
	binary.LittleEndian.PutUint32(buf[36:40], uint32(runtime.NumGoroutine()))

	return buf
}
