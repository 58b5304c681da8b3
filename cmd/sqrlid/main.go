// sqrlid is a command-line client for the SQRL identity core: it
// creates, inspects, rekeys, and recovers S4 identity documents.
//
//   - EnScrypt (scrypt-based) password and rescue-code key derivation
//   - AES-256-GCM authenticated encryption of the key hierarchy
//   - X25519 Identity Lock Key derivation, EnHash Identity Master Key
package main

import (
	"github.com/complex-gh/sqrlid/internal/cli"
)

const version = "v0.1.0"

func main() {
	cli.Execute(version)
}
