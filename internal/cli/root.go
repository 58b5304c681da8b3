package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/complex-gh/sqrlid/internal/log"

	"github.com/spf13/cobra"
)

// Version is set by main.go
var Version = "dev"

var verbose bool

// rootCmd is the base command when called without subcommands
var rootCmd = &cobra.Command{
	Use:   "sqrlid",
	Short: "SQRL identity management tool",
	Long: `sqrlid manages SQRL client-side identities (S4 documents):
  - EnScrypt (scrypt-based) password and rescue-code key derivation
  - AES-256-GCM authenticated encryption of the stored key hierarchy
  - X25519 Identity Lock Key derivation, EnHash Identity Master Key
  - Rekey with retained previous-IUK history
  - Hint-lock / hint-unlock for low-friction re-authentication`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.EnableDebugLogging()
		}
	},
}

// globalReporter lets the interrupt handler below cancel an in-flight
// EnScrypt run.
var globalReporter *Reporter

// Execute runs the CLI application.
func Execute(version string) bool {
	Version = version
	rootCmd.Version = version

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		if globalReporter != nil {
			globalReporter.Cancel()
			fmt.Fprintln(os.Stderr, "\nCancelling operation...")
		} else {
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	return true
}

func init() {
	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging to stderr")
}
