package cli

import (
	"fmt"
	"os"

	"github.com/complex-gh/sqrlid/internal/entropy"
	"github.com/complex-gh/sqrlid/internal/identity"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new SQRL identity",
	Long: `Create generates a fresh SQRL identity: an Identity Unlock Key and a
24-digit rescue code, each drawn independently from the entropy pool, then
derives the Identity Lock Key and Identity Master Key and writes an
encrypted S4 document protected by a password.

The rescue code is shown exactly once, since it is never stored on disk
in recoverable form - only an EnScrypt-derived key over it is persisted.
Write it down.

Examples:
  sqrlid create -o identity.sqrl
  sqrlid create -o identity.sqrl --text -p "mypassword"`,
	RunE: runCreate,
}

var (
	createOutput      string
	createPassword    string
	createPasswordStdin bool
	createText        bool
	createLog2N       uint8
	createPWVerify    uint8
	createRescueVerify uint8
	createHintLength  uint8
	createQuiet       bool
	createYes         bool
)

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVarP(&createOutput, "output", "o", "identity.sqrl", "Output identity file path")
	createCmd.Flags().StringVarP(&createPassword, "password", "p", "", "Identity password")
	createCmd.Flags().BoolVarP(&createPasswordStdin, "password-stdin", "P", false, "Read password from stdin")
	createCmd.Flags().BoolVar(&createText, "text", false, "Write the SQRLDATA base64 text export instead of the raw binary form")
	createCmd.Flags().Uint8Var(&createLog2N, "log2n", identity.DefaultLog2N, "EnScrypt log2(N) cost parameter")
	createCmd.Flags().Uint8Var(&createPWVerify, "pw-verify-sec", identity.DefaultPWVerifySec, "Target seconds for password EnScrypt verification")
	createCmd.Flags().Uint8Var(&createRescueVerify, "rescue-verify-sec", identity.DefaultRescueVerifySec, "Target seconds for rescue-code EnScrypt verification")
	createCmd.Flags().Uint8Var(&createHintLength, "hint-length", 4, "Number of leading password characters used for hint-lock")
	createCmd.Flags().BoolVarP(&createQuiet, "quiet", "q", false, "Suppress progress output")
	createCmd.Flags().BoolVarP(&createYes, "yes", "y", false, "Overwrite output file without prompting")
}

func runCreate(cmd *cobra.Command, args []string) error {
	if !createYes {
		if _, err := os.Stat(createOutput); err == nil {
			if !confirmOverwrite(createOutput) {
				return fmt.Errorf("operation cancelled")
			}
		}
	}

	password, err := resolvePassword(createPassword, createPasswordStdin, true)
	if err != nil {
		return err
	}
	warnIfWeakPassword(password)

	pool := entropy.New()
	defer pool.Stop()

	reporter := NewReporter(createQuiet)
	globalReporter = reporter

	id, err := identity.Create(pool, identity.WithReporter(reporter))
	if err != nil {
		return fmt.Errorf("creating identity: %w", err)
	}
	id.SetPassword(password)
	id.SetScryptCost(createLog2N)
	id.SetVerifyDurations(createPWVerify, createRescueVerify)
	id.SetHintLength(createHintLength)

	rescueCode, err := id.GetRescueCode()
	if err != nil {
		return fmt.Errorf("retrieving rescue code: %w", err)
	}

	data, err := id.Save(createText)
	reporter.Finish()
	if err != nil {
		return fmt.Errorf("saving identity: %w", err)
	}

	if err := os.WriteFile(createOutput, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", createOutput, err)
	}

	reporter.PrintSuccess("Identity created: %s", createOutput)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Rescue code (write this down, it will not be shown again):")
	fmt.Fprintln(os.Stderr, formatRescueCode(rescueCode))
	return nil
}

// formatRescueCode groups a 24-digit rescue code into four-digit
// clusters for readability, matching how SQRL clients typically
// display it for transcription.
func formatRescueCode(code string) string {
	out := make([]byte, 0, len(code)+len(code)/4)
	for i, c := range code {
		if i > 0 && i%4 == 0 {
			out = append(out, '-')
		}
		out = append(out, byte(c))
	}
	return string(out)
}
