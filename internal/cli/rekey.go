package cli

import (
	"fmt"
	"os"

	"github.com/complex-gh/sqrlid/internal/entropy"
	"github.com/complex-gh/sqrlid/internal/identity"

	"github.com/spf13/cobra"
)

var rekeyCmd = &cobra.Command{
	Use:   "rekey",
	Short: "Rotate an identity's IUK and rescue code",
	Long: `Rekey generates a fresh Identity Unlock Key and rescue code, retaining
the previous IUK (and up to three before it) so sites that recognize the
old identity can still be re-associated. The current IUK is stored under
the rescue code, so both the password and the current rescue code are
needed. The password stays the same unless -n/--new-password is given.

Examples:
  sqrlid rekey -i identity.sqrl -o identity.sqrl -p "mypassword" -r "123456789012345678901234"
  sqrlid rekey -i identity.sqrl -o new.sqrl -p "old" -n "new"`,
	RunE: runRekey,
}

var (
	rekeyInput          string
	rekeyOutput         string
	rekeyPassword       string
	rekeyNewPassword    string
	rekeyRescueCode     string
	rekeyPasswordStdin  bool
	rekeyText           bool
	rekeyQuiet          bool
	rekeyYes            bool
)

func init() {
	rootCmd.AddCommand(rekeyCmd)

	rekeyCmd.Flags().StringVarP(&rekeyInput, "input", "i", "", "Input identity file")
	rekeyCmd.Flags().StringVarP(&rekeyOutput, "output", "o", "", "Output identity file (defaults to overwriting input)")
	rekeyCmd.Flags().StringVarP(&rekeyPassword, "password", "p", "", "Current identity password")
	rekeyCmd.Flags().StringVarP(&rekeyNewPassword, "new-password", "n", "", "New password (keeps the current one if omitted)")
	rekeyCmd.Flags().StringVarP(&rekeyRescueCode, "rescue-code", "r", "", "Current 24-digit rescue code")
	rekeyCmd.Flags().BoolVarP(&rekeyPasswordStdin, "password-stdin", "P", false, "Read current password from stdin")
	rekeyCmd.Flags().BoolVar(&rekeyText, "text", false, "Write the SQRLDATA base64 text export instead of the raw binary form")
	rekeyCmd.Flags().BoolVarP(&rekeyQuiet, "quiet", "q", false, "Suppress progress output")
	rekeyCmd.Flags().BoolVarP(&rekeyYes, "yes", "y", false, "Overwrite output file without prompting")
	_ = rekeyCmd.MarkFlagRequired("input")
}

func runRekey(cmd *cobra.Command, args []string) error {
	output := rekeyOutput
	if output == "" {
		output = rekeyInput
	}
	if !rekeyYes && output != rekeyInput {
		if _, err := os.Stat(output); err == nil && !confirmOverwrite(output) {
			return fmt.Errorf("operation cancelled")
		}
	}

	data, err := os.ReadFile(rekeyInput)
	if err != nil {
		return fmt.Errorf("reading %s: %w", rekeyInput, err)
	}

	password, err := resolvePassword(rekeyPassword, rekeyPasswordStdin, false)
	if err != nil {
		return err
	}

	rescueCode := rekeyRescueCode
	if rescueCode == "" {
		rescueCode, err = readPasswordSecure("Rescue code: ")
		if err != nil {
			return err
		}
	}

	pool := entropy.New()
	defer pool.Stop()

	reporter := NewReporter(rekeyQuiet)
	globalReporter = reporter

	id, err := identity.Load(data, pool, identity.WithReporter(reporter))
	if err != nil {
		return fmt.Errorf("parsing identity: %w", err)
	}
	id.SetPassword(password)
	id.SetRescueCode(rescueCode)

	if _, err := id.Key(identity.SlotMK); err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}

	if err := id.Rekey(); err != nil {
		return fmt.Errorf("rekeying: %w", err)
	}

	if rekeyNewPassword != "" {
		warnIfWeakPassword(rekeyNewPassword)
		id.SetPassword(rekeyNewPassword)
	}

	newRescueCode, err := id.GetRescueCode()
	if err != nil {
		return fmt.Errorf("retrieving new rescue code: %w", err)
	}

	out, err := id.Save(rekeyText)
	reporter.Finish()
	if err != nil {
		return fmt.Errorf("saving identity: %w", err)
	}

	if err := os.WriteFile(output, out, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	reporter.PrintSuccess("Identity rekeyed: %s", output)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "New rescue code (write this down, it will not be shown again):")
	fmt.Fprintln(os.Stderr, formatRescueCode(newRescueCode))
	return nil
}
