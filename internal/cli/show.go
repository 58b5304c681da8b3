package cli

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/complex-gh/sqrlid/internal/entropy"
	"github.com/complex-gh/sqrlid/internal/identity"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display metadata (and optionally key material) for an identity",
	Long: `Show loads an S4 identity document and prints its EnScrypt and
block metadata. Pass --reveal-secrets to also decrypt and print the key
hierarchy in hex, which requires the password.

Examples:
  sqrlid show -i identity.sqrl
  sqrlid show -i identity.sqrl --reveal-secrets -p "mypassword"`,
	RunE: runShow,
}

var (
	showInput          string
	showPassword       string
	showPasswordStdin  bool
	showRevealSecrets  bool
)

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVarP(&showInput, "input", "i", "", "Input identity file")
	showCmd.Flags().StringVarP(&showPassword, "password", "p", "", "Identity password")
	showCmd.Flags().BoolVarP(&showPasswordStdin, "password-stdin", "P", false, "Read password from stdin")
	showCmd.Flags().BoolVar(&showRevealSecrets, "reveal-secrets", false, "Decrypt and print IUK/ILK/MK in hex")
	_ = showCmd.MarkFlagRequired("input")
}

func runShow(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(showInput)
	if err != nil {
		return fmt.Errorf("reading %s: %w", showInput, err)
	}

	pool := entropy.New()
	defer pool.Stop()

	id, err := identity.Load(data, pool)
	if err != nil {
		return fmt.Errorf("parsing identity: %w", err)
	}

	info := id.Info()
	fmt.Printf("State:             %s\n", info.State)
	fmt.Printf("EnScrypt log2(N):  %d\n", info.Log2N)
	fmt.Printf("PW verify target:  %ds\n", info.PWVerifySec)
	fmt.Printf("Rescue verify tgt: %ds\n", info.RescueVerifySec)
	fmt.Printf("Hint length:       %d\n", info.HintLength)
	fmt.Printf("Idle timeout:      %dm\n", info.IdleTimeoutMin)
	fmt.Printf("Option flags:      0x%04x\n", info.OptionFlags)
	fmt.Printf("Edition count:     %d\n", info.EditionCount)
	fmt.Printf("Has previous IUKs: %v\n", info.HasPrevious)

	if !showRevealSecrets {
		return nil
	}

	password, err := resolvePassword(showPassword, showPasswordStdin, false)
	if err != nil {
		return err
	}
	id.SetPassword(password)

	// IUK is wrapped under the rescue code, not the password, so it
	// stays unavailable here unless the caller separately supplies one
	// via `sqrlid recover`.
	iuk, iukErr := id.Key(identity.SlotIUK)
	ilk, err := id.Key(identity.SlotILK)
	if err != nil {
		return fmt.Errorf("decrypting ILK: %w", err)
	}
	mk, err := id.Key(identity.SlotMK)
	if err != nil {
		return fmt.Errorf("decrypting MK: %w", err)
	}

	fmt.Println()
	if iukErr == nil {
		fmt.Printf("IUK: %s\n", hex.EncodeToString(iuk[:]))
	} else {
		fmt.Println("IUK: unavailable (no rescue code supplied; see `sqrlid recover`)")
	}
	fmt.Printf("ILK: %s\n", hex.EncodeToString(ilk[:]))
	fmt.Printf("MK:  %s\n", hex.EncodeToString(mk[:]))
	return nil
}
