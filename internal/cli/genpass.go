package cli

import (
	"fmt"

	"github.com/complex-gh/sqrlid/internal/util"

	"github.com/spf13/cobra"
)

var genpassCmd = &cobra.Command{
	Use:   "genpass",
	Short: "Generate a strong random password for protecting an identity",
	Long: `Genpass generates a cryptographically random password suitable for
use as a SQRL identity password, drawn from the selected character sets
(uppercase, lowercase, digits and, optionally, symbols).

Example:
  sqrlid genpass --length 24 --symbols`,
	RunE: runGenpass,
}

var (
	genpassLength  int
	genpassUpper   bool
	genpassLower   bool
	genpassNumbers bool
	genpassSymbols bool
)

func init() {
	rootCmd.AddCommand(genpassCmd)

	genpassCmd.Flags().IntVarP(&genpassLength, "length", "l", 20, "Password length")
	genpassCmd.Flags().BoolVar(&genpassUpper, "upper", true, "Include uppercase letters")
	genpassCmd.Flags().BoolVar(&genpassLower, "lower", true, "Include lowercase letters")
	genpassCmd.Flags().BoolVar(&genpassNumbers, "numbers", true, "Include digits")
	genpassCmd.Flags().BoolVar(&genpassSymbols, "symbols", false, "Include symbols")
}

func runGenpass(cmd *cobra.Command, args []string) error {
	password, err := util.GenPassword(util.PassgenOptions{
		Length:  genpassLength,
		Upper:   genpassUpper,
		Lower:   genpassLower,
		Numbers: genpassNumbers,
		Symbols: genpassSymbols,
	})
	if err != nil {
		return fmt.Errorf("generating password: %w", err)
	}
	if password == "" {
		return fmt.Errorf("no character set enabled or length <= 0")
	}
	fmt.Println(password)
	return nil
}
