package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/ownership-manager/pkg/vault"
)

var dataKeyCmd = &cobra.Command{
	Use:   "data-key",
	Short: "Manage the credential encryption key",
	Long:  `Manage the credential encryption key`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'data-key' requires a subcommand generate")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var dataKeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a credential encryption key",
	Long: `
Generate a credential encryption key

Use this command to generate a new Base64-encoded 256 bit key. Once generated, this key should be placed into the
environment of ownerctl. It encrypts the certificate paths of every registered server. Changing it makes the
stored credentials unreadable.

Example:

$ export OWNERSHIP_ENCRYPTION_KEY="$(ownerctl data-key generate)"
`,
	Run: func(cmd *cobra.Command, args []string) {
		key, err := vault.GenerateKey()
		if err != nil {
			fail("Failed to generate key: %v", err)
		}
		fmt.Printf("%s", key)
	},
}

func init() {
	rootCmd.AddCommand(dataKeyCmd)
	dataKeyCmd.AddCommand(dataKeyGenerateCmd)
}
