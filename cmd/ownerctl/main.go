package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ownerctl",
	Short: "Manage object ownership on Qlik Sense Enterprise servers",
	Long: `Manage object ownership on Qlik Sense Enterprise servers.

ownerctl keeps a registry of Qlik Sense servers, takes daily snapshots of
their apps and reload tasks, and transfers ownership of objects between
users with every change recorded in an audit log.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
