package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/ownership-manager/pkg/transfer"
)

var transferCmd = &cobra.Command{
	Use:   "transfer <object-id>...",
	Short: "Transfer ownership of objects to another user",
	Long: `Transfer ownership of apps and reload tasks to another user.

Objects are looked up in the server's latest snapshot. Every attempt is
written to the server's audit log, successful or not.

Example:
  ownerctl transfer --server prod --owner 7f1c... --reason "leaver" a1b2... c3d4...`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("server")
		owner, _ := cmd.Flags().GetString("owner")
		reason, _ := cmd.Flags().GetString("reason")
		changedBy, _ := cmd.Flags().GetString("changed-by")
		output, _ := cmd.Flags().GetString("output")
		if name == "" || owner == "" {
			fail("--server and --owner are required")
		}

		a := mustApp()
		defer a.Close()

		ctx := context.Background()
		cfg, err := a.tenants.ConfigByName(ctx, name)
		if err != nil {
			fail("Cannot transfer on %s: %v", name, err)
		}

		result := a.transfers.Transfer(ctx, *cfg, transfer.Request{
			ObjectIDs:  args,
			NewOwnerID: owner,
			Reason:     reason,
			ChangedBy:  changedBy,
		})

		if output == "json" {
			printJSON(result)
		} else {
			fmt.Printf("Succeeded: %d\nFailed: %d\n", result.Succeeded, result.Failed)
			for _, e := range result.Errors {
				fmt.Printf("  %s\n", e)
			}
		}
		if result.Failed > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)
	transferCmd.Flags().String("server", "", "name of the server")
	transferCmd.Flags().String("owner", "", "id of the new owner")
	transferCmd.Flags().String("reason", "", "reason recorded in the audit log")
	transferCmd.Flags().String("changed-by", os.Getenv("USER"), "who is making the change")
	transferCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}
