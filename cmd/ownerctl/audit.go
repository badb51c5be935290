package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show a server's ownership change history",
	Long: `Show a server's ownership change history, newest first.

Example:
  ownerctl audit --server prod --limit 20`,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		output, _ := cmd.Flags().GetString("output")

		a, slug := mustTenantSlug(cmd)
		defer a.Close()

		if limit <= 0 {
			limit = a.cfg.AuditListLimit
		}
		entries, err := a.audit.List(context.Background(), slug, limit)
		if err != nil {
			fail("Failed to read audit log: %v", err)
		}
		if output == "json" {
			printJSON(entries)
			return
		}
		w := newTable()
		fmt.Fprintln(w, "DATE\tTYPE\tOBJECT\tFROM\tTO\tBY\tSTATUS")
		for _, e := range entries {
			st := e.Status
			if e.ErrorMessage != nil {
				st += ": " + *e.ErrorMessage
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				e.ChangeDate.Format("2006-01-02 15:04:05"), e.ObjectType, e.ObjectName,
				e.OldOwnerName, e.NewOwnerName, e.ChangedBy, st)
		}
		_ = w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().String("server", "", "name of the server")
	auditCmd.Flags().Int("limit", 0, "maximum entries (default from configuration)")
	auditCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}
