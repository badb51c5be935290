package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/tenant"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage registered Qlik Sense servers",
	Long:  `Register, inspect, update and deactivate Qlik Sense servers.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'tenant' requires a subcommand (register, list, show, update, deactivate, test)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var tenantRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a Qlik Sense server",
	Long: `Register a Qlik Sense server.

The certificate paths are stored encrypted. The server's users and audit
tables are created as part of registration.

Example:
  ownerctl tenant register --name prod --url https://qlik.example.com:4242 \
      --cert /certs/client.pem --key /certs/client_key.pem --root-cert /certs/root.pem`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		req := tenant.RegisterRequest{}
		req.Name, _ = flags.GetString("name")
		req.ServerURL, _ = flags.GetString("url")
		req.CertPath, _ = flags.GetString("cert")
		req.KeyPath, _ = flags.GetString("key")
		req.RootCertPath, _ = flags.GetString("root-cert")
		req.UserDirectory, _ = flags.GetString("user-directory")
		req.UserID, _ = flags.GetString("user-id")
		if flags.Changed("notes") {
			notes, _ := flags.GetString("notes")
			req.Notes = &notes
		}

		a := mustApp()
		defer a.Close()

		id, err := a.tenants.Register(context.Background(), req)
		if err != nil && id == 0 {
			fail("Registration failed: %v", err)
		}
		if err != nil {
			fail("Registered tenant %d but table provisioning failed: %v", id, err)
		}
		fmt.Printf("Registered tenant %d\n", id)
	},
}

var tenantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered servers",
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		a := mustApp()
		defer a.Close()

		tenants, err := a.tenants.List(context.Background())
		if err != nil {
			fail("Failed to list tenants: %v", err)
		}
		if output == "json" {
			printJSON(tenants)
			return
		}
		if len(tenants) == 0 {
			fmt.Println("No servers registered")
			return
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tNAME\tURL\tSTATUS")
		for _, t := range tenants {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, t.Name, t.ServerURL, status(t.IsActive))
		}
		_ = w.Flush()
	},
}

var tenantShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one registered server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])

		a := mustApp()
		defer a.Close()

		t, err := a.tenants.Get(context.Background(), id)
		if err != nil {
			fail("Failed to get tenant: %v", err)
		}
		printJSON(t)
	},
}

var tenantUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a registered server",
	Long: `Update a registered server. Only the flags given are changed.

Example:
  ownerctl tenant update 3 --url https://qlik2.example.com:4242`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		flags := cmd.Flags()

		var u model.TenantUpdate
		for flag, field := range map[string]**string{
			"name":           &u.Name,
			"url":            &u.ServerURL,
			"cert":           &u.CertPath,
			"key":            &u.KeyPath,
			"root-cert":      &u.RootCertPath,
			"user-directory": &u.UserDirectory,
			"user-id":        &u.UserID,
			"notes":          &u.Notes,
		} {
			if flags.Changed(flag) {
				v, _ := flags.GetString(flag)
				*field = &v
			}
		}
		if u.IsEmpty() {
			fail("Nothing to update")
		}

		a := mustApp()
		defer a.Close()

		ok, err := a.tenants.Update(context.Background(), id, u)
		if err != nil {
			fail("Update failed: %v", err)
		}
		if !ok {
			fail("Tenant %d not updated", id)
		}
		fmt.Printf("Updated tenant %d\n", id)
	},
}

var tenantDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Deactivate a registered server",
	Long:  `Deactivate a registered server. Its tables and audit history are kept.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])

		a := mustApp()
		defer a.Close()

		ok, err := a.tenants.Deactivate(context.Background(), id)
		if err != nil {
			fail("Deactivation failed: %v", err)
		}
		if !ok {
			fail("Tenant %d not found", id)
		}
		fmt.Printf("Deactivated tenant %d\n", id)
	},
}

var tenantTestCmd = &cobra.Command{
	Use:   "test <id>",
	Short: "Test the connection to a registered server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])

		a := mustApp()
		defer a.Close()

		ok, message := a.tenants.TestConnection(context.Background(), id)
		fmt.Println(message)
		if !ok {
			os.Exit(1)
		}
	},
}

func addTenantFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("url", "", "repository service URL, e.g. https://host:4242")
	cmd.Flags().String("cert", "", "client certificate path")
	cmd.Flags().String("key", "", "client key path")
	cmd.Flags().String("root-cert", "", "root certificate path (empty disables verification)")
	cmd.Flags().String("user-directory", "", "service account user directory")
	cmd.Flags().String("user-id", "", "service account user id")
	cmd.Flags().String("notes", "", "free-form notes")
}

func init() {
	rootCmd.AddCommand(tenantCmd)
	tenantCmd.AddCommand(tenantRegisterCmd)
	tenantCmd.AddCommand(tenantListCmd)
	tenantCmd.AddCommand(tenantShowCmd)
	tenantCmd.AddCommand(tenantUpdateCmd)
	tenantCmd.AddCommand(tenantDeactivateCmd)
	tenantCmd.AddCommand(tenantTestCmd)

	addTenantFlags(tenantRegisterCmd)
	addTenantFlags(tenantUpdateCmd)
	tenantListCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}
