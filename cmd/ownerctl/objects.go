package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/ownership-manager/pkg/inventory"
	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
)

var objectsCmd = &cobra.Command{
	Use:   "objects",
	Short: "List objects from a server's latest snapshot",
	Long: `List apps and reload tasks from a server's latest snapshot.

Example:
  ownerctl objects --server prod --type app --owner 7f1c...
  ownerctl objects --server prod --stream unpublished --search sales`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		typ, _ := flags.GetString("type")
		output, _ := flags.GetString("output")

		var f inventory.Filter
		if typ != "" {
			parsed, err := model.ParseObjectType(typ)
			if err != nil {
				fail("%v", err)
			}
			f.ObjectType = parsed
		}
		f.OwnerID, _ = flags.GetString("owner")
		f.StreamID, _ = flags.GetString("stream")
		f.Search, _ = flags.GetString("search")

		a, slug := mustTenantSlug(cmd)
		defer a.Close()

		objects, err := a.inventory.ListObjects(context.Background(), slug, f)
		if err != nil {
			fail("Failed to list objects: %v", err)
		}
		if output == "json" {
			printJSON(objects)
			return
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tTYPE\tNAME\tOWNER\tSTREAM")
		for _, o := range objects {
			stream := ""
			if o.StreamName != nil {
				stream = *o.StreamName
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.ObjectID, o.ObjectType, o.ObjectName, o.OwnerName, stream)
		}
		_ = w.Flush()
	},
}

var ownersCmd = &cobra.Command{
	Use:   "owners",
	Short: "List owners in a server's latest snapshot",
	Run: func(cmd *cobra.Command, args []string) {
		a, slug := mustTenantSlug(cmd)
		defer a.Close()

		owners, err := a.inventory.Owners(context.Background(), slug)
		if err != nil {
			fail("Failed to list owners: %v", err)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tNAME\tDIRECTORY\tUSER")
		for _, o := range owners {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.OwnerID, o.OwnerName, o.OwnerDirectory, o.OwnerUserID)
		}
		_ = w.Flush()
	},
}

var streamsCmd = &cobra.Command{
	Use:   "streams",
	Short: "List streams in a server's latest snapshot",
	Run: func(cmd *cobra.Command, args []string) {
		a, slug := mustTenantSlug(cmd)
		defer a.Close()

		streams, err := a.inventory.Streams(context.Background(), slug)
		if err != nil {
			fail("Failed to list streams: %v", err)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tNAME")
		for _, s := range streams {
			id := inventory.UnpublishedStreamID
			if s.StreamID != nil {
				id = *s.StreamID
			}
			fmt.Fprintf(w, "%s\t%s\n", id, s.StreamName)
		}
		_ = w.Flush()
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users captured from a server",
	Run: func(cmd *cobra.Command, args []string) {
		a, slug := mustTenantSlug(cmd)
		defer a.Close()

		users, err := a.inventory.Users(context.Background(), slug)
		if err != nil {
			fail("Failed to list users: %v", err)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tNAME\tDIRECTORY\tUSER\tSTATUS")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.UserID, u.UserName, u.UserDirectory, u.UserIDAttr, u.Status)
		}
		_ = w.Flush()
	},
}

var generationsCmd = &cobra.Command{
	Use:   "generations",
	Short: "List a server's snapshot generations, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		a, slug := mustTenantSlug(cmd)
		defer a.Close()

		gens, err := a.inventory.Generations(context.Background(), slug)
		if err != nil {
			fail("Failed to list generations: %v", err)
		}
		if len(gens) == 0 {
			fmt.Fprintln(os.Stderr, "No snapshots yet, run 'ownerctl sync' first")
			return
		}
		for _, g := range gens {
			fmt.Printf("%s\t%s\n", g.Date.Format("2006-01-02"), g.Table)
		}
	},
}

// mustTenantSlug builds the app and resolves the --server flag to a slug.
func mustTenantSlug(cmd *cobra.Command) (*app, string) {
	name, _ := cmd.Flags().GetString("server")
	if name == "" {
		fail("--server is required")
	}
	a := mustApp()
	cfg, err := a.tenants.ConfigByName(context.Background(), name)
	if err != nil {
		a.Close()
		fail("Cannot read %s: %v", name, err)
	}
	return a, cfg.Slug
}

func init() {
	for _, cmd := range []*cobra.Command{objectsCmd, ownersCmd, streamsCmd, usersCmd, generationsCmd} {
		rootCmd.AddCommand(cmd)
		cmd.Flags().String("server", "", "name of the server")
	}
	objectsCmd.Flags().String("type", "", "object type (app or reload_task)")
	objectsCmd.Flags().String("owner", "", "owner id")
	objectsCmd.Flags().String("stream", "", "stream id, or 'unpublished'")
	objectsCmd.Flags().String("search", "", "case-insensitive name substring")
	objectsCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}
