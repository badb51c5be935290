package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/ownership-manager/pkg/server"
	"github.com/doodlesbykumbi/ownership-manager/pkg/server/endpoints"
)

const shutdownTimeout = 30 * time.Second

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8000"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8000
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the ownership API server",
	Long: `Run the ownership API server.

The server needs a database URL and OWNERSHIP_ENCRYPTION_KEY. See
'ownerctl configuration show' for every setting and where it comes from.

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")

		a := mustApp()
		defer a.Close()

		if !noMigrate {
			a.logger.Info("running database migrations")
			if err := runMigrations(a.cfg.DatabaseURL); err != nil {
				fail("Migration failed: %v", err)
			}
		}

		s := server.NewServer(a.cfg, a.logger.Named("http"), host, port)
		s.Tenants = a.tenants
		s.Syncer = a.syncer
		s.Transfers = a.transfers
		s.Inventory = a.inventory
		s.Audit = a.audit
		s.HealthStore = a.health
		s.Metrics = a.metrics.Handler()
		endpoints.RegisterAll(s)

		errc := make(chan error, 1)
		go func() { errc <- s.Start() }()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errc:
			if err != nil {
				fail("Server error: %v", err)
			}
		case got := <-sig:
			a.logger.Info("shutting down", zap.String("signal", got.String()))
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := s.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}
