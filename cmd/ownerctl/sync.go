package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/ownership-manager/pkg/syncer"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Snapshot objects and users from Qlik Sense servers",
	Long: `Snapshot apps, reload tasks and users from Qlik Sense servers.

Each run writes into the server's snapshot table for the current day; a
second run on the same day refreshes it in place.

Example:
  ownerctl sync --server prod
  ownerctl sync --all
  ownerctl sync --all --schedule "0 2 * * *"`,
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("server")
		all, _ := cmd.Flags().GetBool("all")
		schedule, _ := cmd.Flags().GetString("schedule")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		if schedule != "" {
			all = true
		}
		if (name == "") == !all {
			fail("Specify exactly one of --server or --all")
		}

		a := mustApp()
		defer a.Close()

		if concurrency <= 0 {
			concurrency = a.cfg.SyncConcurrency
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		switch {
		case schedule != "":
			if err := runScheduledSync(ctx, a, schedule, concurrency); err != nil {
				fail("Scheduler failed: %v", err)
			}
		case all:
			if !syncAll(ctx, a, concurrency) {
				os.Exit(1)
			}
		default:
			cfg, err := a.tenants.ConfigByName(ctx, name)
			if err != nil {
				fail("Cannot sync %s: %v", name, err)
			}
			count, message := a.syncer.Sync(ctx, *cfg)
			fmt.Println(message)
			if strings.HasPrefix(message, syncer.FailurePrefix) {
				os.Exit(1)
			}
			a.logger.Debug("sync finished", zap.Int("objects", count))
		}
	},
}

// syncAll prints one line per tenant and reports whether every tenant synced.
func syncAll(ctx context.Context, a *app, concurrency int) bool {
	outcomes, err := a.syncer.SyncAll(ctx, a.tenants, concurrency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list tenants: %v\n", err)
		return false
	}
	if len(outcomes) == 0 {
		fmt.Println("No active servers to sync")
		return true
	}
	ok := true
	for _, o := range outcomes {
		fmt.Println(o.String())
		ok = ok && o.OK
	}
	return ok
}

type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

// runScheduledSync runs a batch sync on every tick of spec until ctx ends.
// A tick is skipped while the previous batch is still running.
func runScheduledSync(ctx context.Context, a *app, spec string, concurrency int) error {
	logger := cronLogger{s: a.logger.Named("cron").Sugar()}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	_, err := c.AddFunc(spec, func() {
		syncAll(ctx, a, concurrency)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	a.logger.Info("scheduled sync started", zap.String("schedule", spec))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	a.logger.Info("scheduled sync stopped")
	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().String("server", "", "name of the server to sync")
	syncCmd.Flags().Bool("all", false, "sync every active server")
	syncCmd.Flags().String("schedule", "", "cron expression; keep running and sync all servers on schedule")
	syncCmd.Flags().Int("concurrency", 0, "servers synced at once (default from configuration)")
}
