package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"mercator-hq/cardvault/pkg/archive/policy"
	"mercator-hq/cardvault/pkg/archive/retention"
	"mercator-hq/cardvault/pkg/cli"
	"mercator-hq/cardvault/pkg/server"
	"mercator-hq/cardvault/pkg/telemetry/health"
)

var sweepOnStart bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the retention scheduler and admin endpoint",
	Long: `Run cardvault as a long-lived process.

The process sweeps the archive on the configured cron schedule, reloads the
retention overrides file when watch_policies_file is set, and serves
metrics, health probes and build information on the admin address.

It stops on SIGINT or SIGTERM after finishing the sweep in progress.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&sweepOnStart, "sweep-on-start", false, "sweep every collection once before waiting for the schedule")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := cli.SetupSignalHandler(cmd.Context())
	defer cancel()

	cfg := loadedConfig
	logger := slog.Default().With("component", "run")

	a, err := newApp(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer a.Close(context.Background())

	scheduler := retention.NewScheduler(a.collector, cfg.Retention.Schedule)
	if err := scheduler.Start(ctx); err != nil {
		return cli.NewConfigError("retention.schedule", err.Error())
	}
	defer scheduler.Stop()

	if sweepOnStart {
		scheduler.RunOnce(ctx)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	if cfg.Retention.WatchPoliciesFile && cfg.Retention.PoliciesFile != "" {
		watcher, err := policy.NewWatcher(cfg.Retention.PoliciesFile, a.resolver, 0, slog.Default())
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer watcher.Stop()

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errs <- err
			}
		}()
	}

	if addr := cfg.Telemetry.Metrics.ListenAddress; addr != "" {
		checker := health.New(health.DefaultCheckTimeout)
		checker.RegisterCheck("archive_store", health.StoreCheck(a.store))
		if cfg.Retention.Schedule != "" {
			checker.RegisterCheck("scheduler", health.RunnerCheck("scheduler", scheduler))
		}

		routes := server.Routes{
			MetricsPath: cfg.Telemetry.Metrics.Path,
			Checker:     checker,
			Version:     versionInfo(),
		}
		if a.metrics != nil {
			routes.Metrics = a.metrics.Handler()
		}

		srv := server.New(addr, server.NewMux(routes))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Start(ctx); err != nil {
				errs <- err
			}
		}()
	}

	logger.InfoContext(ctx, "cardvault running",
		"schedule", cfg.Retention.Schedule,
		"admin_address", cfg.Telemetry.Metrics.ListenAddress,
	)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errs:
		cancel()
	}
	wg.Wait()

	logger.Info("cardvault stopped")
	if runErr != nil {
		return cli.NewCommandError("run", runErr)
	}
	return nil
}
