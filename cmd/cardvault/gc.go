package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mercator-hq/cardvault/pkg/archive"
	"mercator-hq/cardvault/pkg/archive/retention"
	"mercator-hq/cardvault/pkg/cli"
	"mercator-hq/cardvault/pkg/telemetry/logging"
)

var gcFlags struct {
	collection string
	itemType   string
	dryRun     bool
}

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Run the retention garbage collector once",
	Long: `Sweep the archive collections and evict records that violate their
retention policy. Records older than the time limit are removed first, then
the oldest non-favorite records beyond the size limit.

Without --collection or --type every (collection, type) pair is swept. A
failing pair does not stop the others.

Examples:
  # Sweep everything
  cardvault gc

  # Preview what would be evicted from the trash
  cardvault gc --collection trash --dry-run

  # Sweep deck snapshots only
  cardvault gc --collection history --type deck`,
	RunE: runGC,
}

func init() {
	rootCmd.AddCommand(gcCmd)

	gcCmd.Flags().StringVar(&gcFlags.collection, "collection", "", "collection to sweep: trash, history (default: both)")
	gcCmd.Flags().StringVar(&gcFlags.itemType, "type", "", "item type to sweep: packBundle, deck (default: both)")
	gcCmd.Flags().BoolVar(&gcFlags.dryRun, "dry-run", false, "report what would be evicted without deleting")
}

type sweepPair struct {
	collection archive.Collection
	itemType   archive.ItemType
}

// selectPairs expands the --collection and --type filters.
func selectPairs(collection, itemType string) ([]sweepPair, error) {
	collections := archive.Collections
	if collection != "" {
		c, err := archive.ParseCollection(collection)
		if err != nil {
			return nil, cli.NewConfigError("collection", err.Error())
		}
		collections = []archive.Collection{c}
	}

	itemTypes := archive.ItemTypes
	if itemType != "" {
		t, err := archive.ParseItemType(itemType)
		if err != nil {
			return nil, cli.NewConfigError("type", err.Error())
		}
		itemTypes = []archive.ItemType{t}
	}

	var pairs []sweepPair
	for _, c := range collections {
		for _, t := range itemTypes {
			pairs = append(pairs, sweepPair{c, t})
		}
	}
	return pairs, nil
}

func runGC(cmd *cobra.Command, args []string) error {
	pairs, err := selectPairs(gcFlags.collection, gcFlags.itemType)
	if err != nil {
		return err
	}

	ctx := logging.WithRunID(cmd.Context(), uuid.NewString())
	a, err := newApp(ctx, loadedConfig)
	if err != nil {
		return cli.NewCommandError("gc", err)
	}
	defer a.Close(context.Background())

	var progress cli.ProgressReporter = cli.NopProgress{}
	if outputFormat != string(cli.FormatJSON) && len(pairs) > 1 {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr())
	}

	reports, errs := sweepPairs(ctx, a.collector, pairs, gcFlags.dryRun, progress)

	if err := render(cmd, reportList(reports)); err != nil {
		return err
	}

	switch {
	case len(errs) == 0:
		return nil
	case len(errs) == len(pairs):
		return cli.NewCommandError("gc", errors.Join(errs...))
	default:
		for _, e := range errs {
			fmt.Fprintln(cmd.ErrOrStderr(), "sweep failed:", e)
		}
		return cli.NewPartialFailureError("gc", len(errs), len(pairs))
	}
}

func sweepPairs(ctx context.Context, gc *retention.Collector, pairs []sweepPair, dryRun bool, progress cli.ProgressReporter) ([]*retention.EvictionReport, []error) {
	var reports []*retention.EvictionReport
	var errs []error

	progress.Start(len(pairs))
	for _, p := range pairs {
		var report *retention.EvictionReport
		var err error
		if dryRun {
			report, err = gc.DryRun(ctx, p.collection, p.itemType)
		} else {
			report, err = gc.Sweep(ctx, p.collection, p.itemType)
		}
		progress.Step(fmt.Sprintf("%s/%s", p.collection, p.itemType))

		if err != nil {
			errs = append(errs, err)
			continue
		}
		reports = append(reports, report)
	}
	progress.Finish()

	return reports, errs
}
