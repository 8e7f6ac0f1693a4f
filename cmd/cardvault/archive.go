package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/cardvault/pkg/archive"
	"mercator-hq/cardvault/pkg/archive/orchestrator"
	"mercator-hq/cardvault/pkg/cli"
)

var archiveFlags struct {
	collection       string
	itemType         string
	itemID           string
	favoritesOnly    bool
	manual           bool
	unset            bool
	includeFavorites bool
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage trashed and snapshotted items",
	Long: `Manage the trash and history collections.

Subcommands:
  list         - List archived records
  show         - Show one record
  trash        - Move live packs or decks to the trash
  snapshot     - Record a history snapshot of a live pack or deck
  restore      - Restore archived records into the library
  delete       - Permanently delete archived records
  favorite     - Mark a record as favorite
  empty-trash  - Delete every trash record`,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived records, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "archive list", func(ctx context.Context, a *app) error {
			collection, err := parseCollectionFlag()
			if err != nil {
				return err
			}
			opts := orchestrator.ListOptions{
				ItemID:        archiveFlags.itemID,
				FavoritesOnly: archiveFlags.favoritesOnly,
			}
			if archiveFlags.itemType != "" {
				if opts.ItemType, err = archive.ParseItemType(archiveFlags.itemType); err != nil {
					return cli.NewConfigError("type", err.Error())
				}
			}

			records, err := a.orchestrator.List(ctx, collection, opts)
			if err != nil {
				return err
			}
			return render(cmd, recordList(records))
		})
	},
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <archive-id>",
	Short: "Show one archived record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "archive show", func(ctx context.Context, a *app) error {
			collection, err := parseCollectionFlag()
			if err != nil {
				return err
			}
			record, err := a.store.Get(ctx, collection, args[0])
			if err != nil {
				return err
			}
			return render(cmd, recordDetail{record})
		})
	},
}

var archiveTrashCmd = &cobra.Command{
	Use:   "trash <type> <item-id>...",
	Short: "Move live packs or decks to the trash",
	Long: `Move live packs or decks to the trash. Each item is captured and
deleted from the library independently; a failing item does not stop the
others.

Examples:
  cardvault archive trash deck d1 d2
  cardvault archive trash packBundle p7`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "archive trash", func(ctx context.Context, a *app) error {
			itemType, err := archive.ParseItemType(args[0])
			if err != nil {
				return cli.NewConfigError("type", err.Error())
			}
			results := a.orchestrator.TrashMany(ctx, itemType, args[1:], archiveFlags.manual)
			return renderResults(cmd, "archive trash", results)
		})
	},
}

var archiveSnapshotCmd = &cobra.Command{
	Use:   "snapshot <type> <item-id>",
	Short: "Record a history snapshot of a live pack or deck",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "archive snapshot", func(ctx context.Context, a *app) error {
			itemType, err := archive.ParseItemType(args[0])
			if err != nil {
				return cli.NewConfigError("type", err.Error())
			}
			record, err := a.orchestrator.Snapshot(ctx, itemType, args[1], archiveFlags.manual)
			if err != nil {
				return err
			}
			return render(cmd, recordDetail{record})
		})
	},
}

var archiveRestoreCmd = &cobra.Command{
	Use:   "restore <archive-id>...",
	Short: "Restore archived records into the library",
	Long: `Restore archived records into the library, overwriting a live item with
the same id. The record is removed from its collection once the item is live
again, for trash and history alike. A record whose item could not be saved
is kept.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "archive restore", func(ctx context.Context, a *app) error {
			collection, err := parseCollectionFlag()
			if err != nil {
				return err
			}
			results := a.orchestrator.RestoreMany(ctx, collection, args)
			return renderResults(cmd, "archive restore", results)
		})
	},
}

var archiveDeleteCmd = &cobra.Command{
	Use:   "delete <archive-id>...",
	Short: "Permanently delete archived records",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "archive delete", func(ctx context.Context, a *app) error {
			collection, err := parseCollectionFlag()
			if err != nil {
				return err
			}
			results := a.orchestrator.DeleteMany(ctx, collection, args)
			return renderResults(cmd, "archive delete", results)
		})
	},
}

var archiveFavoriteCmd = &cobra.Command{
	Use:   "favorite <archive-id>",
	Short: "Mark or unmark a record as favorite",
	Long: `Mark a record as favorite. Favorites are never evicted to satisfy a
size limit, but still expire by age.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "archive favorite", func(ctx context.Context, a *app) error {
			collection, err := parseCollectionFlag()
			if err != nil {
				return err
			}
			record, err := a.orchestrator.SetFavorite(ctx, collection, args[0], !archiveFlags.unset)
			if err != nil {
				return err
			}
			return render(cmd, recordDetail{record})
		})
	},
}

var archiveEmptyTrashCmd = &cobra.Command{
	Use:   "empty-trash",
	Short: "Delete every trash record",
	Long: `Delete every trash record. Favorites are kept unless
--include-favorites is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "archive empty-trash", func(ctx context.Context, a *app) error {
			ids, err := a.orchestrator.EmptyTrash(ctx, archiveFlags.includeFavorites)
			if err != nil {
				return err
			}
			return render(cmd, idList(ids))
		})
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(
		archiveListCmd,
		archiveShowCmd,
		archiveTrashCmd,
		archiveSnapshotCmd,
		archiveRestoreCmd,
		archiveDeleteCmd,
		archiveFavoriteCmd,
		archiveEmptyTrashCmd,
	)

	for _, c := range []*cobra.Command{archiveListCmd, archiveShowCmd, archiveRestoreCmd, archiveDeleteCmd, archiveFavoriteCmd} {
		c.Flags().StringVar(&archiveFlags.collection, "collection", string(archive.CollectionTrash), "collection: trash, history")
	}

	archiveListCmd.Flags().StringVar(&archiveFlags.itemType, "type", "", "only records of this item type")
	archiveListCmd.Flags().StringVar(&archiveFlags.itemID, "item", "", "only records of this item id")
	archiveListCmd.Flags().BoolVar(&archiveFlags.favoritesOnly, "favorites", false, "only favorite records")

	archiveTrashCmd.Flags().BoolVar(&archiveFlags.manual, "manual", true, "mark the records as user initiated")
	archiveSnapshotCmd.Flags().BoolVar(&archiveFlags.manual, "manual", true, "mark the record as user initiated")

	archiveFavoriteCmd.Flags().BoolVar(&archiveFlags.unset, "unset", false, "clear the favorite flag instead")

	archiveEmptyTrashCmd.Flags().BoolVar(&archiveFlags.includeFavorites, "include-favorites", false, "also delete favorite records")
}

// withApp builds the application for one command and closes it afterwards.
func withApp(cmd *cobra.Command, name string, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, loadedConfig)
	if err != nil {
		return cli.NewCommandError(name, err)
	}
	defer a.Close(context.Background())

	if err := fn(ctx, a); err != nil {
		return cli.NewCommandError(name, err)
	}
	return nil
}

func parseCollectionFlag() (archive.Collection, error) {
	c, err := archive.ParseCollection(archiveFlags.collection)
	if err != nil {
		return "", cli.NewConfigError("collection", err.Error())
	}
	return c, nil
}

// renderResults prints a batch outcome and reports failed items.
func renderResults(cmd *cobra.Command, name string, results []orchestrator.ItemResult) error {
	if err := render(cmd, newResultList(results)); err != nil {
		return err
	}
	failed := orchestrator.Failed(results)
	if len(failed) == 0 {
		return nil
	}
	if len(failed) == len(results) && len(results) == 1 {
		return fmt.Errorf("%s: %w", failed[0].ID, failed[0].Err)
	}
	return cli.NewPartialFailureError(name, len(failed), len(results))
}
