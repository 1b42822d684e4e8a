package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pagecheck-labs/pagecheck/internal/sitemap"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the sitemap definition into the catalog",
		Long: `Reconcile the static sitemap definition against the catalog store.

Modules and pages are upserted by stable slug; nothing is ever deleted.
Re-running against an unchanged definition makes no creates.`,
		Example: `  # One-shot sync from the embedded definition
  pagecheck sync

  # Sync from a project definition and keep watching it for edits
  pagecheck sync --sitemap-path sitemap.yaml --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(watch)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-sync whenever the definition file changes")

	return cmd
}

func runSync(watch bool) error {
	logger := newLogger()

	st, err := openStore(logger)
	if err != nil {
		return err
	}
	defer st.Close()

	def, err := sitemap.Load(getConfig().SitemapPath)
	if err != nil {
		return err
	}

	syncer := sitemap.NewSynchronizer(st, logger)
	summary, err := syncer.Sync(def)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Printf("Synced %d modules (%d created, %d updated), %d pages (%d created, %d updated)\n",
		summary.TotalModules, summary.ModulesCreated, summary.ModulesUpdated,
		summary.TotalPages, summary.PagesCreated, summary.PagesUpdated)

	if !watch {
		return nil
	}

	if getConfig().SitemapPath == "" {
		return fmt.Errorf("--watch requires --sitemap-path (the embedded definition cannot change)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = syncer.Watch(ctx, getConfig().SitemapPath)
	if err != nil && ctx.Err() != nil {
		return nil // interrupted by the user
	}
	return err
}
