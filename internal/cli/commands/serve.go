package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagecheck-labs/pagecheck/internal/browser"
	"github.com/pagecheck-labs/pagecheck/internal/executor"
	"github.com/pagecheck-labs/pagecheck/internal/resolver"
	"github.com/pagecheck-labs/pagecheck/internal/runner"
	"github.com/pagecheck-labs/pagecheck/internal/server"
	"github.com/pagecheck-labs/pagecheck/internal/sitemap"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the pagecheck API server",
		Long: `Serve the catalog, run trigger, and run-history endpoints over
HTTP until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")

	return cmd
}

func runServe(port int) error {
	cfg := getConfig()
	logger := newLogger()

	if port == 0 {
		port = cfg.Port
	}

	st, err := openStore(logger)
	if err != nil {
		return err
	}
	defer st.Close()

	network := executor.NewNetworkExecutor(cfg.Target.BaseURL, time.Duration(cfg.RequestTimeoutSec)*time.Second)
	dispatcher := executor.NewDispatcher(network, logger)
	res := resolver.New(st, logger)

	srv := server.NewServer(server.Config{
		Store:        st,
		Runner:       runner.New(st, res, dispatcher, logger),
		Sweeper:      runner.NewSweeper(st, logger),
		Synchronizer: sitemap.NewSynchronizer(st, logger),
		SitemapPath:  cfg.SitemapPath,
		NewSession: func() runner.PageChecker {
			return browser.NewSession(cfg.Target, cfg.Browser, logger)
		},
		Port:   port,
		Logger: logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Serve(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
