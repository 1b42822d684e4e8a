package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pagecheck-labs/pagecheck/internal/browser"
	"github.com/pagecheck-labs/pagecheck/internal/runner"
)

// SweepOptions holds options for the sweep command.
type SweepOptions struct {
	ModuleID    string
	TriggeredBy string
	JSONOutput  bool
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand() *cobra.Command {
	opts := &SweepOptions{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the browser-driven page health sweep",
		Long: `Launch a headless browser, authenticate once, and run the full
page check battery against every enabled page in the catalog
(or one module's pages), recording results and a mean
accessibility score.`,
		Example: `  # Sweep the whole catalog
  pagecheck sweep

  # Sweep one module
  pagecheck sweep --module <module-id>`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweep(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ModuleID, "module", "m", "", "Restrict the sweep to one module")
	cmd.Flags().StringVar(&opts.TriggeredBy, "triggered-by", "cli", "Trigger attribution recorded on the run")
	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "Output the sweep report as JSON")

	return cmd
}

func runSweep(opts *SweepOptions) error {
	cfg := getConfig()
	logger := newLogger()

	if cfg.Target.BaseURL == "" {
		return fmt.Errorf("target base URL is not configured (set target.base_url or PAGECHECK_TARGET__BASE_URL)")
	}

	st, err := openStore(logger)
	if err != nil {
		return err
	}
	defer st.Close()

	session := browser.NewSession(cfg.Target, cfg.Browser, logger)
	sweeper := runner.NewSweeper(st, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress runner.ProgressFunc
	if !opts.JSONOutput {
		progress = func(p runner.Progress) {
			fmt.Printf("  [%d/%d] %s\n", p.Current, p.Total, p.CurrentPage)
		}
	}

	report, err := sweeper.Sweep(ctx, session, runner.SweepRequest{
		ModuleID:    opts.ModuleID,
		TriggeredBy: opts.TriggeredBy,
	}, progress)
	if err != nil && !runner.IsCancelled(err) {
		return fmt.Errorf("sweep failed: %w", err)
	}

	if opts.JSONOutput {
		return json.NewEncoder(os.Stdout).Encode(report)
	}

	renderSweepReport(report)
	return nil
}

func renderSweepReport(report *runner.SweepReport) {
	if !report.LoginSuccess {
		fmt.Printf("Sweep %s failed before any page was visited (login or browser launch failed)\n", report.RunID)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Page", "Route", "Status", "A11y"})
	for _, res := range report.Results {
		t.AppendRow(table.Row{res.PageName, res.Route, res.Status, res.A11yScore})
	}
	t.AppendFooter(table.Row{
		"", fmt.Sprintf("%d pages", report.TotalPages), report.Status,
		fmt.Sprintf("mean %.1f", report.MeanA11yScore),
	})
	t.Render()

	for _, res := range report.Results {
		for _, check := range res.Checks {
			if !check.Passed {
				fmt.Printf("FAIL %s: %s (%s)\n", res.Route, check.Name, check.Details)
			}
		}
	}
}
