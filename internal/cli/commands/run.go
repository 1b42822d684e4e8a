package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pagecheck-labs/pagecheck/internal/executor"
	"github.com/pagecheck-labs/pagecheck/internal/resolver"
	"github.com/pagecheck-labs/pagecheck/internal/runner"
	"github.com/pagecheck-labs/pagecheck/pkg/core"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Scope       string
	ScopeID     string
	Levels      string
	DryRun      bool
	Name        string
	TriggeredBy string
	JSONOutput  bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute test cases for a scope",
		Long: `Resolve a scope into an ordered list of enabled test cases and
execute them one at a time, persisting each result as it completes.`,
		Example: `  # Run every enabled test case
  pagecheck run --scope all

  # Run one module's api-level cases
  pagecheck run --scope module --scope-id <module-id> --levels api

  # Resolve and record without executing
  pagecheck run --scope all --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Scope, "scope", "s", "all", "Scope: all|module|page|feature|case")
	cmd.Flags().StringVar(&opts.ScopeID, "scope-id", "", "Scope identifier (required for non-all scopes)")
	cmd.Flags().StringVarP(&opts.Levels, "levels", "l", "", "Comma-separated test level filter")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Record every case as skipped with no side effects")
	cmd.Flags().StringVar(&opts.Name, "name", "", "Run name (default: derived from scope and time)")
	cmd.Flags().StringVar(&opts.TriggeredBy, "triggered-by", "cli", "Trigger attribution recorded on the run")
	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "Output the run summary as JSON")

	return cmd
}

func runRun(opts *RunOptions) error {
	cfg := getConfig()
	logger := newLogger()

	st, err := openStore(logger)
	if err != nil {
		return err
	}
	defer st.Close()

	var levels []core.TestLevel
	if opts.Levels != "" {
		for _, raw := range strings.Split(opts.Levels, ",") {
			level := core.TestLevel(strings.TrimSpace(raw))
			if !level.Valid() {
				return fmt.Errorf("unknown test level: %s", level)
			}
			levels = append(levels, level)
		}
	}

	req := runner.RunRequest{
		Request: resolver.Request{
			Scope:      core.Scope(opts.Scope),
			ScopeID:    opts.ScopeID,
			TestLevels: levels,
		},
		Name:        opts.Name,
		DryRun:      opts.DryRun,
		TriggeredBy: opts.TriggeredBy,
	}
	if !req.Scope.Valid() {
		return fmt.Errorf("unknown scope: %s", opts.Scope)
	}

	network := executor.NewNetworkExecutor(cfg.Target.BaseURL, time.Duration(cfg.RequestTimeoutSec)*time.Second)
	dispatcher := executor.NewDispatcher(network, logger)
	res := resolver.New(st, logger)
	run := runner.New(st, res, dispatcher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress runner.ProgressFunc
	if !opts.JSONOutput {
		progress = func(p runner.Progress) {
			last := p.Results[len(p.Results)-1]
			fmt.Printf("  [%d/%d] %s %s\n", p.Current, p.Total, statusGlyph(last.Status), last.TestCaseID)
		}
	}

	summary, err := run.Execute(ctx, req, progress)
	if err != nil && !runner.IsCancelled(err) {
		return fmt.Errorf("run failed: %w", err)
	}

	if opts.JSONOutput {
		return json.NewEncoder(os.Stdout).Encode(summary)
	}

	renderRunSummary(summary)
	return nil
}

func renderRunSummary(summary *runner.RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Run", "Status", "Total", "Passed", "Failed", "Skipped", "Duration"})
	t.AppendRow(table.Row{
		summary.RunID, summary.Status, summary.TotalTests,
		summary.PassedTests, summary.FailedTests, summary.SkippedTests,
		fmt.Sprintf("%dms", summary.DurationMS),
	})
	t.Render()

	for _, res := range summary.Results {
		if res.Status == core.ResultStatusFailed {
			fmt.Printf("FAIL %s: %s\n", res.TestCaseID, res.ErrorMessage)
		}
	}
}

func statusGlyph(status core.ResultStatus) string {
	switch status {
	case core.ResultStatusPassed:
		return "PASS"
	case core.ResultStatusFailed:
		return "FAIL"
	default:
		return "SKIP"
	}
}
