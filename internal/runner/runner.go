// Package runner owns the run lifecycle: it creates the run record,
// resolves the scope, drives the dispatcher strictly sequentially,
// streams results into the store as they complete, and finalizes the
// run's terminal status and counters.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pagecheck-labs/pagecheck/internal/executor"
	"github.com/pagecheck-labs/pagecheck/internal/resolver"
	"github.com/pagecheck-labs/pagecheck/pkg/core"
)

// dryRunReason is the fixed skip reason recorded for dry-run results.
const dryRunReason = "Dry run - test not executed"

// Progress is delivered to the optional callback after each unit of
// work, enabling live-progress rendering without polling.
type Progress struct {
	RunID       string                `json:"runId"`
	Status      core.RunStatus        `json:"status"`
	Current     int                   `json:"current"`
	Total       int                   `json:"total"`
	CurrentPage string                `json:"currentPage,omitempty"`
	Results     []*core.TestRunResult `json:"results"`
}

// ProgressFunc receives progress updates. A nil callback disables them.
type ProgressFunc func(Progress)

// RunRequest describes a unit-level run trigger.
type RunRequest struct {
	resolver.Request
	Name        string `json:"name,omitempty"`
	DryRun      bool   `json:"dryRun,omitempty"`
	TriggeredBy string `json:"triggeredBy,omitempty"`
}

// RunSummary is returned to the caller for every run, including runs
// that failed at the infrastructure level. There is no silent crash
// path.
type RunSummary struct {
	RunID        string                `json:"runId"`
	Name         string                `json:"name"`
	Status       core.RunStatus        `json:"status"`
	TotalTests   int                   `json:"totalTests"`
	PassedTests  int                   `json:"passedTests"`
	FailedTests  int                   `json:"failedTests"`
	SkippedTests int                   `json:"skippedTests"`
	DurationMS   int64                 `json:"duration"`
	Results      []*core.TestRunResult `json:"results"`
}

// Runner executes unit-level runs.
type Runner struct {
	store      core.Store
	resolver   *resolver.Resolver
	dispatcher *executor.Dispatcher
	logger     *slog.Logger
}

// New creates a runner. A nil logger discards output.
func New(store core.Store, res *resolver.Resolver, dispatcher *executor.Dispatcher, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{store: store, resolver: res, dispatcher: dispatcher, logger: logger}
}

// Execute resolves the request and runs every resolved case in order,
// one at a time. Result persistence for case N completes before case N+1
// begins. Cancelling the context stops further work and finalizes the
// run as cancelled.
func (r *Runner) Execute(ctx context.Context, req RunRequest, progress ProgressFunc) (*RunSummary, error) {
	start := time.Now()

	cases, err := r.resolver.Resolve(req.Request)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scope: %w", err)
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("%s run %s", req.Scope, start.UTC().Format("2006-01-02 15:04:05"))
	}

	run := &core.TestRun{
		Name:        name,
		Scope:       req.Scope,
		ScopeID:     req.ScopeID,
		TestLevels:  req.TestLevels,
		Status:      core.RunStatusRunning,
		TotalTests:  len(cases),
		StartedAt:   start.UTC(),
		TriggeredBy: req.TriggeredBy,
	}
	if err := r.store.CreateRun(run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	r.logger.Info("run started",
		slog.String("run_id", run.ID),
		slog.String("scope", string(req.Scope)),
		slog.Int("total", len(cases)),
		slog.Bool("dry_run", req.DryRun))

	var results []*core.TestRunResult
	cancelled := false

	for i, tc := range cases {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		var res executor.Result
		if req.DryRun {
			res = executor.Result{
				TestCaseID:   tc.ID,
				TestCaseName: tc.Name,
				Status:       core.ResultStatusSkipped,
				ErrorMessage: dryRunReason,
			}
		} else {
			res = r.dispatcher.Execute(ctx, tc)
		}

		row := &core.TestRunResult{
			RunID:        run.ID,
			TestCaseID:   res.TestCaseID,
			Status:       res.Status,
			ActualResult: res.ActualResult,
			ErrorMessage: res.ErrorMessage,
			DurationMS:   res.DurationMS,
		}
		if err := r.store.RecordResult(row); err != nil {
			r.logger.Error("failed to persist result",
				slog.String("run_id", run.ID),
				slog.String("test_case", tc.ID),
				slog.String("error", err.Error()))
		}
		results = append(results, row)

		if progress != nil {
			progress(Progress{
				RunID:   run.ID,
				Status:  core.RunStatusRunning,
				Current: i + 1,
				Total:   len(cases),
				Results: results,
			})
		}
	}

	status := finalStatus(results, cancelled)
	durationMS := time.Since(start).Milliseconds()
	if err := r.store.CompleteRun(run.ID, status, durationMS); err != nil {
		r.logger.Error("failed to finalize run",
			slog.String("run_id", run.ID),
			slog.String("error", err.Error()))
	}

	final, err := r.store.GetRun(run.ID)
	if err != nil {
		return nil, err
	}

	r.logger.Info("run finished",
		slog.String("run_id", run.ID),
		slog.String("status", string(status)),
		slog.Int("passed", final.PassedTests),
		slog.Int("failed", final.FailedTests),
		slog.Int("skipped", final.SkippedTests))

	summary := &RunSummary{
		RunID:        final.ID,
		Name:         final.Name,
		Status:       final.Status,
		TotalTests:   final.TotalTests,
		PassedTests:  final.PassedTests,
		FailedTests:  final.FailedTests,
		SkippedTests: final.SkippedTests,
		DurationMS:   durationMS,
		Results:      results,
	}

	if cancelled {
		return summary, context.Canceled
	}
	return summary, nil
}

// finalStatus derives the terminal run status from the recorded results.
func finalStatus(results []*core.TestRunResult, cancelled bool) core.RunStatus {
	if cancelled {
		return core.RunStatusCancelled
	}
	for _, res := range results {
		if res.Status == core.ResultStatusFailed {
			return core.RunStatusFailed
		}
	}
	return core.RunStatusCompleted
}

// IsCancelled reports whether err is the caller-initiated abort.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
