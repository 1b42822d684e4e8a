package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pagecheck-labs/pagecheck/internal/browser"
	"github.com/pagecheck-labs/pagecheck/pkg/core"
)

// PageChecker is the browser session surface the sweep drives. The
// chromedp-backed browser.Session satisfies it; tests substitute fakes.
type PageChecker interface {
	Launch(ctx context.Context) error
	Login(ctx context.Context) error
	CheckPage(ctx context.Context, page *core.Page) *browser.PageResult
	Close()
}

// SweepRequest describes a catalog-wide page sweep. An empty ModuleID
// sweeps every enabled module.
type SweepRequest struct {
	ModuleID    string `json:"moduleId,omitempty"`
	TriggeredBy string `json:"triggeredBy,omitempty"`
}

// SweepReport is the summary returned for every sweep, including sweeps
// that failed before any page was visited.
type SweepReport struct {
	RunID         string                `json:"runId"`
	Name          string                `json:"name"`
	Status        core.RunStatus        `json:"status"`
	LoginSuccess  bool                  `json:"loginSuccess"`
	TotalPages    int                   `json:"totalPages"`
	PassedPages   int                   `json:"passedPages"`
	FailedPages   int                   `json:"failedPages"`
	MeanA11yScore float64               `json:"meanAccessibilityScore"`
	DurationMS    int64                 `json:"duration"`
	Results       []*browser.PageResult `json:"results"`
}

// Sweeper executes catalog-wide, browser-driven health sweeps: one
// authenticated session serving sequential navigations over every
// enabled page.
type Sweeper struct {
	store  core.Store
	logger *slog.Logger
}

// NewSweeper creates a sweeper. A nil logger discards output.
func NewSweeper(store core.Store, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sweeper{store: store, logger: logger}
}

// Sweep runs the page-level check battery over the selected pages.
// Browser launch and authentication are run-level preconditions: either
// failing aborts the sweep with zero page results. A single page's
// failure fails only that page and the sweep continues.
func (s *Sweeper) Sweep(ctx context.Context, session PageChecker, req SweepRequest, progress ProgressFunc) (*SweepReport, error) {
	start := time.Now()

	pages, err := s.collectPages(req.ModuleID)
	if err != nil {
		return nil, fmt.Errorf("failed to collect pages: %w", err)
	}

	run := &core.TestRun{
		Name:        fmt.Sprintf("page sweep %s", start.UTC().Format("2006-01-02 15:04:05")),
		Scope:       core.ScopeAll,
		ScopeID:     req.ModuleID,
		Status:      core.RunStatusRunning,
		TotalTests:  len(pages),
		StartedAt:   start.UTC(),
		TriggeredBy: req.TriggeredBy,
	}
	if req.ModuleID != "" {
		run.Scope = core.ScopeModule
	}
	if err := s.store.CreateRun(run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	report := &SweepReport{
		RunID:   run.ID,
		Name:    run.Name,
		Results: []*browser.PageResult{},
	}

	finishEarly := func(reason string) (*SweepReport, error) {
		durationMS := time.Since(start).Milliseconds()
		if err := s.store.CompleteRun(run.ID, core.RunStatusFailed, durationMS); err != nil {
			s.logger.Error("failed to finalize run", slog.String("run_id", run.ID), slog.String("error", err.Error()))
		}
		report.Status = core.RunStatusFailed
		report.DurationMS = durationMS
		s.logger.Error("sweep aborted", slog.String("run_id", run.ID), slog.String("reason", reason))
		return report, nil
	}

	if err := session.Launch(ctx); err != nil {
		return finishEarly("browser launch failed: " + err.Error())
	}
	defer session.Close()

	if err := session.Login(ctx); err != nil {
		return finishEarly("login failed: " + err.Error())
	}
	report.LoginSuccess = true

	var scoreTotal int
	var rows []*core.TestRunResult
	cancelled := false

	for i, page := range pages {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		result := session.CheckPage(ctx, page)
		report.Results = append(report.Results, result)
		report.TotalPages++
		scoreTotal += result.A11yScore

		if result.Status == core.ResultStatusPassed {
			report.PassedPages++
		} else {
			report.FailedPages++
		}

		evidence, _ := json.Marshal(result)
		row := &core.TestRunResult{
			RunID:        run.ID,
			TestCaseID:   page.ID,
			Status:       result.Status,
			ActualResult: string(evidence),
			DurationMS:   result.DurationMS,
		}
		if result.Status == core.ResultStatusFailed {
			row.ErrorMessage = failedCheckDetails(result)
		}
		if err := s.store.RecordResult(row); err != nil {
			s.logger.Error("failed to persist page result",
				slog.String("run_id", run.ID),
				slog.String("page", page.ID),
				slog.String("error", err.Error()))
		}
		rows = append(rows, row)

		if progress != nil {
			progress(Progress{
				RunID:       run.ID,
				Status:      core.RunStatusRunning,
				Current:     i + 1,
				Total:       len(pages),
				CurrentPage: page.Route,
				Results:     rows,
			})
		}
	}

	if report.TotalPages > 0 {
		report.MeanA11yScore = float64(scoreTotal) / float64(report.TotalPages)
	}

	status := core.RunStatusCompleted
	switch {
	case cancelled:
		status = core.RunStatusCancelled
	case report.FailedPages > 0:
		status = core.RunStatusFailed
	}

	report.Status = status
	report.DurationMS = time.Since(start).Milliseconds()

	if err := s.store.CompleteRun(run.ID, status, report.DurationMS); err != nil {
		s.logger.Error("failed to finalize run", slog.String("run_id", run.ID), slog.String("error", err.Error()))
	}

	if err := s.store.AppendDevTestLog(&core.DevTestLogEntry{
		RunID:         run.ID,
		TotalPages:    report.TotalPages,
		PassedPages:   report.PassedPages,
		FailedPages:   report.FailedPages,
		MeanA11yScore: report.MeanA11yScore,
		DurationMS:    report.DurationMS,
	}); err != nil {
		s.logger.Error("failed to append dev test log", slog.String("run_id", run.ID), slog.String("error", err.Error()))
	}

	s.logger.Info("sweep finished",
		slog.String("run_id", run.ID),
		slog.String("status", string(status)),
		slog.Int("passed", report.PassedPages),
		slog.Int("failed", report.FailedPages))

	if cancelled {
		return report, context.Canceled
	}
	return report, nil
}

// collectPages returns the enabled pages in sweep order: module order,
// then page order.
func (s *Sweeper) collectPages(moduleID string) ([]*core.Page, error) {
	if moduleID != "" {
		return enabledPages(s.store, moduleID)
	}

	modules, err := s.store.ListModules()
	if err != nil {
		return nil, err
	}

	var pages []*core.Page
	for _, m := range modules {
		if !m.Enabled {
			continue
		}
		modulePages, err := enabledPages(s.store, m.ID)
		if err != nil {
			return nil, err
		}
		pages = append(pages, modulePages...)
	}
	return pages, nil
}

func enabledPages(store core.Store, moduleID string) ([]*core.Page, error) {
	pages, err := store.GetPages(moduleID)
	if err != nil {
		return nil, err
	}

	enabled := pages[:0]
	for _, p := range pages {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	return enabled, nil
}

// failedCheckDetails joins the failing checks into one message.
func failedCheckDetails(result *browser.PageResult) string {
	msg := ""
	for _, c := range result.Checks {
		if c.Passed {
			continue
		}
		if msg != "" {
			msg += "; "
		}
		msg += c.Name
		if c.Details != "" {
			msg += ": " + c.Details
		}
	}
	return msg
}
