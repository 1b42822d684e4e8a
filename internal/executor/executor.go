// Package executor runs individual test cases. A dispatcher selects the
// executor by test level and normalizes every outcome into a Result;
// one broken case never aborts the remaining run.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pagecheck-labs/pagecheck/pkg/core"
)

// Result is the normalized outcome of one executed test case.
type Result struct {
	TestCaseID   string            `json:"testCaseId"`
	TestCaseName string            `json:"testCaseName"`
	Status       core.ResultStatus `json:"status"`
	DurationMS   int64             `json:"duration"`
	ActualResult string            `json:"actualResult,omitempty"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
}

// Dispatcher executes test cases by level.
type Dispatcher struct {
	network  *NetworkExecutor
	presence *PresenceExecutor
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher. A nil logger discards output.
func NewDispatcher(network *NetworkExecutor, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		network:  network,
		presence: &PresenceExecutor{},
		logger:   logger,
	}
}

// Execute runs one test case and returns its normalized result. Panics
// from an executor are recovered into a failed result.
func (d *Dispatcher) Execute(ctx context.Context, tc *core.TestCase) (res Result) {
	start := time.Now()

	res = Result{
		TestCaseID:   tc.ID,
		TestCaseName: tc.Name,
	}

	defer func() {
		res.DurationMS = time.Since(start).Milliseconds()
		if r := recover(); r != nil {
			res.Status = core.ResultStatusFailed
			res.ErrorMessage = fmt.Sprintf("executor panic: %v", r)
			d.logger.Error("executor panicked",
				slog.String("test_case", tc.ID),
				slog.Any("panic", r))
		}
	}()

	switch tc.TestLevel {
	case core.TestLevelAPI, core.TestLevelCRUD:
		res.Status, res.ActualResult, res.ErrorMessage = d.network.Execute(ctx, tc)
	case core.TestLevelButton, core.TestLevelNavigation:
		res.Status, res.ErrorMessage = d.presence.Execute(tc)
	case core.TestLevelForm, core.TestLevelIntegration, core.TestLevelE2E:
		res.Status = core.ResultStatusSkipped
		res.ErrorMessage = fmt.Sprintf("Test level '%s' execution not yet implemented", tc.TestLevel)
	default:
		res.Status = core.ResultStatusSkipped
		res.ErrorMessage = fmt.Sprintf("Test level '%s' execution not yet implemented", tc.TestLevel)
	}

	d.logger.Debug("executed test case",
		slog.String("test_case", tc.ID),
		slog.String("level", string(tc.TestLevel)),
		slog.String("status", string(res.Status)))

	return res
}
