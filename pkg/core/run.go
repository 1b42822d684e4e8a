package core

import "time"

// Scope selects which test cases a run covers.
type Scope string

// Scope constants.
const (
	ScopeAll     Scope = "all"
	ScopeModule  Scope = "module"
	ScopePage    Scope = "page"
	ScopeFeature Scope = "feature"
	ScopeCase    Scope = "case"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	switch s {
	case ScopeAll, ScopeModule, ScopePage, ScopeFeature, ScopeCase:
		return true
	}
	return false
}

// RunStatus represents the status of a test run.
type RunStatus string

// Run status constants. A run is created running; pending is a notional
// initial state reserved for queued execution.
const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether the status ends the run's lifecycle.
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed || s == RunStatusCancelled
}

// ResultStatus represents the outcome of a single executed test case.
type ResultStatus string

// Result status constants.
const (
	ResultStatusPassed  ResultStatus = "passed"
	ResultStatusFailed  ResultStatus = "failed"
	ResultStatusSkipped ResultStatus = "skipped"
)

// TestRun represents one execution of a resolved set of test cases or
// pages. Counters are a derived summary of the run's result rows and are
// maintained incrementally as results are persisted. For completed runs
// PassedTests+FailedTests+SkippedTests equals TotalTests; a cancelled run
// keeps TotalTests at the resolved count while the counters only cover
// the results recorded before cancellation.
type TestRun struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Scope        Scope       `json:"scope"`
	ScopeID      string      `json:"scopeId,omitempty"`
	TestLevels   []TestLevel `json:"testLevels,omitempty"`
	Status       RunStatus   `json:"status"`
	TotalTests   int         `json:"totalTests"`
	PassedTests  int         `json:"passedTests"`
	FailedTests  int         `json:"failedTests"`
	SkippedTests int         `json:"skippedTests"`
	StartedAt    time.Time   `json:"startedAt"`
	CompletedAt  *time.Time  `json:"completedAt,omitempty"`
	DurationMS   int64       `json:"duration"`
	TriggeredBy  string      `json:"triggeredBy,omitempty"`
}

// TestRunResult is the immutable record of one case's outcome within a
// run. Rows are append-only and never edited after creation.
type TestRunResult struct {
	ID           string       `json:"id"`
	RunID        string       `json:"runId"`
	TestCaseID   string       `json:"testCaseId"`
	Status       ResultStatus `json:"status"`
	ActualResult string       `json:"actualResult,omitempty"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	DurationMS   int64        `json:"duration"`
	ExecutedAt   time.Time    `json:"executedAt"`
}

// DevTestLogEntry is a lightweight append-only summary of a catalog-wide
// page sweep, kept separately from run rows for historical dashboards.
type DevTestLogEntry struct {
	ID            string    `json:"id"`
	RunID         string    `json:"runId"`
	TotalPages    int       `json:"totalPages"`
	PassedPages   int       `json:"passedPages"`
	FailedPages   int       `json:"failedPages"`
	MeanA11yScore float64   `json:"meanAccessibilityScore"`
	DurationMS    int64     `json:"duration"`
	CreatedAt     time.Time `json:"createdAt"`
}
