package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pagecheck-labs/pagecheck/pkg/core"
)

// CreateRun inserts a new test run. An empty ID is assigned a UUID and an
// unset status defaults to running; counters start zeroed except
// TotalTests which the caller sets from the resolved case count.
func (s *SQLiteStore) CreateRun(run *core.TestRun) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if run.ID == "" {
		run.ID = generateID()
	}
	if run.Status == "" {
		run.Status = core.RunStatusRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	var levels *string
	if len(run.TestLevels) > 0 {
		b, err := json.Marshal(run.TestLevels)
		if err != nil {
			return fmt.Errorf("failed to marshal test levels: %w", err)
		}
		v := string(b)
		levels = &v
	}

	s.logger.Debug("creating run",
		slog.String("id", run.ID),
		slog.String("scope", string(run.Scope)),
		slog.Int("total", run.TotalTests))

	_, err := s.db.Exec(
		`INSERT INTO test_runs (id, name, scope, scope_id, test_levels, status, total_tests,
		                        passed_tests, failed_tests, skipped_tests, started_at, triggered_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.Scope, nullable(run.ScopeID), levels, run.Status, run.TotalTests,
		run.PassedTests, run.FailedTests, run.SkippedTests, run.StartedAt, nullable(run.TriggeredBy),
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*core.TestRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run, err := scanRun(s.db.QueryRow(
		`SELECT id, name, scope, scope_id, test_levels, status, total_tests, passed_tests,
		        failed_tests, skipped_tests, started_at, completed_at, duration_ms, triggered_by
		 FROM test_runs WHERE id = ?`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves the most recent runs up to the given limit.
func (s *SQLiteStore) ListRuns(limit int) ([]*core.TestRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, name, scope, scope_id, test_levels, status, total_tests, passed_tests,
		        failed_tests, skipped_tests, started_at, completed_at, duration_ms, triggered_by
		 FROM test_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*core.TestRun
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CompleteRun transitions a run to a terminal status and stamps the
// completion time and total duration. Terminal runs are never touched
// again.
func (s *SQLiteStore) CompleteRun(id string, status core.RunStatus, durationMS int64) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	result, err := s.db.Exec(
		`UPDATE test_runs SET status = ?, completed_at = ?, duration_ms = ? WHERE id = ?`,
		status, now, durationMS, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// RecordResult appends one result row and folds its outcome into the
// run's counters in a single transaction, so the counters are always
// reconcilable against the rows.
func (s *SQLiteStore) RecordResult(res *core.TestRunResult) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if res.ID == "" {
		res.ID = generateID()
	}
	if res.ExecutedAt.IsZero() {
		res.ExecutedAt = time.Now().UTC()
	}

	var counter string
	switch res.Status {
	case core.ResultStatusPassed:
		counter = "passed_tests"
	case core.ResultStatusFailed:
		counter = "failed_tests"
	case core.ResultStatusSkipped:
		counter = "skipped_tests"
	default:
		return fmt.Errorf("unknown result status: %s", res.Status)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO test_run_results (id, run_id, test_case_id, status, actual_result, error_message, duration_ms, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.RunID, res.TestCaseID, res.Status, nullable(res.ActualResult),
		nullable(res.ErrorMessage), res.DurationMS, res.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}

	_, err = tx.Exec(`UPDATE test_runs SET `+counter+` = `+counter+` + 1 WHERE id = ?`, res.RunID)
	if err != nil {
		return fmt.Errorf("failed to update run counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result: %w", err)
	}
	return nil
}

// GetResultsForRun retrieves all result rows for a run in execution
// order.
func (s *SQLiteStore) GetResultsForRun(runID string) ([]*core.TestRunResult, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, test_case_id, status, actual_result, error_message, duration_ms, executed_at
		 FROM test_run_results WHERE run_id = ? ORDER BY executed_at, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	defer rows.Close()

	var results []*core.TestRunResult
	for rows.Next() {
		r := &core.TestRunResult{}
		var actual, errMsg sql.NullString

		if err := rows.Scan(&r.ID, &r.RunID, &r.TestCaseID, &r.Status, &actual, &errMsg, &r.DurationMS, &r.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.ActualResult = actual.String
		r.ErrorMessage = errMsg.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// AppendDevTestLog appends a sweep summary to the dev test log.
func (s *SQLiteStore) AppendDevTestLog(entry *core.DevTestLogEntry) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if entry.ID == "" {
		entry.ID = generateID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO dev_test_log (id, run_id, total_pages, passed_pages, failed_pages, mean_a11y_score, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.RunID, entry.TotalPages, entry.PassedPages, entry.FailedPages,
		entry.MeanA11yScore, entry.DurationMS, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append dev test log: %w", err)
	}
	return nil
}

// ListDevTestLog retrieves the most recent sweep summaries.
func (s *SQLiteStore) ListDevTestLog(limit int) ([]*core.DevTestLogEntry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, total_pages, passed_pages, failed_pages, mean_a11y_score, duration_ms, created_at
		 FROM dev_test_log ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list dev test log: %w", err)
	}
	defer rows.Close()

	var entries []*core.DevTestLogEntry
	for rows.Next() {
		e := &core.DevTestLogEntry{}
		if err := rows.Scan(&e.ID, &e.RunID, &e.TotalPages, &e.PassedPages, &e.FailedPages, &e.MeanA11yScore, &e.DurationMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dev test log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanRun(scan func(dest ...any) error) (*core.TestRun, error) {
	run := &core.TestRun{}
	var scopeID, levels, triggeredBy sql.NullString
	var completedAt sql.NullTime

	err := scan(&run.ID, &run.Name, &run.Scope, &scopeID, &levels, &run.Status, &run.TotalTests,
		&run.PassedTests, &run.FailedTests, &run.SkippedTests, &run.StartedAt, &completedAt,
		&run.DurationMS, &triggeredBy)
	if err != nil {
		return nil, err
	}

	run.ScopeID = scopeID.String
	run.TriggeredBy = triggeredBy.String
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if levels.Valid && levels.String != "" {
		if err := json.Unmarshal([]byte(levels.String), &run.TestLevels); err != nil {
			return nil, fmt.Errorf("failed to unmarshal test levels: %w", err)
		}
	}
	return run, nil
}

// Ensure SQLiteStore implements the Store interface.
var _ core.Store = (*SQLiteStore)(nil)
