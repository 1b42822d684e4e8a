package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pagecheck-labs/pagecheck/pkg/core"
)

// --- Feature operations ---

// CreateFeature inserts a new feature. An empty ID is assigned a UUID.
func (s *SQLiteStore) CreateFeature(f *core.Feature) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if f.ID == "" {
		f.ID = generateID()
	}
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now

	_, err := s.db.Exec(
		`INSERT INTO features (id, page_id, name, sort_order, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.PageID, f.Name, f.Order, f.Enabled, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create feature: %w", err)
	}
	return nil
}

// UpdateFeature updates a feature in place.
func (s *SQLiteStore) UpdateFeature(f *core.Feature) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	f.UpdatedAt = time.Now().UTC()
	result, err := s.db.Exec(
		`UPDATE features SET name = ?, sort_order = ?, enabled = ?, updated_at = ? WHERE id = ?`,
		f.Name, f.Order, f.Enabled, f.UpdatedAt, f.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update feature: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("feature not found: %s", f.ID)
	}
	return nil
}

// GetFeature retrieves a feature by ID.
func (s *SQLiteStore) GetFeature(id string) (*core.Feature, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	f := &core.Feature{}
	err := s.db.QueryRow(
		`SELECT id, page_id, name, sort_order, enabled, created_at, updated_at
		 FROM features WHERE id = ?`, id,
	).Scan(&f.ID, &f.PageID, &f.Name, &f.Order, &f.Enabled, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("feature %w", errNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feature: %w", err)
	}
	return f, nil
}

// GetFeatures retrieves features ordered by sort order, filtered to a
// page when pageID is non-empty.
func (s *SQLiteStore) GetFeatures(pageID string) ([]*core.Feature, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT id, page_id, name, sort_order, enabled, created_at, updated_at
	          FROM features ORDER BY sort_order, name`
	args := []any{}
	if pageID != "" {
		query = `SELECT id, page_id, name, sort_order, enabled, created_at, updated_at
		         FROM features WHERE page_id = ? ORDER BY sort_order, name`
		args = append(args, pageID)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}
	defer rows.Close()

	var features []*core.Feature
	for rows.Next() {
		f := &core.Feature{}
		if err := rows.Scan(&f.ID, &f.PageID, &f.Name, &f.Order, &f.Enabled, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		features = append(features, f)
	}
	return features, rows.Err()
}

// DeleteFeature removes a feature by ID.
func (s *SQLiteStore) DeleteFeature(id string) error {
	return s.deleteByID("features", "feature", id)
}

// --- Test case operations ---

// CreateTestCase inserts a new test case. TestData and ExpectedResult are
// stored as JSON text.
func (s *SQLiteStore) CreateTestCase(tc *core.TestCase) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if tc.ID == "" {
		tc.ID = generateID()
	}
	now := time.Now().UTC()
	tc.CreatedAt = now
	tc.UpdatedAt = now

	testData, expected, err := marshalCaseParams(tc)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		`INSERT INTO test_cases (id, feature_id, name, test_level, selector, api_endpoint, api_method,
		                         test_data, expected_result, enabled, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tc.ID, tc.FeatureID, tc.Name, tc.TestLevel, nullable(tc.Selector), nullable(tc.APIEndpoint),
		nullable(tc.APIMethod), testData, expected, tc.Enabled, tc.Order, tc.CreatedAt, tc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create test case: %w", err)
	}
	return nil
}

// UpdateTestCase updates a test case in place.
func (s *SQLiteStore) UpdateTestCase(tc *core.TestCase) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tc.UpdatedAt = time.Now().UTC()

	testData, expected, err := marshalCaseParams(tc)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(
		`UPDATE test_cases SET name = ?, test_level = ?, selector = ?, api_endpoint = ?, api_method = ?,
		        test_data = ?, expected_result = ?, enabled = ?, sort_order = ?, updated_at = ?
		 WHERE id = ?`,
		tc.Name, tc.TestLevel, nullable(tc.Selector), nullable(tc.APIEndpoint), nullable(tc.APIMethod),
		testData, expected, tc.Enabled, tc.Order, tc.UpdatedAt, tc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update test case: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("test case not found: %s", tc.ID)
	}
	return nil
}

// GetTestCase retrieves a test case by ID.
// Returns (nil, nil) when absent; the case scope resolves zero-or-one.
func (s *SQLiteStore) GetTestCase(id string) (*core.TestCase, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(
		`SELECT id, feature_id, name, test_level, selector, api_endpoint, api_method,
		        test_data, expected_result, enabled, sort_order, created_at, updated_at
		 FROM test_cases WHERE id = ?`, id)

	tc, err := scanTestCase(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get test case: %w", err)
	}
	return tc, nil
}

// GetTestCases retrieves test cases ordered by sort order, filtered to a
// feature when featureID is non-empty.
func (s *SQLiteStore) GetTestCases(featureID string) ([]*core.TestCase, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT id, feature_id, name, test_level, selector, api_endpoint, api_method,
	                 test_data, expected_result, enabled, sort_order, created_at, updated_at
	          FROM test_cases ORDER BY sort_order, name`
	args := []any{}
	if featureID != "" {
		query = `SELECT id, feature_id, name, test_level, selector, api_endpoint, api_method,
		                test_data, expected_result, enabled, sort_order, created_at, updated_at
		         FROM test_cases WHERE feature_id = ? ORDER BY sort_order, name`
		args = append(args, featureID)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list test cases: %w", err)
	}
	defer rows.Close()

	var cases []*core.TestCase
	for rows.Next() {
		tc, err := scanTestCase(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test case: %w", err)
		}
		cases = append(cases, tc)
	}
	return cases, rows.Err()
}

// DeleteTestCase removes a test case by ID.
func (s *SQLiteStore) DeleteTestCase(id string) error {
	return s.deleteByID("test_cases", "test case", id)
}

func marshalCaseParams(tc *core.TestCase) (testData, expected *string, err error) {
	if tc.TestData != nil {
		b, err := json.Marshal(tc.TestData)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal test data: %w", err)
		}
		s := string(b)
		testData = &s
	}
	if tc.ExpectedResult != nil {
		b, err := json.Marshal(tc.ExpectedResult)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal expected result: %w", err)
		}
		s := string(b)
		expected = &s
	}
	return testData, expected, nil
}

func scanTestCase(scan func(dest ...any) error) (*core.TestCase, error) {
	tc := &core.TestCase{}
	var selector, endpoint, method, testData, expected sql.NullString

	err := scan(&tc.ID, &tc.FeatureID, &tc.Name, &tc.TestLevel, &selector, &endpoint, &method,
		&testData, &expected, &tc.Enabled, &tc.Order, &tc.CreatedAt, &tc.UpdatedAt)
	if err != nil {
		return nil, err
	}

	tc.Selector = selector.String
	tc.APIEndpoint = endpoint.String
	tc.APIMethod = method.String

	if testData.Valid && testData.String != "" {
		if err := json.Unmarshal([]byte(testData.String), &tc.TestData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal test data: %w", err)
		}
	}
	if expected.Valid && expected.String != "" {
		tc.ExpectedResult = &core.ExpectedResult{}
		if err := json.Unmarshal([]byte(expected.String), tc.ExpectedResult); err != nil {
			return nil, fmt.Errorf("failed to unmarshal expected result: %w", err)
		}
	}
	return tc, nil
}

// nullable maps an empty string to NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
