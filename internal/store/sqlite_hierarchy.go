package store

import (
	"fmt"

	"github.com/pagecheck-labs/pagecheck/pkg/core"
)

// GetFullHierarchy returns the entire catalog as a nested tree in one
// call, for UI consumption and the list command. Ordering follows each
// level's sort order.
func (s *SQLiteStore) GetFullHierarchy() ([]*core.ModuleTree, error) {
	modules, err := s.ListModules()
	if err != nil {
		return nil, err
	}

	var tree []*core.ModuleTree
	for _, m := range modules {
		mt := &core.ModuleTree{Module: *m, Pages: []*core.PageTree{}}

		pages, err := s.GetPages(m.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range pages {
			pt := &core.PageTree{Page: *p, Features: []*core.FeatureTree{}}

			features, err := s.GetFeatures(p.ID)
			if err != nil {
				return nil, err
			}
			for _, f := range features {
				cases, err := s.GetTestCases(f.ID)
				if err != nil {
					return nil, err
				}
				pt.Features = append(pt.Features, &core.FeatureTree{Feature: *f, TestCases: cases})
			}
			mt.Pages = append(mt.Pages, pt)
		}
		tree = append(tree, mt)
	}
	return tree, nil
}

// GetTestCasesCountByModule walks the module's pages and features and
// sums leaf test case counts.
func (s *SQLiteStore) GetTestCasesCountByModule(moduleID string) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM test_cases tc
		 JOIN features f ON f.id = tc.feature_id
		 JOIN pages p ON p.id = f.page_id
		 WHERE p.module_id = ?`, moduleID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count test cases for module: %w", err)
	}
	return count, nil
}

// GetTestCasesCountByPage sums leaf test case counts under a page.
func (s *SQLiteStore) GetTestCasesCountByPage(pageID string) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM test_cases tc
		 JOIN features f ON f.id = tc.feature_id
		 WHERE f.page_id = ?`, pageID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count test cases for page: %w", err)
	}
	return count, nil
}
