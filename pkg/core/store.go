package core

import "errors"

// ErrNotFound reports a lookup by id that matched no row. Implementations
// wrap it so callers can detect a miss with errors.Is.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations consumed by the synchronizer,
// the scope resolver, and the run loop. The SQLite implementation lives
// in internal/store.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	// Module operations. GetModuleBySlug returns (nil, nil) when absent;
	// it is the synchronizer's reconciliation lookup.
	CreateModule(m *Module) error
	UpdateModule(m *Module) error
	GetModule(id string) (*Module, error)
	GetModuleBySlug(slug string) (*Module, error)
	ListModules() ([]*Module, error)
	DeleteModule(id string) error

	// Page operations. GetPages with an empty moduleID returns every page.
	CreatePage(p *Page) error
	UpdatePage(p *Page) error
	GetPage(id string) (*Page, error)
	GetPageBySlug(slug string) (*Page, error)
	GetPages(moduleID string) ([]*Page, error)
	DeletePage(id string) error

	// Feature operations.
	CreateFeature(f *Feature) error
	UpdateFeature(f *Feature) error
	GetFeature(id string) (*Feature, error)
	GetFeatures(pageID string) ([]*Feature, error)
	DeleteFeature(id string) error

	// Test case operations.
	CreateTestCase(tc *TestCase) error
	UpdateTestCase(tc *TestCase) error
	GetTestCase(id string) (*TestCase, error)
	GetTestCases(featureID string) ([]*TestCase, error)
	DeleteTestCase(id string) error

	// Hierarchy read helpers.
	GetFullHierarchy() ([]*ModuleTree, error)
	GetTestCasesCountByModule(moduleID string) (int, error)
	GetTestCasesCountByPage(pageID string) (int, error)

	// Run operations. Counters on the run row are maintained by
	// RecordResult; CompleteRun stamps the terminal status and duration.
	CreateRun(run *TestRun) error
	GetRun(id string) (*TestRun, error)
	ListRuns(limit int) ([]*TestRun, error)
	CompleteRun(id string, status RunStatus, durationMS int64) error
	RecordResult(res *TestRunResult) error
	GetResultsForRun(runID string) ([]*TestRunResult, error)

	// Dev test log operations.
	AppendDevTestLog(entry *DevTestLogEntry) error
	ListDevTestLog(limit int) ([]*DevTestLogEntry, error)
}
