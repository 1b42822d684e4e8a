package core

import "time"

// TestLevel classifies a TestCase and selects its executor.
type TestLevel string

// Test level constants. Every authored case carries exactly one of these.
const (
	TestLevelButton      TestLevel = "button"
	TestLevelForm        TestLevel = "form"
	TestLevelCRUD        TestLevel = "crud"
	TestLevelNavigation  TestLevel = "navigation"
	TestLevelAPI         TestLevel = "api"
	TestLevelIntegration TestLevel = "integration"
	TestLevelE2E         TestLevel = "e2e"
)

// TestLevels lists all known levels in a stable order.
func TestLevels() []TestLevel {
	return []TestLevel{
		TestLevelButton,
		TestLevelForm,
		TestLevelCRUD,
		TestLevelNavigation,
		TestLevelAPI,
		TestLevelIntegration,
		TestLevelE2E,
	}
}

// Valid reports whether l is one of the known test levels.
func (l TestLevel) Valid() bool {
	switch l {
	case TestLevelButton, TestLevelForm, TestLevelCRUD, TestLevelNavigation,
		TestLevelAPI, TestLevelIntegration, TestLevelE2E:
		return true
	}
	return false
}

// Module is a top-level grouping of a product area in the test catalog.
// Modules are reconciled from the sitemap definition; Slug is the
// idempotence anchor and must never change once assigned.
type Module struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Order       int       `json:"order"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Page is a navigable route owned by exactly one Module. Route is the
// path checked by browser-level tests.
type Page struct {
	ID          string    `json:"id"`
	ModuleID    string    `json:"moduleId"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Route       string    `json:"route"`
	Description string    `json:"description,omitempty"`
	Order       int       `json:"order"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Feature groups related test cases under a Page. Features are authored
// independently of the sitemap synchronizer.
type Feature struct {
	ID        string    `json:"id"`
	PageID    string    `json:"pageId"`
	Name      string    `json:"name"`
	Order     int       `json:"order"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TestCase is a single executable check with a declared level and
// level-specific parameters. Selector drives interactive-presence checks;
// APIEndpoint/APIMethod/TestData/ExpectedResult drive network checks.
type TestCase struct {
	ID             string          `json:"id"`
	FeatureID      string          `json:"featureId"`
	Name           string          `json:"name"`
	TestLevel      TestLevel       `json:"testLevel"`
	Selector       string          `json:"selector,omitempty"`
	APIEndpoint    string          `json:"apiEndpoint,omitempty"`
	APIMethod      string          `json:"apiMethod,omitempty"`
	TestData       map[string]any  `json:"testData,omitempty"`
	ExpectedResult *ExpectedResult `json:"expectedResult,omitempty"`
	Enabled        bool            `json:"enabled"`
	Order          int             `json:"order"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ExpectedResult holds the assertion parameters for a network check.
type ExpectedResult struct {
	StatusCode int `json:"statusCode,omitempty"`
}

// ModuleTree is a Module with its nested pages, used by the full-hierarchy
// read path consumed by UIs and the list command.
type ModuleTree struct {
	Module
	Pages []*PageTree `json:"pages"`
}

// PageTree is a Page with its nested features.
type PageTree struct {
	Page
	Features []*FeatureTree `json:"features"`
}

// FeatureTree is a Feature with its test cases.
type FeatureTree struct {
	Feature
	TestCases []*TestCase `json:"testCases"`
}
