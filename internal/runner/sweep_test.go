package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagecheck-labs/pagecheck/internal/browser"
	"github.com/pagecheck-labs/pagecheck/internal/store"
	"github.com/pagecheck-labs/pagecheck/internal/testutil"
	"github.com/pagecheck-labs/pagecheck/pkg/core"
)

// fakeSession is a scripted PageChecker.
type fakeSession struct {
	launchErr error
	loginErr  error
	results   map[string]*browser.PageResult

	launched  bool
	loggedIn  bool
	closed    bool
	navigated []string
}

func (f *fakeSession) Launch(ctx context.Context) error {
	f.launched = true
	return f.launchErr
}

func (f *fakeSession) Login(ctx context.Context) error {
	f.loggedIn = f.loginErr == nil
	return f.loginErr
}

func (f *fakeSession) CheckPage(ctx context.Context, page *core.Page) *browser.PageResult {
	f.navigated = append(f.navigated, page.Route)
	if r, ok := f.results[page.Route]; ok {
		return r
	}
	return &browser.PageResult{
		PageID:    page.ID,
		PageName:  page.Name,
		Route:     page.Route,
		Status:    core.ResultStatusPassed,
		Checks:    []browser.Check{{Name: "Page loads", Passed: true}},
		A11yScore: 100,
	}
}

func (f *fakeSession) Close() { f.closed = true }

func setupSweepStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st := store.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, st.Open(":memory:"))
	require.NoError(t, st.Migrate())
	t.Cleanup(func() { st.Close() })
	return st
}

// seedSweepCatalog creates two modules with two and one enabled pages,
// plus one disabled page that must never be visited.
func seedSweepCatalog(t *testing.T, st *store.SQLiteStore) (modA *core.Module) {
	t.Helper()

	modA = &core.Module{Name: "Alpha", Slug: "alpha", Order: 0, Enabled: true}
	require.NoError(t, st.CreateModule(modA))
	modB := &core.Module{Name: "Beta", Slug: "beta", Order: 1, Enabled: true}
	require.NoError(t, st.CreateModule(modB))

	pages := []*core.Page{
		{ModuleID: modA.ID, Name: "A1", Slug: "alpha-a1", Route: "/a1", Order: 0, Enabled: true},
		{ModuleID: modA.ID, Name: "A2", Slug: "alpha-a2", Route: "/a2", Order: 1, Enabled: true},
		{ModuleID: modA.ID, Name: "Hidden", Slug: "alpha-hidden", Route: "/hidden", Order: 2, Enabled: false},
		{ModuleID: modB.ID, Name: "B1", Slug: "beta-b1", Route: "/b1", Order: 0, Enabled: true},
	}
	for _, p := range pages {
		require.NoError(t, st.CreatePage(p))
	}
	return modA
}

func TestSweep_AllPagesPass(t *testing.T) {
	st := setupSweepStore(t)
	seedSweepCatalog(t, st)

	session := &fakeSession{}
	sweeper := NewSweeper(st, testutil.NewTestLogger(t))

	report, err := sweeper.Sweep(context.Background(), session, SweepRequest{TriggeredBy: "test"}, nil)
	require.NoError(t, err)

	assert.Equal(t, core.RunStatusCompleted, report.Status)
	assert.True(t, report.LoginSuccess)
	assert.Equal(t, 3, report.TotalPages)
	assert.Equal(t, 3, report.PassedPages)
	assert.Equal(t, 0, report.FailedPages)
	assert.Equal(t, 100.0, report.MeanA11yScore)
	assert.True(t, session.closed, "session must be closed after the sweep")

	// Disabled pages are never navigated; module order then page order.
	assert.Equal(t, []string{"/a1", "/a2", "/b1"}, session.navigated)
}

func TestSweep_LoginFailureAbortsBeforeAnyPage(t *testing.T) {
	st := setupSweepStore(t)
	seedSweepCatalog(t, st)

	session := &fakeSession{loginErr: errors.New("bad credentials")}
	sweeper := NewSweeper(st, testutil.NewTestLogger(t))

	report, err := sweeper.Sweep(context.Background(), session, SweepRequest{}, nil)
	require.NoError(t, err)

	assert.Equal(t, core.RunStatusFailed, report.Status)
	assert.False(t, report.LoginSuccess)
	assert.Equal(t, 0, report.TotalPages)
	assert.Empty(t, report.Results)
	assert.Empty(t, session.navigated, "no page may be visited after a failed login")
	assert.True(t, session.closed)

	run, err := st.GetRun(report.RunID)
	require.NoError(t, err)
	assert.Equal(t, core.RunStatusFailed, run.Status)
}

func TestSweep_LaunchFailureAborts(t *testing.T) {
	st := setupSweepStore(t)
	seedSweepCatalog(t, st)

	session := &fakeSession{launchErr: errors.New("no chrome binary found")}
	sweeper := NewSweeper(st, testutil.NewTestLogger(t))

	report, err := sweeper.Sweep(context.Background(), session, SweepRequest{}, nil)
	require.NoError(t, err)

	assert.Equal(t, core.RunStatusFailed, report.Status)
	assert.False(t, report.LoginSuccess)
	assert.Empty(t, session.navigated)
	assert.False(t, session.closed, "a session that never launched is not closed")
}

func TestSweep_SingleFailedPageContinues(t *testing.T) {
	st := setupSweepStore(t)
	seedSweepCatalog(t, st)

	session := &fakeSession{
		results: map[string]*browser.PageResult{
			"/a2": {
				Route:  "/a2",
				Status: core.ResultStatusFailed,
				Checks: []browser.Check{
					{Name: "Page loads", Passed: true},
					{Name: "No JS errors", Passed: false, Details: "3 console errors"},
				},
				A11yScore: 70,
			},
		},
	}
	sweeper := NewSweeper(st, testutil.NewTestLogger(t))

	report, err := sweeper.Sweep(context.Background(), session, SweepRequest{}, nil)
	require.NoError(t, err)

	assert.Equal(t, core.RunStatusFailed, report.Status)
	assert.Equal(t, 3, report.TotalPages)
	assert.Equal(t, 2, report.PassedPages)
	assert.Equal(t, 1, report.FailedPages)
	assert.Equal(t, []string{"/a1", "/a2", "/b1"}, session.navigated,
		"a failed page must not stop the sweep")
	assert.InDelta(t, (100.0+70.0+100.0)/3.0, report.MeanA11yScore, 0.001)

	results, err := st.GetResultsForRun(report.RunID)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "No JS errors: 3 console errors", results[1].ErrorMessage)
	assert.NotEmpty(t, results[1].ActualResult, "page evidence is persisted as JSON")
}

func TestSweep_ModuleScope(t *testing.T) {
	st := setupSweepStore(t)
	modA := seedSweepCatalog(t, st)

	session := &fakeSession{}
	sweeper := NewSweeper(st, testutil.NewTestLogger(t))

	report, err := sweeper.Sweep(context.Background(), session, SweepRequest{ModuleID: modA.ID}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalPages)
	assert.Equal(t, []string{"/a1", "/a2"}, session.navigated)

	run, err := st.GetRun(report.RunID)
	require.NoError(t, err)
	assert.Equal(t, core.ScopeModule, run.Scope)
	assert.Equal(t, modA.ID, run.ScopeID)
}

func TestSweep_AppendsDevTestLog(t *testing.T) {
	st := setupSweepStore(t)
	seedSweepCatalog(t, st)

	session := &fakeSession{}
	sweeper := NewSweeper(st, testutil.NewTestLogger(t))

	report, err := sweeper.Sweep(context.Background(), session, SweepRequest{}, nil)
	require.NoError(t, err)

	entries, err := st.ListDevTestLog(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, report.RunID, entries[0].RunID)
	assert.Equal(t, 3, entries[0].TotalPages)
	assert.Equal(t, 100.0, entries[0].MeanA11yScore)
}

func TestSweep_Cancellation(t *testing.T) {
	st := setupSweepStore(t)
	seedSweepCatalog(t, st)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := &fakeSession{}
	sweeper := NewSweeper(st, testutil.NewTestLogger(t))

	report, err := sweeper.Sweep(ctx, session, SweepRequest{}, func(p Progress) {
		if p.Current == 1 {
			cancel()
		}
	})
	require.Error(t, err)
	assert.True(t, IsCancelled(err))
	assert.Equal(t, core.RunStatusCancelled, report.Status)
	assert.Less(t, len(session.navigated), 3)
}

func TestSweep_ProgressReportsRoutes(t *testing.T) {
	st := setupSweepStore(t)
	seedSweepCatalog(t, st)

	var routes []string
	session := &fakeSession{}
	sweeper := NewSweeper(st, testutil.NewTestLogger(t))

	_, err := sweeper.Sweep(context.Background(), session, SweepRequest{}, func(p Progress) {
		routes = append(routes, p.CurrentPage)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a1", "/a2", "/b1"}, routes)
}

func TestSweep_ProgressCarriesResultsSoFar(t *testing.T) {
	st := setupSweepStore(t)
	seedSweepCatalog(t, st)

	session := &fakeSession{}
	sweeper := NewSweeper(st, testutil.NewTestLogger(t))

	var updates []Progress
	_, err := sweeper.Sweep(context.Background(), session, SweepRequest{}, func(p Progress) {
		updates = append(updates, p)
	})
	require.NoError(t, err)

	require.Len(t, updates, 3)
	for i, p := range updates {
		assert.Equal(t, i+1, p.Current)
		require.Len(t, p.Results, i+1, "update %d must carry every result so far", i+1)
		// The newest entry is the page just checked.
		assert.Equal(t, core.ResultStatusPassed, p.Results[len(p.Results)-1].Status)
	}
}
