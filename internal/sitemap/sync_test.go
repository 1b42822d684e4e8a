package sitemap

import (
	"testing"

	"github.com/pagecheck-labs/pagecheck/internal/store"
	"github.com/pagecheck-labs/pagecheck/internal/testutil"
)

func setupSyncTest(t *testing.T) (*store.SQLiteStore, *Synchronizer) {
	t.Helper()
	st := store.NewSQLiteStore(testutil.NewTestLogger(t))
	if err := st.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := st.Migrate(); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st, NewSynchronizer(st, testutil.NewTestLogger(t))
}

func testDefinition() *Definition {
	return &Definition{
		Version: 1,
		Modules: []ModuleDefinition{
			{
				Slug: "dashboard",
				Name: "Dashboard",
				Items: []ItemDefinition{
					{ID: "overview", Name: "Overview", Route: "/dashboard"},
				},
			},
			{
				Slug: "billing",
				Name: "Billing",
				Items: []ItemDefinition{
					{ID: "invoices", Name: "Invoices", Route: "/billing/invoices"},
					{ID: "payments", Name: "Payments", Route: "/billing/payments"},
				},
			},
		},
	}
}

func TestSync_CreatesCatalog(t *testing.T) {
	st, sync := setupSyncTest(t)

	summary, err := sync.Sync(testDefinition())
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if summary.ModulesCreated != 2 || summary.PagesCreated != 3 {
		t.Errorf("expected 2 modules and 3 pages created, got %+v", summary)
	}
	if summary.TotalModules != 2 || summary.TotalPages != 3 {
		t.Errorf("unexpected totals: %+v", summary)
	}

	m, err := st.GetModuleBySlug("billing")
	if err != nil || m == nil {
		t.Fatalf("billing module not persisted: %v", err)
	}
	if !m.Enabled {
		t.Error("new modules should be enabled")
	}
	if m.Order != 1 {
		t.Errorf("expected order 1 from definition position, got %d", m.Order)
	}

	p, err := st.GetPageBySlug("billing-invoices")
	if err != nil || p == nil {
		t.Fatalf("page not persisted under composite slug: %v", err)
	}
	if p.ModuleID != m.ID {
		t.Errorf("page attached to wrong module: %s", p.ModuleID)
	}
	if p.Route != "/billing/invoices" {
		t.Errorf("unexpected route: %s", p.Route)
	}
}

func TestSync_Idempotent(t *testing.T) {
	_, sync := setupSyncTest(t)
	def := testDefinition()

	if _, err := sync.Sync(def); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	summary, err := sync.Sync(def)
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if summary.ModulesCreated != 0 || summary.PagesCreated != 0 {
		t.Errorf("second sync of unchanged definition must create nothing, got %+v", summary)
	}
	if summary.ModulesUpdated != 2 || summary.PagesUpdated != 3 {
		t.Errorf("expected all entities refreshed in place, got %+v", summary)
	}
}

func TestSync_IncrementalAdd(t *testing.T) {
	st, sync := setupSyncTest(t)
	def := testDefinition()

	if _, err := sync.Sync(def); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	def.Modules[1].Items = append(def.Modules[1].Items, ItemDefinition{
		ID: "refunds", Name: "Refunds", Route: "/billing/refunds",
	})

	summary, err := sync.Sync(def)
	if err != nil {
		t.Fatalf("incremental sync failed: %v", err)
	}
	if summary.PagesCreated != 1 {
		t.Errorf("expected exactly 1 page created, got %d", summary.PagesCreated)
	}
	if summary.ModulesCreated != 0 {
		t.Errorf("expected no modules created, got %d", summary.ModulesCreated)
	}

	p, err := st.GetPageBySlug("billing-refunds")
	if err != nil || p == nil {
		t.Fatalf("new page not persisted: %v", err)
	}
}

func TestSync_NeverDeletes(t *testing.T) {
	st, sync := setupSyncTest(t)
	def := testDefinition()

	if _, err := sync.Sync(def); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	// Shrink the definition: remove the payments item and the whole
	// dashboard module.
	def.Modules = []ModuleDefinition{
		{
			Slug: "billing",
			Name: "Billing",
			Items: []ItemDefinition{
				{ID: "invoices", Name: "Invoices", Route: "/billing/invoices"},
			},
		},
	}

	if _, err := sync.Sync(def); err != nil {
		t.Fatalf("shrunken sync failed: %v", err)
	}

	for _, slug := range []string{"billing-payments"} {
		p, err := st.GetPageBySlug(slug)
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if p == nil {
			t.Errorf("page %s removed from definition must survive in catalog", slug)
		}
	}
	m, err := st.GetModuleBySlug("dashboard")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if m == nil {
		t.Error("module removed from definition must survive in catalog")
	}
}

func TestSync_UpdatesRouteAndName(t *testing.T) {
	st, sync := setupSyncTest(t)
	def := testDefinition()

	if _, err := sync.Sync(def); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	def.Modules[0].Name = "Home"
	def.Modules[0].Items[0].Route = "/home"

	if _, err := sync.Sync(def); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}

	m, err := st.GetModuleBySlug("dashboard")
	if err != nil || m == nil {
		t.Fatalf("module lookup failed: %v", err)
	}
	if m.Name != "Home" {
		t.Errorf("module name not refreshed: %s", m.Name)
	}

	p, err := st.GetPageBySlug("dashboard-overview")
	if err != nil || p == nil {
		t.Fatalf("page lookup failed: %v", err)
	}
	if p.Route != "/home" {
		t.Errorf("route not refreshed: %s", p.Route)
	}
}

func TestSync_PreservesDisabledFlag(t *testing.T) {
	st, sync := setupSyncTest(t)
	def := testDefinition()

	if _, err := sync.Sync(def); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	m, err := st.GetModuleBySlug("dashboard")
	if err != nil || m == nil {
		t.Fatalf("module lookup failed: %v", err)
	}
	m.Enabled = false
	if err := st.UpdateModule(m); err != nil {
		t.Fatalf("failed to disable module: %v", err)
	}

	if _, err := sync.Sync(def); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}

	m, err = st.GetModuleBySlug("dashboard")
	if err != nil || m == nil {
		t.Fatalf("module lookup failed: %v", err)
	}
	if m.Enabled {
		t.Error("manual disable must survive re-sync")
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name: "valid definition",
			input: `version: 1
modules:
  - slug: admin
    name: Admin
    items:
      - id: users
        name: Users
        route: /admin/users
`,
		},
		{
			name: "duplicate module slug",
			input: `version: 1
modules:
  - slug: admin
    name: Admin
  - slug: admin
    name: Admin Again
`,
			wantErr: true,
		},
		{
			name: "missing module slug",
			input: `version: 1
modules:
  - name: Nameless
`,
			wantErr: true,
		},
		{
			name: "duplicate item id within module",
			input: `version: 1
modules:
  - slug: admin
    name: Admin
    items:
      - id: users
        name: Users
        route: /admin/users
      - id: users
        name: Users Again
        route: /admin/users2
`,
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			input:   "modules: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if tt.wantErr && err == nil {
				t.Error("expected parse error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected parse error: %v", err)
			}
		})
	}
}

func TestLoad_EmbeddedDefault(t *testing.T) {
	def, err := Load("")
	if err != nil {
		t.Fatalf("failed to load embedded definition: %v", err)
	}
	if len(def.Modules) == 0 {
		t.Fatal("embedded definition should declare modules")
	}
	for _, m := range def.Modules {
		if m.Slug == "" {
			t.Errorf("module %q has no slug", m.Name)
		}
	}
}

func TestPageSlug(t *testing.T) {
	if got := PageSlug("billing", "invoices"); got != "billing-invoices" {
		t.Errorf("unexpected composite slug: %s", got)
	}
}
