// Package resolver expands a run request into a flat, ordered list of
// enabled test cases by walking the catalog hierarchy.
package resolver

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pagecheck-labs/pagecheck/pkg/core"
)

// Request selects which test cases a run covers.
type Request struct {
	Scope      core.Scope       `json:"scope"`
	ScopeID    string           `json:"scopeId,omitempty"`
	TestLevels []core.TestLevel `json:"testLevels,omitempty"`
}

// Resolver walks the catalog hierarchy via the store.
type Resolver struct {
	store  core.Store
	logger *slog.Logger
}

// New creates a resolver. A nil logger discards output.
func New(store core.Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve returns the ordered list of enabled test cases covered by the
// request. Output order is a stable depth-first traversal: module order,
// then page order, then feature order, then case order. A scope id that
// matches nothing yields an empty list, not an error. Disabled entities
// at any level are excluded, including a directly targeted one.
func (r *Resolver) Resolve(req Request) ([]*core.TestCase, error) {
	if !req.Scope.Valid() {
		return nil, fmt.Errorf("unknown scope: %s", req.Scope)
	}

	var cases []*core.TestCase
	var err error

	switch req.Scope {
	case core.ScopeAll:
		cases, err = r.resolveAll()
	case core.ScopeModule:
		cases, err = r.resolveModule(req.ScopeID)
	case core.ScopePage:
		cases, err = r.resolvePage(req.ScopeID)
	case core.ScopeFeature:
		cases, err = r.resolveFeature(req.ScopeID)
	case core.ScopeCase:
		cases, err = r.resolveCase(req.ScopeID)
	}
	if err != nil {
		return nil, err
	}

	cases = filterLevels(cases, req.TestLevels)
	cases = filterEnabled(cases)

	r.logger.Debug("resolved scope",
		slog.String("scope", string(req.Scope)),
		slog.String("scope_id", req.ScopeID),
		slog.Int("cases", len(cases)))

	return cases, nil
}

func (r *Resolver) resolveAll() ([]*core.TestCase, error) {
	modules, err := r.store.ListModules()
	if err != nil {
		return nil, err
	}

	var cases []*core.TestCase
	for _, m := range modules {
		if !m.Enabled {
			continue
		}
		moduleCases, err := r.collectModule(m.ID)
		if err != nil {
			return nil, err
		}
		cases = append(cases, moduleCases...)
	}
	return cases, nil
}

func (r *Resolver) resolveModule(moduleID string) ([]*core.TestCase, error) {
	if moduleID == "" {
		return nil, nil
	}

	m, err := r.store.GetModule(moduleID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !m.Enabled {
		return nil, nil
	}
	return r.collectModule(m.ID)
}

func (r *Resolver) collectModule(moduleID string) ([]*core.TestCase, error) {
	pages, err := r.store.GetPages(moduleID)
	if err != nil {
		return nil, err
	}

	var cases []*core.TestCase
	for _, p := range pages {
		if !p.Enabled {
			continue
		}
		pageCases, err := r.collectPage(p.ID)
		if err != nil {
			return nil, err
		}
		cases = append(cases, pageCases...)
	}
	return cases, nil
}

func (r *Resolver) resolvePage(pageID string) ([]*core.TestCase, error) {
	if pageID == "" {
		return nil, nil
	}

	p, err := r.store.GetPage(pageID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !p.Enabled {
		return nil, nil
	}
	return r.collectPage(p.ID)
}

func (r *Resolver) collectPage(pageID string) ([]*core.TestCase, error) {
	features, err := r.store.GetFeatures(pageID)
	if err != nil {
		return nil, err
	}

	var cases []*core.TestCase
	for _, f := range features {
		if !f.Enabled {
			continue
		}
		featureCases, err := r.store.GetTestCases(f.ID)
		if err != nil {
			return nil, err
		}
		cases = append(cases, featureCases...)
	}
	return cases, nil
}

func (r *Resolver) resolveFeature(featureID string) ([]*core.TestCase, error) {
	if featureID == "" {
		return nil, nil
	}

	f, err := r.store.GetFeature(featureID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !f.Enabled {
		return nil, nil
	}
	return r.store.GetTestCases(f.ID)
}

func (r *Resolver) resolveCase(caseID string) ([]*core.TestCase, error) {
	if caseID == "" {
		return nil, nil
	}

	tc, err := r.store.GetTestCase(caseID)
	if err != nil {
		return nil, err
	}
	if tc == nil {
		return nil, nil
	}
	return []*core.TestCase{tc}, nil
}

// filterLevels retains only cases whose level is in the set. An empty
// set retains everything.
func filterLevels(cases []*core.TestCase, levels []core.TestLevel) []*core.TestCase {
	if len(levels) == 0 {
		return cases
	}

	want := make(map[core.TestLevel]bool, len(levels))
	for _, l := range levels {
		want[l] = true
	}

	filtered := cases[:0]
	for _, tc := range cases {
		if want[tc.TestLevel] {
			filtered = append(filtered, tc)
		}
	}
	return filtered
}

func filterEnabled(cases []*core.TestCase) []*core.TestCase {
	filtered := cases[:0]
	for _, tc := range cases {
		if tc.Enabled {
			filtered = append(filtered, tc)
		}
	}
	return filtered
}
