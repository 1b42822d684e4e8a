package core

import "testing"

func TestTestLevelValid(t *testing.T) {
	for _, l := range TestLevels() {
		if !l.Valid() {
			t.Errorf("level %s should be valid", l)
		}
	}
	for _, l := range []TestLevel{"", "unit", "API"} {
		if l.Valid() {
			t.Errorf("level %q should be invalid", l)
		}
	}
}

func TestScopeValid(t *testing.T) {
	for _, s := range []Scope{ScopeAll, ScopeModule, ScopePage, ScopeFeature, ScopeCase} {
		if !s.Valid() {
			t.Errorf("scope %s should be valid", s)
		}
	}
	for _, s := range []Scope{"", "All", "project"} {
		if s.Valid() {
			t.Errorf("scope %q should be invalid", s)
		}
	}
}

func TestRunStatusTerminal(t *testing.T) {
	terminal := map[RunStatus]bool{
		RunStatusPending:   false,
		RunStatusRunning:   false,
		RunStatusCompleted: true,
		RunStatusFailed:    true,
		RunStatusCancelled: true,
	}
	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}
