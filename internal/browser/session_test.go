package browser

import (
	"context"
	"strings"
	"testing"

	"github.com/pagecheck-labs/pagecheck/internal/config"
	"github.com/pagecheck-labs/pagecheck/internal/testutil"
)

func TestLaunch_NoCandidateFound(t *testing.T) {
	s := NewSession(config.TargetConfig{}, config.BrowserConfig{
		ExecCandidates: []string{"", "/nonexistent/chrome", "/also/missing"},
		Headless:       true,
	}, testutil.NewTestLogger(t))

	err := s.Launch(context.Background())
	if err == nil {
		t.Fatal("expected launch to fail with no usable candidate")
	}
	if !strings.Contains(err.Error(), "no browser executable found") {
		t.Errorf("unexpected error: %v", err)
	}

	// Close on an unlaunched session is a no-op.
	s.Close()
}

func TestLaunch_EmptyCandidateList(t *testing.T) {
	s := NewSession(config.TargetConfig{}, config.BrowserConfig{}, nil)
	if err := s.Launch(context.Background()); err == nil {
		t.Fatal("expected launch to fail with an empty candidate list")
	}
}
