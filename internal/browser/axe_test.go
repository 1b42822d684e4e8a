package browser

import "testing"

func TestA11yScore(t *testing.T) {
	tests := []struct {
		violations int
		want       int
		pass       bool
	}{
		{0, 100, true},
		{1, 95, true},
		{4, 80, true},
		{5, 75, false},
		{10, 50, false},
		{20, 0, false},
		{25, 0, false},
	}

	for _, tt := range tests {
		if got := A11yScore(tt.violations); got != tt.want {
			t.Errorf("A11yScore(%d) = %d, want %d", tt.violations, got, tt.want)
		}
		if pass := tt.violations < a11yFailThreshold; pass != tt.pass {
			t.Errorf("violations=%d: expected pass=%v at threshold %d", tt.violations, tt.pass, a11yFailThreshold)
		}
	}
}
