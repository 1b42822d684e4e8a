// Package browser owns the headless-browser session used by the
// catalog-wide page sweep: one browser process and one authenticated
// browsing context per run, serving sequential navigations.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/pagecheck-labs/pagecheck/internal/config"
)

// Session is a single headless-browser process with one browsing
// context. Acquire it once per run and release it with Close in a defer
// covering both normal completion and failures.
type Session struct {
	cfg    config.BrowserConfig
	target config.TargetConfig
	logger *slog.Logger

	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	ctx           context.Context

	consoleErrors atomic.Int64
}

// NewSession creates an unlaunched session.
func NewSession(target config.TargetConfig, cfg config.BrowserConfig, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{cfg: cfg, target: target, logger: logger}
}

// Launch starts the browser process, trying each candidate executable in
// order and keeping the first that launches. It fails only when no
// candidate launches.
func (s *Session) Launch(ctx context.Context) error {
	var lastErr error

	for _, candidate := range s.cfg.ExecCandidates {
		if candidate == "" {
			continue
		}
		if _, err := os.Stat(candidate); err != nil {
			continue
		}

		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.ExecPath(candidate),
			chromedp.Flag("headless", s.cfg.Headless),
			chromedp.NoSandbox,
			chromedp.DisableGPU,
		)

		allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
		browserCtx, browserCancel := chromedp.NewContext(allocCtx)

		// Starting an empty task forces the process launch so a broken
		// candidate fails here rather than on first navigation.
		if err := chromedp.Run(browserCtx); err != nil {
			browserCancel()
			allocCancel()
			lastErr = fmt.Errorf("candidate %s: %w", candidate, err)
			s.logger.Warn("browser candidate failed to launch",
				slog.String("path", candidate),
				slog.String("error", err.Error()))
			continue
		}

		s.allocCancel = allocCancel
		s.browserCancel = browserCancel
		s.ctx = browserCtx
		s.listenForConsoleErrors()

		s.logger.Info("browser launched", slog.String("path", candidate))
		return nil
	}

	if lastErr != nil {
		return fmt.Errorf("no browser executable launched: %w", lastErr)
	}
	return fmt.Errorf("no browser executable found among %d candidates", len(s.cfg.ExecCandidates))
}

// Close releases the browsing context and the browser process.
func (s *Session) Close() {
	if s.browserCancel != nil {
		s.browserCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
}

// loginSelectors are the prioritized locating strategies for the login
// form: explicit test hooks first, semantic HTML attributes as fallback.
var (
	emailSelectors = []string{
		`[data-testid="email"]`,
		`input[type="email"]`,
		`input[name="email"]`,
	}
	passwordSelectors = []string{
		`[data-testid="password"]`,
		`input[type="password"]`,
		`input[name="password"]`,
	}
	submitSelectors = []string{
		`[data-testid="login-submit"]`,
		`button[type="submit"]`,
		`input[type="submit"]`,
	}
)

// Login navigates to the login surface, submits the configured
// credentials, and waits for navigation away from the login route.
// Authentication is all-or-nothing per run and is never retried mid-run.
func (s *Session) Login(ctx context.Context) error {
	loginURL := strings.TrimRight(s.target.BaseURL, "/") + s.target.LoginPath

	timeout := time.Duration(s.cfg.LoginTimeoutSec) * time.Second
	navCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	if err := chromedp.Run(navCtx, chromedp.Navigate(loginURL)); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}

	emailSel, err := s.firstMatching(navCtx, emailSelectors)
	if err != nil {
		return fmt.Errorf("login email input not found: %w", err)
	}
	passwordSel, err := s.firstMatching(navCtx, passwordSelectors)
	if err != nil {
		return fmt.Errorf("login password input not found: %w", err)
	}
	submitSel, err := s.firstMatching(navCtx, submitSelectors)
	if err != nil {
		return fmt.Errorf("login submit control not found: %w", err)
	}

	err = chromedp.Run(navCtx,
		chromedp.SendKeys(emailSel, s.target.Email, chromedp.ByQuery),
		chromedp.SendKeys(passwordSel, s.target.Password, chromedp.ByQuery),
		chromedp.Click(submitSel, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to submit login form: %w", err)
	}

	if err := s.waitForRedirect(navCtx); err != nil {
		return err
	}

	s.logger.Info("login succeeded")
	return nil
}

// firstMatching returns the first selector strategy present in the DOM.
func (s *Session) firstMatching(ctx context.Context, selectors []string) (string, error) {
	for _, sel := range selectors {
		var found bool
		err := chromedp.Run(ctx, chromedp.Evaluate(
			fmt.Sprintf(`document.querySelector(%q) !== null`, sel), &found))
		if err != nil {
			return "", err
		}
		if found {
			return sel, nil
		}
	}
	return "", fmt.Errorf("no selector strategy matched (tried %s)", strings.Join(selectors, ", "))
}

// waitForRedirect polls the location until it leaves the login route or
// the bounded timeout expires.
func (s *Session) waitForRedirect(ctx context.Context) error {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for post-login redirect: %w", ctx.Err())
		case <-ticker.C:
			var href string
			if err := chromedp.Run(ctx, chromedp.Evaluate(`window.location.pathname`, &href)); err != nil {
				continue
			}
			if !strings.HasPrefix(href, s.target.LoginPath) {
				return nil
			}
		}
	}
}
