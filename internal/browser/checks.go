package browser

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/pagecheck-labs/pagecheck/pkg/core"
)

// minContentLength is the rendered-text threshold for the has-content
// check.
const minContentLength = 50

// Check is one named check within a page result.
type Check struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Details string `json:"details,omitempty"`
}

// PageResult is the outcome of the full check battery against one page.
type PageResult struct {
	PageID         string            `json:"pageId"`
	PageName       string            `json:"pageName"`
	Route          string            `json:"route"`
	Status         core.ResultStatus `json:"status"`
	Checks         []Check           `json:"checks"`
	A11yScore      int               `json:"accessibilityScore"`
	ScreenshotPath string            `json:"screenshotPath,omitempty"`
	DurationMS     int64             `json:"duration"`
}

// listenForConsoleErrors installs the session-lifetime console listener.
// The counter is reset before each navigation so each page's check sees
// only its own errors.
func (s *Session) listenForConsoleErrors() {
	chromedp.ListenTarget(s.ctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *runtime.EventConsoleAPICalled:
			if e.Type == runtime.APITypeError {
				s.consoleErrors.Add(1)
			}
		case *runtime.EventExceptionThrown:
			s.consoleErrors.Add(1)
		}
	})
}

// CheckPage navigates to the page's route and runs the fixed check
// battery. A navigation-level failure produces a single synthetic failed
// check, a best-effort screenshot, and an accessibility score of zero;
// it never corrupts the session for the next page.
func (s *Session) CheckPage(ctx context.Context, page *core.Page) *PageResult {
	start := time.Now()
	result := &PageResult{
		PageID:   page.ID,
		PageName: page.Name,
		Route:    page.Route,
	}
	defer func() {
		result.DurationMS = time.Since(start).Milliseconds()
	}()

	url := strings.TrimRight(s.target.BaseURL, "/") + page.Route

	timeout := time.Duration(s.cfg.NavigationTimeoutSec) * time.Second
	navCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	s.consoleErrors.Store(0)

	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		result.Status = core.ResultStatusFailed
		result.Checks = []Check{{Name: "Page loads", Passed: false, Details: err.Error()}}
		result.A11yScore = 0
		result.ScreenshotPath = s.captureFailureScreenshot(page.Route)
		s.logger.Warn("page navigation failed",
			slog.String("route", page.Route),
			slog.String("error", err.Error()))
		return result
	}

	result.Checks = append(result.Checks, Check{Name: "Page loads", Passed: true})
	result.Checks = append(result.Checks, s.checkHasContent(navCtx))
	result.Checks = append(result.Checks, s.checkNoJSErrors())
	result.Checks = append(result.Checks, s.checkNoUIErrors(navCtx))
	result.Checks = append(result.Checks, s.checkButtonsPresent(navCtx))

	a11y, score := s.checkAccessibility(navCtx)
	result.Checks = append(result.Checks, a11y)
	result.A11yScore = score

	result.Status = core.ResultStatusPassed
	for _, c := range result.Checks {
		if !c.Passed {
			result.Status = core.ResultStatusFailed
			break
		}
	}
	return result
}

func (s *Session) checkHasContent(ctx context.Context) Check {
	var length int
	err := chromedp.Run(ctx, chromedp.Evaluate(
		`document.body ? document.body.innerText.length : 0`, &length))
	if err != nil {
		return Check{Name: "Has content", Passed: false, Details: err.Error()}
	}
	return Check{
		Name:    "Has content",
		Passed:  length > minContentLength,
		Details: fmt.Sprintf("%d characters rendered", length),
	}
}

func (s *Session) checkNoJSErrors() Check {
	count := s.consoleErrors.Load()
	return Check{
		Name:    "No JS errors",
		Passed:  count == 0,
		Details: fmt.Sprintf("%d console errors", count),
	}
}

func (s *Session) checkNoUIErrors(ctx context.Context) Check {
	var count int
	err := chromedp.Run(ctx, chromedp.Evaluate(`
		Array.from(document.querySelectorAll('.error, [class*="error-message"], [role="alert"]'))
			.filter(el => el.offsetParent !== null).length
	`, &count))
	if err != nil {
		return Check{Name: "No UI errors", Passed: false, Details: err.Error()}
	}
	return Check{
		Name:    "No UI errors",
		Passed:  count == 0,
		Details: fmt.Sprintf("%d visible error elements", count),
	}
}

func (s *Session) checkButtonsPresent(ctx context.Context) Check {
	var count int
	err := chromedp.Run(ctx, chromedp.Evaluate(`
		Array.from(document.querySelectorAll('button, [role="button"], input[type="submit"], a.btn'))
			.filter(el => el.offsetParent !== null).length
	`, &count))
	if err != nil {
		return Check{Name: "Buttons present", Passed: false, Details: err.Error()}
	}
	return Check{
		Name:    "Buttons present",
		Passed:  count > 0,
		Details: fmt.Sprintf("%d visible interactive controls", count),
	}
}

// captureFailureScreenshot writes a screenshot to a content-addressed
// path under the screenshot directory. Failures are swallowed: evidence
// capture never affects the sweep.
func (s *Session) captureFailureScreenshot(route string) string {
	var buf []byte
	shotCtx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	if err := chromedp.Run(shotCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		s.logger.Warn("screenshot capture failed", slog.String("error", err.Error()))
		return ""
	}

	if err := os.MkdirAll(s.cfg.ScreenshotDir, 0o755); err != nil {
		return ""
	}

	name := fmt.Sprintf("%x.png", sha256.Sum256([]byte(route)))
	path := filepath.Join(s.cfg.ScreenshotDir, name)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return ""
	}
	return path
}
