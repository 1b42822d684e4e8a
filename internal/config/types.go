// Package config provides configuration loading for pagecheck. Values
// are layered: built-in defaults, then an optional YAML file, then
// PAGECHECK_* environment variables, then CLI flags.
package config

// TargetConfig describes the system under test.
type TargetConfig struct {
	// BaseURL is the root of the deployed application, e.g.
	// "https://staging.example.com".
	BaseURL string `koanf:"base_url"`

	// LoginPath is the route of the login surface, relative to BaseURL.
	LoginPath string `koanf:"login_path"`

	// Email and Password authenticate the browser sweep.
	Email    string `koanf:"email"`
	Password string `koanf:"password"`
}

// BrowserConfig controls the headless browser session.
type BrowserConfig struct {
	// ExecCandidates is the ordered list of browser executable locations;
	// the first one that launches wins. Empty entries are skipped.
	ExecCandidates []string `koanf:"exec_candidates"`

	// Headless disables the visible browser window.
	Headless bool `koanf:"headless"`

	// NavigationTimeoutSec bounds each page navigation.
	NavigationTimeoutSec int `koanf:"navigation_timeout_sec"`

	// LoginTimeoutSec bounds the post-login redirect wait.
	LoginTimeoutSec int `koanf:"login_timeout_sec"`

	// ScreenshotDir receives failure screenshots, content-addressed by
	// route hash.
	ScreenshotDir string `koanf:"screenshot_dir"`

	// AxeScriptURL is the accessibility scanner script injected into
	// swept pages.
	AxeScriptURL string `koanf:"axe_script_url"`
}

// Config is the root configuration.
type Config struct {
	// DatabasePath is the catalog/run state database location.
	DatabasePath string `koanf:"database_path"`

	// SitemapPath overrides the embedded sitemap definition.
	SitemapPath string `koanf:"sitemap_path"`

	// RequestTimeoutSec bounds each network-executor request.
	RequestTimeoutSec int `koanf:"request_timeout_sec"`

	// Port is the API server listen port for the serve command.
	Port int `koanf:"port"`

	Target  TargetConfig  `koanf:"target"`
	Browser BrowserConfig `koanf:"browser"`

	Verbose bool `koanf:"verbose"`
}
