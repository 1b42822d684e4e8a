package config

// Default configuration values.
const (
	DefaultDatabasePath      = "pagecheck.db"
	DefaultLoginPath         = "/login"
	DefaultRequestTimeoutSec = 30
	DefaultNavTimeoutSec     = 30
	DefaultLoginTimeoutSec   = 15
	DefaultScreenshotDir     = "screenshots"
	DefaultPort              = 8385
	DefaultAxeScriptURL      = "https://cdnjs.cloudflare.com/ajax/libs/axe-core/4.10.2/axe.min.js"
)

// DefaultExecCandidates is the ordered list of browser executable
// locations tried at session launch.
func DefaultExecCandidates() []string {
	return []string{
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
}

// ApplyDefaults fills in zero values on a Config.
func ApplyDefaults(c *Config) {
	if c == nil {
		return
	}
	if c.DatabasePath == "" {
		c.DatabasePath = DefaultDatabasePath
	}
	if c.RequestTimeoutSec == 0 {
		c.RequestTimeoutSec = DefaultRequestTimeoutSec
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Target.LoginPath == "" {
		c.Target.LoginPath = DefaultLoginPath
	}
	if len(c.Browser.ExecCandidates) == 0 {
		c.Browser.ExecCandidates = DefaultExecCandidates()
	}
	if c.Browser.NavigationTimeoutSec == 0 {
		c.Browser.NavigationTimeoutSec = DefaultNavTimeoutSec
	}
	if c.Browser.LoginTimeoutSec == 0 {
		c.Browser.LoginTimeoutSec = DefaultLoginTimeoutSec
	}
	if c.Browser.ScreenshotDir == "" {
		c.Browser.ScreenshotDir = DefaultScreenshotDir
	}
	if c.Browser.AxeScriptURL == "" {
		c.Browser.AxeScriptURL = DefaultAxeScriptURL
	}
}
