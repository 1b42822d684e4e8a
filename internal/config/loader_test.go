package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pagecheck.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.DatabasePath != DefaultDatabasePath {
		t.Errorf("expected default database path, got %q", cfg.DatabasePath)
	}
	if cfg.RequestTimeoutSec != DefaultRequestTimeoutSec {
		t.Errorf("expected default request timeout, got %d", cfg.RequestTimeoutSec)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("expected default port, got %d", cfg.Port)
	}
	if cfg.Target.LoginPath != DefaultLoginPath {
		t.Errorf("expected default login path, got %q", cfg.Target.LoginPath)
	}
	if !cfg.Browser.Headless {
		t.Error("browser should default to headless")
	}
	if cfg.Browser.NavigationTimeoutSec != DefaultNavTimeoutSec {
		t.Errorf("expected default navigation timeout, got %d", cfg.Browser.NavigationTimeoutSec)
	}
	if cfg.Browser.LoginTimeoutSec != DefaultLoginTimeoutSec {
		t.Errorf("expected default login timeout, got %d", cfg.Browser.LoginTimeoutSec)
	}
	if len(cfg.Browser.ExecCandidates) == 0 {
		t.Error("expected default browser executable candidates")
	}
	if cfg.Browser.AxeScriptURL == "" {
		t.Error("expected default axe script URL")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
database_path: /tmp/custom.db
target:
  base_url: https://staging.example.com
  email: sweeper@example.com
browser:
  navigation_timeout_sec: 45
`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.DatabasePath != "/tmp/custom.db" {
		t.Errorf("expected file value for database path, got %q", cfg.DatabasePath)
	}
	if cfg.Target.BaseURL != "https://staging.example.com" {
		t.Errorf("expected file value for base URL, got %q", cfg.Target.BaseURL)
	}
	if cfg.Target.Email != "sweeper@example.com" {
		t.Errorf("expected file value for email, got %q", cfg.Target.Email)
	}
	if cfg.Browser.NavigationTimeoutSec != 45 {
		t.Errorf("expected file value for navigation timeout, got %d", cfg.Browser.NavigationTimeoutSec)
	}

	// Untouched keys keep their defaults.
	if cfg.Target.LoginPath != DefaultLoginPath {
		t.Errorf("expected default login path, got %q", cfg.Target.LoginPath)
	}
	if GetConfigFileUsed() != path {
		t.Errorf("expected config file %q recorded, got %q", path, GetConfigFileUsed())
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
target:
  base_url: https://from-file.example.com
`)

	t.Setenv("PAGECHECK_TARGET__BASE_URL", "https://from-env.example.com")
	t.Setenv("PAGECHECK_DATABASE_PATH", "/tmp/env.db")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Target.BaseURL != "https://from-env.example.com" {
		t.Errorf("env var must override file, got %q", cfg.Target.BaseURL)
	}
	if cfg.DatabasePath != "/tmp/env.db" {
		t.Errorf("env var must override default, got %q", cfg.DatabasePath)
	}
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	path := writeConfigFile(t, "database_path: /tmp/file.db\n")
	t.Setenv("PAGECHECK_DATABASE_PATH", "/tmp/env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("database-path", "", "")
	flags.Bool("verbose", false, "")
	if err := flags.Parse([]string{"--database-path=/tmp/flag.db", "--verbose"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.DatabasePath != "/tmp/flag.db" {
		t.Errorf("flag must have highest precedence, got %q", cfg.DatabasePath)
	}
	if !cfg.Verbose {
		t.Error("verbose flag not applied")
	}
}

func TestLoad_UnsetFlagsDoNotOverride(t *testing.T) {
	path := writeConfigFile(t, "database_path: /tmp/file.db\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("database-path", "", "")
	if err := flags.Parse(nil); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.DatabasePath != "/tmp/file.db" {
		t.Errorf("default-valued flag must not shadow the file, got %q", cfg.DatabasePath)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfigFile(t, "database_path: [unclosed\n")
	if _, err := Load(path, nil); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestApplyDefaults_NilSafe(t *testing.T) {
	ApplyDefaults(nil)

	c := &Config{}
	ApplyDefaults(c)
	if c.DatabasePath != DefaultDatabasePath {
		t.Errorf("expected default database path, got %q", c.DatabasePath)
	}
}
