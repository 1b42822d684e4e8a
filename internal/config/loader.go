package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config file names searched in the working directory.
const (
	ConfigFileName    = "pagecheck.yaml"
	ConfigFileNameAlt = "pagecheck.yml"
)

var configFileUsed string

// GetConfigFileUsed returns the config file used by the last Load call.
func GetConfigFileUsed() string {
	return configFileUsed
}

// Load loads configuration from defaults, an optional config file,
// PAGECHECK_* environment variables, and CLI flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"database_path":                  DefaultDatabasePath,
		"request_timeout_sec":            DefaultRequestTimeoutSec,
		"port":                           DefaultPort,
		"verbose":                        false,
		"target.login_path":              DefaultLoginPath,
		"browser.headless":               true,
		"browser.navigation_timeout_sec": DefaultNavTimeoutSec,
		"browser.login_timeout_sec":      DefaultLoginTimeoutSec,
		"browser.screenshot_dir":         DefaultScreenshotDir,
		"browser.axe_script_url":         DefaultAxeScriptURL,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables. PAGECHECK_TARGET__BASE_URL -> target.base_url
	if err := k.Load(env.Provider("PAGECHECK_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "PAGECHECK_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (only those explicitly set)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// findConfigFile finds the config file to use.
// Priority: explicit path > pagecheck.yaml > pagecheck.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	if _, err := os.Stat(ConfigFileNameAlt); err == nil {
		return ConfigFileNameAlt
	}
	return ""
}
