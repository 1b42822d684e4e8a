// Package commands implements the pagecheck subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pagecheck-labs/pagecheck/internal/config"
	"github.com/pagecheck-labs/pagecheck/internal/store"
)

var cfg *config.Config

// SetConfig stores the loaded configuration for command access. Called
// by the root command's PersistentPreRunE.
func SetConfig(c *config.Config) {
	cfg = c
}

func getConfig() *config.Config {
	if cfg == nil {
		c := &config.Config{}
		config.ApplyDefaults(c)
		cfg = c
	}
	return cfg
}

// newLogger builds the CLI logger; debug level when verbose.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if getConfig().Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openStore opens the state database and applies pending migrations.
// The caller closes it.
func openStore(logger *slog.Logger) (*store.SQLiteStore, error) {
	st := store.NewSQLiteStore(logger)
	if err := st.Open(getConfig().DatabasePath); err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if err := st.Migrate(); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}
	return st, nil
}
