// Package cli provides the command-line interface for pagecheck.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagecheck-labs/pagecheck/internal/cli/commands"
	"github.com/pagecheck-labs/pagecheck/internal/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

var cfgFile string

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pagecheck",
		Short: "pagecheck - catalog-driven test orchestration",
		Long: `pagecheck keeps a hierarchical catalog of testable surfaces
(modules, pages, features, test cases), resolves run requests into
ordered case lists, and executes them against a deployed application:
network-level checks directly, page-level checks through an
authenticated headless-browser session.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			commands.SetConfig(cfg)

			if cfg.Verbose {
				if used := config.GetConfigFileUsed(); used != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", used)
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./pagecheck.yaml)")
	rootCmd.PersistentFlags().String("database-path", "", "Path to catalog/run state database")
	rootCmd.PersistentFlags().String("sitemap-path", "", "Path to sitemap definition (default: embedded)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(commands.NewVersionCommand(Version, BuildDate, GitCommit))
	rootCmd.AddCommand(commands.NewSyncCommand())
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewSweepCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewRunsCommand())
	rootCmd.AddCommand(commands.NewServeCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
