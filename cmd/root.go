package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/eda-cli/internal/config"
	"github.com/KaramelBytes/eda-cli/internal/logger"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	flagLogLevel  string
	flagLogFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
	// Diagnostics logger; command output goes to stdout.
	appLog = logger.Nop()
)

var rootCmd = &cobra.Command{
	Use:           "eda",
	Short:         "Quick exploratory analysis and data-quality checks for tabular files",
	Long:          `eda summarizes CSV/TSV/XLSX datasets, reports missing values, scores data quality with simple heuristics and writes reports with histograms. The same checks are served over HTTP by "eda serve".`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.eda/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: console|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	applyConfig(c)
}

// applyConfig installs c as the active configuration, applies the logging
// flag overrides and rebuilds the diagnostics logger from the result.
func applyConfig(c *cfgpkg.Global) {
	cfg = c
	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") && flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if f.Changed("log-format") && flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	appLog = logger.New(&logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})
}

// currentConfig returns the loaded configuration or the defaults.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Default()
	}
	return cfg
}
