package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/eda-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set eda configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "listen_addr: %s\n", c.ListenAddr)
		fmt.Fprintf(out, "max_upload_mb: %d\n", c.MaxUploadMB)
		fmt.Fprintf(out, "max_concurrent: %d\n", c.MaxConcurrent)
		fmt.Fprintf(out, "shutdown_timeout_sec: %d\n", c.ShutdownTimeoutSec)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		fmt.Fprintf(out, "out_dir: %s\n", c.OutDir)
		fmt.Fprintf(out, "histogram_bins: %d\n", c.HistogramBins)
		if c.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", c.Delimiter)
		}
		if c.Decimal != "" {
			fmt.Fprintf(out, "decimal: %s\n", c.Decimal)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := currentConfig()
		switch key {
		case "listen_addr":
			c.ListenAddr = val
		case "max_upload_mb":
			i, err := positiveInt(key, val)
			if err != nil {
				return err
			}
			c.MaxUploadMB = i
		case "max_concurrent":
			i, err := positiveInt(key, val)
			if err != nil {
				return err
			}
			c.MaxConcurrent = i
		case "shutdown_timeout_sec":
			i, err := positiveInt(key, val)
			if err != nil {
				return err
			}
			c.ShutdownTimeoutSec = i
		case "log_level":
			switch strings.ToLower(val) {
			case "debug", "info", "warn", "warning", "error", "disabled", "off":
				c.LogLevel = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
			}
		case "log_format":
			switch strings.ToLower(val) {
			case "console", "json":
				c.LogFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_format: %s (use console or json)", val)
			}
		case "out_dir":
			c.OutDir = val
		case "histogram_bins":
			i, err := positiveInt(key, val)
			if err != nil {
				return err
			}
			c.HistogramBins = i
		case "delimiter":
			if _, err := parseDelimiter(val); err != nil {
				return err
			}
			c.Delimiter = val
		case "decimal":
			switch strings.ToLower(val) {
			case ".", "dot", ",", "comma":
				c.Decimal = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid decimal: %s (use '.'|'comma')", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func positiveInt(key, val string) (int, error) {
	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return 0, fmt.Errorf("invalid positive int for %s: %v", key, val)
	}
	return i, nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
