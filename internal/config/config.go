package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// HTTP service
	ListenAddr         string `mapstructure:"listen_addr" yaml:"listen_addr"`
	MaxUploadMB        int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	MaxConcurrent      int    `mapstructure:"max_concurrent" yaml:"max_concurrent"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Reports and ingestion
	OutDir        string `mapstructure:"out_dir" yaml:"out_dir"`
	HistogramBins int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	Delimiter     string `mapstructure:"delimiter" yaml:"delimiter"`
	Decimal       string `mapstructure:"decimal" yaml:"decimal"`
}

// Default returns the built-in configuration.
func Default() *Global {
	return &Global{
		ListenAddr:         ":8000",
		MaxUploadMB:        10,
		MaxConcurrent:      4,
		ShutdownTimeoutSec: 10,
		LogLevel:           "info",
		LogFormat:          "console",
		OutDir:             "reports",
		HistogramBins:      30,
	}
}

// DefaultPath returns ~/.eda/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".eda", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.eda/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("EDA")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("max_upload_mb", d.MaxUploadMB)
	v.SetDefault("max_concurrent", d.MaxConcurrent)
	v.SetDefault("shutdown_timeout_sec", d.ShutdownTimeoutSec)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("out_dir", d.OutDir)
	v.SetDefault("histogram_bins", d.HistogramBins)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("decimal", d.Decimal)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".eda"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the service cannot run with.
func (c *Global) Validate() error {
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("max_concurrent must be positive, got %d", c.MaxConcurrent)
	}
	if c.HistogramBins <= 0 {
		return fmt.Errorf("histogram_bins must be positive, got %d", c.HistogramBins)
	}
	return nil
}

// MaxUploadBytes converts MaxUploadMB to bytes.
func (c *Global) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) << 20 }
