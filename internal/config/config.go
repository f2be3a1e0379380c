package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigPathEnvVar overrides the config file location
	ConfigPathEnvVar = "SNAPVARIANT_CONFIG"

	envPrefix = "SNAPVARIANT"
)

// Snapshot encodings understood by the capture layer
const (
	FormatText = "text"
	FormatPNG  = "png"
)

// Config holds all configuration for the snapshot harness
type Config struct {
	// Baselines
	FixtureDir string `mapstructure:"fixture_dir"`
	Format     string `mapstructure:"format"`
	Update     bool   `mapstructure:"update"`

	// Capture surface size in cells
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`

	// Variants; empty VariantsFile means the built-in Light/Dark pair
	VariantsFile string `mapstructure:"variants_file"`
	ThemesDir    string `mapstructure:"themes_dir"`

	// Execution
	Parallel bool `mapstructure:"parallel"`
	Audit    bool `mapstructure:"audit"`

	// Results ledger (sqlite); empty disables recording
	LedgerPath string `mapstructure:"ledger_path"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		FixtureDir: filepath.Join("testdata", "snapshots"),
		Format:     FormatText,
		Width:      80,
		Height:     24,
		LogLevel:   "warn",
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("fixture_dir", d.FixtureDir)
	v.SetDefault("format", d.Format)
	v.SetDefault("update", d.Update)
	v.SetDefault("width", d.Width)
	v.SetDefault("height", d.Height)
	v.SetDefault("variants_file", d.VariantsFile)
	v.SetDefault("themes_dir", d.ThemesDir)
	v.SetDefault("parallel", d.Parallel)
	v.SetDefault("audit", d.Audit)
	v.SetDefault("ledger_path", d.LedgerPath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
}

// Load reads configuration from all sources:
// 1. Environment variables (prefixed with SNAPVARIANT_)
// 2. Configuration file (explicit path, SNAPVARIANT_CONFIG, or ./snapvariant.yaml)
// 3. Defaults
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
			if _, err := os.Stat(envPath); os.IsNotExist(err) {
				return nil, fmt.Errorf("config file specified in %s not found: %s", ConfigPathEnvVar, envPath)
			}
			configPath = envPath
		}
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("snapvariant")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.ThemesDir == "" && cfg.VariantsFile != "" {
		cfg.ThemesDir = filepath.Join(filepath.Dir(cfg.VariantsFile), "themes")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the harness cannot run with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.FixtureDir) == "" {
		return fmt.Errorf("fixture_dir must not be empty")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("surface size must be positive, got %dx%d", c.Width, c.Height)
	}
	switch c.Format {
	case FormatText, FormatPNG:
	default:
		return fmt.Errorf("unknown snapshot format %q (want %q or %q)", c.Format, FormatText, FormatPNG)
	}
	return nil
}
