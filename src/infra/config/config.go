package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds runtime settings shared by the API and the CLI.
type Config struct {
	DataDir     string      `yaml:"data_dir"`
	HTTP        HTTPConfig  `yaml:"http"`
	Store       StoreConfig `yaml:"store"`
	Log         LogConfig   `yaml:"log"`
	RecentLimit int         `yaml:"recent_limit"`
}

// HTTPConfig holds API server settings.
type HTTPConfig struct {
	Address      string `yaml:"address"`
	AdminEnabled bool   `yaml:"admin_enabled"`
}

// StoreConfig holds Data Store options.
type StoreConfig struct {
	Strict  bool `yaml:"strict"`
	Recover bool `yaml:"recover"`
}

// LogConfig holds logger settings. An empty File logs to stderr.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the settings used when neither file nor env says otherwise.
func Default() Config {
	return Config{
		DataDir: "data",
		HTTP:    HTTPConfig{Address: ":8080"},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		RecentLimit: 5,
	}
}

// Load reads filename on top of Default and then applies ESR_* env
// overrides. A missing or empty filename is not an error.
func Load(filename string) (Config, error) {
	cfg := Default()
	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("ESR_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("ESR_HTTP_ADDR"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("ESR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ESR_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	for key, dst := range map[string]*bool{
		"ESR_ADMIN_ENABLED": &cfg.HTTP.AdminEnabled,
		"ESR_STRICT":        &cfg.Store.Strict,
		"ESR_RECOVER":       &cfg.Store.Recover,
	} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		*dst = b
	}
	if v := os.Getenv("ESR_RECENT_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ESR_RECENT_LIMIT value %q: %w", v, err)
		}
		cfg.RecentLimit = n
	}
	return nil
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if c.RecentLimit < 0 {
		return fmt.Errorf("recent_limit must be non-negative, got %d", c.RecentLimit)
	}
	return nil
}
