package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config aggregates application configuration values.
type Config struct {
	Store      string
	SampleData bool
	SeedFile   string
	Output     string
	Logging    LoggingConfig
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"

	OutputTable = "table"
	OutputJSON  = "json"
)

const (
	defaultStore         = StoreMemory
	defaultOutput        = OutputTable
	defaultLoggingLevel  = "info"
	defaultLoggingFormat = "text"
)

// fileConfig mirrors the YAML file. Pointers tell an absent key from a zero value.
type fileConfig struct {
	Store      string `yaml:"store,omitempty"`
	SampleData *bool  `yaml:"sample-data,omitempty"`
	SeedFile   string `yaml:"seed-file,omitempty"`
	Output     string `yaml:"output,omitempty"`
	Logging    struct {
		Level         string `yaml:"level,omitempty"`
		Format        string `yaml:"format,omitempty"`
		IncludeCaller *bool  `yaml:"include-caller,omitempty"`
	} `yaml:"logging"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Store:      defaultStore,
		SampleData: true,
		Output:     defaultOutput,
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
	}
}

// DefaultPath returns the config file read when no path is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "library", "config.yaml")
}

// Load applies defaults, then the YAML file, then LIBRARY_* environment
// variables. path falls back to LIBRARY_CONFIG and then DefaultPath; only
// the default file may be missing.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv("LIBRARY_CONFIG")
	}
	if path == "" {
		path, explicit = DefaultPath(), false
	}

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	cfg.Store = valueOrDefault("LIBRARY_STORE", cfg.Store)
	cfg.SampleData = parseBoolWithDefault("LIBRARY_SAMPLE_DATA", cfg.SampleData)
	cfg.SeedFile = valueOrDefault("LIBRARY_SEED_FILE", cfg.SeedFile)
	cfg.Output = valueOrDefault("LIBRARY_OUTPUT", cfg.Output)
	cfg.Logging.Level = valueOrDefault("LIBRARY_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = valueOrDefault("LIBRARY_LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.IncludeCaller = parseBoolWithDefault("LIBRARY_LOG_INCLUDE_CALLER", cfg.Logging.IncludeCaller)

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.Store != "" {
		cfg.Store = fc.Store
	}
	if fc.SampleData != nil {
		cfg.SampleData = *fc.SampleData
	}
	if fc.SeedFile != "" {
		cfg.SeedFile = fc.SeedFile
	}
	if fc.Output != "" {
		cfg.Output = fc.Output
	}
	if fc.Logging.Level != "" {
		cfg.Logging.Level = fc.Logging.Level
	}
	if fc.Logging.Format != "" {
		cfg.Logging.Format = fc.Logging.Format
	}
	if fc.Logging.IncludeCaller != nil {
		cfg.Logging.IncludeCaller = *fc.Logging.IncludeCaller
	}
	return nil
}

// Validate rejects values no component understands.
func (c Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreMemory, StoreSQLite:
	default:
		errs = append(errs, fmt.Errorf("invalid store %q (want %s or %s)", c.Store, StoreMemory, StoreSQLite))
	}
	switch c.Output {
	case OutputTable, OutputJSON:
	default:
		errs = append(errs, fmt.Errorf("invalid output %q (want %s or %s)", c.Output, OutputTable, OutputJSON))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}
