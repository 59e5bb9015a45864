package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the default config path at an empty directory and clears
// every LIBRARY_* variable for the duration of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{
		"LIBRARY_CONFIG", "LIBRARY_STORE", "LIBRARY_SAMPLE_DATA", "LIBRARY_SEED_FILE", "LIBRARY_OUTPUT",
		"LIBRARY_LOG_LEVEL", "LIBRARY_LOG_FORMAT", "LIBRARY_LOG_INCLUDE_CALLER",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.SampleData)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileThenEnv(t *testing.T) {
	isolate(t)
	path := writeFile(t, `
store: sqlite
sample-data: false
output: json
logging:
  level: debug
  include-caller: true
`)
	t.Setenv("LIBRARY_OUTPUT", "table")
	t.Setenv("LIBRARY_LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.False(t, cfg.SampleData)
	assert.Equal(t, OutputTable, cfg.Output, "env overrides file")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Logging.IncludeCaller)
}

func TestLoadPathFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("LIBRARY_CONFIG", writeFile(t, "seed-file: books.yaml\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "books.yaml", cfg.SeedFile)
}

func TestLoadMissingFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err, "explicit path must exist")
}

func TestLoadMalformedFile(t *testing.T) {
	isolate(t)

	_, err := Load(writeFile(t, "store: [unclosed"))
	assert.ErrorContains(t, err, "parse config")
}

func TestBadBoolFallsBack(t *testing.T) {
	isolate(t)
	t.Setenv("LIBRARY_SAMPLE_DATA", "maybe")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.SampleData)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"sqlite json", func(c *Config) { c.Store = StoreSQLite; c.Output = OutputJSON }, ""},
		{"unknown store", func(c *Config) { c.Store = "postgres" }, `invalid store "postgres"`},
		{"unknown output", func(c *Config) { c.Output = "xml" }, `invalid output "xml"`},
		{"unknown log format", func(c *Config) { c.Logging.Format = "logfmt" }, `invalid log format "logfmt"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
