package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/esr-tracker/src/infra/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "esr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
data_dir: /var/lib/esr
http:
  address: ":9000"
  admin_enabled: true
store:
  strict: true
log:
  level: debug
recent_limit: 10
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/esr", cfg.DataDir)
	assert.Equal(t, ":9000", cfg.HTTP.Address)
	assert.True(t, cfg.HTTP.AdminEnabled)
	assert.True(t, cfg.Store.Strict)
	assert.False(t, cfg.Store.Recover)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 100, cfg.Log.MaxSizeMB, "unset keys keep defaults")
	assert.Equal(t, 10, cfg.RecentLimit)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "data_dir: from-file\nhttp:\n  admin_enabled: true\n")
	t.Setenv("ESR_DATA_DIR", "from-env")
	t.Setenv("ESR_HTTP_ADDR", "127.0.0.1:1234")
	t.Setenv("ESR_ADMIN_ENABLED", "false")
	t.Setenv("ESR_STRICT", "1")
	t.Setenv("ESR_RECOVER", "true")
	t.Setenv("ESR_LOG_LEVEL", "warn")
	t.Setenv("ESR_LOG_FILE", "/tmp/esr.log")
	t.Setenv("ESR_RECENT_LIMIT", "7")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.DataDir)
	assert.Equal(t, "127.0.0.1:1234", cfg.HTTP.Address)
	assert.False(t, cfg.HTTP.AdminEnabled)
	assert.True(t, cfg.Store.Strict)
	assert.True(t, cfg.Store.Recover)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/esr.log", cfg.Log.File)
	assert.Equal(t, 7, cfg.RecentLimit)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "bad yaml", body: "data_dir: [unterminated"},
		{name: "bad bool", env: map[string]string{"ESR_STRICT": "sometimes"}},
		{name: "bad limit", env: map[string]string{"ESR_RECENT_LIMIT": "five"}},
		{name: "negative limit", body: "recent_limit: -1"},
		{name: "empty data dir", body: `data_dir: ""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
