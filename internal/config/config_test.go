package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rpggio/plantree/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, TransportHTTP, cfg.Transport.Mode)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "day", cfg.Timeline.ViewMode)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plantree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
db:
  path: /tmp/from-file.db
transport:
  mode: stdio
auth:
  enabled: false
  default_user: alice
timeline:
  view_mode: month
  column_width: 150
  bar_height: 24
  padding: 12
`), 0o600))

	t.Setenv("PLANTREE_CONFIG_PATH", path)
	t.Setenv("PLANTREE_DB_PATH", "/tmp/from-env.db")
	t.Setenv("PLANTREE_TRACING_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/from-env.db", cfg.DB.Path, "env overrides file")
	assert.Equal(t, TransportStdio, cfg.Transport.Mode)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, "alice", cfg.Auth.DefaultUser)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "month", cfg.Timeline.ViewMode)
	assert.Equal(t, 150.0, cfg.Timeline.ColumnWidth)
	assert.Equal(t, "info", cfg.Log.Level, "unset keys keep defaults")
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("PLANTREE_SERVER_PORT", "eighty")
	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"transport", func(c *Config) { c.Transport.Mode = "grpc" }},
		{"view mode", func(c *Config) { c.Timeline.ViewMode = "week" }},
		{"bar height", func(c *Config) { c.Timeline.BarHeight = 0 }},
		{"column width", func(c *Config) { c.Timeline.ColumnWidth = -1 }},
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"default user", func(c *Config) { c.Auth.Enabled = false; c.Auth.DefaultUser = "" }},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
	require.NoError(t, Default().Validate())
}

func TestTimelineSurface(t *testing.T) {
	cfg := Default().Timeline
	cfg.ViewMode = "month"
	cfg.ColumnWidth = 80

	surface := cfg.Surface()
	assert.Equal(t, timeline.ViewMonth, surface.ViewMode)
	assert.Equal(t, 80.0, surface.ColumnWidth)
	assert.Equal(t, 30.0, surface.BarHeight)
	assert.Equal(t, timeline.DefaultConfig().HeaderHeight, surface.HeaderHeight)
}
