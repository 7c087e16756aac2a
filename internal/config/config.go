package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rpggio/plantree/internal/timeline"
	"gopkg.in/yaml.v3"
)

// Transport modes.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Timeline  TimelineConfig  `yaml:"timeline"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// AuthConfig controls bearer-token authentication. When disabled every
// request acts as DefaultUser.
type AuthConfig struct {
	Enabled     bool   `yaml:"enabled"`
	DefaultUser string `yaml:"default_user"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

type TimelineConfig struct {
	ViewMode    string  `yaml:"view_mode"`
	ColumnWidth float64 `yaml:"column_width"`
	BarHeight   float64 `yaml:"bar_height"`
	Padding     float64 `yaml:"padding"`
}

// Surface converts the timeline section into layout geometry.
func (c TimelineConfig) Surface() timeline.Config {
	surface := timeline.DefaultConfig()
	surface.ViewMode = timeline.ViewMode(c.ViewMode)
	surface.ColumnWidth = c.ColumnWidth
	if c.BarHeight > 0 {
		surface.BarHeight = c.BarHeight
	}
	if c.Padding > 0 {
		surface.Padding = c.Padding
	}
	return surface
}

// Default returns the configuration used before the file and environment are applied.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "plantree.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: TransportHTTP,
		},
		Auth: AuthConfig{
			Enabled:     true,
			DefaultUser: "local",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Timeline: TimelineConfig{
			ViewMode:  "day",
			BarHeight: 30,
			Padding:   20,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("PLANTREE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
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

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if strings.TrimSpace(c.DB.Path) == "" {
		return fmt.Errorf("db.path is required")
	}
	switch c.Transport.Mode {
	case TransportHTTP, TransportStdio:
	default:
		return fmt.Errorf("transport.mode must be %s or %s, got %q", TransportHTTP, TransportStdio, c.Transport.Mode)
	}
	if !c.Auth.Enabled && strings.TrimSpace(c.Auth.DefaultUser) == "" {
		return fmt.Errorf("auth.default_user is required when auth is disabled")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}
	switch c.Timeline.ViewMode {
	case "day", "month", "year":
	default:
		return fmt.Errorf("timeline.view_mode must be day, month or year, got %q", c.Timeline.ViewMode)
	}
	if c.Timeline.ColumnWidth < 0 {
		return fmt.Errorf("timeline.column_width must not be negative")
	}
	if c.Timeline.BarHeight <= 0 || c.Timeline.Padding <= 0 {
		return fmt.Errorf("timeline.bar_height and timeline.padding must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("PLANTREE_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("PLANTREE_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid PLANTREE_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("PLANTREE_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("PLANTREE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if path := os.Getenv("PLANTREE_LOG_PATH"); path != "" {
		cfg.Log.Path = path
	}
	if mode := os.Getenv("PLANTREE_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if err := envBool("PLANTREE_AUTH_ENABLED", &cfg.Auth.Enabled); err != nil {
		return err
	}
	if user := os.Getenv("PLANTREE_DEFAULT_USER"); user != "" {
		cfg.Auth.DefaultUser = user
	}
	if err := envBool("PLANTREE_METRICS_ENABLED", &cfg.Metrics.Enabled); err != nil {
		return err
	}
	if err := envBool("PLANTREE_TRACING_ENABLED", &cfg.Tracing.Enabled); err != nil {
		return err
	}
	if mode := os.Getenv("PLANTREE_TIMELINE_VIEW"); mode != "" {
		cfg.Timeline.ViewMode = mode
	}
	return nil
}

func envBool(key string, dst *bool) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
