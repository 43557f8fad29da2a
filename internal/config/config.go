package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the marketplace server.
type Config struct {
	Port             int
	LogLevel         string
	LogFormat        string
	DataDir          string // empty keeps state in memory only
	SnapshotInterval time.Duration
	WebhookTimeout   time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
}

var defaults = map[string]any{
	"PORT":              8080,
	"LOG_LEVEL":         "info",
	"LOG_FORMAT":        "json",
	"DATA_DIR":          "",
	"SNAPSHOT_INTERVAL": "5s",
	"WEBHOOK_TIMEOUT":   "5s",
	"READ_TIMEOUT":      "5s",
	"WRITE_TIMEOUT":     "10s",
	"IDLE_TIMEOUT":      "60s",
	"SHUTDOWN_TIMEOUT":  "10s",
}

// Load reads configuration from environment variables and, when configFile is
// not empty, from that file; environment variables take precedence. It applies
// defaults and validates values, returning an error for any invalid value.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	port, err := strconv.Atoi(v.GetString("PORT"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT: %d out of range 1-65535", port)
	}

	logLevel := v.GetString("LOG_LEVEL")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	logFormat := v.GetString("LOG_FORMAT")
	if logFormat != "json" && logFormat != "console" {
		return nil, fmt.Errorf("invalid LOG_FORMAT: %q, must be one of: json, console", logFormat)
	}

	dataDir := v.GetString("DATA_DIR")
	if dataDir != "" {
		// A missing directory is created later by the snapshot store.
		if fi, err := os.Stat(dataDir); err == nil && !fi.IsDir() {
			return nil, fmt.Errorf("invalid DATA_DIR: %q is not a directory", dataDir)
		}
	}

	cfg := &Config{
		Port:      port,
		LogLevel:  logLevel,
		LogFormat: logFormat,
		DataDir:   dataDir,
	}

	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{"SNAPSHOT_INTERVAL", &cfg.SnapshotInterval},
		{"WEBHOOK_TIMEOUT", &cfg.WebhookTimeout},
		{"READ_TIMEOUT", &cfg.ReadTimeout},
		{"WRITE_TIMEOUT", &cfg.WriteTimeout},
		{"IDLE_TIMEOUT", &cfg.IdleTimeout},
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout},
	} {
		val, err := getDuration(v, d.key)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = val
	}

	return cfg, nil
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", d)
	}
	return d, nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
