package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// durationKeys maps each duration variable to its default.
var durationKeys = []struct {
	env string
	def time.Duration
	get func(*Config) time.Duration
}{
	{"SNAPSHOT_INTERVAL", 5 * time.Second, func(c *Config) time.Duration { return c.SnapshotInterval }},
	{"WEBHOOK_TIMEOUT", 5 * time.Second, func(c *Config) time.Duration { return c.WebhookTimeout }},
	{"READ_TIMEOUT", 5 * time.Second, func(c *Config) time.Duration { return c.ReadTimeout }},
	{"WRITE_TIMEOUT", 10 * time.Second, func(c *Config) time.Duration { return c.WriteTimeout }},
	{"IDLE_TIMEOUT", 60 * time.Second, func(c *Config) time.Duration { return c.IdleTimeout }},
	{"SHUTDOWN_TIMEOUT", 10 * time.Second, func(c *Config) time.Duration { return c.ShutdownTimeout }},
}

func configEnvKeys() []string {
	keys := []string{"PORT", "LOG_LEVEL", "LOG_FORMAT", "DATA_DIR"}
	for _, d := range durationKeys {
		keys = append(keys, d.env)
	}
	return keys
}

func unsetConfigEnv() {
	for _, key := range configEnvKeys() {
		os.Unsetenv(key)
	}
}

// envValue is one drawn setting: unset, a valid value, or an invalid one.
type envValue struct {
	raw   string
	set   bool
	valid bool
}

func drawSetting(t *rapid.T, label string, valid, invalid *rapid.Generator[string]) envValue {
	switch rapid.IntRange(0, 2).Draw(t, label+"_kind") {
	case 0:
		return envValue{valid: true}
	case 1:
		return envValue{raw: valid.Draw(t, label), set: true, valid: true}
	default:
		return envValue{raw: invalid.Draw(t, label), set: true}
	}
}

func validDuration() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		unit := rapid.SampledFrom([]string{"ms", "s", "m", "h"}).Draw(t, "unit")
		return fmt.Sprintf("%d%s", rapid.IntRange(1, 600).Draw(t, "n"), unit)
	})
}

// invalidDuration covers unparseable strings as well as zero and negative
// durations, which parse but are rejected.
func invalidDuration() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.SampledFrom([]string{"notaduration", "5x", "abc123", "10"}),
		rapid.Just("0s"),
		rapid.Map(rapid.IntRange(1, 600), func(n int) string { return fmt.Sprintf("-%ds", n) }),
	)
}

// TestProperty_LoadAcceptsExactlyValidSettings draws every variable as unset,
// valid or invalid. Load must fail iff some variable is invalid, and otherwise
// report each value or its default.
func TestProperty_LoadAcceptsExactlyValidSettings(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "state")
	if err := os.Mkdir(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	regularFile := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(regularFile, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	rapid.Check(t, func(t *rapid.T) {
		unsetConfigEnv()
		defer unsetConfigEnv()

		port := drawSetting(t, "port",
			rapid.Map(rapid.IntRange(1, 65535), func(n int) string { return fmt.Sprint(n) }),
			rapid.OneOf(
				rapid.StringMatching(`[a-z]{1,8}`),
				rapid.SampledFrom([]string{"0", "65536", "-1", "12.5"}),
			))
		level := drawSetting(t, "log_level",
			rapid.SampledFrom([]string{"debug", "info", "warn", "error"}),
			rapid.SampledFrom([]string{"trace", "fatal", "INFO", "verbose"}))
		format := drawSetting(t, "log_format",
			rapid.SampledFrom([]string{"json", "console"}),
			rapid.SampledFrom([]string{"text", "JSON", "logfmt", "pretty"}))
		data := drawSetting(t, "data_dir",
			rapid.SampledFrom([]string{dataDir, filepath.Join(dir, "fresh")}),
			rapid.Just(regularFile))

		settings := map[string]envValue{
			"PORT":       port,
			"LOG_LEVEL":  level,
			"LOG_FORMAT": format,
			"DATA_DIR":   data,
		}
		for _, d := range durationKeys {
			settings[d.env] = drawSetting(t, d.env, validDuration(), invalidDuration())
		}

		wantErr := false
		for key, s := range settings {
			if s.set {
				os.Setenv(key, s.raw)
			}
			if !s.valid {
				wantErr = true
			}
		}

		cfg, err := Load("")
		if wantErr {
			if err == nil {
				t.Fatalf("Load accepted invalid settings %+v", settings)
			}
			return
		}
		if err != nil {
			t.Fatalf("Load rejected valid settings %+v: %v", settings, err)
		}

		wantPort := 8080
		if port.set {
			fmt.Sscan(port.raw, &wantPort)
		}
		if cfg.Port != wantPort {
			t.Fatalf("Port = %d, want %d", cfg.Port, wantPort)
		}
		if want := orDefault(level, "info"); cfg.LogLevel != want {
			t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, want)
		}
		if want := orDefault(format, "json"); cfg.LogFormat != want {
			t.Fatalf("LogFormat = %q, want %q", cfg.LogFormat, want)
		}
		if cfg.DataDir != data.raw {
			t.Fatalf("DataDir = %q, want %q", cfg.DataDir, data.raw)
		}
		for _, d := range durationKeys {
			want := d.def
			if s := settings[d.env]; s.set {
				want, _ = time.ParseDuration(s.raw)
			}
			if got := d.get(cfg); got != want {
				t.Fatalf("%s = %v, want %v", d.env, got, want)
			}
		}
	})
}

func orDefault(v envValue, def string) string {
	if v.set {
		return v.raw
	}
	return def
}
