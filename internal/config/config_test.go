package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "https://api.taiga.io" {
		t.Errorf("default host = %q, want %q", cfg.API.Host, "https://api.taiga.io")
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("default timeout = %v, want %v", cfg.API.Timeout, 30*time.Second)
	}
	if !cfg.Session.Remember {
		t.Error("sessions should be remembered by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), `
api:
  host: https://taiga.example.com
  timeout: 10s
  rate_limit: 2.5
  burst: 1
log:
  file: /tmp/taigaterm.log
  level: debug
session:
  remember: false
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.Host != "https://taiga.example.com" {
		t.Errorf("host = %q", cfg.API.Host)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want %v", cfg.API.Timeout, 10*time.Second)
	}
	if cfg.API.RateLimit != 2.5 || cfg.API.Burst != 1 {
		t.Errorf("rate limit = %v/%d, want 2.5/1", cfg.API.RateLimit, cfg.API.Burst)
	}
	if cfg.Log.File != "/tmp/taigaterm.log" || cfg.Log.Level != "debug" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Session.Remember {
		t.Error("session.remember = true, want false")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("Load() should return defaults for missing file, got error: %v", err)
	}
	if want := DefaultConfig(); *cfg != want {
		t.Errorf("Load(missing) = %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), "{{invalid yaml")

	if _, err := Load(cfgPath); err == nil {
		t.Fatal("Load(invalid YAML) should return error")
	}
}

func TestLoad_UnknownField(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), `
api:
  hots: https://taiga.example.com
`)

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("Load() should return error for unknown field 'hots'")
	}
	if !strings.Contains(err.Error(), cfgPath) {
		t.Errorf("error %q should name the file", err)
	}
}

func TestLoad_CommentOnlyAndEmpty(t *testing.T) {
	for _, body := range []string{"# just a comment\n", ""} {
		cfg, err := Load(writeConfig(t, t.TempDir(), body))
		if err != nil {
			t.Fatalf("Load(%q) error = %v", body, err)
		}
		if want := DefaultConfig(); *cfg != want {
			t.Errorf("Load(%q) = %+v, want defaults", body, *cfg)
		}
	}
}

func TestLoadLayered_Priority(t *testing.T) {
	// Given: a user config setting host and timeout, a local override of timeout
	userCfg := writeConfig(t, t.TempDir(), `
api:
  host: https://taiga.example.com
  timeout: 2m
`)
	localCfg := writeConfig(t, t.TempDir(), `
api:
  timeout: 8s
`)

	// When: both layers are loaded
	cfg, err := LoadLayered(userCfg, localCfg)
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}

	// Then: the later layer wins field by field
	if cfg.API.Host != "https://taiga.example.com" {
		t.Errorf("host = %q, want user value", cfg.API.Host)
	}
	if cfg.API.Timeout != 8*time.Second {
		t.Errorf("timeout = %v, want %v", cfg.API.Timeout, 8*time.Second)
	}
	if cfg.API.Burst != 5 {
		t.Errorf("burst = %d, want default 5", cfg.API.Burst)
	}
}

func TestLoadLayered_AllMissing(t *testing.T) {
	cfg, err := LoadLayered("/no/user.yaml", "/no/local.yaml")
	if err != nil {
		t.Fatalf("LoadLayered(all missing) error = %v", err)
	}
	if want := DefaultConfig(); *cfg != want {
		t.Errorf("got %+v, want defaults %+v", *cfg, want)
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		envs    map[string]string
		wantErr bool
		check   func(*testing.T, Config)
	}{
		{
			name: "TAIGATERM_HOST overrides host",
			envs: map[string]string{"TAIGATERM_HOST": "http://localhost:8000"},
			check: func(t *testing.T, c Config) {
				if c.API.Host != "http://localhost:8000" {
					t.Errorf("host = %q", c.API.Host)
				}
			},
		},
		{
			name: "TAIGATERM_TIMEOUT overrides timeout",
			envs: map[string]string{"TAIGATERM_TIMEOUT": "45s"},
			check: func(t *testing.T, c Config) {
				if c.API.Timeout != 45*time.Second {
					t.Errorf("timeout = %v, want %v", c.API.Timeout, 45*time.Second)
				}
			},
		},
		{
			name: "TAIGATERM_RATE_LIMIT overrides rate limit",
			envs: map[string]string{"TAIGATERM_RATE_LIMIT": "0"},
			check: func(t *testing.T, c Config) {
				if c.API.RateLimit != 0 {
					t.Errorf("rate limit = %v, want 0", c.API.RateLimit)
				}
			},
		},
		{
			name: "log and session overrides",
			envs: map[string]string{
				"TAIGATERM_LOG_FILE":     "/var/log/t.log",
				"TAIGATERM_LOG_LEVEL":    "warn",
				"TAIGATERM_SESSION_PATH": "/tmp/s.yaml",
			},
			check: func(t *testing.T, c Config) {
				if c.Log.File != "/var/log/t.log" || c.Log.Level != "warn" || c.Session.Path != "/tmp/s.yaml" {
					t.Errorf("config = %+v", c)
				}
			},
		},
		{
			name:    "invalid TAIGATERM_TIMEOUT returns error",
			envs:    map[string]string{"TAIGATERM_TIMEOUT": "soon"},
			wantErr: true,
		},
		{
			name:    "invalid TAIGATERM_RATE_LIMIT returns error",
			envs:    map[string]string{"TAIGATERM_RATE_LIMIT": "fast"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envs {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			err := cfg.ApplyEnv()

			if tt.wantErr {
				if err == nil {
					t.Fatal("ApplyEnv() should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnv() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", modify: func(*Config) {}},
		{name: "rate limit disabled", modify: func(c *Config) { c.API.RateLimit = 0 }},
		{name: "empty host", modify: func(c *Config) { c.API.Host = "" }, wantErr: true},
		{name: "host without scheme", modify: func(c *Config) { c.API.Host = "taiga.example.com" }, wantErr: true},
		{name: "zero timeout", modify: func(c *Config) { c.API.Timeout = 0 }, wantErr: true},
		{name: "negative rate limit", modify: func(c *Config) { c.API.RateLimit = -1 }, wantErr: true},
		{name: "negative burst", modify: func(c *Config) { c.API.Burst = -1 }, wantErr: true},
		{name: "unknown level", modify: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResolvedPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.File = "/explicit.log"
	cfg.Session.Path = "/explicit.yaml"

	if got, err := cfg.LogFile(); err != nil || got != "/explicit.log" {
		t.Errorf("LogFile() = %q, %v", got, err)
	}
	if got, err := cfg.SessionPath(); err != nil || got != "/explicit.yaml" {
		t.Errorf("SessionPath() = %q, %v", got, err)
	}

	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_CACHE_HOME", "/xdg/cache")
	t.Setenv("HOME", "/home/tester")
	defaults := DefaultConfig()
	if got, err := defaults.SessionPath(); err != nil || !strings.HasSuffix(got, filepath.Join("taigaterm", "session.yaml")) {
		t.Errorf("default SessionPath() = %q, %v", got, err)
	}
	if got, err := defaults.LogFile(); err != nil || !strings.HasSuffix(got, filepath.Join("taigaterm", "taigaterm.log")) {
		t.Errorf("default LogFile() = %q, %v", got, err)
	}
}

func TestPaths_LocalOverrideLast(t *testing.T) {
	paths := Paths()
	if len(paths) == 0 || paths[len(paths)-1] != ".taigaterm.yaml" {
		t.Errorf("Paths() = %v, want .taigaterm.yaml last", paths)
	}
}
