package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"ACECTL_API_BASE", "ACECTL_WS_BASE", "ACECTL_DEBUG", "ACECTL_STATSD_ADDR", "ACECTL_LOG_FILE"} {
		t.Setenv(name, "")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.AutoRefreshInterval != 5000 {
		t.Errorf("AutoRefreshInterval = %d, want 5000", cfg.AutoRefreshInterval)
	}
	if cfg.WSReconnectTimeout != 3000 {
		t.Errorf("WSReconnectTimeout = %d, want 3000", cfg.WSReconnectTimeout)
	}
	if cfg.Defaults.DryingTemp != 55 || cfg.Defaults.DryingDuration != 240 {
		t.Errorf("drying defaults = %d/%d, want 55/240", cfg.Defaults.DryingTemp, cfg.Defaults.DryingDuration)
	}
	if cfg.RefreshInterval().Milliseconds() != 5000 {
		t.Errorf("RefreshInterval() = %v", cfg.RefreshInterval())
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("default config should validate, got %v", errs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AutoRefreshInterval != DefaultAutoRefreshInterval {
		t.Errorf("expected defaults, got interval %d", cfg.AutoRefreshInterval)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
}

func TestLoadPartialFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `api_base: http://192.168.1.49:7125
auto_refresh_interval: 2000
defaults:
  drying_temp: 45
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.APIBase != "http://192.168.1.49:7125" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.AutoRefreshInterval != 2000 {
		t.Errorf("AutoRefreshInterval = %d, want 2000", cfg.AutoRefreshInterval)
	}
	if cfg.WSReconnectTimeout != DefaultReconnectTimeout {
		t.Errorf("WSReconnectTimeout = %d, want default", cfg.WSReconnectTimeout)
	}
	if cfg.Defaults.DryingTemp != 45 {
		t.Errorf("DryingTemp = %d, want 45", cfg.Defaults.DryingTemp)
	}
	if cfg.Defaults.FeedLength != DefaultFeedLength {
		t.Errorf("FeedLength = %d, want default", cfg.Defaults.FeedLength)
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 7\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported config version") {
		t.Errorf("Load() error = %v, want unsupported version", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_base: [unterminated\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACECTL_API_BASE", "http://printer.local:7125")
	t.Setenv("ACECTL_DEBUG", "true")
	t.Setenv("ACECTL_STATSD_ADDR", "127.0.0.1:8125")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIBase != "http://printer.local:7125" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
	if cfg.Metrics.StatsdAddr != "127.0.0.1:8125" {
		t.Errorf("StatsdAddr = %q", cfg.Metrics.StatsdAddr)
	}
}

func TestLoadInvalidDebugEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACECTL_DEBUG", "sometimes")

	if _, err := Load(filepath.Join(t.TempDir(), "config.yaml")); err == nil {
		t.Error("expected error for invalid ACECTL_DEBUG")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := NewConfig()
	cfg.APIBase = "https://ace.example.com"
	cfg.Defaults.FeedSpeed = 40
	cfg.Metrics.Tags = []string{"printer:voron"}

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), "# acectl configuration file") {
		t.Error("missing header comment")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.APIBase != cfg.APIBase {
		t.Errorf("APIBase = %q, want %q", loaded.APIBase, cfg.APIBase)
	}
	if loaded.Defaults.FeedSpeed != 40 {
		t.Errorf("FeedSpeed = %d, want 40", loaded.Defaults.FeedSpeed)
	}
	if len(loaded.Metrics.Tags) != 1 || loaded.Metrics.Tags[0] != "printer:voron" {
		t.Errorf("Tags = %v", loaded.Metrics.Tags)
	}
}

func TestGetConfigPathUsesXDG(t *testing.T) {
	if os.Getenv("LOCALAPPDATA") != "" {
		t.Skip("windows layout")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join("acectl", "config.yaml")) {
		t.Errorf("GetConfigPath() = %q", path)
	}
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct {
		name    string
		apiBase string
		wsBase  string
		origin  string
		want    string
		wantErr bool
	}{
		{
			name:   "explicit ws_base wins",
			wsBase: "ws://10.0.0.5:7125/websocket",
			origin: "http://other:80",
			want:   "ws://10.0.0.5:7125/websocket",
		},
		{
			name:    "http api_base",
			apiBase: "http://192.168.1.49:7125",
			want:    "ws://192.168.1.49:7125/websocket",
		},
		{
			name:    "https api_base",
			apiBase: "https://ace.example.com",
			want:    "wss://ace.example.com/websocket",
		},
		{
			name:    "api_base trailing slash",
			apiBase: "http://printer:7125/",
			want:    "ws://printer:7125/websocket",
		},
		{
			name:   "http origin",
			origin: "http://printer.local:7125",
			want:   "ws://printer.local:7125/websocket",
		},
		{
			name:   "https origin",
			origin: "https://printer.local",
			want:   "wss://printer.local/websocket",
		},
		{
			name:    "api_base without scheme falls back to origin",
			apiBase: "192.168.1.49:7125",
			origin:  "http://host:7125",
			want:    "ws://host:7125/websocket",
		},
		{
			name: "default origin",
			want: "ws://127.0.0.1:7125/websocket",
		},
		{
			name:    "origin without host",
			origin:  "not a url",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.APIBase = tt.apiBase
			cfg.WSBase = tt.wsBase

			got, err := cfg.WebSocketURL(tt.origin)
			if (err != nil) != tt.wantErr {
				t.Fatalf("WebSocketURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("WebSocketURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIBaseURL(t *testing.T) {
	cfg := NewConfig()
	if got := cfg.APIBaseURL("http://origin:7125/"); got != "http://origin:7125" {
		t.Errorf("APIBaseURL() = %q", got)
	}
	if got := cfg.APIBaseURL(""); got != "http://127.0.0.1:7125" {
		t.Errorf("APIBaseURL(\"\") = %q", got)
	}
	cfg.APIBase = "http://ace:7125"
	if got := cfg.APIBaseURL("http://origin:7125"); got != "http://ace:7125" {
		t.Errorf("APIBaseURL() = %q, want api_base", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errs   int
	}{
		{"defaults", func(*Config) {}, 0},
		{"bad api scheme", func(c *Config) { c.APIBase = "ftp://printer" }, 1},
		{"ws scheme on ws_base", func(c *Config) { c.WSBase = "ws://printer/websocket" }, 0},
		{"http scheme on ws_base", func(c *Config) { c.WSBase = "http://printer/websocket" }, 1},
		{"temp too low", func(c *Config) { c.Defaults.DryingTemp = 19 }, 1},
		{"temp too high", func(c *Config) { c.Defaults.DryingTemp = 56 }, 1},
		{"temp bounds inclusive", func(c *Config) { c.Defaults.DryingTemp = 20 }, 0},
		{"zero lengths", func(c *Config) { c.Defaults.FeedLength = 0; c.Defaults.RetractLength = 0 }, 2},
		{"zero interval", func(c *Config) { c.AutoRefreshInterval = 0 }, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			if errs := cfg.Validate(); len(errs) != tt.errs {
				t.Errorf("Validate() returned %d errors %v, want %d", len(errs), errs, tt.errs)
			}
		})
	}
}
