package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/caarlos0/env"
	"gopkg.in/yaml.v3"

	"github.com/valgace/acectl/internal/urls"
)

const (
	appName    = "acectl"
	configFile = "config.yaml"
)

// Mutex for thread-safe file operations
var fileMutex sync.Mutex

// GetConfigDir returns the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/acectl or $HOME/.config/acectl
//   - macOS: $HOME/.config/acectl
//   - Windows: %LOCALAPPDATA%\acectl
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the default configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load reads the configuration at path, or the default location when path
// is empty. A missing file yields defaults. Environment overrides are
// applied last.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	cfg, err := loadFromFile(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile parses a config file without environment overrides.
func loadFromFile(path string) (*Config, error) {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := NewConfig()
		cfg.path = path
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// parse decodes YAML on top of the defaults.
func parse(data []byte) (*Config, error) {
	cfg := NewConfig()
	cfg.Version = 0
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A file without a version line is treated as current.
	if cfg.Version == 0 {
		cfg.Version = CurrentVersion
	}
	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", cfg.Version, CurrentVersion)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// envOverrides holds the supported environment variables. Fields are
// strings so an unset variable can be told apart from a zero value.
type envOverrides struct {
	APIBase    string `env:"ACECTL_API_BASE"`
	WSBase     string `env:"ACECTL_WS_BASE"`
	Debug      string `env:"ACECTL_DEBUG"`
	StatsdAddr string `env:"ACECTL_STATSD_ADDR"`
	LogFile    string `env:"ACECTL_LOG_FILE"`
}

func (c *Config) applyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if o.APIBase != "" {
		c.APIBase = o.APIBase
	}
	if o.WSBase != "" {
		c.WSBase = o.WSBase
	}
	if o.StatsdAddr != "" {
		c.Metrics.StatsdAddr = o.StatsdAddr
	}
	if o.LogFile != "" {
		c.Log.File = o.LogFile
	}
	if o.Debug != "" {
		debug, err := strconv.ParseBool(o.Debug)
		if err != nil {
			return fmt.Errorf("invalid ACECTL_DEBUG value %q: %w", o.Debug, err)
		}
		c.Debug = debug
	}
	return nil
}

// Save writes the config back to the file it was loaded from, or the
// default location. The write is atomic.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path via a temporary file and rename.
func (c *Config) SaveTo(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to ensure config directory exists: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# acectl configuration file
# Connection settings for the Moonraker ACE endpoints and command defaults.
# Environment variables ACECTL_API_BASE, ACECTL_WS_BASE, ACECTL_DEBUG and
# ACECTL_STATSD_ADDR override the values below.
#
# Location: ` + path + `

`)
	data = append(header, data...)

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	c.path = path
	return nil
}

// APIBaseURL returns the HTTP base for REST calls: api_base when set,
// otherwise the origin.
func (c *Config) APIBaseURL(origin string) string {
	if base := strings.TrimSpace(c.APIBase); base != "" {
		return strings.TrimRight(base, "/")
	}
	if origin == "" {
		origin = urls.DefaultOrigin
	}
	return strings.TrimRight(origin, "/")
}

// WebSocketURL resolves the WebSocket endpoint. An explicit ws_base wins.
// Otherwise an http(s) api_base is converted to ws(s) with /websocket
// appended. Failing both, the origin's host is used with ws for http
// and wss for https.
func (c *Config) WebSocketURL(origin string) (string, error) {
	if ws := strings.TrimSpace(c.WSBase); ws != "" {
		return ws, nil
	}

	api := strings.TrimRight(strings.TrimSpace(c.APIBase), "/")
	switch {
	case strings.HasPrefix(api, "https://"):
		return "wss://" + strings.TrimPrefix(api, "https://") + urls.WebSocketPath, nil
	case strings.HasPrefix(api, "http://"):
		return "ws://" + strings.TrimPrefix(api, "http://") + urls.WebSocketPath, nil
	}

	if origin == "" {
		origin = urls.DefaultOrigin
	}
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid origin %q: missing host", origin)
	}

	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return scheme + "://" + u.Host + urls.WebSocketPath, nil
}
