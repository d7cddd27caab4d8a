package config

import "time"

// CurrentVersion is the only config file schema version understood.
const CurrentVersion = 1

// Default values, in the units used by the config file.
const (
	DefaultAutoRefreshInterval = 5000 // milliseconds
	DefaultReconnectTimeout    = 3000 // milliseconds

	DefaultFeedLength     = 50  // mm
	DefaultFeedSpeed      = 25  // mm/s
	DefaultRetractLength  = 50  // mm
	DefaultRetractSpeed   = 25  // mm/s
	DefaultDryingTemp     = 55  // °C
	DefaultDryingDuration = 240 // minutes

	DefaultMetricsNamespace = "acectl."
)

// Config is the on-disk client configuration.
type Config struct {
	Version int `yaml:"version"`

	// APIBase is the Moonraker HTTP base (e.g. "http://192.168.1.49:7125").
	// Empty means derive from the origin.
	APIBase string `yaml:"api_base"`

	// WSBase is an explicit WebSocket URL. Empty means derive (see WebSocketURL).
	WSBase string `yaml:"ws_base"`

	AutoRefreshInterval int  `yaml:"auto_refresh_interval"` // ms between status polls
	WSReconnectTimeout  int  `yaml:"ws_reconnect_timeout"`  // ms before reconnecting
	Debug               bool `yaml:"debug"`

	Defaults CommandDefaults `yaml:"defaults"`
	Log      LogConfig       `yaml:"log"`
	Metrics  MetricsConfig   `yaml:"metrics"`

	// path is where the config was loaded from; Save writes back to it.
	path string
}

// CommandDefaults pre-fill the parameters of operator commands.
type CommandDefaults struct {
	FeedLength     int `yaml:"feed_length"`
	FeedSpeed      int `yaml:"feed_speed"`
	RetractLength  int `yaml:"retract_length"`
	RetractSpeed   int `yaml:"retract_speed"`
	DryingTemp     int `yaml:"drying_temp"`
	DryingDuration int `yaml:"drying_duration"`
}

// LogConfig mirrors the logging flags.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// MetricsConfig enables DogStatsD metrics when StatsdAddr is set.
type MetricsConfig struct {
	StatsdAddr string   `yaml:"statsd_addr,omitempty"`
	Namespace  string   `yaml:"namespace,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`
}

// NewConfig creates a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Version:             CurrentVersion,
		AutoRefreshInterval: DefaultAutoRefreshInterval,
		WSReconnectTimeout:  DefaultReconnectTimeout,
		Defaults: CommandDefaults{
			FeedLength:     DefaultFeedLength,
			FeedSpeed:      DefaultFeedSpeed,
			RetractLength:  DefaultRetractLength,
			RetractSpeed:   DefaultRetractSpeed,
			DryingTemp:     DefaultDryingTemp,
			DryingDuration: DefaultDryingDuration,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultMetricsNamespace,
		},
	}
}

// RefreshInterval returns the poll period as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.AutoRefreshInterval) * time.Millisecond
}

// ReconnectDelay returns the WebSocket reconnect delay as a duration.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.WSReconnectTimeout) * time.Millisecond
}

// Path returns the file the config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// applyDefaults fills zero or negative values left by a partial file.
func (c *Config) applyDefaults() {
	if c.AutoRefreshInterval <= 0 {
		c.AutoRefreshInterval = DefaultAutoRefreshInterval
	}
	if c.WSReconnectTimeout <= 0 {
		c.WSReconnectTimeout = DefaultReconnectTimeout
	}

	d := &c.Defaults
	if d.FeedLength <= 0 {
		d.FeedLength = DefaultFeedLength
	}
	if d.FeedSpeed <= 0 {
		d.FeedSpeed = DefaultFeedSpeed
	}
	if d.RetractLength <= 0 {
		d.RetractLength = DefaultRetractLength
	}
	if d.RetractSpeed <= 0 {
		d.RetractSpeed = DefaultRetractSpeed
	}
	if d.DryingTemp <= 0 {
		d.DryingTemp = DefaultDryingTemp
	}
	if d.DryingDuration <= 0 {
		d.DryingDuration = DefaultDryingDuration
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
}
