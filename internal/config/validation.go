package config

import (
	"fmt"
	"net/url"
)

// Drying temperature bounds accepted by the ACE firmware.
const (
	MinDryingTemp = 20
	MaxDryingTemp = 55
)

// Validate checks the config and returns every problem found.
// An empty slice means the config is usable.
func (c *Config) Validate() []error {
	var errs []error

	if c.Version != CurrentVersion {
		errs = append(errs, fmt.Errorf("version: unsupported value %d", c.Version))
	}

	if c.APIBase != "" {
		if err := validateURL(c.APIBase, "http", "https"); err != nil {
			errs = append(errs, fmt.Errorf("api_base: %w", err))
		}
	}
	if c.WSBase != "" {
		if err := validateURL(c.WSBase, "ws", "wss"); err != nil {
			errs = append(errs, fmt.Errorf("ws_base: %w", err))
		}
	}

	if c.AutoRefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("auto_refresh_interval: must be positive, got %d", c.AutoRefreshInterval))
	}
	if c.WSReconnectTimeout <= 0 {
		errs = append(errs, fmt.Errorf("ws_reconnect_timeout: must be positive, got %d", c.WSReconnectTimeout))
	}

	d := c.Defaults
	positive := []struct {
		name  string
		value int
	}{
		{"defaults.feed_length", d.FeedLength},
		{"defaults.feed_speed", d.FeedSpeed},
		{"defaults.retract_length", d.RetractLength},
		{"defaults.retract_speed", d.RetractSpeed},
		{"defaults.drying_duration", d.DryingDuration},
	}
	for _, p := range positive {
		if p.value < 1 {
			errs = append(errs, fmt.Errorf("%s: must be at least 1, got %d", p.name, p.value))
		}
	}
	if d.DryingTemp < MinDryingTemp || d.DryingTemp > MaxDryingTemp {
		errs = append(errs, fmt.Errorf("defaults.drying_temp: must be between %d and %d, got %d", MinDryingTemp, MaxDryingTemp, d.DryingTemp))
	}

	return errs
}

func validateURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid URL %q: missing host", raw)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("invalid URL %q: scheme must be one of %v", raw, schemes)
}
