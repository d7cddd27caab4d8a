// Package config loads and saves the acectl client configuration.
//
// The configuration is a small YAML file holding the Moonraker endpoints,
// the poll and reconnect intervals, and the default parameters offered for
// feed, retract and drying commands.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/acectl/config.yaml or $HOME/.config/acectl/config.yaml
//   - macOS: $HOME/.config/acectl/config.yaml
//   - Windows: %LOCALAPPDATA%\acectl\config.yaml
//
// # Environment
//
// ACECTL_API_BASE, ACECTL_WS_BASE, ACECTL_DEBUG, ACECTL_STATSD_ADDR and
// ACECTL_LOG_FILE override the corresponding file values after loading.
//
// # Endpoint Resolution
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	wsURL, err := cfg.WebSocketURL("http://printer.local:7125")
package config
