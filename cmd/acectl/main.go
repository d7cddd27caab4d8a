// Acectl is a terminal client for the Anycubic ACE filament hub running
// behind a Moonraker server.
//
// It keeps a live view of the unit over Moonraker's WebSocket, falls back
// to HTTP polling while connected, and sends ACE commands such as tool
// changes, feed assist and drying.
//
// Usage:
//
//	acectl [command] [flags]
//
// Running without arguments opens the live dashboard.
// See 'acectl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/valgace/acectl/internal/config"
	"github.com/valgace/acectl/internal/logging"
	"github.com/valgace/acectl/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	apiBase    string
	wsBase     string
	origin     string
	logLevel   string
	logFile    string
	discover   bool
)

// cfg is loaded before every command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "acectl",
	Short: "Anycubic ACE control client for Moonraker",
	Long: `A terminal client for the Anycubic ACE filament hub.

Connects to the ACE extension of a Moonraker server, shows device, dryer
and slot status live, and sends commands to the unit.

If no command is specified, the live dashboard opens.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Assigned here: setup refers back to rootCmd.
	rootCmd.PersistentPreRunE = setup
	rootCmd.RunE = runWatch

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default is the per-user config directory)")
	pf.StringVar(&apiBase, "api", "", "Moonraker HTTP base, e.g. http://192.168.1.49:7125")
	pf.StringVar(&wsBase, "ws", "", "Moonraker WebSocket URL (derived from --api when empty)")
	pf.StringVar(&origin, "origin", "", "Fallback origin when neither --api nor --ws is set")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when empty")
	pf.StringVar(&logFile, "log-file", "", "Write JSON logs to this file with rotation")
	pf.BoolVar(&discover, "discover", false, "Find Moonraker over mDNS when no API base is configured")

	rootCmd.AddCommand(versionCmd)
}

// setup loads the config, applies flag overrides and starts logging.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	if apiBase != "" {
		cfg.APIBase = apiBase
	}
	if wsBase != "" {
		cfg.WSBase = wsBase
	}

	opts := logging.Options{
		Level:   firstNonEmpty(logLevel, cfg.Log.Level),
		File:    firstNonEmpty(logFile, cfg.Log.File),
		Console: !isDashboard(cmd),
	}
	if cfg.Debug {
		opts.Level = "debug"
	}
	if err := logging.InitializeWithOptions(opts); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// isDashboard reports whether cmd takes over the terminal.
func isDashboard(cmd *cobra.Command) bool {
	return cmd == rootCmd || cmd == watchCmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("acectl %s\n", version.Full())
	},
}
