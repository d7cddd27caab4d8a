package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/valgace/acectl/internal/discovery"
	"github.com/valgace/acectl/internal/moonraker"
	"github.com/valgace/acectl/internal/notify"
)

// requestTimeout bounds every one-shot command.
const requestTimeout = 30 * time.Second

// Command flags
var (
	outputFormat string
	scanTimeout  int
	feedLength   int
	feedSpeed    int
	dryTemp      int
	dryDuration  int
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(toolCmd)
	rootCmd.AddCommand(unloadCmd)
	rootCmd.AddCommand(parkCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(retractCmd)
	rootCmd.AddCommand(stopFeedCmd)
	rootCmd.AddCommand(stopRetractCmd)
	rootCmd.AddCommand(feedSpeedCmd)
	rootCmd.AddCommand(retractSpeedCmd)
	rootCmd.AddCommand(assistCmd)
	rootCmd.AddCommand(dryCmd)

	statusCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")

	for _, c := range []*cobra.Command{feedCmd, retractCmd} {
		c.Flags().IntVar(&feedLength, "length", 0, "Length in mm (default from config)")
		c.Flags().IntVar(&feedSpeed, "speed", 0, "Speed in mm/s (default from config)")
	}

	dryStartCmd.Flags().IntVar(&dryTemp, "temp", 0, "Target temperature in °C (default from config)")
	dryStartCmd.Flags().IntVar(&dryDuration, "duration", 0, "Duration in minutes (default from config)")
	dryCmd.AddCommand(dryStartCmd, dryStopCmd)

	assistCmd.AddCommand(assistOnCmd, assistOffCmd, assistToggleCmd, assistStopAllCmd)
}

// withApp runs fn with a freshly wired client that prints notifications.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	a, err := newApp(ctx, cfg, printNotifier())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func parseIndex(arg, what string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a number", what, arg)
	}
	return n, nil
}

// flagOr returns the flag value when it was given, otherwise def.
func flagOr(cmd *cobra.Command, name string, value, def int) int {
	if cmd.Flags().Changed(name) {
		return value
	}
	return def
}

// statusCmd prints the current ACE status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ACE status",
	Long: `Fetch the ACE status over HTTP and print it.

The json format prints the merged client model, the same data the
dashboard renders.`,
	Example: `  acectl status --api http://192.168.1.49:7125
  acectl status --format compact
  acectl status --format json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	a, err := newApp(ctx, cfg, notify.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.session.Refresh(ctx); err != nil {
		if hint := moonraker.TroubleshootingHint(err); hint != "" {
			fmt.Println(hint)
		}
		return fmt.Errorf("failed to get status from %s: %s", a.apiBase, moonraker.ShortMessage(err))
	}
	model := a.store.Snapshot()

	switch outputFormat {
	case "compact":
		fmt.Print(model.FormatCompact())
	case "json":
		data, err := json.MarshalIndent(model, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	case "detailed":
		fmt.Print(model.FormatDetailed())
	default:
		return fmt.Errorf("unknown format %q (use detailed, compact or json)", outputFormat)
	}
	return nil
}

// scanCmd discovers Moonraker servers on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for Moonraker servers on the network",
	Long: `Scan for Moonraker servers using mDNS/DNS-SD discovery.

Moonraker only advertises itself when its [zeroconf] component is enabled.`,
	Example: `  acectl scan
  acectl scan --timeout 10`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for Moonraker servers (timeout: %ds)...\n\n", scanTimeout)

	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(scanTimeout) * time.Second
	instances, err := scanner.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(instances) == 0 {
		fmt.Println("No Moonraker servers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Enable the [zeroconf] section in moonraker.conf")
		fmt.Println("  - Make sure this computer is on the printer's network")
		fmt.Println("  - Try increasing --timeout")
		fmt.Println("  - Use --api to set the address manually")
		return nil
	}

	fmt.Printf("Found %d server(s):\n\n", len(instances))
	for i, inst := range instances {
		fmt.Printf("%d. %s\n", i+1, inst.Name)
		fmt.Printf("   Host: %s\n", inst.Hostname)
		fmt.Printf("   URL:  %s\n", inst.BaseURL())
		if len(inst.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", inst.Metadata)
		}
		fmt.Println()
	}

	fmt.Println("Use 'acectl --api <url>' to connect, or 'acectl --discover' for a single server")
	return nil
}

var toolCmd = &cobra.Command{
	Use:   "tool <n>",
	Short: "Change to tool n (0-3), or -1 to unload",
	Example: `  acectl tool 2
  acectl tool -- -1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tool, err := parseIndex(args[0], "tool")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return a.dispatcher.ChangeTool(ctx, tool)
		})
	},
}

var unloadCmd = &cobra.Command{
	Use:   "unload",
	Short: "Unload the current tool",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return a.dispatcher.Unload(ctx)
		})
	},
}

var parkCmd = &cobra.Command{
	Use:   "park <slot>",
	Short: "Park the filament of a slot at the toolhead",
	Args:  cobra.ExactArgs(1),
	RunE: slotCommand(func(ctx context.Context, a *app, slot int) error {
		return a.dispatcher.ParkToToolhead(ctx, slot)
	}),
}

var feedCmd = &cobra.Command{
	Use:     "feed <slot>",
	Short:   "Feed filament from a slot",
	Example: `  acectl feed 0 --length 100 --speed 30`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		length := flagOr(cmd, "length", feedLength, cfg.Defaults.FeedLength)
		speed := flagOr(cmd, "speed", feedSpeed, cfg.Defaults.FeedSpeed)
		return slotCommand(func(ctx context.Context, a *app, slot int) error {
			return a.dispatcher.Feed(ctx, slot, length, speed)
		})(cmd, args)
	},
}

var retractCmd = &cobra.Command{
	Use:     "retract <slot>",
	Short:   "Retract filament into a slot",
	Example: `  acectl retract 1 --length 50`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		length := flagOr(cmd, "length", feedLength, cfg.Defaults.RetractLength)
		speed := flagOr(cmd, "speed", feedSpeed, cfg.Defaults.RetractSpeed)
		return slotCommand(func(ctx context.Context, a *app, slot int) error {
			return a.dispatcher.Retract(ctx, slot, length, speed)
		})(cmd, args)
	},
}

var stopFeedCmd = &cobra.Command{
	Use:   "stop-feed <slot>",
	Short: "Stop a running feed",
	Args:  cobra.ExactArgs(1),
	RunE: slotCommand(func(ctx context.Context, a *app, slot int) error {
		return a.dispatcher.StopFeed(ctx, slot)
	}),
}

var stopRetractCmd = &cobra.Command{
	Use:   "stop-retract <slot>",
	Short: "Stop a running retract",
	Args:  cobra.ExactArgs(1),
	RunE: slotCommand(func(ctx context.Context, a *app, slot int) error {
		return a.dispatcher.StopRetract(ctx, slot)
	}),
}

var feedSpeedCmd = &cobra.Command{
	Use:   "feed-speed <slot> <speed>",
	Short: "Change the speed of a running feed",
	Args:  cobra.ExactArgs(2),
	RunE: speedCommand(func(ctx context.Context, a *app, slot, speed int) error {
		return a.dispatcher.UpdateFeedSpeed(ctx, slot, speed)
	}),
}

var retractSpeedCmd = &cobra.Command{
	Use:   "retract-speed <slot> <speed>",
	Short: "Change the speed of a running retract",
	Args:  cobra.ExactArgs(2),
	RunE: speedCommand(func(ctx context.Context, a *app, slot, speed int) error {
		return a.dispatcher.UpdateRetractSpeed(ctx, slot, speed)
	}),
}

// parseSlotSpeed reads the <slot> <speed> arguments.
func parseSlotSpeed(args []string) (slot, speed int, err error) {
	if slot, err = parseIndex(args[0], "slot"); err != nil {
		return 0, 0, err
	}
	if speed, err = parseIndex(args[1], "speed"); err != nil {
		return 0, 0, err
	}
	return slot, speed, nil
}

// speedCommand adapts a speed change to a cobra RunE taking <slot> <speed>.
func speedCommand(fn func(ctx context.Context, a *app, slot, speed int) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		slot, speed, err := parseSlotSpeed(args)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return fn(ctx, a, slot, speed)
		})
	}
}

// slotCommand adapts a per-slot action to a cobra RunE taking <slot>.
func slotCommand(fn func(ctx context.Context, a *app, slot int) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		slot, err := parseIndex(args[0], "slot")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return fn(ctx, a, slot)
		})
	}
}

var assistCmd = &cobra.Command{
	Use:   "assist",
	Short: "Control feed assist",
}

var assistOnCmd = &cobra.Command{
	Use:   "on <slot>",
	Short: "Enable feed assist on a slot",
	Args:  cobra.ExactArgs(1),
	RunE: slotCommand(func(ctx context.Context, a *app, slot int) error {
		return a.dispatcher.EnableFeedAssist(ctx, slot)
	}),
}

var assistOffCmd = &cobra.Command{
	Use:   "off <slot>",
	Short: "Disable feed assist on a slot",
	Args:  cobra.ExactArgs(1),
	RunE: slotCommand(func(ctx context.Context, a *app, slot int) error {
		return a.dispatcher.DisableFeedAssist(ctx, slot)
	}),
}

var assistToggleCmd = &cobra.Command{
	Use:   "toggle <slot>",
	Short: "Toggle feed assist on a slot, switching away from the active one",
	Args:  cobra.ExactArgs(1),
	RunE: slotCommand(func(ctx context.Context, a *app, slot int) error {
		// The active slot comes from the unit's last report.
		if err := a.session.Refresh(ctx); err != nil && !errors.Is(err, moonraker.ErrInvalidStatus) {
			return fmt.Errorf("failed to read feed assist state: %s", moonraker.ShortMessage(err))
		}
		return a.dispatcher.ToggleFeedAssist(ctx, slot)
	}),
}

var assistStopAllCmd = &cobra.Command{
	Use:   "stop-all",
	Short: "Disable feed assist on every slot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return a.dispatcher.StopAssist(ctx)
		})
	},
}

var dryCmd = &cobra.Command{
	Use:   "dry",
	Short: "Control the filament dryer",
}

var dryStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start drying",
	Example: `  acectl dry start
  acectl dry start --temp 45 --duration 180`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		temp := flagOr(cmd, "temp", dryTemp, cfg.Defaults.DryingTemp)
		duration := flagOr(cmd, "duration", dryDuration, cfg.Defaults.DryingDuration)
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return a.dispatcher.StartDrying(ctx, temp, duration)
		})
	},
}

var dryStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop drying",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return a.dispatcher.StopDrying(ctx)
		})
	},
}
