package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/valgace/acectl/internal/notify"
	"github.com/valgace/acectl/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the live dashboard",
	Long: `Open the live ACE dashboard.

The dashboard subscribes to Moonraker over WebSocket, reconnects on its own
when the connection drops, and polls the HTTP status while connected.

Keys: r refresh, 1-4 toggle feed assist, s stop assist, u unload, q quit.`,
	Example: `  # Dashboard for a printer on the LAN
  acectl watch --api http://192.168.1.49:7125

  # Find the printer over mDNS
  acectl --discover`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := notify.NewFeed(notify.DefaultFeedSize)
	a, err := newApp(ctx, cfg, feed)
	if err != nil {
		return err
	}
	defer a.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- a.session.Run(runCtx)
	}()

	err = ui.Run(runCtx, ui.Options{
		Store:    a.store,
		Feed:     feed,
		Conn:     a.session,
		Actions:  a.dispatcher,
		Endpoint: a.wsURL,
	})
	cancel()
	<-done

	if err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
