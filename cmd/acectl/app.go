package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/valgace/acectl/internal/command"
	"github.com/valgace/acectl/internal/config"
	"github.com/valgace/acectl/internal/discovery"
	"github.com/valgace/acectl/internal/logging"
	"github.com/valgace/acectl/internal/metrics"
	"github.com/valgace/acectl/internal/moonraker"
	"github.com/valgace/acectl/internal/notify"
	"github.com/valgace/acectl/internal/session"
	"github.com/valgace/acectl/internal/state"
)

// app holds the wired client components for one command invocation.
type app struct {
	cfg        *config.Config
	apiBase    string
	wsURL      string
	client     *moonraker.Client
	store      *state.Store
	metrics    *metrics.Metrics
	session    *session.Session
	dispatcher *command.Dispatcher
}

// newApp resolves endpoints and builds the component graph. notifier
// receives every user-facing message.
func newApp(ctx context.Context, c *config.Config, notifier notify.Notifier) (*app, error) {
	if discover && c.APIBase == "" && c.WSBase == "" {
		inst, err := discovery.NewScanner().FindOne(ctx)
		if err != nil {
			return nil, fmt.Errorf("discovery failed: %w", err)
		}
		logging.Info("Using discovered Moonraker instance",
			zap.String("name", inst.Name),
			zap.String("url", inst.BaseURL()),
		)
		c.APIBase = inst.BaseURL()
	}

	for _, err := range c.Validate() {
		logging.Warn("Config problem", zap.Error(err))
	}

	wsURL, err := c.WebSocketURL(origin)
	if err != nil {
		return nil, err
	}
	base := c.APIBaseURL(origin)

	m, err := metrics.New(c.Metrics)
	if err != nil {
		// Metrics are optional; carry on without them.
		logging.Warn("Metrics disabled", zap.Error(err))
		m = nil
	}

	client := moonraker.NewClient(base)
	store := state.NewStore()
	sess := session.New(client, store, notifier, m, session.Options{
		WebSocketURL:   wsURL,
		PollInterval:   c.RefreshInterval(),
		ReconnectDelay: c.ReconnectDelay(),
	})

	logging.Debug("Client configured",
		zap.String("api_base", base),
		zap.String("ws_url", wsURL),
	)

	return &app{
		cfg:        c,
		apiBase:    base,
		wsURL:      wsURL,
		client:     client,
		store:      store,
		metrics:    m,
		session:    sess,
		dispatcher: command.NewDispatcher(client, sess, store, notifier, m),
	}, nil
}

// Close stops pending work and flushes metrics.
func (a *app) Close() {
	a.dispatcher.Close()
	if err := a.metrics.Close(); err != nil {
		logging.Debug("Failed to close metrics client", zap.Error(err))
	}
}

// printNotifier writes notifications for one-shot commands.
func printNotifier() notify.Notifier {
	return notify.Func(func(level notify.Level, message string) {
		switch level {
		case notify.LevelError:
			fmt.Fprintf(os.Stderr, "✗ %s\n", message)
		case notify.LevelSuccess:
			fmt.Printf("✓ %s\n", message)
		default:
			fmt.Println(message)
		}
	})
}
