// Package metrics emits optional DogStatsD metrics. A nil *Metrics, or one
// created without an address, discards everything.
package metrics

import (
	"strconv"

	"github.com/DataDog/datadog-go/statsd"
	"go.uber.org/zap"

	"github.com/valgace/acectl/internal/config"
	"github.com/valgace/acectl/internal/logging"
)

// Metric names, relative to the configured namespace.
const (
	WSConnected   = "ws.connected"
	WSReconnects  = "ws.reconnects"
	PollFailures  = "poll.failures"
	MergeApplied  = "merge.applied"
	CommandResult = "command.result"
)

// sink is the subset of the statsd client used here.
type sink interface {
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
	Close() error
}

// Metrics records client health and command outcomes.
type Metrics struct {
	client sink
}

// New creates a DogStatsD client for cfg. An empty address returns a
// no-op Metrics.
func New(cfg config.MetricsConfig) (*Metrics, error) {
	if cfg.StatsdAddr == "" {
		return &Metrics{}, nil
	}

	client, err := statsd.New(cfg.StatsdAddr,
		statsd.WithNamespace(cfg.Namespace),
		statsd.WithTags(cfg.Tags),
	)
	if err != nil {
		return nil, err
	}

	logging.Info("Metrics initialized",
		zap.String("addr", cfg.StatsdAddr),
		zap.String("namespace", cfg.Namespace),
		zap.Strings("tags", cfg.Tags),
	)
	return &Metrics{client: client}, nil
}

func (m *Metrics) gauge(name string, value float64, tags ...string) {
	if m == nil || m.client == nil {
		return
	}
	if err := m.client.Gauge(name, value, tags, 1); err != nil {
		logging.Debug("Failed to emit gauge metric", zap.String("metric", name), zap.Error(err))
	}
}

func (m *Metrics) count(name string, value int64, tags ...string) {
	if m == nil || m.client == nil {
		return
	}
	if err := m.client.Count(name, value, tags, 1); err != nil {
		logging.Debug("Failed to emit count metric", zap.String("metric", name), zap.Error(err))
	}
}

// Connected records the WebSocket connection state as 1 or 0.
func (m *Metrics) Connected(connected bool) {
	v := 0.0
	if connected {
		v = 1
	}
	m.gauge(WSConnected, v)
}

// Reconnect counts a scheduled reconnect.
func (m *Metrics) Reconnect() { m.count(WSReconnects, 1) }

// PollFailure counts a failed status poll.
func (m *Metrics) PollFailure() { m.count(PollFailures, 1) }

// Merged counts an applied status payload.
func (m *Metrics) Merged() { m.count(MergeApplied, 1) }

// Command counts a command outcome.
func (m *Metrics) Command(name string, ok bool) {
	m.count(CommandResult, 1, "command:"+name, "ok:"+strconv.FormatBool(ok))
}

// Close flushes and closes the client.
func (m *Metrics) Close() error {
	if m == nil || m.client == nil {
		return nil
	}
	return m.client.Close()
}
