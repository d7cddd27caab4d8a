// Package session keeps the local state in sync with a Moonraker ACE unit.
//
// A Session runs two loops. The WebSocket loop subscribes to the ace
// object, merges pushed updates and reconnects after a fixed delay whenever
// the socket closes. The poll loop fetches the HTTP status on a ticker, but
// only while the socket is connected. Both feed the same state.Store.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/valgace/acectl/internal/logging"
	"github.com/valgace/acectl/internal/metrics"
	"github.com/valgace/acectl/internal/moonraker"
	"github.com/valgace/acectl/internal/notify"
	"github.com/valgace/acectl/internal/state"
)

// Defaults for Options.
const (
	DefaultPollInterval   = 5 * time.Second
	DefaultReconnectDelay = 3 * time.Second
)

// Notification texts.
const (
	msgConnected    = "WebSocket connected"
	msgDisconnected = "WebSocket disconnected"
)

// StatusFetcher performs the HTTP status request.
type StatusFetcher interface {
	FetchStatus(ctx context.Context) (*state.StatusPayload, error)
}

// DialFunc opens a WebSocket.
type DialFunc func(ctx context.Context, url string) (*websocket.Conn, error)

// Options configures a Session.
type Options struct {
	WebSocketURL   string
	PollInterval   time.Duration
	ReconnectDelay time.Duration

	// Dial defaults to moonraker.Dial.
	Dial DialFunc
}

// Session owns the connection state and drives status updates into a store.
type Session struct {
	opts     Options
	fetcher  StatusFetcher
	store    *state.Store
	notifier notify.Notifier
	metrics  *metrics.Metrics

	mu    sync.RWMutex
	state ConnState
}

// New creates a session. notifier and m may be nil.
func New(fetcher StatusFetcher, store *state.Store, notifier notify.Notifier, m *metrics.Metrics, opts Options) *Session {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.Dial == nil {
		opts.Dial = moonraker.Dial
	}
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Session{
		opts:     opts,
		fetcher:  fetcher,
		store:    store,
		notifier: notifier,
		metrics:  m,
	}
}

// Connected reports whether the WebSocket is open.
func (s *Session) Connected() bool {
	return s.State() == Connected
}

// State returns the current connection state.
func (s *Session) State() ConnState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Store returns the store the session merges into.
func (s *Session) Store() *state.Store {
	return s.store
}

func (s *Session) transition(e Event) ConnState {
	s.mu.Lock()
	prev := s.state
	next, err := Next(prev, e)
	if err != nil {
		s.mu.Unlock()
		logging.Debug("Ignoring connection event", zap.Error(err))
		return prev
	}
	s.state = next
	s.mu.Unlock()

	if next != prev {
		logging.LogConnection(s.opts.WebSocketURL, next.String())
		s.metrics.Connected(next == Connected)
	}
	return next
}

// Run loads the status once, then runs the WebSocket and poll loops until
// ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	_ = s.Refresh(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.connectLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		s.pollLoop(ctx)
	}()
	wg.Wait()

	return ctx.Err()
}

// Refresh fetches the HTTP status once and merges it, regardless of the
// connection state. Failures are surfaced as notifications and returned.
func (s *Session) Refresh(ctx context.Context) error {
	payload, err := s.fetcher.FetchStatus(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		switch {
		case errors.Is(err, moonraker.ErrInvalidStatus):
			// logged by the client, nothing to show
		case moonraker.IsAPIError(err):
			s.notifier.Notify(notify.LevelError, "API error: "+moonraker.ShortMessage(err))
		default:
			logging.Warn("Error loading status", zap.Error(err))
			s.notifier.Notify(notify.LevelError, "Error loading status: "+moonraker.ShortMessage(err))
		}
		return err
	}

	s.apply(payload)
	return nil
}

func (s *Session) apply(p *state.StatusPayload) {
	s.store.Apply(p)
	s.metrics.Merged()
}

func (s *Session) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.Connected() {
				continue
			}
			if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				s.metrics.PollFailure()
			}
		}
	}
}

// connectLoop reconnects forever with a fixed delay.
func (s *Session) connectLoop(ctx context.Context) {
	for {
		s.connectOnce(ctx)
		if ctx.Err() != nil {
			return
		}

		s.notifier.Notify(notify.LevelError, msgDisconnected)
		s.metrics.Reconnect()
		logging.Debug("Scheduling reconnect", zap.Duration("delay", s.opts.ReconnectDelay))

		timer := time.NewTimer(s.opts.ReconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// connectOnce dials, subscribes and reads until the socket closes. It
// always leaves the session Disconnected.
func (s *Session) connectOnce(ctx context.Context) {
	s.transition(EventDial)

	conn, err := s.opts.Dial(ctx, s.opts.WebSocketURL)
	if err != nil {
		logging.Warn("WebSocket error", zap.String("url", s.opts.WebSocketURL), zap.Error(err))
		s.transition(EventError)
		s.transition(EventClose)
		return
	}

	s.transition(EventOpen)
	s.notifier.Notify(notify.LevelSuccess, msgConnected)

	if err := moonraker.WriteJSON(conn, moonraker.SubscribeRequest()); err != nil {
		logging.Warn("Failed to subscribe to ace status", zap.Error(err))
	}

	err = s.readLoop(ctx, conn)
	if err != nil && !isCloseError(err) && ctx.Err() == nil {
		logging.Warn("WebSocket error", zap.String("url", s.opts.WebSocketURL), zap.Error(err))
		s.transition(EventError)
	}
	s.transition(EventClose)
}

// readLoop handles frames until a read fails. A pinger keeps the read
// deadline alive; ctx cancellation closes the socket.
func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)

	_ = conn.SetReadDeadline(time.Now().Add(moonraker.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(moonraker.PongWait))
	})

	go func() {
		ping := time.NewTicker(moonraker.PingPeriod)
		defer ping.Stop()
		defer func() { _ = conn.Close() }()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ping.C:
				_ = conn.SetWriteDeadline(time.Now().Add(moonraker.WriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					logging.Debug("WebSocket ping failed", zap.Error(err))
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		logging.LogWebSocketMessage("recv", data)
		s.handleMessage(data)
	}
}

func (s *Session) handleMessage(data []byte) {
	msg, err := moonraker.DecodeMessage(data)
	if err != nil {
		logging.Warn("Error parsing WebSocket message", zap.Error(err))
		return
	}

	raw, ok := msg.ACEStatus()
	if !ok {
		return
	}

	payload, err := state.ParsePayload(raw)
	if err != nil {
		logging.Warn("Ignoring invalid ace status", zap.Error(err))
		return
	}
	s.apply(payload)
}

func isCloseError(err error) bool {
	var closeErr *websocket.CloseError
	return errors.As(err, &closeErr)
}
