// Package notify carries transient user-facing messages from the transport
// and command layers to whatever is presenting them.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/valgace/acectl/internal/logging"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// DefaultFeedSize is the buffer length used by NewFeed when size <= 0.
const DefaultFeedSize = 32

// Notification is one message for the operator.
type Notification struct {
	Level   Level
	Message string
	At      time.Time
}

// Notifier receives notifications.
type Notifier interface {
	Notify(level Level, message string)
}

// Func adapts a function to Notifier.
type Func func(level Level, message string)

// Notify calls f.
func (f Func) Notify(level Level, message string) { f(level, message) }

// Discard drops every notification.
var Discard Notifier = Func(func(Level, string) {})

// Feed is a bounded, channel-backed Notifier. When the buffer is full the
// oldest notification is dropped. Every notification is also logged.
type Feed struct {
	mu  sync.Mutex
	ch  chan Notification
	now func() time.Time
}

// NewFeed creates a feed holding up to size pending notifications.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{
		ch:  make(chan Notification, size),
		now: time.Now,
	}
}

// Notify queues a notification without blocking.
func (f *Feed) Notify(level Level, message string) {
	n := Notification{Level: level, Message: message, At: f.now()}
	logNotification(n)

	f.mu.Lock()
	defer f.mu.Unlock()
	for {
		select {
		case f.ch <- n:
			return
		default:
		}
		select {
		case dropped := <-f.ch:
			logging.Debug("Notification dropped", zap.String("message", dropped.Message))
		default:
		}
	}
}

// C returns the channel notifications are delivered on.
func (f *Feed) C() <-chan Notification {
	return f.ch
}

// Drain returns every queued notification without blocking.
func (f *Feed) Drain() []Notification {
	var out []Notification
	for {
		select {
		case n := <-f.ch:
			out = append(out, n)
		default:
			return out
		}
	}
}

func logNotification(n Notification) {
	fields := []zap.Field{
		zap.String("level", string(n.Level)),
		zap.String("message", n.Message),
	}
	if n.Level == LevelError {
		logging.Warn("Notification", fields...)
		return
	}
	logging.Info("Notification", fields...)
}
