package state

import (
	"sync"

	"go.uber.org/zap"

	"github.com/valgace/acectl/internal/logging"
)

// Store owns the single Model of a session. All writes are serialized;
// concurrent Apply calls from the WebSocket reader and the poller resolve
// last-write-wins per field.
type Store struct {
	mu    sync.RWMutex
	model Model

	subMu       sync.Mutex
	subscribers []chan struct{}
}

// NewStore creates a store holding NewModel().
func NewStore() *Store {
	return &Store{model: NewModel()}
}

// Apply merges p into the model and notifies subscribers.
func (s *Store) Apply(p *StatusPayload) {
	if p == nil {
		return
	}

	s.mu.Lock()
	s.model = Merge(s.model, p)
	slots := len(s.model.Slots)
	feedAssist := s.model.FeedAssistSlot
	s.mu.Unlock()

	logging.Debug("Status merged",
		zap.Int("slots", slots),
		zap.Int("feed_assist_slot", feedAssist),
	)

	s.broadcast()
}

// Snapshot returns a deep copy of the current model.
func (s *Store) Snapshot() Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.Clone()
}

// SetCurrentTool records the tool loaded by a successful tool change.
func (s *Store) SetCurrentTool(tool int) {
	s.update(func(m *Model) { m.CurrentTool = tool })
}

// SetFeedAssistSlot records the result of a feed assist command ahead of
// the next status update.
func (s *Store) SetFeedAssistSlot(slot int) {
	s.update(func(m *Model) { m.FeedAssistSlot = slot })
}

func (s *Store) update(fn func(*Model)) {
	s.mu.Lock()
	fn(&s.model)
	s.mu.Unlock()
	s.broadcast()
}

// Subscribe returns a channel that receives a value after each change.
// Signals coalesce: a slow reader sees at most one pending signal.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Store) broadcast() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
