package ui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/valgace/acectl/internal/notify"
	"github.com/valgace/acectl/internal/session"
	"github.com/valgace/acectl/internal/state"
)

type fakeActions struct {
	mu      sync.Mutex
	calls   []string
	toggled []int
}

func (f *fakeActions) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeActions) Refresh(context.Context) error    { f.record("refresh"); return nil }
func (f *fakeActions) StopAssist(context.Context) error { f.record("stop"); return nil }
func (f *fakeActions) Unload(context.Context) error     { f.record("unload"); return nil }

func (f *fakeActions) ToggleFeedAssist(_ context.Context, index int) error {
	f.record("toggle")
	f.mu.Lock()
	f.toggled = append(f.toggled, index)
	f.mu.Unlock()
	return nil
}

type fixedConn session.ConnState

func (c fixedConn) State() session.ConnState { return session.ConnState(c) }

func newTestModel(t *testing.T, actions Actions) (DashboardModel, *state.Store) {
	t.Helper()
	store := state.NewStore()
	m := NewDashboardModel(context.Background(), Options{
		Store:    store,
		Feed:     notify.NewFeed(4),
		Conn:     fixedConn(session.Connected),
		Actions:  actions,
		Endpoint: "ws://printer:7125/websocket",
	})
	m.Width = 80
	return m, store
}

func keyPress(s string) tea.KeyMsg {
	if s == "ctrl+c" {
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSlotKeysToggleFeedAssist(t *testing.T) {
	actions := &fakeActions{}
	m, _ := newTestModel(t, actions)

	for _, k := range []string{"1", "4"} {
		updated, cmd := m.Update(keyPress(k))
		m = updated.(DashboardModel)
		if cmd == nil {
			t.Fatalf("key %q produced no command", k)
		}
		if m.Pending != 1 {
			t.Fatalf("Pending = %d after %q, want 1", m.Pending, k)
		}
		done := cmd()
		if _, ok := done.(actionDoneMsg); !ok {
			t.Fatalf("key %q command did not report completion", k)
		}
		updated, _ = m.Update(done)
		m = updated.(DashboardModel)
		if m.Pending != 0 {
			t.Fatalf("Pending = %d after completion, want 0", m.Pending)
		}
	}

	if got := actions.toggled; len(got) != 2 || got[0] != 0 || got[1] != 3 {
		t.Errorf("toggled slots = %v, want [0 3]", got)
	}
}

func TestActionKeysIgnoredWhilePending(t *testing.T) {
	actions := &fakeActions{}
	m, _ := newTestModel(t, actions)

	updated, first := m.Update(keyPress("1"))
	m = updated.(DashboardModel)
	if first == nil {
		t.Fatal("first key produced no command")
	}

	for _, k := range []string{"3", "s", "u", "r"} {
		updated, cmd := m.Update(keyPress(k))
		m = updated.(DashboardModel)
		if cmd != nil {
			t.Errorf("key %q while pending produced a command", k)
		}
	}
	if m.Pending != 1 {
		t.Errorf("Pending = %d, want 1", m.Pending)
	}

	first()
	if len(actions.calls) != 1 || len(actions.toggled) != 1 || actions.toggled[0] != 0 {
		t.Errorf("calls = %v toggled = %v, want one toggle of slot 0", actions.calls, actions.toggled)
	}

	// quit still works while an action runs
	_, cmd := m.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("quit ignored while pending")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit while pending")
	}
}

func TestActionKeys(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"r", "refresh"},
		{"s", "stop"},
		{"u", "unload"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			actions := &fakeActions{}
			m, _ := newTestModel(t, actions)

			_, cmd := m.Update(keyPress(tt.key))
			if cmd == nil {
				t.Fatal("no command returned")
			}
			cmd()
			if len(actions.calls) != 1 || actions.calls[0] != tt.want {
				t.Errorf("calls = %v, want [%s]", actions.calls, tt.want)
			}
		})
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		m, _ := newTestModel(t, &fakeActions{})
		_, cmd := m.Update(keyPress(k))
		if cmd == nil {
			t.Fatalf("key %q produced no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("key %q did not quit", k)
		}
	}
}

func TestUnboundKeyIsIgnored(t *testing.T) {
	actions := &fakeActions{}
	m, _ := newTestModel(t, actions)

	_, cmd := m.Update(keyPress("x"))
	if cmd != nil {
		t.Error("unbound key should not produce a command")
	}
	if len(actions.calls) != 0 {
		t.Errorf("unexpected calls: %v", actions.calls)
	}
}

func TestStateChangeRefreshesSnapshot(t *testing.T) {
	m, store := newTestModel(t, &fakeActions{})

	payload, err := state.ParsePayload([]byte(`{
		"status": "ready",
		"model": "ACE Pro",
		"firmware": "V1.3.84",
		"dryer": {"status": "drying", "target_temp": 50, "duration": 240, "remain_time": 119.5},
		"slots": [
			{"index": 0, "status": "ready", "type": "PLA", "color": [255, 0, 0], "rfid": 2},
			{"index": 1, "status": "empty"}
		],
		"feed_assist_slot": 0
	}`))
	if err != nil {
		t.Fatalf("ParsePayload() error = %v", err)
	}
	store.Apply(payload)

	updated, cmd := m.Update(stateChangedMsg{})
	m = updated.(DashboardModel)
	if cmd == nil {
		t.Error("state change should re-arm the listener")
	}
	if m.Snapshot.Device.Model != "ACE Pro" {
		t.Errorf("Snapshot.Device.Model = %q, want ACE Pro", m.Snapshot.Device.Model)
	}

	view := m.View()
	for _, want := range []string{"ACE Pro", "V1.3.84", "PLA", "[assist]", "119m 30s", "Connected"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestNotificationShown(t *testing.T) {
	m, _ := newTestModel(t, &fakeActions{})

	updated, _ := m.Update(notificationMsg(notify.Notification{
		Level:   notify.LevelError,
		Message: "WebSocket disconnected",
		At:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}))
	m = updated.(DashboardModel)

	view := m.View()
	if !strings.Contains(view, "WebSocket disconnected") {
		t.Error("View() should show the last notification")
	}
	if !strings.Contains(view, FailureMarker) {
		t.Error("error notification should use the failure marker")
	}
}

func TestConnectionIndicator(t *testing.T) {
	tests := []struct {
		state session.ConnState
		want  string
	}{
		{session.Connected, "Connected"},
		{session.Connecting, "Connecting"},
		{session.Disconnected, "Disconnected"},
	}

	for _, tt := range tests {
		m, _ := newTestModel(t, &fakeActions{})
		m.conn = fixedConn(tt.state)

		updated, cmd := m.Update(connTickMsg(time.Now()))
		m = updated.(DashboardModel)
		if cmd == nil {
			t.Error("tick should re-arm itself")
		}
		if m.ConnState != tt.state {
			t.Errorf("ConnState = %v, want %v", m.ConnState, tt.state)
		}
		if !strings.Contains(m.renderHeader(80), tt.want) {
			t.Errorf("header missing %q", tt.want)
		}
	}
}

func TestEmptySlotsMessage(t *testing.T) {
	m, _ := newTestModel(t, &fakeActions{})
	if !strings.Contains(m.View(), "No slot data") {
		t.Error("empty model should say there is no slot data")
	}
}

func TestWindowSizeIsClamped(t *testing.T) {
	m, _ := newTestModel(t, &fakeActions{})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	if w := updated.(DashboardModel).Width; w != MinTerminalWidth {
		t.Errorf("Width = %d, want %d", w, MinTerminalWidth)
	}
	updated, _ = m.Update(tea.WindowSizeMsg{Width: 500, Height: 10})
	if w := updated.(DashboardModel).Width; w != MaxContentWidth {
		t.Errorf("Width = %d, want %d", w, MaxContentWidth)
	}
}
