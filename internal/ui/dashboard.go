package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/valgace/acectl/internal/notify"
	"github.com/valgace/acectl/internal/session"
	"github.com/valgace/acectl/internal/state"
	"github.com/valgace/acectl/internal/version"
)

// connPollInterval is how often the connection indicator is refreshed.
const connPollInterval = 500 * time.Millisecond

// Actions are the operator commands reachable from the keyboard.
type Actions interface {
	Refresh(ctx context.Context) error
	ToggleFeedAssist(ctx context.Context, index int) error
	StopAssist(ctx context.Context) error
	Unload(ctx context.Context) error
}

// ConnectionSource reports the transport state for the header indicator.
type ConnectionSource interface {
	State() session.ConnState
}

// Options wires the dashboard to the rest of the client.
type Options struct {
	Store   *state.Store
	Feed    *notify.Feed
	Conn    ConnectionSource
	Actions Actions
	// Endpoint is shown in the header.
	Endpoint string
}

// Message types
type stateChangedMsg struct{}

type notificationMsg notify.Notification

type connTickMsg time.Time

type actionDoneMsg struct {
	err error
}

// DashboardModel is the Bubble Tea model for the watch screen.
type DashboardModel struct {
	ctx     context.Context
	store   *state.Store
	changes <-chan struct{}
	notes   <-chan notify.Notification
	conn    ConnectionSource
	actions Actions

	Endpoint  string
	Snapshot  state.Model
	ConnState session.ConnState
	Last      *notify.Notification
	Pending   int

	Width   int
	Spinner spinner.Model
	Help    help.Model
	Keys    keyMap
}

// NewDashboardModel creates the model. Store and Actions are required.
func NewDashboardModel(ctx context.Context, opts Options) DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ConnectingStyle

	m := DashboardModel{
		ctx:      ctx,
		store:    opts.Store,
		changes:  opts.Store.Subscribe(),
		conn:     opts.Conn,
		actions:  opts.Actions,
		Endpoint: opts.Endpoint,
		Snapshot: opts.Store.Snapshot(),
		Width:    GetTerminalWidth(),
		Spinner:  s,
		Help:     help.New(),
		Keys:     defaultKeyMap(),
	}
	if opts.Feed != nil {
		m.notes = opts.Feed.C()
	}
	if m.conn != nil {
		m.ConnState = m.conn.State()
	}
	return m
}

// Init starts the listeners.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		waitForChange(m.changes),
		waitForNotification(m.notes),
		tickConnection(),
		m.Spinner.Tick,
	)
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}

func waitForNotification(ch <-chan notify.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg(n)
	}
}

func tickConnection() tea.Cmd {
	return tea.Tick(connPollInterval, func(t time.Time) tea.Msg {
		return connTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = clampWidth(msg.Width)
		return m, nil

	case stateChangedMsg:
		m.Snapshot = m.store.Snapshot()
		return m, waitForChange(m.changes)

	case notificationMsg:
		n := notify.Notification(msg)
		m.Last = &n
		return m, waitForNotification(m.notes)

	case connTickMsg:
		if m.conn != nil {
			m.ConnState = m.conn.State()
		}
		return m, tickConnection()

	case actionDoneMsg:
		if m.Pending > 0 {
			m.Pending--
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Refresh):
		return m.run(m.actions.Refresh)

	case key.Matches(msg, m.Keys.ToggleSlot):
		index := int(msg.String()[0] - '1')
		return m.run(func(ctx context.Context) error {
			return m.actions.ToggleFeedAssist(ctx, index)
		})

	case key.Matches(msg, m.Keys.StopAssist):
		return m.run(m.actions.StopAssist)

	case key.Matches(msg, m.Keys.Unload):
		return m.run(m.actions.Unload)
	}
	return m, nil
}

// run executes an action off the UI goroutine. The outcome reaches the
// screen through the notification feed. Keys pressed while an action is
// still running are dropped so actions never overlap.
func (m DashboardModel) run(action func(context.Context) error) (tea.Model, tea.Cmd) {
	if m.actions == nil || m.Pending > 0 {
		return m, nil
	}
	m.Pending++
	ctx := m.ctx
	return m, func() tea.Msg {
		return actionDoneMsg{err: action(ctx)}
	}
}

// View renders the dashboard
func (m DashboardModel) View() string {
	width := m.Width
	if width == 0 {
		width = MinTerminalWidth
	}

	sections := []string{
		m.renderHeader(width),
		m.renderDevice(width),
		m.renderDryer(width),
		m.renderSlots(width),
		m.renderNotification(),
		MutedStyle.Render(" ") + m.Help.View(m.Keys),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m DashboardModel) renderHeader(width int) string {
	title := TitleStyle.Render("ACE DASHBOARD") + MutedStyle.Render(" "+version.Version)

	var indicator string
	switch m.ConnState {
	case session.Connected:
		indicator = ConnectedStyle.Render(IndicatorMarker + " Connected")
	case session.Connecting:
		indicator = m.Spinner.View() + ConnectingStyle.Render("Connecting")
	default:
		indicator = DisconnectedStyle.Render(IndicatorMarker + " Disconnected")
	}
	if m.Pending > 0 {
		indicator = MarkerStyle.Render("working… ") + indicator
	}

	line := title
	gap := width - lipgloss.Width(title) - lipgloss.Width(indicator) - 1
	if gap > 0 {
		line += strings.Repeat(" ", gap)
	} else {
		line += " "
	}
	line += indicator

	lines := []string{line}
	if m.Endpoint != "" {
		lines = append(lines, MutedStyle.Render(" "+m.Endpoint))
	}
	lines = append(lines, RenderHorizontalDivider(width, "─"))
	return strings.Join(lines, "\n")
}

func field(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}

func (m DashboardModel) renderDevice(width int) string {
	d := m.Snapshot.Device
	model := d.Model
	if model == "" {
		model = "-"
	}
	firmware := d.Firmware
	if firmware == "" {
		firmware = "-"
	}
	rfid := "off"
	if d.RFIDEnabled {
		rfid = "on"
	}

	body := strings.Join([]string{
		CardTitleStyle.Render("Device"),
		field("Status", d.State.Label()),
		field("Model", model),
		field("Firmware", firmware),
		field("Temperature", fmt.Sprintf("%.1f°C", d.TemperatureC)),
		field("Fan", fmt.Sprintf("%.0f RPM", d.FanSpeed)),
		field("RFID", rfid),
	}, "\n")
	return CardStyle(width).Render(body)
}

func (m DashboardModel) renderDryer(width int) string {
	dr := m.Snapshot.Dryer
	lines := []string{
		CardTitleStyle.Render("Dryer"),
		field("Status", dr.State.Label()),
		field("Target", fmt.Sprintf("%.0f°C", dr.TargetTempC)),
		field("Duration", state.FormatDuration(dr.DurationMinutes)),
	}
	if dr.State == state.DryerDrying {
		lines = append(lines, field("Remaining", state.FormatRemaining(dr.RemainingMinutes)))
	}
	return CardStyle(width).Render(strings.Join(lines, "\n"))
}

func (m DashboardModel) renderSlots(width int) string {
	lines := []string{CardTitleStyle.Render("Slots")}
	if len(m.Snapshot.Slots) == 0 {
		lines = append(lines, MutedStyle.Render("No slot data"))
	}
	for _, s := range m.Snapshot.Slots {
		lines = append(lines, m.renderSlot(s))
	}
	return CardStyle(width).Render(strings.Join(lines, "\n"))
}

func (m DashboardModel) renderSlot(s state.Slot) string {
	swatch := lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.Color.Hex())).
		Render(SwatchBlock)

	material := s.MaterialType
	if material == "" {
		material = "-"
	}

	line := fmt.Sprintf("%d %s %-8s %-6s RFID: %s", s.Index, swatch, s.Status.Label(), material, s.RFID)
	if s.SKU != "" {
		line += MutedStyle.Render("  " + s.SKU)
	}
	if s.Index != state.NoSlot && s.Index == m.Snapshot.FeedAssistSlot {
		line += " " + MarkerStyle.Render("[assist]")
	}
	if s.Index != state.NoSlot && s.Index == m.Snapshot.CurrentTool {
		line += " " + MarkerStyle.Render("[loaded]")
	}
	return line
}

func (m DashboardModel) renderNotification() string {
	if m.Last == nil {
		return ""
	}
	n := m.Last
	return NotificationStyle(n.Level).Render(fmt.Sprintf(" %s %s  %s",
		NotificationMarker(n.Level), n.Message, n.At.Format("15:04:05")))
}

// Run shows the dashboard until the operator quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Store == nil {
		return errors.New("dashboard requires a state store")
	}
	model := NewDashboardModel(ctx, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
