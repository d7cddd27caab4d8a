// Package command sends operator commands to the ACE unit and reports
// their outcome.
//
// Execute is the primitive: it posts one command, turns the response into
// success or failure, notifies the operator and schedules a status refresh
// after success. The named wrappers validate their parameters locally
// first; a rejected parameter is reported without any request being made.
package command

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/valgace/acectl/internal/logging"
	"github.com/valgace/acectl/internal/metrics"
	"github.com/valgace/acectl/internal/moonraker"
	"github.com/valgace/acectl/internal/notify"
	"github.com/valgace/acectl/internal/state"
)

// Command names understood by the ACE Moonraker component.
const (
	CmdChangeTool         = "ACE_CHANGE_TOOL"
	CmdParkToToolhead     = "ACE_PARK_TO_TOOLHEAD"
	CmdEnableFeedAssist   = "ACE_ENABLE_FEED_ASSIST"
	CmdDisableFeedAssist  = "ACE_DISABLE_FEED_ASSIST"
	CmdStartDrying        = "ACE_START_DRYING"
	CmdStopDrying         = "ACE_STOP_DRYING"
	CmdFeed               = "ACE_FEED"
	CmdRetract            = "ACE_RETRACT"
	CmdStopFeed           = "ACE_STOP_FEED"
	CmdStopRetract        = "ACE_STOP_RETRACT"
	CmdUpdateFeedSpeed    = "ACE_UPDATE_FEEDING_SPEED"
	CmdUpdateRetractSpeed = "ACE_UPDATE_RETRACT_SPEED"
)

// DefaultRefreshDelay is the wait between a successful command and the
// status refresh that follows it.
const DefaultRefreshDelay = time.Second

// refreshTimeout bounds the deferred refresh request.
const refreshTimeout = 10 * time.Second

// ErrCommandFailed is returned by the wrappers when the unit rejected the
// command or it could not be sent. The operator has already been notified.
var ErrCommandFailed = errors.New("command failed")

// Sender posts a command.
type Sender interface {
	SendCommand(ctx context.Context, name string, params map[string]any) (*moonraker.CommandResponse, error)
}

// Refresher reloads the status on demand.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Dispatcher issues commands and keeps optimistic local state in the store.
type Dispatcher struct {
	sender    Sender
	refresher Refresher
	store     *state.Store
	notifier  notify.Notifier
	metrics   *metrics.Metrics

	// RefreshDelay is the debounce before the post-command refresh.
	RefreshDelay time.Duration

	mu    sync.Mutex
	timer *time.Timer

	// assistMu serializes the feed assist operations, which read the
	// active slot and then issue one or more commands.
	assistMu sync.Mutex
}

// NewDispatcher creates a dispatcher. refresher, notifier and m may be nil.
func NewDispatcher(sender Sender, refresher Refresher, store *state.Store, notifier notify.Notifier, m *metrics.Metrics) *Dispatcher {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Dispatcher{
		sender:       sender,
		refresher:    refresher,
		store:        store,
		notifier:     notifier,
		metrics:      m,
		RefreshDelay: DefaultRefreshDelay,
	}
}

// Execute sends one command and reports whether it succeeded.
//
// A top-level error member fails. A result member succeeds unless its
// success field is false or it carries an error. A reply with neither
// counts as sent.
func (d *Dispatcher) Execute(ctx context.Context, name string, params map[string]any) bool {
	if params == nil {
		params = map[string]any{}
	}
	id := uuid.NewString()
	logging.LogCommand(id, name, params)

	ok := d.execute(ctx, id, name, params)
	d.metrics.Command(name, ok)
	if ok {
		d.scheduleRefresh()
	}
	return ok
}

func (d *Dispatcher) execute(ctx context.Context, id, name string, params map[string]any) bool {
	resp, err := d.sender.SendCommand(ctx, name, params)
	if err != nil {
		logging.Error("Error executing command",
			zap.String("request_id", id),
			zap.String("command", name),
			zap.Error(err),
		)
		d.notifier.Notify(notify.LevelError, "Error executing command: "+moonraker.ShortMessage(err))
		return false
	}

	switch {
	case resp.HasError():
		msg := moonraker.ErrorText(resp.Error)
		logging.Error("Command rejected", zap.String("request_id", id), zap.String("command", name), zap.String("error", msg))
		d.notifier.Notify(notify.LevelError, "API error: "+msg)
		return false

	case resp.HasResult():
		if resp.Succeeded() {
			logging.Info("Command completed", zap.String("request_id", id), zap.String("command", name))
			d.notifier.Notify(notify.LevelSuccess, fmt.Sprintf("Command %s completed successfully", name))
			return true
		}
		reason := resp.FailureReason()
		if reason == "" {
			reason = "Error executing command"
		}
		logging.Error("Command failed", zap.String("request_id", id), zap.String("command", name), zap.String("reason", reason))
		d.notifier.Notify(notify.LevelError, "Error: "+reason)
		return false

	default:
		logging.Info("Command sent", zap.String("request_id", id), zap.String("command", name))
		d.notifier.Notify(notify.LevelSuccess, fmt.Sprintf("Command %s sent", name))
		return true
	}
}

// scheduleRefresh (re)arms the post-command refresh timer. Several
// successes in a row produce one refresh.
func (d *Dispatcher) scheduleRefresh() {
	if d.refresher == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		d.timer = time.AfterFunc(d.RefreshDelay, d.refreshNow)
		return
	}
	d.timer.Reset(d.RefreshDelay)
}

func (d *Dispatcher) refreshNow() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := d.refresher.Refresh(ctx); err != nil {
		logging.Debug("Post-command refresh failed", zap.Error(err))
	}
}

// Close cancels a pending refresh.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// reject reports a validation failure without sending anything.
func (d *Dispatcher) reject(name string, err error) error {
	logging.Warn("Command rejected locally", zap.String("command", name), zap.Error(err))
	d.notifier.Notify(notify.LevelError, moonraker.ShortMessage(err))
	return err
}

func (d *Dispatcher) run(ctx context.Context, name string, params map[string]any) error {
	if d.Execute(ctx, name, params) {
		return nil
	}
	return fmt.Errorf("%s: %w", name, ErrCommandFailed)
}

// ChangeTool loads tool (0-3), or unloads with -1.
func (d *Dispatcher) ChangeTool(ctx context.Context, tool int) error {
	if err := ValidateTool(tool); err != nil {
		return d.reject(CmdChangeTool, err)
	}
	if err := d.run(ctx, CmdChangeTool, map[string]any{"TOOL": tool}); err != nil {
		return err
	}
	d.store.SetCurrentTool(tool)
	return nil
}

// Unload unloads the current tool.
func (d *Dispatcher) Unload(ctx context.Context) error {
	return d.ChangeTool(ctx, state.NoSlot)
}

// ParkToToolhead parks the filament of a slot at the toolhead.
func (d *Dispatcher) ParkToToolhead(ctx context.Context, index int) error {
	if err := ValidateSlot(index); err != nil {
		return d.reject(CmdParkToToolhead, err)
	}
	return d.run(ctx, CmdParkToToolhead, map[string]any{"INDEX": index})
}

// EnableFeedAssist turns feed assist on for a slot.
func (d *Dispatcher) EnableFeedAssist(ctx context.Context, index int) error {
	d.assistMu.Lock()
	defer d.assistMu.Unlock()
	return d.enableFeedAssist(ctx, index)
}

// DisableFeedAssist turns feed assist off for a slot.
func (d *Dispatcher) DisableFeedAssist(ctx context.Context, index int) error {
	d.assistMu.Lock()
	defer d.assistMu.Unlock()
	return d.disableFeedAssist(ctx, index)
}

func (d *Dispatcher) enableFeedAssist(ctx context.Context, index int) error {
	if err := ValidateSlot(index); err != nil {
		return d.reject(CmdEnableFeedAssist, err)
	}
	if err := d.run(ctx, CmdEnableFeedAssist, map[string]any{"INDEX": index}); err != nil {
		return err
	}
	d.store.SetFeedAssistSlot(index)
	d.notifier.Notify(notify.LevelSuccess, fmt.Sprintf("Feed assist enabled for slot %d", index))
	return nil
}

func (d *Dispatcher) disableFeedAssist(ctx context.Context, index int) error {
	if err := ValidateSlot(index); err != nil {
		return d.reject(CmdDisableFeedAssist, err)
	}
	if err := d.run(ctx, CmdDisableFeedAssist, map[string]any{"INDEX": index}); err != nil {
		return err
	}
	d.store.SetFeedAssistSlot(state.NoSlot)
	d.notifier.Notify(notify.LevelSuccess, fmt.Sprintf("Feed assist disabled for slot %d", index))
	return nil
}

// ToggleFeedAssist turns feed assist off if index is the active slot.
// Otherwise it turns off the active slot, if any, and turns on index.
// Concurrent toggles run one after the other, each seeing the slot the
// previous one left active.
func (d *Dispatcher) ToggleFeedAssist(ctx context.Context, index int) error {
	if err := ValidateSlot(index); err != nil {
		return d.reject(CmdEnableFeedAssist, err)
	}

	d.assistMu.Lock()
	defer d.assistMu.Unlock()

	active := d.store.Snapshot().FeedAssistSlot
	if active == index {
		return d.disableFeedAssist(ctx, index)
	}
	if active != state.NoSlot {
		if err := d.disableFeedAssist(ctx, active); err != nil {
			logging.Warn("Could not disable previous feed assist slot", zap.Int("slot", active), zap.Error(err))
		}
	}
	return d.enableFeedAssist(ctx, index)
}

// StopAssist disables feed assist on every slot. It succeeds if any of
// the individual commands did.
func (d *Dispatcher) StopAssist(ctx context.Context) error {
	d.assistMu.Lock()
	defer d.assistMu.Unlock()

	anySuccess := false
	for index := 0; index < state.SlotCount; index++ {
		if d.Execute(ctx, CmdDisableFeedAssist, map[string]any{"INDEX": index}) {
			anySuccess = true
		}
	}

	if !anySuccess {
		d.notifier.Notify(notify.LevelError, "Failed to disable feed assist")
		return moonraker.NewAggregateError("Failed to disable feed assist")
	}
	d.store.SetFeedAssistSlot(state.NoSlot)
	d.notifier.Notify(notify.LevelSuccess, "Feed assist disabled for all slots")
	return nil
}

// StartDrying starts the dryer at temp °C for duration minutes.
func (d *Dispatcher) StartDrying(ctx context.Context, temp, duration int) error {
	if err := firstError(ValidateDryingTemp(temp), ValidateDryingDuration(duration)); err != nil {
		return d.reject(CmdStartDrying, err)
	}
	return d.run(ctx, CmdStartDrying, map[string]any{"TEMP": temp, "DURATION": duration})
}

// StopDrying stops the dryer.
func (d *Dispatcher) StopDrying(ctx context.Context) error {
	return d.run(ctx, CmdStopDrying, nil)
}

// Feed pushes length mm of filament from a slot at speed mm/s.
func (d *Dispatcher) Feed(ctx context.Context, index, length, speed int) error {
	if err := firstError(ValidateSlot(index), ValidateLength(length), ValidateSpeed(speed)); err != nil {
		return d.reject(CmdFeed, err)
	}
	return d.run(ctx, CmdFeed, map[string]any{"INDEX": index, "LENGTH": length, "SPEED": speed})
}

// Retract pulls length mm of filament back into a slot at speed mm/s.
func (d *Dispatcher) Retract(ctx context.Context, index, length, speed int) error {
	if err := firstError(ValidateSlot(index), ValidateLength(length), ValidateSpeed(speed)); err != nil {
		return d.reject(CmdRetract, err)
	}
	return d.run(ctx, CmdRetract, map[string]any{"INDEX": index, "LENGTH": length, "SPEED": speed})
}

// StopFeed aborts a running feed.
func (d *Dispatcher) StopFeed(ctx context.Context, index int) error {
	if err := ValidateSlot(index); err != nil {
		return d.reject(CmdStopFeed, err)
	}
	return d.run(ctx, CmdStopFeed, map[string]any{"INDEX": index})
}

// StopRetract aborts a running retract.
func (d *Dispatcher) StopRetract(ctx context.Context, index int) error {
	if err := ValidateSlot(index); err != nil {
		return d.reject(CmdStopRetract, err)
	}
	return d.run(ctx, CmdStopRetract, map[string]any{"INDEX": index})
}

// UpdateFeedSpeed changes the speed of a running feed.
func (d *Dispatcher) UpdateFeedSpeed(ctx context.Context, index, speed int) error {
	if err := firstError(ValidateSlot(index), ValidateSpeed(speed)); err != nil {
		return d.reject(CmdUpdateFeedSpeed, err)
	}
	return d.run(ctx, CmdUpdateFeedSpeed, map[string]any{"INDEX": index, "SPEED": speed})
}

// UpdateRetractSpeed changes the speed of a running retract.
func (d *Dispatcher) UpdateRetractSpeed(ctx context.Context, index, speed int) error {
	if err := firstError(ValidateSlot(index), ValidateSpeed(speed)); err != nil {
		return d.reject(CmdUpdateRetractSpeed, err)
	}
	return d.run(ctx, CmdUpdateRetractSpeed, map[string]any{"INDEX": index, "SPEED": speed})
}

// Refresh reloads the status now and confirms it to the operator.
func (d *Dispatcher) Refresh(ctx context.Context) error {
	if d.refresher == nil {
		return errors.New("no status source configured")
	}
	if err := d.refresher.Refresh(ctx); err != nil {
		return err
	}
	d.notifier.Notify(notify.LevelSuccess, "Status updated")
	return nil
}
