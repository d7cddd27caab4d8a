package state

import (
	"encoding/json"
	"math"

	"go.uber.org/zap"

	"github.com/valgace/acectl/internal/logging"
)

// Thresholds for detecting a remain_time reported in seconds.
const (
	maxRemainMinutes     = 1440 // one day
	remainDurationFactor = 1.5
	remainMinimumSeconds = 60
)

// Merge applies incoming to current and returns the result. Fields absent
// from incoming keep their current values. current is not modified.
func Merge(current Model, incoming *StatusPayload) Model {
	next := current.Clone()
	if incoming == nil {
		return next
	}

	mergeDevice(&next.Device, incoming)

	if dryer, ok := incoming.dryer(); ok {
		mergeDryer(&next.Dryer, dryer)
	}

	if incoming.Slots != nil {
		if isArray(incoming.Slots) {
			next.Slots = parseSlots(incoming.Slots)
		} else {
			logging.Warn("Slots data is not an array, keeping current slots",
				zap.ByteString("slots", incoming.Slots),
			)
		}
	}

	if incoming.ContAssistTime != nil {
		next.ContAssistTime = *incoming.ContAssistTime
	}
	if incoming.FeedAssistCount != nil {
		next.FeedAssistCount = int(*incoming.FeedAssistCount)
	}
	next.FeedAssistSlot = mergeFeedAssist(next, incoming)

	return next
}

func mergeDevice(d *DeviceStatus, p *StatusPayload) {
	if p.Status != nil {
		d.State = OperationalState(*p.Status)
	}
	if p.Model != nil {
		d.Model = *p.Model
	}
	if p.Firmware != nil {
		d.Firmware = *p.Firmware
	}
	if p.BootFirmware != nil {
		d.BootFirmware = *p.BootFirmware
	}
	if p.Temp != nil {
		d.TemperatureC = *p.Temp
	}
	if p.FanSpeed != nil {
		d.FanSpeed = *p.FanSpeed
	}
	if p.EnableRFID != nil {
		if enabled, ok := parseBoolish(p.EnableRFID); ok {
			d.RFIDEnabled = enabled
		}
	}
}

// mergeDryer applies duration before remain_time so the unit heuristic
// sees the payload's own duration.
func mergeDryer(d *DryerStatus, p *dryerPayload) {
	if p.Duration != nil {
		d.DurationMinutes = int(math.Max(0, math.Floor(*p.Duration)))
	}
	if p.RemainTime != nil {
		d.RemainingMinutes = NormalizeRemaining(*p.RemainTime, d.DurationMinutes)
	}
	if p.Status != nil {
		d.State = DryerState(*p.Status)
	}
	if p.TargetTemp != nil {
		d.TargetTempC = *p.TargetTemp
	}
}

// NormalizeRemaining converts a remain_time value to minutes. Values above
// one day, or well above the programmed duration, are taken as seconds.
func NormalizeRemaining(raw float64, durationMinutes int) float64 {
	remaining := raw
	switch {
	case raw > maxRemainMinutes:
		remaining = raw / 60
	case durationMinutes > 0 && raw > float64(durationMinutes)*remainDurationFactor && raw > remainMinimumSeconds:
		remaining = raw / 60
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

func parseSlots(raw json.RawMessage) []Slot {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		logging.Warn("Failed to decode slots array", zap.Error(err))
		return []Slot{}
	}
	slots := make([]Slot, 0, len(elems))
	for _, elem := range elems {
		slots = append(slots, parseSlot(elem))
	}
	return slots
}

// mergeFeedAssist resolves the active feed assist slot. An explicit
// feed_assist_slot wins. A positive feed_assist_count without a slot is
// attributed to the current tool when nothing is known, which is a guess:
// the device does not say which slot it is.
func mergeFeedAssist(m Model, p *StatusPayload) int {
	if p.FeedAssistSlot != nil {
		if isNull(p.FeedAssistSlot) {
			return NoSlot
		}
		var slot float64
		if err := json.Unmarshal(p.FeedAssistSlot, &slot); err != nil {
			logging.Warn("Ignoring non-numeric feed_assist_slot",
				zap.ByteString("feed_assist_slot", p.FeedAssistSlot),
			)
			return m.FeedAssistSlot
		}
		return int(slot)
	}

	if p.FeedAssistCount == nil {
		return m.FeedAssistSlot
	}
	if *p.FeedAssistCount > 0 {
		if m.FeedAssistSlot == NoSlot && ValidSlot(m.CurrentTool) {
			return m.CurrentTool
		}
		return m.FeedAssistSlot
	}
	return NoSlot
}
