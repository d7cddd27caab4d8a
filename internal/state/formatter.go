package state

import (
	"fmt"
	"math"
	"strings"
)

// Hex returns the colour as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// String returns a readable name for the RFID state.
func (r RFIDState) String() string {
	switch r {
	case RFIDNotFound:
		return "Not found"
	case RFIDError:
		return "Error"
	case RFIDIdentified:
		return "Identified"
	case RFIDIdentifying:
		return "Identifying..."
	default:
		return "Unknown"
	}
}

// Label returns a display label for the device state.
func (s OperationalState) Label() string {
	switch s {
	case StateReady:
		return "Ready"
	case StateBusy:
		return "Busy"
	case StateUnknown, "":
		return "Unknown"
	case StateDisconnected:
		return "Disconnected"
	default:
		return string(s)
	}
}

// Label returns a display label for the dryer state.
func (s DryerState) Label() string {
	switch s {
	case DryerDrying:
		return "Drying"
	case DryerStopped:
		return "Stopped"
	default:
		return string(s)
	}
}

// Label returns a display label for the slot status.
func (s SlotStatus) Label() string {
	switch s {
	case SlotReady:
		return "Ready"
	case SlotEmpty:
		return "Empty"
	case SlotBusy:
		return "Busy"
	case SlotUnknown, "":
		return "Unknown"
	default:
		return string(s)
	}
}

// FormatDuration renders whole minutes as "45 min" or "2h 5m".
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "0 min"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%d min", mins)
}

// FormatRemaining renders fractional minutes as "119m 59s".
func FormatRemaining(minutes float64) string {
	if minutes <= 0 || math.IsNaN(minutes) {
		return "0m 0s"
	}

	whole := int(math.Floor(minutes))
	seconds := int(math.Round((minutes - float64(whole)) * 60))
	if seconds == 60 {
		whole++
		seconds = 0
	}

	if whole > 0 {
		if seconds > 0 {
			return fmt.Sprintf("%dm %ds", whole, seconds)
		}
		return fmt.Sprintf("%dm", whole)
	}
	return fmt.Sprintf("%ds", seconds)
}

// Summary returns a one-line summary of the unit.
func (m Model) Summary() string {
	model := m.Device.Model
	if model == "" {
		model = "ACE"
	}
	return fmt.Sprintf("%s [%s] (FW: %s) dryer %s, %d slots",
		model, m.Device.State.Label(), valueOrDash(m.Device.Firmware), m.Dryer.State.Label(), len(m.Slots))
}

// FormatDetailed returns a multi-section report of the whole model.
func (m Model) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("=== Device ===\n")
	b.WriteString(fmt.Sprintf("Status:        %s\n", m.Device.State.Label()))
	b.WriteString(fmt.Sprintf("Model:         %s\n", valueOrDash(m.Device.Model)))
	b.WriteString(fmt.Sprintf("Firmware:      %s\n", valueOrDash(m.Device.Firmware)))
	if m.Device.BootFirmware != "" {
		b.WriteString(fmt.Sprintf("Boot firmware: %s\n", m.Device.BootFirmware))
	}
	b.WriteString(fmt.Sprintf("Temperature:   %.1f°C\n", m.Device.TemperatureC))
	b.WriteString(fmt.Sprintf("Fan speed:     %.0f RPM\n", m.Device.FanSpeed))
	b.WriteString(fmt.Sprintf("RFID:          %s\n", onOff(m.Device.RFIDEnabled)))
	b.WriteString("\n")

	b.WriteString("=== Dryer ===\n")
	b.WriteString(fmt.Sprintf("Status:        %s\n", m.Dryer.State.Label()))
	b.WriteString(fmt.Sprintf("Target temp:   %.0f°C\n", m.Dryer.TargetTempC))
	b.WriteString(fmt.Sprintf("Duration:      %s\n", FormatDuration(m.Dryer.DurationMinutes)))
	if m.Dryer.State == DryerDrying {
		b.WriteString(fmt.Sprintf("Remaining:     %s\n", FormatRemaining(m.Dryer.RemainingMinutes)))
	}
	b.WriteString("\n")

	b.WriteString("=== Slots ===\n")
	if len(m.Slots) == 0 {
		b.WriteString("(no slot data)\n")
	}
	for _, s := range m.Slots {
		b.WriteString(m.formatSlot(s))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Current tool:  %s\n", slotOrNone(m.CurrentTool)))
	b.WriteString(fmt.Sprintf("Feed assist:   %s\n", slotOrNone(m.FeedAssistSlot)))

	return b.String()
}

// FormatCompact returns a short multi-line view for one-shot commands.
func (m Model) FormatCompact() string {
	var b strings.Builder

	b.WriteString(m.Summary())
	b.WriteString("\n")
	if m.Dryer.State == DryerDrying {
		b.WriteString(fmt.Sprintf("Drying at %.0f°C, %s left\n", m.Dryer.TargetTempC, FormatRemaining(m.Dryer.RemainingMinutes)))
	}
	for _, s := range m.Slots {
		b.WriteString(m.formatSlot(s))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) formatSlot(s Slot) string {
	material := s.MaterialType
	if material == "" {
		material = "-"
	}
	line := fmt.Sprintf("Slot %d: %-7s %-6s %s RFID: %s", s.Index, s.Status.Label(), material, s.Color.Hex(), s.RFID)
	if s.SKU != "" {
		line += " SKU: " + s.SKU
	}
	if s.Index == m.FeedAssistSlot && s.Index != NoSlot {
		line += " [assist]"
	}
	if s.Index == m.CurrentTool && s.Index != NoSlot {
		line += " [loaded]"
	}
	return line
}

func slotOrNone(index int) string {
	if index == NoSlot {
		return "none"
	}
	return fmt.Sprintf("slot %d", index)
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
