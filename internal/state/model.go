package state

// OperationalState is the device-level state reported by the unit.
// Unrecognised values from the wire are kept verbatim.
type OperationalState string

const (
	StateReady        OperationalState = "ready"
	StateBusy         OperationalState = "busy"
	StateUnknown      OperationalState = "unknown"
	StateDisconnected OperationalState = "disconnected"
)

// DryerState is the dryer's run state.
type DryerState string

const (
	DryerDrying  DryerState = "drying"
	DryerStopped DryerState = "stop"
)

// SlotStatus is the state of one filament slot.
type SlotStatus string

const (
	SlotReady   SlotStatus = "ready"
	SlotEmpty   SlotStatus = "empty"
	SlotBusy    SlotStatus = "busy"
	SlotUnknown SlotStatus = "unknown"
)

// RFIDState is the tag read state of a slot.
type RFIDState int

const (
	RFIDNotFound    RFIDState = 0
	RFIDError       RFIDState = 1
	RFIDIdentified  RFIDState = 2
	RFIDIdentifying RFIDState = 3
)

// NoSlot marks "no slot" for FeedAssistSlot and CurrentTool.
const NoSlot = -1

// SlotCount is the number of filament slots on one unit.
const SlotCount = 4

// RGB is a slot colour.
type RGB [3]uint8

// DeviceStatus describes the unit itself.
type DeviceStatus struct {
	State        OperationalState `json:"status"`
	Model        string           `json:"model"`
	Firmware     string           `json:"firmware"`
	BootFirmware string           `json:"boot_firmware"`
	TemperatureC float64          `json:"temp"`
	FanSpeed     float64          `json:"fan_speed"`
	RFIDEnabled  bool             `json:"enable_rfid"`
}

// DryerStatus describes the built-in dryer.
type DryerStatus struct {
	State           DryerState `json:"status"`
	TargetTempC     float64    `json:"target_temp"`
	DurationMinutes int        `json:"duration"`
	// RemainingMinutes is always minutes; the fraction carries seconds.
	RemainingMinutes float64 `json:"remain_time"`
}

// Slot is one filament slot.
type Slot struct {
	Index        int        `json:"index"`
	Status       SlotStatus `json:"status"`
	MaterialType string     `json:"type"`
	Color        RGB        `json:"color"`
	SKU          string     `json:"sku"`
	RFID         RFIDState  `json:"rfid"`
}

// Model is the complete client-side view of one ACE unit.
type Model struct {
	Device DeviceStatus `json:"device"`
	Dryer  DryerStatus  `json:"dryer"`
	Slots  []Slot       `json:"slots"`

	// FeedAssistSlot is the slot with feed assist on, or NoSlot.
	FeedAssistSlot  int     `json:"feed_assist_slot"`
	FeedAssistCount int     `json:"feed_assist_count"`
	ContAssistTime  float64 `json:"cont_assist_time"`

	// CurrentTool is set locally after a successful tool change. The
	// device does not report it.
	CurrentTool int `json:"current_tool"`
}

// NewModel returns the model shown before any status has arrived.
func NewModel() Model {
	return Model{
		Device: DeviceStatus{
			State: StateUnknown,
		},
		Dryer: DryerStatus{
			State: DryerStopped,
		},
		Slots:          []Slot{},
		FeedAssistSlot: NoSlot,
		CurrentTool:    NoSlot,
	}
}

// Clone returns a deep copy of m.
func (m Model) Clone() Model {
	out := m
	if m.Slots != nil {
		out.Slots = make([]Slot, len(m.Slots))
		copy(out.Slots, m.Slots)
	}
	return out
}

// defaultSlot is used for every missing slot field.
func defaultSlot() Slot {
	return Slot{
		Index:  NoSlot,
		Status: SlotUnknown,
	}
}

// ValidSlot reports whether index addresses a physical slot.
func ValidSlot(index int) bool {
	return index >= 0 && index < SlotCount
}
