package state

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/valgace/acectl/internal/logging"
)

// StatusPayload is a partial status snapshot as sent by the ACE endpoints.
// Every field is optional. Fields whose wire type varies between firmware
// versions are kept raw and interpreted by Merge.
type StatusPayload struct {
	Status       *string  `json:"status,omitempty"`
	Model        *string  `json:"model,omitempty"`
	Firmware     *string  `json:"firmware,omitempty"`
	BootFirmware *string  `json:"boot_firmware,omitempty"`
	Temp         *float64 `json:"temp,omitempty"`
	FanSpeed     *float64 `json:"fan_speed,omitempty"`

	// EnableRFID is a bool or a 0/1 number.
	EnableRFID json.RawMessage `json:"enable_rfid,omitempty"`

	FeedAssistCount *float64        `json:"feed_assist_count,omitempty"`
	FeedAssistSlot  json.RawMessage `json:"feed_assist_slot,omitempty"`
	ContAssistTime  *float64        `json:"cont_assist_time,omitempty"`

	// Dryer and DryerStatus are alternative names for the dryer object.
	Dryer       json.RawMessage `json:"dryer,omitempty"`
	DryerStatus json.RawMessage `json:"dryer_status,omitempty"`

	// Slots is kept raw so a present-but-invalid value can be told apart
	// from an absent one.
	Slots json.RawMessage `json:"slots,omitempty"`
}

// dryerPayload is the dryer sub-object.
type dryerPayload struct {
	Status     *string  `json:"status"`
	TargetTemp *float64 `json:"target_temp"`
	Duration   *float64 `json:"duration"`
	RemainTime *float64 `json:"remain_time"`
}

// slotPayload is one element of the slots array.
type slotPayload struct {
	Index  *float64        `json:"index"`
	Status *string         `json:"status"`
	Type   *string         `json:"type"`
	Color  json.RawMessage `json:"color"`
	SKU    *string         `json:"sku"`
	RFID   *float64        `json:"rfid"`
}

// ParsePayload decodes a status object. Each member is decoded on its own;
// a member with an unexpected type is logged and left unset so the rest of
// the payload still applies.
func ParsePayload(data []byte) (*StatusPayload, error) {
	if !isObject(data) {
		return nil, fmt.Errorf("status payload is not a JSON object")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode status payload: %w", err)
	}

	var p StatusPayload
	for name, raw := range fields {
		var err error
		switch name {
		case "status":
			err = decodeField(raw, &p.Status)
		case "model":
			err = decodeField(raw, &p.Model)
		case "firmware":
			err = decodeField(raw, &p.Firmware)
		case "boot_firmware":
			err = decodeField(raw, &p.BootFirmware)
		case "temp":
			err = decodeField(raw, &p.Temp)
		case "fan_speed":
			err = decodeField(raw, &p.FanSpeed)
		case "feed_assist_count":
			err = decodeField(raw, &p.FeedAssistCount)
		case "cont_assist_time":
			err = decodeField(raw, &p.ContAssistTime)
		case "enable_rfid":
			p.EnableRFID = raw
		case "feed_assist_slot":
			p.FeedAssistSlot = raw
		case "dryer":
			p.Dryer = raw
		case "dryer_status":
			p.DryerStatus = raw
		case "slots":
			p.Slots = raw
		}
		if err != nil {
			warnField("status", name, raw, err)
		}
	}
	return &p, nil
}

// decodeField decodes raw into *dst, leaving *dst untouched on error.
func decodeField[T any](raw json.RawMessage, dst **T) error {
	var v *T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}

func warnField(object, name string, raw json.RawMessage, err error) {
	logging.Warn("Ignoring malformed field",
		zap.String("object", object),
		zap.String("field", name),
		zap.ByteString("value", raw),
		zap.Error(err),
	)
}

// HasStatusFields reports whether p carries any of status, slots or dryer.
// Payloads without them are not considered status responses.
func (p *StatusPayload) HasStatusFields() bool {
	return p != nil && (p.Status != nil || p.Slots != nil || p.Dryer != nil)
}

// dryer returns the first of dryer and dryer_status that is an object.
func (p *StatusPayload) dryer() (*dryerPayload, bool) {
	for _, raw := range []json.RawMessage{p.Dryer, p.DryerStatus} {
		if !isObject(raw) {
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		var d dryerPayload
		for name, value := range fields {
			var err error
			switch name {
			case "status":
				err = decodeField(value, &d.Status)
			case "target_temp":
				err = decodeField(value, &d.TargetTemp)
			case "duration":
				err = decodeField(value, &d.Duration)
			case "remain_time":
				err = decodeField(value, &d.RemainTime)
			}
			if err != nil {
				warnField("dryer", name, value, err)
			}
		}
		return &d, true
	}
	return nil, false
}

func isObject(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func isArray(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// parseBoolish accepts true/false or a number, non-zero meaning true.
func parseBoolish(raw json.RawMessage) (bool, bool) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n != 0, true
	}
	return false, false
}

// parseColor maps a colour array to RGB, clamping each channel.
// Anything that is not an array yields black.
func parseColor(raw json.RawMessage) RGB {
	var rgb RGB
	if !isArray(raw) {
		return rgb
	}
	var values []float64
	if err := json.Unmarshal(raw, &values); err != nil {
		return rgb
	}
	for i := 0; i < len(rgb) && i < len(values); i++ {
		rgb[i] = clampChannel(values[i])
	}
	return rgb
}

func clampChannel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// parseSlot maps one slots element, falling back to defaults per field.
func parseSlot(raw json.RawMessage) Slot {
	slot := defaultSlot()
	if !isObject(raw) {
		return slot
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return slot
	}

	var p slotPayload
	for name, value := range fields {
		var err error
		switch name {
		case "index":
			err = decodeField(value, &p.Index)
		case "status":
			err = decodeField(value, &p.Status)
		case "type":
			err = decodeField(value, &p.Type)
		case "color":
			p.Color = value
		case "sku":
			err = decodeField(value, &p.SKU)
		case "rfid":
			err = decodeField(value, &p.RFID)
		}
		if err != nil {
			warnField("slot", name, value, err)
		}
	}

	if p.Index != nil {
		slot.Index = int(*p.Index)
	}
	if p.Status != nil && *p.Status != "" {
		slot.Status = SlotStatus(*p.Status)
	}
	if p.Type != nil {
		slot.MaterialType = *p.Type
	}
	slot.Color = parseColor(p.Color)
	if p.SKU != nil {
		slot.SKU = *p.SKU
	}
	if p.RFID != nil {
		slot.RFID = RFIDState(int(*p.RFID))
	}
	return slot
}
