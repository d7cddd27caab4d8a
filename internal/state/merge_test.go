package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(t *testing.T, js string) *StatusPayload {
	t.Helper()
	p, err := ParsePayload([]byte(js))
	require.NoError(t, err)
	return p
}

func populated(t *testing.T) Model {
	t.Helper()
	return Merge(NewModel(), payload(t, `{
		"status": "ready",
		"model": "ACE Pro",
		"firmware": "V1.3.84",
		"temp": 31.5,
		"fan_speed": 7000,
		"enable_rfid": 1,
		"feed_assist_count": 0,
		"dryer": {"status": "drying", "target_temp": 50, "duration": 240, "remain_time": 120.5},
		"slots": [
			{"index": 0, "status": "ready", "type": "PLA", "color": [255, 0, 0], "sku": "AHPLBK-101", "rfid": 2},
			{"index": 1, "status": "empty", "type": "", "color": [0, 0, 0], "sku": "", "rfid": 0}
		]
	}`))
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel()
	assert.Equal(t, StateUnknown, m.Device.State)
	assert.Equal(t, DryerStopped, m.Dryer.State)
	assert.Empty(t, m.Slots)
	assert.Equal(t, NoSlot, m.FeedAssistSlot)
	assert.Equal(t, NoSlot, m.CurrentTool)
}

func TestMergeEmptyPayloadIsIdentity(t *testing.T) {
	m := populated(t)
	m.CurrentTool = 1
	m.FeedAssistSlot = 1

	assert.Equal(t, m, Merge(m, payload(t, `{}`)))
	assert.Equal(t, m, Merge(m, nil))
}

func TestMergeDeviceFields(t *testing.T) {
	m := populated(t)

	assert.Equal(t, StateReady, m.Device.State)
	assert.Equal(t, "ACE Pro", m.Device.Model)
	assert.Equal(t, "V1.3.84", m.Device.Firmware)
	assert.InDelta(t, 31.5, m.Device.TemperatureC, 0.001)
	assert.InDelta(t, 7000, m.Device.FanSpeed, 0.001)
	assert.True(t, m.Device.RFIDEnabled)

	next := Merge(m, payload(t, `{"status": "busy", "enable_rfid": false}`))
	assert.Equal(t, StateBusy, next.Device.State)
	assert.False(t, next.Device.RFIDEnabled)
	assert.Equal(t, "ACE Pro", next.Device.Model, "absent fields are retained")
}

func TestMergeUnknownStateKeptVerbatim(t *testing.T) {
	m := Merge(NewModel(), payload(t, `{"status": "heating"}`))
	assert.Equal(t, OperationalState("heating"), m.Device.State)
	assert.Equal(t, "heating", m.Device.State.Label())
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	m := populated(t)
	before := m.Clone()

	_ = Merge(m, payload(t, `{"slots": [], "status": "busy"}`))
	assert.Equal(t, before, m)
}

func TestMergeSlots(t *testing.T) {
	m := populated(t)
	require.Len(t, m.Slots, 2)
	assert.Equal(t, Slot{Index: 0, Status: SlotReady, MaterialType: "PLA", Color: RGB{255, 0, 0}, SKU: "AHPLBK-101", RFID: RFIDIdentified}, m.Slots[0])

	t.Run("absent slots are preserved", func(t *testing.T) {
		next := Merge(m, payload(t, `{"status": "ready"}`))
		assert.Equal(t, m.Slots, next.Slots)
	})

	t.Run("empty array clears", func(t *testing.T) {
		next := Merge(m, payload(t, `{"slots": []}`))
		assert.Empty(t, next.Slots)
		assert.NotNil(t, next.Slots)
	})

	t.Run("non-array is ignored", func(t *testing.T) {
		assert.Equal(t, m.Slots, Merge(m, payload(t, `{"slots": {"0": {}}}`)).Slots)
		assert.Equal(t, m.Slots, Merge(m, payload(t, `{"slots": null}`)).Slots)
		assert.Equal(t, m.Slots, Merge(m, payload(t, `{"slots": "none"}`)).Slots)
	})

	t.Run("missing fields take defaults", func(t *testing.T) {
		next := Merge(m, payload(t, `{"slots": [{}, {"index": 2, "status": "", "color": "red"}, 7]}`))
		require.Len(t, next.Slots, 3)
		assert.Equal(t, defaultSlot(), next.Slots[0])
		assert.Equal(t, Slot{Index: 2, Status: SlotUnknown}, next.Slots[1])
		assert.Equal(t, defaultSlot(), next.Slots[2])
	})

	t.Run("colour channels are clamped", func(t *testing.T) {
		next := Merge(m, payload(t, `{"slots": [{"index": 0, "color": [300, -4, 16]}]}`))
		assert.Equal(t, RGB{255, 0, 16}, next.Slots[0].Color)
		assert.Equal(t, "#ff0010", next.Slots[0].Color.Hex())
	})
}

func TestMergeDryerAlias(t *testing.T) {
	m := Merge(NewModel(), payload(t, `{"dryer_status": {"status": "drying", "target_temp": 45, "duration": 60.9}}`))
	assert.Equal(t, DryerDrying, m.Dryer.State)
	assert.InDelta(t, 45, m.Dryer.TargetTempC, 0.001)
	assert.Equal(t, 60, m.Dryer.DurationMinutes, "duration is floored")

	// dryer wins over dryer_status when both are objects
	m = Merge(m, payload(t, `{"dryer": {"status": "stop"}, "dryer_status": {"status": "drying"}}`))
	assert.Equal(t, DryerStopped, m.Dryer.State)

	// a null dryer falls through to dryer_status
	m = Merge(m, payload(t, `{"dryer": null, "dryer_status": {"target_temp": 30}}`))
	assert.InDelta(t, 30, m.Dryer.TargetTempC, 0.001)
}

func TestMergeToleratesMistypedFields(t *testing.T) {
	m := populated(t)

	t.Run("top-level field", func(t *testing.T) {
		p := payload(t, `{"status": "busy", "temp": "25.5", "slots": [{"index": 3, "status": "ready", "type": "PETG"}]}`)
		assert.Nil(t, p.Temp)

		next := Merge(m, p)
		assert.Equal(t, StateBusy, next.Device.State)
		assert.InDelta(t, m.Device.TemperatureC, next.Device.TemperatureC, 0.001, "mistyped temp keeps the current value")
		require.Len(t, next.Slots, 1)
		assert.Equal(t, 3, next.Slots[0].Index)
		assert.Equal(t, "PETG", next.Slots[0].MaterialType)
	})

	t.Run("slot field", func(t *testing.T) {
		next := Merge(m, payload(t, `{"slots": [{"index": 0, "status": "ready", "type": "PLA", "rfid": "2"}]}`))
		require.Len(t, next.Slots, 1)
		assert.Equal(t, Slot{Index: 0, Status: SlotReady, MaterialType: "PLA", RFID: defaultSlot().RFID}, next.Slots[0])
	})

	t.Run("dryer field", func(t *testing.T) {
		next := Merge(m, payload(t, `{"dryer": {"status": "stop", "remain_time": "soon"}}`))
		assert.Equal(t, DryerStopped, next.Dryer.State)
		assert.InDelta(t, m.Dryer.RemainingMinutes, next.Dryer.RemainingMinutes, 0.001)
	})
}

func TestRemainTimeNormalization(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		raw      float64
		want     float64
	}{
		{"seconds above one day", 240, 1500, 25},
		{"minutes within duration", 240, 100, 100},
		{"no duration keeps raw", 0, 50, 50},
		{"well above duration", 30, 1200, 20},
		{"above factor but under a minute", 30, 50, 50},
		{"negative clamps", 240, -5, 0},
		{"huge value without duration", 0, 14400, 240},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NormalizeRemaining(tt.raw, tt.duration), 0.0001)
		})
	}
}

func TestRemainTimeUsesPayloadDuration(t *testing.T) {
	m := Merge(NewModel(), payload(t, `{"dryer": {"duration": 240, "remain_time": 1500}}`))
	assert.InDelta(t, 25, m.Dryer.RemainingMinutes, 0.0001)

	m = Merge(m, payload(t, `{"dryer": {"remain_time": 100}}`))
	assert.InDelta(t, 100, m.Dryer.RemainingMinutes, 0.0001)

	m = Merge(NewModel(), payload(t, `{"dryer": {"remain_time": 50}}`))
	assert.InDelta(t, 50, m.Dryer.RemainingMinutes, 0.0001)
}

func TestMergeFeedAssist(t *testing.T) {
	tests := []struct {
		name        string
		currentTool int
		assistSlot  int
		js          string
		want        int
	}{
		{"explicit slot", NoSlot, NoSlot, `{"feed_assist_slot": 2}`, 2},
		{"explicit none", NoSlot, 1, `{"feed_assist_slot": -1}`, NoSlot},
		{"explicit null", NoSlot, 1, `{"feed_assist_slot": null}`, NoSlot},
		{"slot wins over count", 0, NoSlot, `{"feed_assist_slot": 3, "feed_assist_count": 0}`, 3},
		{"count infers current tool", 1, NoSlot, `{"feed_assist_count": 2}`, 1},
		{"count keeps known slot", 1, 3, `{"feed_assist_count": 2}`, 3},
		{"count without tool stays none", NoSlot, NoSlot, `{"feed_assist_count": 2}`, NoSlot},
		{"zero count clears", 1, 2, `{"feed_assist_count": 0}`, NoSlot},
		{"neither leaves unchanged", 1, 2, `{"status": "ready"}`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel()
			m.CurrentTool = tt.currentTool
			m.FeedAssistSlot = tt.assistSlot
			assert.Equal(t, tt.want, Merge(m, payload(t, tt.js)).FeedAssistSlot)
		})
	}
}

func TestMergeAssistCounters(t *testing.T) {
	m := Merge(NewModel(), payload(t, `{"feed_assist_count": 3, "cont_assist_time": 12.5}`))
	assert.Equal(t, 3, m.FeedAssistCount)
	assert.InDelta(t, 12.5, m.ContAssistTime, 0.001)
}

func TestParsePayload(t *testing.T) {
	_, err := ParsePayload([]byte(`[1,2]`))
	assert.Error(t, err)

	_, err = ParsePayload([]byte(`{"status": `))
	assert.Error(t, err)

	p, err := ParsePayload([]byte(`{"model": "ACE"}`))
	require.NoError(t, err)
	assert.False(t, p.HasStatusFields())

	p, err = ParsePayload([]byte(`{"slots": []}`))
	require.NoError(t, err)
	assert.True(t, p.HasStatusFields())
}
