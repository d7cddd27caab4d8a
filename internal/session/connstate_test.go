package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from    ConnState
		event   Event
		want    ConnState
		invalid bool
	}{
		{Disconnected, EventDial, Connecting, false},
		{Connecting, EventOpen, Connected, false},
		{Connecting, EventError, Disconnected, false},
		{Connected, EventError, Disconnected, false},
		{Connecting, EventClose, Disconnected, false},
		{Connected, EventClose, Disconnected, false},
		{Disconnected, EventError, Disconnected, false},
		{Disconnected, EventClose, Disconnected, false},
		{Connecting, EventDial, Connecting, true},
		{Connected, EventDial, Connected, true},
		{Disconnected, EventOpen, Disconnected, true},
		{Connected, EventOpen, Connected, true},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"+"+tt.event.String(), func(t *testing.T) {
			got, err := Next(tt.from, tt.event)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.invalid, errors.Is(err, ErrInvalidTransition))
		})
	}
}

func TestConnStateString(t *testing.T) {
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "ConnState(9)", ConnState(9).String())
	assert.Equal(t, "Event(9)", Event(9).String())
}
