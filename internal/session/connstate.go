package session

import (
	"errors"
	"fmt"
)

// ConnState is the WebSocket connection state.
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Connected
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("ConnState(%d)", int(s))
	}
}

// Event drives ConnState transitions.
type Event int

const (
	EventDial Event = iota
	EventOpen
	EventError
	EventClose
)

func (e Event) String() string {
	switch e {
	case EventDial:
		return "dial"
	case EventOpen:
		return "open"
	case EventError:
		return "error"
	case EventClose:
		return "close"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// ErrInvalidTransition is returned by Next for an event that is not
// accepted in the current state.
var ErrInvalidTransition = errors.New("invalid connection state transition")

// Next returns the state after e. On ErrInvalidTransition the returned
// state is s.
func Next(s ConnState, e Event) (ConnState, error) {
	switch e {
	case EventDial:
		if s == Disconnected {
			return Connecting, nil
		}
	case EventOpen:
		if s == Connecting {
			return Connected, nil
		}
	case EventError, EventClose:
		return Disconnected, nil
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
}
