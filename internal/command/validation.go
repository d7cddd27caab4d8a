package command

import (
	"fmt"

	"github.com/valgace/acectl/internal/moonraker"
	"github.com/valgace/acectl/internal/state"
)

// Parameter bounds accepted by the ACE firmware commands.
const (
	MinDryingTemp     = 20
	MaxDryingTemp     = 55
	MinDryingDuration = 1
	MinLength         = 1
	MinSpeed          = 1
)

// ValidateSlot checks a slot index (0-3).
func ValidateSlot(index int) error {
	if !state.ValidSlot(index) {
		return moonraker.NewValidationError(fmt.Sprintf("Slot index must be between 0 and %d, got %d", state.SlotCount-1, index))
	}
	return nil
}

// ValidateTool checks a tool number. -1 unloads.
func ValidateTool(tool int) error {
	if tool != state.NoSlot && !state.ValidSlot(tool) {
		return moonraker.NewValidationError(fmt.Sprintf("Tool must be between -1 and %d, got %d", state.SlotCount-1, tool))
	}
	return nil
}

// ValidateDryingTemp checks the dryer target temperature in °C.
func ValidateDryingTemp(temp int) error {
	if temp < MinDryingTemp || temp > MaxDryingTemp {
		return moonraker.NewValidationError(fmt.Sprintf("Temperature must be between %d and %d°C", MinDryingTemp, MaxDryingTemp))
	}
	return nil
}

// ValidateDryingDuration checks the drying time in minutes.
func ValidateDryingDuration(minutes int) error {
	if minutes < MinDryingDuration {
		return moonraker.NewValidationError("Duration must be at least 1 minute")
	}
	return nil
}

// ValidateLength checks a feed or retract length in mm.
func ValidateLength(length int) error {
	if length < MinLength {
		return moonraker.NewValidationError("Length must be at least 1 mm")
	}
	return nil
}

// ValidateSpeed checks a feed or retract speed in mm/s.
func ValidateSpeed(speed int) error {
	if speed < MinSpeed {
		return moonraker.NewValidationError("Speed must be at least 1 mm/s")
	}
	return nil
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
