package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/valgace/acectl/internal/notify"
)

// Color palette
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - connected, success
	ErrorColor   = lipgloss.Color("#FF5555") // Red - disconnected, errors
	WarningColor = lipgloss.Color("#FFA500") // Orange - connecting, busy
	MutedColor   = lipgloss.Color("#626262") // Gray - labels, help
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true).
			PaddingLeft(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(14)

	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	CardTitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	ConnectedStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ConnectingStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	DisconnectedStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Bold(true)

	MarkerStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)
)

// Status markers
const (
	IndicatorMarker = "●"
	SwatchBlock     = "██"
	SuccessMarker   = "✓"
	FailureMarker   = "✗"
	InfoMarker      = "·"
)

// GetTerminalWidth returns the current terminal width, clamped to the
// supported range.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth
	}
	return clampWidth(width)
}

func clampWidth(width int) int {
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// CardStyle returns the bordered box used for each dashboard section.
func CardStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width-2).
		Padding(0, 1)
}

// NotificationStyle picks the colour for a notification level.
func NotificationStyle(level notify.Level) lipgloss.Style {
	switch level {
	case notify.LevelSuccess:
		return lipgloss.NewStyle().Foreground(SuccessColor)
	case notify.LevelError:
		return lipgloss.NewStyle().Foreground(ErrorColor)
	default:
		return lipgloss.NewStyle().Foreground(TextColor)
	}
}

// NotificationMarker picks the leading symbol for a notification level.
func NotificationMarker(level notify.Level) string {
	switch level {
	case notify.LevelSuccess:
		return SuccessMarker
	case notify.LevelError:
		return FailureMarker
	default:
		return InfoMarker
	}
}

// RenderHorizontalDivider creates a horizontal line of the given width.
func RenderHorizontalDivider(width int, char string) string {
	if width < 0 {
		width = 0
	}
	return lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Render(strings.Repeat(char, width))
}
