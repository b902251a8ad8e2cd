package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette shared by the command output and the interactive shell
var (
	PrimaryColor = lipgloss.Color("#2AA198") // Teal: borders, offsets
	AccentColor  = lipgloss.Color("#B58900") // Amber: highlights
	SuccessColor = lipgloss.Color("#43BF6D")
	ErrorColor   = lipgloss.Color("#FF5555")
	WarningColor = lipgloss.Color("#FFA500")
	MutedColor   = lipgloss.Color("#6C6C6C")
	TextColor    = lipgloss.Color("#EEEEEE")
)

const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100
	defaultHeight    = 24
)

// Markers used in step lines and result banners
const (
	StepMarkerComplete = "✓"
	StepMarkerRunning  = "●"
	StepMarkerPending  = "·"
	StepMarkerSkipped  = "⊘"
	SuccessMarker      = "✓"
	FailureMarker      = "✗"
	WarningMarker      = "⚠"
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	// Header
	HeaderTitleStyle      = fg(TextColor).Bold(true).PaddingLeft(2)
	HeaderCommandStyle    = fg(MutedColor).PaddingLeft(2)
	HeaderParamKeyStyle   = fg(MutedColor).PaddingLeft(2)
	HeaderParamValueStyle = fg(TextColor)

	// SectionTitleStyle labels a group of lines, e.g. "Users" in 'gifveil users'
	SectionTitleStyle = fg(AccentColor).Bold(true).PaddingLeft(2)

	// Step list
	StepCompleteStyle = fg(SuccessColor)
	StepRunningStyle  = fg(WarningColor)
	StepPendingStyle  = fg(MutedColor)
	StepNoteStyle     = fg(MutedColor).Italic(true)

	// Result boxes
	SuccessTitleStyle = fg(SuccessColor).Bold(true)
	ErrorTitleStyle   = fg(ErrorColor).Bold(true)
	WarningTitleStyle = fg(WarningColor).Bold(true)
	ErrorMessageStyle = fg(ErrorColor)
	ResultKeyStyle    = fg(MutedColor).Width(18)
	ResultValueStyle  = fg(TextColor)

	TroubleshootingTitleStyle = fg(MutedColor).Bold(true)
	TroubleshootingItemStyle  = fg(MutedColor)

	// Stream dumps
	StreamDumpTitleStyle   = fg(MutedColor).Bold(true)
	StreamDumpOffsetStyle  = fg(PrimaryColor)
	StreamDumpContentStyle = fg(TextColor)
)

// GetTerminalSize returns the stdout terminal size, width clamped to
// [MinTerminalWidth, MaxContentWidth]. Non-terminals get the minimum width
// and 24 rows.
func GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, defaultHeight
	}
	return min(max(width, MinTerminalWidth), MaxContentWidth), height
}

// GetTerminalWidth returns the clamped stdout terminal width
func GetTerminalWidth() int {
	w, _ := GetTerminalSize()
	return w
}

// HeaderBorderStyle returns the rounded border drawn around command headers
func HeaderBorderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2)
}

// RenderHorizontalDivider repeats char across width columns
func RenderHorizontalDivider(width int, char string) string {
	return fg(PrimaryColor).Render(strings.Repeat(char, width))
}
