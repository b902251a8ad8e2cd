package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ResultType selects the color and banner of a result box
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

type resultKind struct {
	marker string
	banner string
	color  lipgloss.Color
	title  lipgloss.Style
}

var resultKinds = map[ResultType]resultKind{
	ResultSuccess: {SuccessMarker, "SUCCESS", SuccessColor, SuccessTitleStyle},
	ResultFailure: {FailureMarker, "FAILED", ErrorColor, ErrorTitleStyle},
	ResultWarning: {WarningMarker, "WARNING", WarningColor, WarningTitleStyle},
}

// Result is the closing box of a command: details on success or warning,
// the error and troubleshooting tips on failure
type Result struct {
	Type            ResultType
	Title           string            // e.g. "Encrypt complete"
	Details         map[string]string // Shown sorted by key
	Error           error
	Troubleshooting []string
	Width           int
}

// NewSuccessResult creates a success box
func NewSuccessResult(title string, details map[string]string) *Result {
	return &Result{Type: ResultSuccess, Title: title, Details: details, Width: GetTerminalWidth()}
}

// NewFailureResult creates a failure box
func NewFailureResult(title string, err error, troubleshooting []string) *Result {
	return &Result{Type: ResultFailure, Title: title, Error: err, Troubleshooting: troubleshooting, Width: GetTerminalWidth()}
}

// NewWarningResult creates a warning box
func NewWarningResult(title string, details map[string]string) *Result {
	return &Result{Type: ResultWarning, Title: title, Details: details, Width: GetTerminalWidth()}
}

// SetWidth sets the terminal width for responsive rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// Render returns the bordered result box
func (r *Result) Render() string {
	kind, ok := resultKinds[r.Type]
	if !ok {
		kind = resultKinds[ResultSuccess]
	}
	width := max(r.Width, MinTerminalWidth)

	lines := []string{
		"",
		kind.title.Render(fmt.Sprintf("   %s  %s  ─  %s", kind.marker, kind.banner, r.Title)),
		"",
	}
	if r.Error != nil {
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+r.Error.Error()), "")
	}
	if len(r.Details) > 0 {
		lines = append(lines, renderPairs(r.Details, ResultKeyStyle, ResultValueStyle, "   "), "")
	}
	if len(r.Troubleshooting) > 0 {
		lines = append(lines, renderTips(r.Troubleshooting, width), "")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(kind.color).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

// renderTips draws troubleshooting tips in an inset box
func renderTips(tips []string, width int) string {
	lines := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
	for _, tip := range tips {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+tip))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(max(width-12, 40)).
		Padding(0, 1).
		MarginLeft(3).
		Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}
