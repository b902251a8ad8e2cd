package shell

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gifveil/gifveil/internal/ui"
	"github.com/gifveil/gifveil/internal/version"
)

// AppName is shown in the container header
const AppName = "GIFVEIL"

// The shell needs more room than one-shot command output
const (
	MinTerminalWidth = 72
	MaxContentWidth  = 120
)

func box(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(c).
		Bold(true).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c).
		Padding(1, 2)
}

// Colors come from the command output palette so both front ends match
var (
	TitleStyle            = lipgloss.NewStyle().Foreground(ui.PrimaryColor).Bold(true).Padding(1, 0).MarginBottom(1)
	SubtitleStyle         = lipgloss.NewStyle().Foreground(ui.MutedColor).Italic(true)
	MenuItemStyle         = lipgloss.NewStyle().Foreground(ui.TextColor).PaddingLeft(4)
	SelectedMenuItemStyle = lipgloss.NewStyle().Foreground(ui.AccentColor).Bold(true).PaddingLeft(2)
	SpinnerStyle          = lipgloss.NewStyle().Foreground(ui.PrimaryColor)
	FocusedInputStyle     = lipgloss.NewStyle().Foreground(ui.PrimaryColor).Bold(true)
	BlurredInputStyle     = lipgloss.NewStyle().Foreground(ui.MutedColor)
	DetailKeyStyle        = lipgloss.NewStyle().Foreground(ui.MutedColor)
	DetailValueStyle      = lipgloss.NewStyle().Foreground(ui.TextColor)

	SuccessBoxStyle = box(ui.SuccessColor)
	ErrorBoxStyle   = box(ui.ErrorColor)
	WarningBoxStyle = box(ui.WarningColor)
)

func RenderTitle(text string) string {
	return TitleStyle.Render(text)
}

func RenderSubtitle(text string) string {
	return SubtitleStyle.Render(text)
}

// RenderMenuItem renders a menu entry, arrowed when selected
func RenderMenuItem(text string, selected bool) string {
	if selected {
		return SelectedMenuItemStyle.Render("→ " + text)
	}
	return MenuItemStyle.Render("  " + text)
}

func RenderError(text string) string {
	return ErrorBoxStyle.Render(ui.FailureMarker + " " + text)
}

func RenderSuccess(text string) string {
	return SuccessBoxStyle.Render(ui.SuccessMarker + " " + text)
}

// RenderDetails renders key/value pairs sorted by key with aligned values
func RenderDetails(details map[string]string) string {
	keys := make([]string, 0, len(details))
	width := 0
	for k := range details {
		keys = append(keys, k)
		width = max(width, len(k))
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString("  ")
		b.WriteString(DetailKeyStyle.Render(k + ":" + strings.Repeat(" ", width-len(k)+1)))
		b.WriteString(DetailValueStyle.Render(details[k]))
		b.WriteString("\n")
	}
	return b.String()
}

// sessionHeader shows the app name, version and who is logged in
func sessionHeader(user string) string {
	name := lipgloss.NewStyle().Foreground(ui.TextColor).Bold(true).Render(AppName + " " + version.Version)

	status := "not logged in"
	if user != "" {
		status = "logged in as " + user
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, name, "  ", SubtitleStyle.Render(status))
}

// RenderApplicationContainer frames a screen in the full-terminal panel
// with the session header on top and help text below
func RenderApplicationContainer(content, footerText, user string, terminalWidth, terminalHeight int) string {
	width := min(max(terminalWidth, MinTerminalWidth), MaxContentWidth)
	inner := width - 4

	rule := func(b lipgloss.Border) lipgloss.Style {
		return lipgloss.NewStyle().
			BorderStyle(b).
			BorderForeground(ui.PrimaryColor).
			Width(inner).
			Padding(0, 1)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		rule(lipgloss.Border{Bottom: "─"}).Render(sessionHeader(user)),
		lipgloss.NewStyle().Width(inner).Render(content),
		rule(lipgloss.Border{Top: "─"}).Render(lipgloss.NewStyle().Foreground(ui.MutedColor).Render(footerText)),
	)

	frame := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(ui.PrimaryColor).
		Width(width - 2).
		AlignVertical(lipgloss.Top)
	if terminalHeight > 2 {
		frame = frame.Height(terminalHeight - 2)
	}
	return lipgloss.Place(width, terminalHeight, lipgloss.Left, lipgloss.Top, frame.Render(body))
}
