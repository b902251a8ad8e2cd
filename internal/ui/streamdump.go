package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StreamDump is a box showing raw stream units as offset-prefixed rows.
// Used in verbose mode to show header regions and spread streams.
type StreamDump struct {
	Title    string // e.g., "Header region"
	Data     []byte // Units to display
	PerLine  int    // Units per row (default 16)
	MaxLines int    // Maximum rows to display (0 = unlimited)
	Width    int    // Terminal width
}

// NewStreamDump creates a new stream dump box
func NewStreamDump(title string, data []byte) *StreamDump {
	return &StreamDump{
		Title:    title,
		Data:     data,
		PerLine:  16,
		MaxLines: 16,
		Width:    GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (d *StreamDump) SetWidth(width int) *StreamDump {
	d.Width = width
	return d
}

// SetMaxLines limits the number of rows displayed
func (d *StreamDump) SetMaxLines(max int) *StreamDump {
	d.MaxLines = max
	return d
}

// Lines returns the unstyled rows of the dump
func (d *StreamDump) Lines() []string {
	per := d.PerLine
	if per <= 0 {
		per = 16
	}

	var lines []string
	for off := 0; off < len(d.Data); off += per {
		if d.MaxLines > 0 && len(lines) == d.MaxLines {
			lines = append(lines, fmt.Sprintf("... (%d more units)", len(d.Data)-off))
			break
		}
		end := off + per
		if end > len(d.Data) {
			end = len(d.Data)
		}
		lines = append(lines, fmt.Sprintf("%08x  % x", off, d.Data[off:end]))
	}
	return lines
}

// Render returns the styled stream dump box as a string
func (d *StreamDump) Render() string {
	width := d.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	rows := d.Lines()
	styled := make([]string, len(rows))
	for i, row := range rows {
		if offset, rest, ok := strings.Cut(row, "  "); ok {
			styled[i] = StreamDumpOffsetStyle.Render(offset) + "  " + StreamDumpContentStyle.Render(rest)
		} else {
			styled[i] = StepNoteStyle.Render(row)
		}
	}

	title := StreamDumpTitleStyle.Render(fmt.Sprintf("%s (%d units)", d.Title, len(d.Data)))
	inner := lipgloss.JoinVertical(lipgloss.Left, title, "", strings.Join(styled, "\n"))

	boxWidth := width - 4
	if boxWidth < 40 {
		boxWidth = 40
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(boxWidth).
		Padding(0, 1).
		MarginLeft(2).
		Render(inner)
}

// String implements fmt.Stringer
func (d *StreamDump) String() string {
	return d.Render()
}
