package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gifveil/gifveil/internal/codec"
)

// ConfirmPhrase is what the user must type to accept a checksum mismatch
const ConfirmPhrase = "yes"

// ConfirmDangerousOperation displays a warning box and prompts the user to
// type ConfirmPhrase to proceed. Returns true if the user confirmed.
func ConfirmDangerousOperation(in io.Reader, out io.Writer, title string, warnings []string, disclaimer string) bool {
	width := GetTerminalWidth()

	var lines []string

	lines = append(lines, "")
	lines = append(lines, WarningTitleStyle.Render(fmt.Sprintf("   %s  WARNING  ─  %s", WarningMarker, title)))
	lines = append(lines, "")

	bulletStyle := lipgloss.NewStyle().Foreground(TextColor)
	for _, warning := range warnings {
		lines = append(lines, bulletStyle.Render("   • "+warning))
	}
	lines = append(lines, "")

	// Disclaimer in muted text, word-wrapped
	if disclaimer != "" {
		disclaimerStyle := lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true).
			Width(width - 12).
			PaddingLeft(3)
		lines = append(lines, disclaimerStyle.Render(disclaimer))
		lines = append(lines, "")
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(WarningColor).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))

	_, _ = fmt.Fprintln(out, box)
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprint(out, WarningTitleStyle.Render(fmt.Sprintf("To proceed, type %q and press Enter: ", ConfirmPhrase)))

	input, err := bufio.NewReader(in).ReadString('\n')
	_, _ = fmt.Fprintln(out)
	if err != nil && input == "" {
		return false
	}

	if strings.EqualFold(strings.TrimSpace(input), ConfirmPhrase) {
		return true
	}

	cancelStyle := lipgloss.NewStyle().Foreground(MutedColor)
	_, _ = fmt.Fprintln(out, cancelStyle.Render("  Operation cancelled."))
	_, _ = fmt.Fprintln(out)
	return false
}

// ConfirmChecksumOverride asks whether to decode despite a cover checksum
// mismatch. It has the shape of codec.MismatchFunc once in and out are bound.
func ConfirmChecksumOverride(in io.Reader, out io.Writer, mismatch *codec.CodecError) bool {
	return ConfirmDangerousOperation(in, out,
		"ORIGINAL GIF DOES NOT MATCH",
		[]string{
			"Embedded cover checksum: " + mismatch.Expected.String(),
			"Supplied original:       " + mismatch.Actual.String(),
			"Decoding with the wrong original yields garbage or fails",
		},
		"Proceed only if the supplied GIF has exactly the same frames as the "+
			"cover used when encoding, for example after a metadata-only edit.",
	)
}
