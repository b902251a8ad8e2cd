package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus is the state of one pipeline step
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepComplete
	StepFailed
	StepSkipped
)

// finished reports whether the step no longer needs work
func (s StepStatus) finished() bool {
	return s == StepComplete || s == StepSkipped
}

// StepCallback reports progress of an operation. Steps are numbered from 1;
// an empty name keeps the configured one.
type StepCallback func(stepNumber int, name string, status StepStatus, message string)

// Step is one line of the step list
type Step struct {
	Name    string
	Status  StepStatus
	Message string // e.g. "12 frames", "284 bytes -> 312 bytes"
}

// Progress tracks a fixed list of pipeline steps and renders them under a
// completion bar
type Progress struct {
	Steps   []Step
	Current int // Step most recently started, 1-based
	bar     progress.Model
}

const (
	minBarWidth = 20
	maxBarWidth = 50
	nameColumn  = 45
)

// NewProgress creates a progress display with one pending step per name
func NewProgress(names []string) *Progress {
	p := &Progress{Steps: make([]Step, len(names))}
	for i, name := range names {
		p.Steps[i].Name = name
	}
	return p.SetWidth(GetTerminalWidth())
}

// SetWidth sizes the completion bar for a terminal of the given width
func (p *Progress) SetWidth(width int) *Progress {
	barWidth := min(max(width-20, minBarWidth), maxBarWidth)
	p.bar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth))
	return p
}

// Update records a status change. Out-of-range steps are ignored.
func (p *Progress) Update(stepNumber int, name string, status StepStatus, message string) bool {
	if stepNumber < 1 || stepNumber > len(p.Steps) {
		return false
	}
	s := &p.Steps[stepNumber-1]
	if name != "" {
		s.Name = name
	}
	s.Status = status
	s.Message = message
	if status == StepRunning {
		p.Current = stepNumber
	}
	return true
}

// Fraction returns the share of finished steps
func (p *Progress) Fraction() float64 {
	if len(p.Steps) == 0 {
		return 0
	}
	done := 0
	for _, s := range p.Steps {
		if s.Status.finished() {
			done++
		}
	}
	return float64(done) / float64(len(p.Steps))
}

// Render returns the bar followed by the step list
func (p *Progress) Render() string {
	pct := p.Fraction()
	bar := lipgloss.NewStyle().PaddingLeft(2).Render(
		fmt.Sprintf("%s  %3.0f%%  [%d/%d]", p.bar.ViewAs(pct), pct*100, p.Current, len(p.Steps)))

	lines := []string{bar, ""}
	for i := range p.Steps {
		lines = append(lines, p.StepLine(i+1))
	}
	return strings.Join(lines, "\n")
}

// StepLine renders a single step as "[n/total] name   marker (message)"
func (p *Progress) StepLine(stepNumber int) string {
	s := p.Steps[stepNumber-1]
	marker, style := stepMarker(s.Status)

	var b strings.Builder
	fmt.Fprintf(&b, "  [%d/%d] ", stepNumber, len(p.Steps))
	if s.Status == StepSkipped {
		b.WriteString(StepPendingStyle.Render(s.Name))
	} else {
		b.WriteString(style.Render(s.Name))
	}
	b.WriteString(strings.Repeat(" ", max(nameColumn-lipgloss.Width(s.Name), 1)))
	b.WriteString(style.Render(marker))
	if s.Message != "" {
		b.WriteString("  " + StepNoteStyle.Render("("+s.Message+")"))
	}
	return b.String()
}

func stepMarker(status StepStatus) (string, lipgloss.Style) {
	switch status {
	case StepComplete:
		return StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		return StepMarkerRunning, StepRunningStyle
	case StepFailed:
		return FailureMarker, ErrorTitleStyle
	case StepSkipped:
		return StepMarkerSkipped, StepPendingStyle
	default:
		return StepMarkerPending, StepPendingStyle
	}
}

// String implements fmt.Stringer
func (p *Progress) String() string {
	return p.Render()
}
