package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gifveil/gifveil/internal/codec"
)

// RunnerConfig holds configuration for a command execution
type RunnerConfig struct {
	Title     string            // Command title (e.g., "Encrypt")
	Command   string            // Full command (e.g., "gifveil encrypt")
	Params    map[string]string // Parameters to display in header
	StepNames []string          // One entry per pipeline step
	Verbose   bool              // Whether to show stream dumps
	Hints     []string          // Fallback troubleshooting tips
	Output    io.Writer         // Output writer (default: os.Stdout)
}

// Runner orchestrates the UI for a multi-step command.
// It manages the header → progress → result flow and provides
// callbacks for reporting progress.
type Runner struct {
	config    RunnerConfig
	header    *Header
	progress  *Progress
	output    io.Writer
	dumps     []*StreamDump
	startTime time.Time
	width     int
}

// NewRunner creates a new runner for a command
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	width := GetTerminalWidth()

	header := NewHeader(config.Title, config.Command, config.Params)
	header.SetWidth(width)

	var progress *Progress
	if len(config.StepNames) > 0 {
		progress = NewProgress(config.StepNames).SetWidth(width)
	}

	return &Runner{
		config:   config,
		header:   header,
		progress: progress,
		output:   config.Output,
		width:    width,
	}
}

// Operation is the function signature for a runner operation.
// It returns the details to show in the success box.
type Operation func(onStep StepCallback) (map[string]string, error)

// Run executes the operation with UI updates.
// It displays the header, tracks progress, and shows the result.
func (r *Runner) Run(ctx context.Context, operation Operation) (map[string]string, error) {
	r.startTime = time.Now()

	_, _ = fmt.Fprintln(r.output, r.header.Render())
	_, _ = fmt.Fprintln(r.output)

	details, err := operation(r.createStepCallback())
	if err == nil {
		err = ctx.Err()
	}
	duration := time.Since(r.startTime)

	if err != nil {
		r.printFailure(err)
	} else {
		r.printSuccess(details, duration)
	}
	r.printDumps()

	return details, err
}

// AddDump queues a stream dump, shown after the result in verbose mode
func (r *Runner) AddDump(d *StreamDump) {
	r.dumps = append(r.dumps, d)
}

// Output returns the writer the runner prints to
func (r *Runner) Output() io.Writer {
	return r.output
}

// createStepCallback prints each step line as its status changes. A running
// step is drawn without a newline so its final status overwrites it.
func (r *Runner) createStepCallback() StepCallback {
	return func(stepNumber int, name string, status StepStatus, message string) {
		if r.progress == nil || !r.progress.Update(stepNumber, name, status, message) {
			return
		}
		line := r.progress.StepLine(stepNumber)
		if status == StepRunning {
			_, _ = fmt.Fprint(r.output, line+"\r")
			return
		}
		if status != StepPending {
			_, _ = fmt.Fprintln(r.output, line)
		}
	}
}

func (r *Runner) printSuccess(details map[string]string, duration time.Duration) {
	_, _ = fmt.Fprintln(r.output)

	if details == nil {
		details = make(map[string]string)
	}
	details["Duration"] = duration.Round(time.Millisecond).String()

	result := NewSuccessResult(r.config.Title+" complete", details)
	result.SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())
}

func (r *Runner) printFailure(err error) {
	_, _ = fmt.Fprintln(r.output)

	troubleshooting := codec.GetTroubleshootingHint(err)
	if troubleshooting == nil {
		troubleshooting = r.config.Hints
	}

	result := NewFailureResult(r.config.Title+" failed", err, troubleshooting)
	result.SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())
}

func (r *Runner) printDumps() {
	if !r.config.Verbose {
		return
	}
	for _, d := range r.dumps {
		d.SetWidth(r.width)
		_, _ = fmt.Fprintln(r.output)
		_, _ = fmt.Fprintln(r.output, d.Render())
	}
}

// --- Simple helper functions for commands that don't need a Runner ---

// PrintSuccess prints a styled success result
func PrintSuccess(w io.Writer, title string, details map[string]string) {
	result := NewSuccessResult(title, details)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, result.Render())
}

// PrintFailure prints a styled failure result
func PrintFailure(w io.Writer, title string, err error, troubleshooting []string) {
	result := NewFailureResult(title, err, troubleshooting)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, result.Render())
}

// PrintWarning prints a styled warning result
func PrintWarning(w io.Writer, title string, details map[string]string) {
	result := NewWarningResult(title, details)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, result.Render())
}
