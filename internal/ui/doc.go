// Package ui provides terminal UI components for the gifveil CLI.
//
// This package uses Bubble Tea and Lipgloss to render command output. The
// components follow a "run once and exit" pattern: they render output
// compellingly but only interact with the user for the checksum override
// prompt.
//
// # Architecture
//
//   - Header: Command banner showing operation name and parameters
//   - Progress: Progress bar with step list showing real-time status
//   - Result: Success/failure/warning boxes with styled information
//   - StreamDump: Offset-prefixed unit dump for verbose mode
//
// These components are orchestrated by the Runner, which manages the
// header → progress → result flow for encrypt and decrypt.
//
// Example:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Encrypt",
//	    Command:   "gifveil encrypt",
//	    Params:    map[string]string{"Cover": "cover.gif"},
//	    StepNames: []string{"Loading cover", "Embedding payload"},
//	})
//
//	_, err := runner.Run(ctx, func(onStep ui.StepCallback) (map[string]string, error) {
//	    onStep(1, "Loading cover", ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, "Loading cover", ui.StepComplete, "12 frames")
//	    return map[string]string{"Output": "cipher.gif"}, nil
//	})
//
// Failure boxes take their troubleshooting tips from
// codec.GetTroubleshootingHint when the error came from the codec.
//
// # Logging Integration
//
// This package expects logging to be controlled via GIFVEIL_LOG_LEVEL. When
// unset, zap logging is silent so the curated UI output is displayed
// cleanly.
package ui
