// Package shell implements the interactive gifveil session.
//
// The session is a full-screen Bubble Tea program that keeps a user
// logged in between operations, the way a login shell does:
//
//   - Menu: bubbles/list of the actions valid for the session state
//   - Form: bubbles/textinput fields, passphrases masked
//   - Running: bubbles/spinner while an Actions call is in flight
//   - Confirm: asks before decoding past a cover checksum mismatch
//   - Result: operation details or the error with troubleshooting hints
//
// The package performs no I/O itself. Callers supply an Actions
// implementation; operations run as tea.Cmds off the UI goroutine and
// report back with a message.
//
// A checksum mismatch is never decided inside Actions. Decrypt returns
// the codec error, the Confirm screen asks, and a "y" reruns the request
// with Force set.
//
// # Usage
//
//	app := shell.New(actions, shell.Options{OutputFile: "cipher.gif"})
//	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
//	    return err
//	}
package shell
