package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gifveil/gifveil/internal/codec"
	"github.com/gifveil/gifveil/internal/config"
	"github.com/gifveil/gifveil/internal/keystore"
	"github.com/gifveil/gifveil/internal/shell"
	"github.com/gifveil/gifveil/internal/ui"
)

func init() {
	rootCmd.AddCommand(shellCmd)
}

// shellCmd implements the 'shell' command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session",
	Long: `Start a full-screen interactive session.

Log in once and run several encrypt and decrypt operations without
re-entering your passphrase. The passphrase is held in memory until you
log out or leave the session.

Encrypt uses the configured bit depth. A cover checksum mismatch during
decrypt asks before decoding.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		reg, store, err := openStore()
		if err != nil {
			return err
		}
		depth, err := resolveDepth(0, reg.Preferences.BitDepth)
		if err != nil {
			return err
		}

		app := shell.New(&sessionActions{
			reg:     reg,
			store:   store,
			depth:   depth,
			workers: workerCount(reg),
		}, shell.Options{OutputFile: reg.Preferences.OutputFile})

		if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
			return fmt.Errorf("session failed: %w", err)
		}
		return nil
	},
}

// sessionActions runs shell operations through the same pipeline as the
// encrypt and decrypt commands
type sessionActions struct {
	reg     *config.Registry
	store   *keystore.Store
	depth   codec.BitDepth
	workers int
}

func noopStep(int, string, ui.StepStatus, string) {}

func (a *sessionActions) Login(user, passphrase string) error {
	_, err := a.store.Authenticate(user, passphrase)
	return err
}

func (a *sessionActions) Register(user, passphrase string) error {
	if _, err := a.store.Register(user, passphrase); err != nil {
		return err
	}
	return saveRegistry(a.reg)
}

func (a *sessionActions) Encrypt(req shell.EncryptRequest) (map[string]string, error) {
	return encryptFile(a.store, encryptJob{
		CoverPath:  req.Cover,
		InputPath:  req.Input,
		OutputPath: req.Output,
		Recipient:  req.Recipient,
		Depth:      a.depth,
		Workers:    a.workers,
	}, noopStep, nil)
}

func (a *sessionActions) Decrypt(req shell.DecryptRequest) (map[string]string, error) {
	return decryptFile(a.store, decryptJob{
		User:         req.User,
		Passphrase:   req.Passphrase,
		OriginalPath: req.Original,
		EncodedPath:  req.Encoded,
		OutputPath:   req.Output,
		Force:        req.Force,
		Workers:      a.workers,
	}, noopStep)
}
