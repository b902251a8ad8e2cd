// Gifveil hides encrypted files inside animated GIFs.
//
// A payload is sealed for a recipient's RSA public key and XOR-embedded
// into the low bits of a cover animation's pixel indices. Recovering it
// needs both the encoded GIF and the untouched original cover:
//
//   - register: create a user with a passphrase-protected key pair
//   - import-key: add a recipient's public key
//   - encrypt: seal a file and embed it in a cover GIF
//   - decrypt: extract and open a payload with the original cover
//   - capacity: report how much a cover can carry
//   - inspect: show the header of an encoded GIF
//   - users, export-key: list users and share public keys
//   - shell: interactive session
//
// Set GIFVEIL_LOG_LEVEL=debug to see detailed logs on stderr.
//
// See 'gifveil --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gifveil/gifveil/internal/config"
	"github.com/gifveil/gifveil/internal/keystore"
	"github.com/gifveil/gifveil/internal/logging"
	"github.com/gifveil/gifveil/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logging.Error("Command failed", zap.Error(err))
	}
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	logLevel   string
	verbose    bool
	workers    int
)

var rootCmd = &cobra.Command{
	Use:   "gifveil",
	Short: "Hide encrypted files inside animated GIFs",
	Long: `Gifveil seals a file for a recipient and hides it in the pixel data
of an animated GIF.

The payload is encrypted with the recipient's RSA public key and
XOR-embedded into the low bits of every frame. The encoded GIF looks like
the cover, and the payload can only be recovered with the original cover
and the recipient's passphrase.

Users and imported recipient keys are kept in the gifveil config
directory. Set GIFVEIL_PASSPHRASE to skip the passphrase prompt.`,
	Version: version.Version,
	Example: `  # Create a user
  gifveil register alice

  # Hide a file for alice
  gifveil encrypt --to alice --cover cat.gif --in notes.txt --out cipher.gif

  # Recover it
  gifveil decrypt --user alice --original cat.gif --in cipher.gif --out notes.txt

  # How much fits in a cover?
  gifveil capacity cat.gif`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Silent by default; --log-level overrides GIFVEIL_LOG_LEVEL
		if logLevel != "" {
			return logging.Initialize(logLevel)
		}
		if err := logging.InitializeFromEnv(); err != nil {
			// A bad environment value should not block the command
			fmt.Fprintf(os.Stderr, "Warning: %s: %v; logging disabled\n", logging.LogLevelEnvVar, err)
		}
		return nil
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <config dir>/gifveil/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show stream dumps and extra detail")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Frame workers (default: config preference, then one per CPU)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Full())
	},
}

// loadRegistry loads the registry from --config or the default location
func loadRegistry() (*config.Registry, error) {
	if configPath != "" {
		return config.LoadRegistryFrom(configPath)
	}
	return config.LoadRegistry()
}

// saveRegistry writes the registry back to where loadRegistry found it
func saveRegistry(reg *config.Registry) error {
	if configPath != "" {
		return reg.SaveTo(configPath)
	}
	return reg.Save()
}

// openStore loads the registry and the key store it points at
func openStore() (*config.Registry, *keystore.Store, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	dir, err := reg.Preferences.ResolveKeysDir()
	if err != nil {
		return nil, nil, err
	}
	return reg, keystore.New(reg, dir), nil
}

// workerCount resolves --workers against the config preference
func workerCount(reg *config.Registry) int {
	if workers > 0 {
		return workers
	}
	return reg.Preferences.Workers
}
