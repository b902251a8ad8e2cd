// Package config provides user configuration management for gifveil.
//
// This package manages a YAML-based configuration file that stores the
// credential records of registered users, the names of imported recipient
// keys and application preferences. The configuration follows OS-specific
// conventions for storage location.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/gifveil/config.yaml or $HOME/.config/gifveil/config.yaml
//   - macOS: $HOME/.config/gifveil/config.yaml
//   - Windows: %LOCALAPPDATA%\gifveil\config.yaml
//
// Key files live next to it in a keys/ directory unless keys_dir is set.
//
// # Security
//
// Passphrases are NEVER stored. A user record holds an argon2id-derived
// verifier and its salt; private keys are stored encrypted in the keys
// directory, not in this file.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.Preferences.BitDepth = 4
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
