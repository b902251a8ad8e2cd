package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"
)

// Registry represents the entire user configuration file.
// This stores registered users, imported recipient keys and preferences.
type Registry struct {
	Version     int                   `yaml:"version"`
	Users       map[string]*User      `yaml:"users,omitempty"`      // Keyed by username
	Recipients  map[string]*Recipient `yaml:"recipients,omitempty"` // Keyed by recipient name
	Preferences *Preferences          `yaml:"preferences,omitempty"`
}

// User is the credential record of a registered user.
// The passphrase itself is never stored, only a derived verifier.
type User struct {
	ID             string    `yaml:"id"`              // Random UUID assigned at registration
	PasswordHash   string    `yaml:"password_hash"`   // Hex argon2id-derived verifier
	Salt           string    `yaml:"salt"`            // Hex argon2id salt
	KeyFingerprint string    `yaml:"key_fingerprint"` // Fingerprint of the user's public key
	Created        time.Time `yaml:"created"`
}

// Recipient is a public key imported for encrypting to someone who is not
// registered locally.
type Recipient struct {
	KeyFingerprint string    `yaml:"key_fingerprint"`
	Imported       time.Time `yaml:"imported"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	BitDepth   int    `yaml:"bit_depth"`          // Default bits per pixel sample (1, 2, 4 or 8)
	OutputFile string `yaml:"output_file"`        // Default encoded GIF path
	Workers    int    `yaml:"workers"`            // Frame workers, 0 means one per CPU
	KeysDir    string `yaml:"keys_dir,omitempty"` // Key file directory, empty means <config dir>/keys
}

const (
	DefaultBitDepth   = 2
	DefaultOutputFile = "cipher.gif"
)

// Validate fills unset preferences with defaults and rejects values no
// command could use
func (p *Preferences) Validate() error {
	if p.BitDepth == 0 {
		p.BitDepth = DefaultBitDepth
	}
	if p.OutputFile == "" {
		p.OutputFile = DefaultOutputFile
	}
	switch p.BitDepth {
	case 1, 2, 4, 8:
	default:
		return fmt.Errorf("invalid bit_depth %d (want 1, 2, 4 or 8)", p.BitDepth)
	}
	if p.Workers < 0 {
		return fmt.Errorf("invalid workers %d (want 0 or more)", p.Workers)
	}
	return nil
}

func defaultPreferences() *Preferences {
	return &Preferences{
		BitDepth:   DefaultBitDepth,
		OutputFile: DefaultOutputFile,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Users:       make(map[string]*User),
		Recipients:  make(map[string]*Recipient),
		Preferences: defaultPreferences(),
	}
}

// GetUser retrieves a user record by name.
// Returns nil if the user is not registered.
func (r *Registry) GetUser(name string) *User {
	return r.Users[name]
}

// SetUser stores a user record, replacing any existing one.
func (r *Registry) SetUser(name string, u *User) {
	if r.Users == nil {
		r.Users = make(map[string]*User)
	}
	r.Users[name] = u
}

// UserNames returns registered usernames in sorted order.
func (r *Registry) UserNames() []string {
	names := make([]string, 0, len(r.Users))
	for name := range r.Users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetRecipient retrieves an imported recipient by name.
// Returns nil if no key was imported under that name.
func (r *Registry) GetRecipient(name string) *Recipient {
	return r.Recipients[name]
}

// SetRecipient records an imported recipient key.
func (r *Registry) SetRecipient(name, fingerprint string) {
	if r.Recipients == nil {
		r.Recipients = make(map[string]*Recipient)
	}
	r.Recipients[name] = &Recipient{
		KeyFingerprint: fingerprint,
		Imported:       time.Now().UTC(),
	}
}

// RecipientNames returns imported recipient names in sorted order.
func (r *Registry) RecipientNames() []string {
	names := make([]string, 0, len(r.Recipients))
	for name := range r.Recipients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveKeysDir returns the configured key directory, falling back to
// the keys directory under the config directory.
func (p *Preferences) ResolveKeysDir() (string, error) {
	if p != nil && p.KeysDir != "" {
		return p.KeysDir, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve keys directory: %w", err)
	}
	return filepath.Join(dir, "keys"), nil
}
