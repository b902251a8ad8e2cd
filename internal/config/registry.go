package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "gifveil"
	configFile = "config.yaml"

	// ConfigDirEnvVar overrides the platform config directory
	ConfigDirEnvVar = "GIFVEIL_CONFIG_DIR"

	currentVersion = 1
)

var (
	globalRegistry     *Registry
	globalRegistryOnce sync.Once
	globalRegistryErr  error

	// Serializes writers within the process; the rename keeps readers in
	// other processes from seeing a partial file
	fileMutex sync.Mutex
)

var fileHeader = `# gifveil configuration
# Registered users, imported recipient keys and preferences.
#
# Passphrases are never stored here. Each user entry holds an argon2id
# verifier; private keys live encrypted in the keys directory.

`

// GetConfigDir returns the gifveil config directory:
//
//   - $GIFVEIL_CONFIG_DIR if set
//   - Windows: %LOCALAPPDATA%\gifveil
//   - elsewhere: $XDG_CONFIG_HOME/gifveil, else ~/.config/gifveil (macOS too)
func GetConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnvVar); dir != "" {
		return dir, nil
	}

	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, appName), nil
		}
		profile := os.Getenv("USERPROFILE")
		if profile == "" {
			return "", errors.New("cannot determine config directory: LOCALAPPDATA and USERPROFILE are unset")
		}
		return filepath.Join(profile, "AppData", "Local", appName), nil
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" && runtime.GOOS != "darwin" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// GetConfigPath returns the path of config.yaml in GetConfigDir
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// LoadRegistry loads the registry from the default path once per process.
// A missing file yields a default registry.
func LoadRegistry() (*Registry, error) {
	globalRegistryOnce.Do(func() {
		path, err := GetConfigPath()
		if err != nil {
			globalRegistryErr = fmt.Errorf("failed to get config path: %w", err)
			return
		}
		globalRegistry, globalRegistryErr = LoadRegistryFrom(path)
	})
	return globalRegistry, globalRegistryErr
}

// LoadRegistryFrom loads and validates the registry at configPath.
// A missing file yields a default registry.
func LoadRegistryFrom(configPath string) (*Registry, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}
	if reg.Version != currentVersion {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", reg.Version, currentVersion)
	}

	if reg.Users == nil {
		reg.Users = make(map[string]*User)
	}
	if reg.Recipients == nil {
		reg.Recipients = make(map[string]*Recipient)
	}
	if reg.Preferences == nil {
		reg.Preferences = defaultPreferences()
	}
	if err := reg.Preferences.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return &reg, nil
}

// Save writes the registry to the default path
func (r *Registry) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return r.SaveTo(path)
}

// SaveTo writes the registry to configPath through a temp file and rename
func (r *Registry) SaveTo(configPath string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	body, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp := configPath + ".tmp"
	if err := os.WriteFile(tmp, append([]byte(fileHeader), body...), 0o600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmp, configPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}
