package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	t.Setenv(ConfigDirEnvVar, "")
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	// Should not be empty
	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	// Should contain "gifveil"
	if !strings.Contains(configDir, "gifveil") {
		t.Errorf("GetConfigDir() = %v, should contain 'gifveil'", configDir)
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux and other Unix systems")
	}

	base := t.TempDir()
	t.Setenv(ConfigDirEnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", base)

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(base, "gifveil"); configDir != want {
		t.Errorf("GetConfigDir() = %v, want %v", configDir, want)
	}
}

func TestGetConfigDir_Override(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(ConfigDirEnvVar, dir)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("GetConfigDir() = %v, want %v", got, dir)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	// Should end with config.yaml
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}

	if reg.Users == nil {
		t.Error("NewRegistry().Users should not be nil")
	}

	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}

	if reg.Preferences.BitDepth != 2 {
		t.Errorf("NewRegistry().Preferences.BitDepth = %v, want 2", reg.Preferences.BitDepth)
	}

	if reg.Preferences.OutputFile != "cipher.gif" {
		t.Errorf("NewRegistry().Preferences.OutputFile = %v, want cipher.gif", reg.Preferences.OutputFile)
	}
}

func TestRegistryUsers(t *testing.T) {
	reg := NewRegistry()

	if reg.GetUser("alice") != nil {
		t.Error("GetUser() on empty registry should return nil")
	}

	reg.SetUser("carol", &User{Salt: "00"})
	reg.SetUser("alice", &User{Salt: "01"})

	if u := reg.GetUser("alice"); u == nil || u.Salt != "01" {
		t.Errorf("GetUser(alice) = %+v, want salt 01", u)
	}

	names := reg.UserNames()
	if len(names) != 2 || names[0] != "alice" || names[1] != "carol" {
		t.Errorf("UserNames() = %v, want [alice carol]", names)
	}
}

func TestRegistryRecipients(t *testing.T) {
	reg := &Registry{Version: 1}

	before := time.Now().UTC()
	reg.SetRecipient("bob", "a1b2c3")

	rcpt := reg.GetRecipient("bob")
	if rcpt == nil {
		t.Fatal("Recipient should exist after SetRecipient()")
	}
	if rcpt.KeyFingerprint != "a1b2c3" {
		t.Errorf("KeyFingerprint = %v, want a1b2c3", rcpt.KeyFingerprint)
	}
	if rcpt.Imported.Before(before) {
		t.Errorf("Imported = %v, want after %v", rcpt.Imported, before)
	}
	if names := reg.RecipientNames(); len(names) != 1 || names[0] != "bob" {
		t.Errorf("RecipientNames() = %v, want [bob]", names)
	}
}

func TestResolveKeysDir(t *testing.T) {
	p := &Preferences{KeysDir: "/srv/keys"}
	dir, err := p.ResolveKeysDir()
	if err != nil || dir != "/srv/keys" {
		t.Errorf("ResolveKeysDir() = %v, %v, want /srv/keys", dir, err)
	}

	dir, err = (&Preferences{}).ResolveKeysDir()
	if err != nil {
		t.Fatalf("ResolveKeysDir() error = %v", err)
	}
	if filepath.Base(dir) != "keys" {
		t.Errorf("ResolveKeysDir() = %v, want default keys directory", dir)
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	testConfigPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reg := NewRegistry()
	reg.SetUser("alice", &User{
		ID:             "5b1f0c1e-7f3a-4c55-9a41-2d7c1f3e8b90",
		PasswordHash:   "deadbeef",
		Salt:           "cafebabe",
		KeyFingerprint: "0123456789abcdef",
		Created:        created,
	})
	reg.SetRecipient("bob", "fedcba9876543210")
	reg.Preferences.BitDepth = 4
	reg.Preferences.Workers = 3

	if err := reg.SaveTo(testConfigPath); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	if _, err := os.Stat(testConfigPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind after SaveTo()")
	}

	data, err := os.ReadFile(testConfigPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "# gifveil configuration") {
		t.Error("saved config should start with header comment")
	}

	loaded, err := LoadRegistryFrom(testConfigPath)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}

	user := loaded.GetUser("alice")
	if user == nil {
		t.Fatal("User should exist in loaded registry")
	}
	if user.ID != "5b1f0c1e-7f3a-4c55-9a41-2d7c1f3e8b90" || user.PasswordHash != "deadbeef" || user.Salt != "cafebabe" {
		t.Errorf("Loaded user = %+v", user)
	}
	if !user.Created.Equal(created) {
		t.Errorf("Loaded Created = %v, want %v", user.Created, created)
	}
	if loaded.GetRecipient("bob") == nil {
		t.Error("Recipient should exist in loaded registry")
	}
	if loaded.Preferences.BitDepth != 4 || loaded.Preferences.Workers != 3 {
		t.Errorf("Loaded preferences = %+v", loaded.Preferences)
	}
}

func TestLoadRegistryFrom_Missing(t *testing.T) {
	reg, err := LoadRegistryFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if reg.Preferences.BitDepth != DefaultBitDepth {
		t.Errorf("missing file should yield defaults, got %+v", reg.Preferences)
	}
}

func TestLoadRegistryFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "version: [1"},
		{"wrong version", "version: 2\n"},
		{"bad bit depth", "version: 1\npreferences:\n  bit_depth: 3\n"},
		{"negative workers", "version: 1\npreferences:\n  workers: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadRegistryFrom(path); err == nil {
				t.Error("LoadRegistryFrom() error = nil, want error")
			}
		})
	}
}

func TestLoadRegistryFrom_FillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if reg.Users == nil || reg.Recipients == nil {
		t.Error("maps should be initialized")
	}
	if reg.Preferences == nil || reg.Preferences.OutputFile != DefaultOutputFile {
		t.Errorf("Preferences = %+v, want defaults", reg.Preferences)
	}
}

func TestLoadRegistryFrom_PartialPreferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "version: 1\npreferences:\n  workers: 3\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	p := reg.Preferences
	if p.Workers != 3 || p.BitDepth != DefaultBitDepth || p.OutputFile != DefaultOutputFile {
		t.Errorf("Preferences = %+v, want workers 3 with default depth and output", p)
	}
}

// Benchmark tests

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}
