package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromSettings(t *testing.T) {
	tests := []struct {
		name        string
		settings    []debug.BuildSetting
		wantVersion string
		wantCommit  string
	}{
		{
			name: "clean tree",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.time", Value: "2026-03-04T10:00:00Z"},
			},
			wantVersion: "dev-20260304",
			wantCommit:  "0123456",
		},
		{
			name: "dirty tree",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc"},
				{Key: "vcs.modified", Value: "true"},
			},
			wantVersion: "",
			wantCommit:  "abc-dirty",
		},
		{
			name:        "no vcs",
			wantVersion: "",
			wantCommit:  "",
		},
	}

	savedVersion, savedCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = savedVersion, savedCommit })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit = "", ""
			fromSettings(tt.settings)
			if Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", Version, tt.wantVersion)
			}
			if Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", Commit, tt.wantCommit)
			}
		})
	}
}

func TestFromSettings_KeepsLinkerValues(t *testing.T) {
	savedVersion, savedCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = savedVersion, savedCommit })

	Version, Commit = "v1.0.0", "feedbee"
	fromSettings([]debug.BuildSetting{{Key: "vcs.revision", Value: "0000000000"}})
	if Version != "v1.0.0" || Commit != "feedbee" {
		t.Errorf("fromSettings() overwrote ldflags values: %s %s", Version, Commit)
	}
}

func TestFull(t *testing.T) {
	if got := Full(); !strings.HasPrefix(got, "gifveil ") || !strings.Contains(got, Commit) {
		t.Errorf("Full() = %q", got)
	}
}
