// Package version reports the gifveil build.
//
// Version and Commit can be set at build time:
//
//	go build -ldflags="-X github.com/gifveil/gifveil/internal/version.Version=v1.2.3 \
//	                   -X github.com/gifveil/gifveil/internal/version.Commit=abc123"
//
// Otherwise they are filled from the VCS stamp in the build info, falling
// back to "dev" and "unknown".
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

var (
	// Version is the release version, or dev-<date> for local builds
	Version = ""
	// Commit is the short git revision, suffixed with -dirty for modified trees
	Commit = ""
)

func init() {
	if Version == "" || Commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			fromSettings(info.Settings)
		}
	}
	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromSettings fills unset values from the vcs.* build settings
func fromSettings(settings []debug.BuildSetting) {
	vcs := make(map[string]string, len(settings))
	for _, s := range settings {
		vcs[s.Key] = s.Value
	}

	if rev := vcs["vcs.revision"]; Commit == "" && rev != "" {
		if len(rev) > 7 {
			rev = rev[:7]
		}
		if vcs["vcs.modified"] == "true" {
			rev += "-dirty"
		}
		Commit = rev
	}

	if Version == "" {
		if t, err := time.Parse(time.RFC3339, vcs["vcs.time"]); err == nil {
			Version = "dev-" + t.Format("20060102")
		}
	}
}

// Full returns the version line printed by 'gifveil version'
func Full() string {
	return fmt.Sprintf("gifveil %s (commit: %s, %s %s/%s)", Version, Commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
