// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// shortCommitLength matches "git rev-parse --short".
const shortCommitLength = 7

// Stamp is the resolved build identity.
type Stamp struct {
	Version   string
	Commit    string
	Dirty     bool
	BuildTime string
}

var (
	stampOnce sync.Once
	stamp     Stamp
)

// Current returns the build stamp: ldflags values where injected, the
// toolchain's VCS settings otherwise.
func Current() Stamp {
	stampOnce.Do(func() {
		var settings []debug.BuildSetting
		if info, ok := debug.ReadBuildInfo(); ok {
			settings = info.Settings
		}
		stamp = resolve(settings)
	})
	return stamp
}

func resolve(settings []debug.BuildSetting) Stamp {
	result := Stamp{
		Version:   Version,
		Commit:    GitCommit,
		Dirty:     GitDirty == "true",
		BuildTime: BuildTime,
	}
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			if result.Commit == "unknown" && setting.Value != "" {
				result.Commit = setting.Value
				if len(result.Commit) > shortCommitLength {
					result.Commit = result.Commit[:shortCommitLength]
				}
			}
		case "vcs.modified":
			if GitDirty != "true" && setting.Value == "true" {
				result.Dirty = true
			}
		case "vcs.time":
			if result.BuildTime == "unknown" && setting.Value != "" {
				result.BuildTime = setting.Value
			}
		}
	}
	return result
}

// String formats the stamp as "version (commit[-dirty], time)".
func (s Stamp) String() string {
	dirty := ""
	if s.Dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", s.Version, s.Commit, dirty, s.BuildTime)
}

// Info returns a formatted version string suitable for --version output.
func Info() string {
	return Current().String()
}

// Full returns detailed version information including Go version.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// UserAgent returns the User-Agent value for outgoing API requests.
func UserAgent() string {
	return "botwire/" + Version
}
