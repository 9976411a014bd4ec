// Package version reports build information set with -ldflags, for example
//
//	go build -ldflags "-X github.com/longkey1/bookchat/internal/version.Version=v1.0.0"
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	Version   = "dev"
	CommitSHA = ""
	BuildTime = ""
)

// Short returns the version number
func Short() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// Info returns the version with commit, build time and Go version
func Info() string {
	commit, built := CommitSHA, BuildTime
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if commit == "" {
					commit = s.Value
				}
			case "vcs.time":
				if built == "" {
					built = s.Value
				}
			}
		}
	}
	if commit == "" {
		commit = "unknown"
	}
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("Version: %s\nCommit: %s\nBuilt: %s\nGo: %s", Short(), commit, built, runtime.Version())
}
