// Package version holds the build identity of drape, set with -ldflags -X.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time, e.g.
//
//	-ldflags "-X github.com/jmylchreest/drape/internal/version.Version=1.2.0"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info describes the running binary. The health endpoint reports it.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Date      string `json:"date,omitempty"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build identity. Commit and date are empty for
// untagged builds.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if Commit != "unknown" && Date != "unknown" {
		info.Commit, info.Date = shortCommit(Commit), Date
	}
	return info
}

// String is the line printed by `drape version`.
func String() string {
	info := GetInfo()
	if info.Commit == "" {
		return fmt.Sprintf("drape version %s (%s, %s)", info.Version, info.GoVersion, info.Platform)
	}
	return fmt.Sprintf("drape version %s (commit: %s, built: %s, %s, %s)",
		info.Version, info.Commit, info.Date, info.GoVersion, info.Platform)
}

// Short returns the bare version for --version.
func Short() string {
	return Version
}

func shortCommit(c string) string {
	if len(c) > 8 {
		return c[:8]
	}
	return c
}
