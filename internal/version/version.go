// Package version reports the AdminList build. Values are injected with
// -ldflags "-X github.com/HerbHall/adminlist/internal/version.Version=...";
// a plain `go install` falls back to the module build info.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Short returns the version, e.g. "0.3.1" or "dev".
func Short() string {
	if Version != "dev" {
		return Version
	}
	if bi, ok := readBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}

// Info returns a one-line description for --version output.
func Info() string {
	return fmt.Sprintf("AdminList %s (commit %s, built %s, %s %s/%s)",
		Short(), GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Map returns the build description as JSON-friendly fields.
func Map() map[string]string {
	return map[string]string{
		"version":    Short(),
		"git_commit": GitCommit,
		"build_date": BuildDate,
		"go_version": runtime.Version(),
		"platform":   runtime.GOOS + "/" + runtime.GOARCH,
	}
}
