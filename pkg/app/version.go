package app

import (
	"fmt"
	"runtime"
)

// Build information. Populated at build-time via -ldflags.
var (
	Version   = "unknown"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// GetVersion returns the version string.
func GetVersion() string {
	return Version
}

// VersionString returns a full, printable version description.
func VersionString() string {
	return fmt.Sprintf("version %s (commit %s, built %s, %s %s/%s)",
		Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
