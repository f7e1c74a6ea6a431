package version

import (
	"fmt"
	"runtime"
	"time"
)

// Version information set at build time via ldflags.
var (
	Version = "dev"

	GitCommit = "unknown"

	GitTag = ""

	BuildDate = "unknown"

	GoVersion = runtime.Version()

	Platform = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
)

// GetVersion returns the short version string shown in each command's help
// summary and in the first line of the --version banner.
func GetVersion() string {
	if Version == "dev" {
		if GitTag != "" {
			Version = GitTag
		} else if GitCommit != "unknown" && len(GitCommit) >= 7 {
			Version = fmt.Sprintf("dev-%s", GitCommit[:7])
		}
	}
	return Version
}

// GetFullVersion returns detailed version information for --version,
// naming component (the calling binary: "translate", "emulate", "debug")
// so the three binaries this toolchain ships don't all print an identical,
// unidentifiable banner.
func GetFullVersion(component string) string {
	return fmt.Sprintf(`minilang %s %s
Commit:   %s
Date:     %s
Go:       %s
Platform: %s`,
		component,
		GetVersion(),
		GitCommit,
		BuildDate,
		GoVersion,
		Platform)
}

func init() {
	if BuildDate == "unknown" {
		BuildDate = time.Now().Format("2006-01-02T15:04:05Z")
	}
}
