// Package version resolves the containerwatch build version reported by the
// version subcommand and the startup log line.
package version

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

var (
	// Version can be set with -ldflags "-X .../internal/version.Version=v1.2.3";
	// otherwise it is read from a .version file or defaults to "dev"
	Version string
)

func init() {
	if Version == "" {
		Version = loadVersion()
	}
}

// loadVersion looks for a .version file next to the binary's working
// directory, then the VERSION environment variable
func loadVersion() string {
	locations := []string{
		".version",
		"../.version",
		"../../.version",
		"../../../.version",
	}

	for _, loc := range locations {
		if data, err := os.ReadFile(loc); err == nil {
			v := strings.TrimSpace(string(data))
			if v != "" {
				return v
			}
		}
	}

	// Fallback to environment variable
	if v := os.Getenv("VERSION"); v != "" {
		return v
	}

	return "dev"
}

// Get returns the resolved containerwatch version
func Get() string {
	return Version
}

// String describes the build for the version subcommand
func String() string {
	return fmt.Sprintf("containerwatch %s (%s, %s/%s)", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
