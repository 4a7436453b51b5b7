// Package version holds the build information of asdocs.
package version

import "github.com/fatih/color"

// These variables can be overridden at build time using ldflags:
// go build -ldflags "-X asdocs/internal/version.Version=1.0.0 -X asdocs/internal/version.Commit=abc123"
var (
	// Version is the semantic version of asdocs
	Version = "0.3.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

var nameColor = color.New(color.FgCyan, color.Bold)

// Info returns a short version string
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns complete version information. The program name is colored
// when the output is a terminal.
func Full() string {
	return nameColor.Sprint("asdocs") + " version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}
