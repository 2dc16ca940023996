// Package version holds the build fingerprint of the rolecomp CLI.
package version

import "github.com/fatih/color"

// These variables can be overridden at build time via -ldflags.
var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)

	Major = "0"
	Minor = "3"
	Patch = "0"

	// Version is the colored semantic version of the CLI.
	Version = Colored()

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Plain returns the version without color codes.
func Plain() string {
	return Major + "." + Minor + "." + Patch
}

// Colored returns the version with each component colored when color output
// is enabled.
func Colored() string {
	return majorColor.Sprint(Major) + "." + minorColor.Sprint(Minor) + "." + patchColor.Sprint(Patch)
}
