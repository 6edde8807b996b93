package version

import "github.com/fatih/color"

// Build identity of the ilpatch CLI. Release builds override these via
// -ldflags; a plain `go build` keeps the -dev version and empty git fields.

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI.
	Version = majorColor.Sprint("0") + "." + minorColor.Sprint("1") + "." + patchColor.Sprint("0") + "-dev"

	// GitCommit is the commit hash the binary was built from, when known.
	GitCommit = ""

	// GitMessage is the subject line of that commit, when known.
	GitMessage = ""

	// BuildDate is the build timestamp in ISO-8601, when known.
	BuildDate = ""
)
