// Package build provides build information that is linked into the application. Other
// packages within this project can use this information in logs etc..
package build

var (
	// Version is the build version of the binary, set with -ldflags.
	Version = "dev"

	// Commit is the commit hash the binary was built from.
	Commit = "none"

	// Date is the date the binary was built.
	Date = "unknown"

	// ProjectName is the name of the binary.
	ProjectName = "ppbfs"
)
