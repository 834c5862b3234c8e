// Package version carries build metadata stamped in at link time via
// -ldflags "-X github.com/spantree/spantree/pkg/version.Version=...".
package version

// Version is the semantic version of the binary.
var Version = "dev"

// Commit is the Git commit the binary was built from.
var Commit = "<unknown>"

// Date is the build timestamp.
var Date = "<unknown>"
