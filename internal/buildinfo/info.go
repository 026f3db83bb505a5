// Package buildinfo carries version metadata stamped in with -ldflags, e.g.
//
//	-X github.com/ebotics/recon/internal/buildinfo.Version=v0.3.0
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String is the version line shown by recon --version.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
