// Package buildinfo holds release metadata stamped in at link time:
//
//	go build -ldflags "-X github.com/aidanlsb/tabula/internal/buildinfo.Version=v0.4.0"
package buildinfo

var (
	Version string
	Commit  string
	Date    string
)

// Stamped reports whether the linker set any field.
func Stamped() bool {
	return Version != "" || Commit != "" || Date != ""
}
