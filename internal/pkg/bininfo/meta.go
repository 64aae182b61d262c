// Values in this file are injected at build time with -ldflags, e.g.
//
//	-X exusiai.dev/booking-backend/internal/pkg/bininfo.Version=v1.2.0+abcdef
//
// Renaming the variables breaks the release pipeline.
package bininfo

var (
	// Version is the SemVer version of the binary, with the git commit appended after a plus sign if available.
	Version = "v0.0.0"

	// BuildTime is the RFC3339 time at which the binary was built.
	BuildTime = "1970-01-01T00:00:00Z"
)
