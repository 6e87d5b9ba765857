// Package version holds build metadata injected with -ldflags.
package version

//nolint:gochecknoglobals // Set at build time via -ldflags "-X".
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// GetVersion returns the release version, "dev" for local builds.
func GetVersion() string {
	return version
}

// GetCommit returns the git commit the binary was built from.
func GetCommit() string {
	return commit
}

// GetBuildDate returns the build timestamp.
func GetBuildDate() string {
	return buildDate
}
