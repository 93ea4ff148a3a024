package version

var (
	// GitCommit is the current HEAD set using ldflags.
	GitCommit string

	// Version is the built software version.
	Version = SWCoreSemVer
)

func init() {
	if GitCommit != "" {
		Version += "-" + GitCommit
	}
}

// SWCoreSemVer is the semantic version of syncwatch.
// Must be a string because release scripts read this file.
const SWCoreSemVer = "0.3.1"
