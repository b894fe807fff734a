package version

import (
	"fmt"
	"strings"
)

// These variables are populated at build time using ldflags.
// Example: go build -ldflags "-X 'github.com/kd4d/Contest-Log-Analyzer-sub002/version.GitCommit=f80cf83' -X 'github.com/kd4d/Contest-Log-Analyzer-sub002/version.BuildVersion=1.0.0'" ...
var (
	// ProjectName is the name of the project.
	ProjectName = "ContestLogAnalyzer"

	// ProjectGitHubURL is the GitHub repository URL.
	ProjectGitHubURL = "https://github.com/kd4d/Contest-Log-Analyzer-sub002"

	// BuildVersion represents the semantic version of the build.
	// If not set via ldflags it defaults to "unknown".
	BuildVersion = "unknown"

	// GitCommit represents the short Git commit hash.
	GitCommit = "unknown"
)

// ProjectVersion is the full project version string: "X.Y.Z+COMMIT" when
// both build-time variables are set, "unknown" otherwise.
var ProjectVersion = "unknown"

// UserAgent is the full User-Agent string to be used in HTTP requests.
var UserAgent = ""

// UserAgent is constructed in init so that it picks up values injected by
// ldflags rather than the compile-time defaults.
func init() {
	if BuildVersion != "unknown" && GitCommit != "unknown" {
		commit := GitCommit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		ProjectVersion = fmt.Sprintf("%s+%s", strings.TrimPrefix(BuildVersion, "v"), commit)
	}
	UserAgent = fmt.Sprintf("%s/%s (+%s)", ProjectName, ProjectVersion, ProjectGitHubURL)
}
