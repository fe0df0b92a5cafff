package version

var (
	// GitCommit is the current HEAD set using ldflags.
	GitCommit string

	// Version is the built softwares version.
	Version = ClientSemVer
)

func init() {
	if GitCommit != "" {
		Version += "-" + GitCommit
	}
}

const (
	// ClientSemVer is the current version of the RPC client.
	// It's the Semantic Version of the software.
	// Must be a string because scripts like dist.sh read this file.
	ClientSemVer = "0.1.0"
)

// Info is what the version command prints.
type Info struct {
	Version   string   `json:"version"`
	GitCommit string   `json:"git_commit,omitempty"`
	Dialects  []string `json:"dialects"`
}

// NewInfo returns the build info together with the node dialects the
// client can talk to.
func NewInfo(dialects []string) Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		Dialects:  dialects,
	}
}
