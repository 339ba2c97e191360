// Package buildinfo carries version control details stamped in at link time:
//
//	go build -ldflags "-X bharatbus.in/internal/buildinfo.CommitHash=$(git rev-parse HEAD)"
package buildinfo

var (
	CommitHash    = ""
	Branch        = ""
	BuildTime     = ""
	Version       = "dev"
	CommitTime    = ""
	Dirty         = "false"
	Host          = ""
	UserEmail     = ""
	UserName      = ""
	RemoteURL     = ""
	CommitMessage = ""
)

// ShortCommitHash returns the first seven characters of CommitHash, or
// "unknown" when it was not stamped.
func ShortCommitHash() string {
	if len(CommitHash) >= 7 {
		return CommitHash[:7]
	}
	return "unknown"
}
