package config

import "fmt"

// Set at build time with -ldflags "-X github.com/getzep/nlp-annotator-api/config.Version=...".
var (
	Version    = "dev"
	CommitHash = "n/a"
	BuildTime  = "n/a"
)

// VersionString is reported in the X-Annotator-Version header and in features metadata.
var VersionString = fmt.Sprintf("%s-%s (%s)", Version, CommitHash, BuildTime)

const productName = "nlp-annotator-api"

// UserAgent identifies this build in outgoing requests to the annotation provider and to
// annotator servers.
func UserAgent() string {
	return fmt.Sprintf("%s/%s", productName, Version)
}

// BuildInfo is the version block printed by --version.
type BuildInfo struct {
	Version    string `json:"version"    yaml:"version"`
	CommitHash string `json:"commit"     yaml:"commit"`
	BuildTime  string `json:"build_time" yaml:"build_time"`
}

func GetBuildInfo() BuildInfo {
	return BuildInfo{Version: Version, CommitHash: CommitHash, BuildTime: BuildTime}
}
