package version

import "fmt"

// Version, GitCommit, and BuildDate are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/cnscp/cns-orchestrator/pkg/version.Version=v1.0.0 \
//	  -X github.com/cnscp/cns-orchestrator/pkg/version.GitCommit=abc1234 \
//	  -X github.com/cnscp/cns-orchestrator/pkg/version.BuildDate=2026-01-01"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns a single-line version string for --version and startup banners.
func Info() string {
	if Version == "dev" {
		return "cns-orchestrator dev build"
	}
	return fmt.Sprintf("cns-orchestrator %s (%s, built %s)", Version, GitCommit, BuildDate)
}
