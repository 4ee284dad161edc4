// Package summary provides a small fluent builder for structured
// reconciliation-pass summaries, logged (not persisted) at the end of
// every build().
package summary

import (
	"time"

	"github.com/cnscp/cns-orchestrator/pkg/log"
)

// BuildReport summarises one matchmaker + connection-writer pass.
type BuildReport struct {
	Networks    int
	Candidates  int
	Connections int
	Errors      int
	Duration    time.Duration
}

// NewBuildReport returns an empty report ready for the With* builder chain.
func NewBuildReport() *BuildReport {
	return &BuildReport{}
}

func (r *BuildReport) WithNetworks(n int) *BuildReport {
	r.Networks = n
	return r
}

func (r *BuildReport) WithCandidates(n int) *BuildReport {
	r.Candidates = n
	return r
}

func (r *BuildReport) WithConnections(n int) *BuildReport {
	r.Connections = n
	return r
}

func (r *BuildReport) WithErrors(n int) *BuildReport {
	r.Errors = n
	return r
}

func (r *BuildReport) WithDuration(d time.Duration) *BuildReport {
	r.Duration = d
	return r
}

// Log emits the report at Info level, or Warn if any write failed.
func (r *BuildReport) Log() {
	entry := log.WithFields(map[string]interface{}{
		"networks":             r.Networks,
		"candidates":           r.Candidates,
		"connections_written":  r.Connections,
		"errors":               r.Errors,
		"duration_ms":          r.Duration.Milliseconds(),
	})
	if r.Errors > 0 {
		entry.Warn("reconciliation pass completed with errors")
		return
	}
	entry.Info("reconciliation pass completed")
}
