// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/forgeworks/forgestat/internal/contract"
	"github.com/forgeworks/forgestat/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport prints the contribution report using the configured output format.
// The registered user list lets the text report rank accounts without any
// attributed commits alongside the contributors.
func (ow *OutWriter) WriteReport(result *schema.Result, users []schema.User, diag schema.Diagnostics, cfg *contract.Config, duration time.Duration) error {
	return WriteReport(result, users, diag, cfg, duration)
}

// WriteUsers prints the registered user listing using the configured output format.
func (ow *OutWriter) WriteUsers(users []schema.User, cfg *contract.Config) error {
	return WriteUsers(users, cfg)
}

// WriteRepos prints the repository listing using the configured output format.
func (ow *OutWriter) WriteRepos(repos []schema.Repository, cfg *contract.Config) error {
	return WriteRepos(repos, cfg)
}

// WriteRuns prints the run history listing using the configured output format.
func (ow *OutWriter) WriteRuns(records []schema.RunRecord, cfg *contract.Config) error {
	return WriteRuns(records, cfg)
}
