// Package contract provides interfaces and shared utilities for the
// forgestat CLI's internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/forgeworks/forgestat/core/window"
	"github.com/forgeworks/forgestat/schema"
)

// ForgeClient defines the forge REST operations the pipeline consumes.
// This allows the aggregation flow to be tested without a live forge.
type ForgeClient interface {
	// ListActiveUsers returns all registered accounts, filtered to active ones.
	ListActiveUsers(ctx context.Context) ([]schema.User, error)

	// ListOrgs returns the names of all organizations on the forge.
	ListOrgs(ctx context.Context) ([]string, error)

	// ListOrgRepos returns an organization's repositories, forks excluded.
	ListOrgRepos(ctx context.Context, org string) ([]schema.Repository, error)

	// ListRepoCommits returns a repository's commits within the window.
	ListRepoCommits(ctx context.Context, repo schema.Repository, win window.Window) ([]schema.RawCommit, error)
}

// CommitSource produces the raw commit sequence for one repository and
// window. Both the API-backed and the git-log-backed sources implement it;
// downstream aggregation never knows which one produced a record.
type CommitSource interface {
	Fetch(ctx context.Context, repo schema.Repository, win window.Window) ([]schema.RawCommit, error)
}

// CommitSourceFunc adapts a plain function to a CommitSource.
type CommitSourceFunc func(ctx context.Context, repo schema.Repository, win window.Window) ([]schema.RawCommit, error)

// Fetch implements the CommitSource interface.
func (f CommitSourceFunc) Fetch(ctx context.Context, repo schema.Repository, win window.Window) ([]schema.RawCommit, error) {
	return f(ctx, repo, win)
}

// CacheManager defines the interface for managing persistent stores.
// This allows the storage layer to be mocked for testing.
type CacheManager interface {
	GetCommitStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for commit cache storage.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking aggregation runs.
type HistoryStore interface {
	// BeginRun creates a new run row and returns its unique ID
	BeginRun(startTime time.Time, win window.Window) (int64, error)

	// EndRun updates the run row with completion data
	EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error

	// ListRuns returns the most recent runs, newest first
	ListRuns(limit int) ([]schema.RunRecord, error)

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection
	Close() error
}
