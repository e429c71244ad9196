package schema

import "time"

// CacheStatus represents the status of the commit cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
}

// RunRecord represents a row from the forgestat_runs history table.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	DurationMs    *int32
	WindowSince   *string
	WindowUntil   *string
	ReposFetched  int32
	ReposKept     int32
	TotalCommits  int32
	ActiveUsers   int32
	UnknownSkips  int32
	ExternalSkips int32
	EmptyRepos    int32
}

// RunSummary carries the completion counters recorded when a run ends.
type RunSummary struct {
	ReposFetched int
	ReposKept    int
	TotalCommits int
	ActiveUsers  int
	Diagnostics  Diagnostics
}

// HistoryStatus represents the status of the run history store.
type HistoryStatus struct {
	Backend       string    `json:"backend"`
	Connected     bool      `json:"connected"`
	TotalRuns     int       `json:"total_runs"`
	LastRunID     int64     `json:"last_run_id"`
	LastRunTime   time.Time `json:"last_run_time"`
	OldestRunTime time.Time `json:"oldest_run_time"`
}
