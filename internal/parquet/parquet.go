// Package parquet provides data structures and functions for exporting run
// history data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/forgeworks/forgestat/schema"
)

// Run represents a single aggregation run with metadata.
// This struct maps to the forgestat_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable, stored as TIMESTAMP with nanosecond precision)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// DurationMs is the duration of the run in milliseconds (nullable)
	DurationMs *int32 `parquet:"duration_ms,optional,snappy"`

	// WindowSince is the lower bound of the reporting window in RFC 3339 (nullable)
	WindowSince *string `parquet:"window_since,optional,snappy"`

	// WindowUntil is the upper bound of the reporting window in RFC 3339 (nullable)
	WindowUntil *string `parquet:"window_until,optional,snappy"`

	// ReposFetched is the number of repositories fetched in this run
	ReposFetched int32 `parquet:"repos_fetched,snappy"`

	// ReposKept is the number of repositories with attributed activity
	ReposKept int32 `parquet:"repos_kept,snappy"`

	// TotalCommits is the number of commits attributed across all repositories
	TotalCommits int32 `parquet:"total_commits,snappy"`

	// ActiveUsers is the number of users with at least one attributed commit
	ActiveUsers int32 `parquet:"active_users,snappy"`

	// UnknownSkips is the number of commits skipped with the unknown sentinel author
	UnknownSkips int32 `parquet:"unknown_skips,snappy"`

	// ExternalSkips is the number of commits skipped from unregistered authors
	ExternalSkips int32 `parquet:"external_skips,snappy"`

	// EmptyRepos is the number of repositories that yielded no commits
	EmptyRepos int32 `parquet:"empty_repos,snappy"`
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the Run struct tags
	writer := parquet.NewGenericWriter[Run](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			DurationMs:    record.DurationMs,
			WindowSince:   record.WindowSince,
			WindowUntil:   record.WindowUntil,
			ReposFetched:  record.ReposFetched,
			ReposKept:     record.ReposKept,
			TotalCommits:  record.TotalCommits,
			ActiveUsers:   record.ActiveUsers,
			UnknownSkips:  record.UnknownSkips,
			ExternalSkips: record.ExternalSkips,
			EmptyRepos:    record.EmptyRepos,
		}
	}
	return result
}
