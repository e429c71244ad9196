package parquet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeworks/forgestat/schema"
)

func sampleRecords() []schema.RunRecord {
	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	duration := int32(90000)
	since := "2025-06-03T09:00:00Z"

	return []schema.RunRecord{
		{
			RunID:         start.UnixNano(),
			StartTime:     start,
			EndTime:       &end,
			DurationMs:    &duration,
			WindowSince:   &since,
			ReposFetched:  4,
			ReposKept:     3,
			TotalCommits:  27,
			ActiveUsers:   5,
			UnknownSkips:  2,
			ExternalSkips: 1,
			EmptyRepos:    1,
		},
		{
			// Unfinished run with all nullable fields unset
			RunID:     start.Add(time.Hour).UnixNano(),
			StartTime: start.Add(time.Hour),
		},
	}
}

func TestRunStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	runSchema := parquet.SchemaOf(new(Run))
	require.NotNil(t, runSchema)

	expectedColumns := []string{
		"run_id",
		"start_time",
		"end_time",
		"duration_ms",
		"window_since",
		"window_until",
		"repos_fetched",
		"repos_kept",
		"total_commits",
		"active_users",
		"unknown_skips",
		"external_skips",
		"empty_repos",
	}

	for _, colName := range expectedColumns {
		col, ok := runSchema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestConvertRunRecords(t *testing.T) {
	runs := ConvertRunRecords(sampleRecords())
	require.Len(t, runs, 2)

	assert.Equal(t, int32(27), runs[0].TotalCommits)
	require.NotNil(t, runs[0].DurationMs)
	assert.Equal(t, int32(90000), *runs[0].DurationMs)
	require.NotNil(t, runs[0].WindowSince)
	assert.Equal(t, "2025-06-03T09:00:00Z", *runs[0].WindowSince)

	assert.Nil(t, runs[1].EndTime, "unfinished run keeps nullable fields unset")
	assert.Nil(t, runs[1].DurationMs)
	assert.Nil(t, runs[1].WindowSince)

	assert.Empty(t, ConvertRunRecords(nil))
}

func TestWriteRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")

	data := ConvertRunRecords(sampleRecords())
	require.NoError(t, WriteRunsParquet(data, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Parquet file should be created")
	assert.Positive(t, info.Size())

	// Round trip through the generic reader
	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	rows, err := parquet.Read[Run](file, info.Size())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, data[0].RunID, rows[0].RunID)
	assert.Equal(t, int32(27), rows[0].TotalCommits)
	assert.Nil(t, rows[1].EndTime)
}
