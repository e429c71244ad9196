package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/forgeworks/forgestat/core/window"
	"github.com/forgeworks/forgestat/internal/contract"
	"github.com/forgeworks/forgestat/schema"
)

// runsTable is the name of the run history table managed by migrations.
const runsTable = "forgestat_runs"

// HistoryStoreImpl records aggregation runs in the configured backend.
// Run IDs are generated from the start instant so the same SQL works on
// every supported dialect without auto-increment differences.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore initializes the run history store, applying any pending
// schema migrations first. The none backend returns a no-op store.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	if err := MigrateHistory(backend, connStr, -1); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}

	db, err := openDatabase(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}
	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// BeginRun creates a new run row and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, win window.Window) (int64, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	runID := startTime.UnixNano()
	var since, until *string
	if !win.Since.IsZero() {
		s := win.Since.UTC().Format(time.RFC3339)
		since = &s
	}
	if !win.Until.IsZero() {
		u := win.Until.UTC().Format(time.RFC3339)
		until = &u
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, start_time, window_since, window_until) VALUES (%s, %s, %s, %s)`,
		runsTable, placeholder(hs.backend, 1), placeholder(hs.backend, 2), placeholder(hs.backend, 3), placeholder(hs.backend, 4))
	if _, err := hs.db.Exec(query, runID, startTime.UnixMilli(), since, until); err != nil {
		return 0, fmt.Errorf("failed to begin run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run row with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	var startMillis int64
	selectQuery := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, runsTable, placeholder(hs.backend, 1))
	if err := hs.db.QueryRow(selectQuery, runID).Scan(&startMillis); err != nil {
		return fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	durationMs := int32(endTime.UnixMilli() - startMillis)

	query := fmt.Sprintf(`UPDATE %s SET
			end_time = %s, duration_ms = %s,
			repos_fetched = %s, repos_kept = %s, total_commits = %s, active_users = %s,
			unknown_skips = %s, external_skips = %s, empty_repos = %s
		WHERE run_id = %s`,
		runsTable,
		placeholder(hs.backend, 1), placeholder(hs.backend, 2),
		placeholder(hs.backend, 3), placeholder(hs.backend, 4), placeholder(hs.backend, 5), placeholder(hs.backend, 6),
		placeholder(hs.backend, 7), placeholder(hs.backend, 8), placeholder(hs.backend, 9),
		placeholder(hs.backend, 10))
	_, err := hs.db.Exec(query,
		endTime.UnixMilli(), durationMs,
		summary.ReposFetched, summary.ReposKept, summary.TotalCommits, summary.ActiveUsers,
		summary.Diagnostics.UnknownSkips, summary.Diagnostics.ExternalSkips, summary.Diagnostics.EmptyRepos,
		runID)
	if err != nil {
		return fmt.Errorf("failed to end run %d: %w", runID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A non-positive
// limit returns every recorded run.
func (hs *HistoryStoreImpl) ListRuns(limit int) ([]schema.RunRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, duration_ms, window_since, window_until,
			repos_fetched, repos_kept, total_commits, active_users,
			unknown_skips, external_skips, empty_repos
		FROM %s ORDER BY start_time DESC`, runsTable)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.RunRecord
	for rows.Next() {
		var rec schema.RunRecord
		var startMillis int64
		var endMillis *int64
		if err := rows.Scan(&rec.RunID, &startMillis, &endMillis, &rec.DurationMs, &rec.WindowSince, &rec.WindowUntil,
			&rec.ReposFetched, &rec.ReposKept, &rec.TotalCommits, &rec.ActiveUsers,
			&rec.UnknownSkips, &rec.ExternalSkips, &rec.EmptyRepos); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		rec.StartTime = time.UnixMilli(startMillis).UTC()
		if endMillis != nil {
			end := time.UnixMilli(*endMillis).UTC()
			rec.EndTime = &end
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:   string(hs.backend),
		Connected: hs.db != nil,
	}
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)
	if err := hs.db.QueryRow(countQuery).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}
	if status.TotalRuns == 0 {
		return status, nil
	}

	var lastID, lastStart, oldestStart int64
	aggQuery := fmt.Sprintf("SELECT MAX(run_id), MAX(start_time), MIN(start_time) FROM %s", runsTable)
	if err := hs.db.QueryRow(aggQuery).Scan(&lastID, &lastStart, &oldestStart); err != nil {
		return status, fmt.Errorf("failed to get run times: %w", err)
	}
	status.LastRunID = lastID
	status.LastRunTime = time.UnixMilli(lastStart).UTC()
	status.OldestRunTime = time.UnixMilli(oldestStart).UTC()

	return status, nil
}

// Close closes the underlying DB connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}
