package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/forgeworks/forgestat/core"
	"github.com/forgeworks/forgestat/internal/contract"
	"github.com/forgeworks/forgestat/internal/iocache"
	"github.com/forgeworks/forgestat/schema"
)

// historySetup loads minimal configuration needed for history operations.
// Like cacheSetup, it skips forge credential validation.
func historySetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backendStr := viper.GetString("history-backend")
	connStr := viper.GetString("history-db-connect")

	// Standalone history commands default to the local SQLite store so a
	// plain "forgestat history" works after recorded runs.
	backend := schema.SQLiteBackend
	if backendStr != "" {
		var err error
		if backend, err = contract.ParseDatabaseBackend("history", backendStr); err != nil {
			return err
		}
	}

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// No commit caching for history commands
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	cfg.ResultLimit = viper.GetInt("limit")

	return nil
}

// historyCmd lists and exports recorded aggregation runs.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past aggregation runs",
	Long: `Show the recorded aggregation runs, newest first.

Every stats run with a configured history backend records its window, repo and
commit counts, active users and skip counters. Use --limit to cap the listing.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Examples:
  # Most recent runs
  forgestat history

  # Full history as JSON
  forgestat history --limit 0 --output json`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHistoryList(cfg, iocache.Manager); err != nil {
			contract.LogFatal("Cannot list run history", err)
		}
	},
}

// historyStatusCmd shows history store status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show detailed information about the run history store.

Displays:
- Backend type and connection status
- Total number of recorded runs
- Last and oldest run timestamps

Examples:
  forgestat history status`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetHistoryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(status)
	},
}

// historyExportCmd exports run history to a Parquet file.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for analytics",
	Long: `Export all recorded runs to a Parquet file.

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools

Requires: --output-file parameter

Examples:
  # Export all runs
  forgestat history export --output-file runs.parquet

  # Inspect with DuckDB
  duckdb -c "SELECT * FROM read_parquet('runs.parquet') LIMIT 10"`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}
