package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the report output.
	OutputMode string

	// SourceMode represents how commits are fetched for a repository.
	SourceMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All commit source modes supported.
const (
	APISource SourceMode = "api" // default
	GitSource SourceMode = "git"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// UnknownAuthor is the sentinel login some forges report for commits whose
// author could not be mapped to an account. Commits carrying it are skipped
// before any other identity matching.
const UnknownAuthor = "unknown"

// PeriodDays maps the named reporting periods to their day counts. Period
// values outside this map resolve no day count at all.
var PeriodDays = map[string]int{
	"7":  7,
	"14": 14,
	"30": 30,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	JSONOut: {},
}

// ValidSourceModes lists all valid commit source modes.
var ValidSourceModes = map[SourceMode]struct{}{
	APISource: {},
	GitSource: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
