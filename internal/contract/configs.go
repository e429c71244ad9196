package contract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/forgeworks/forgestat/core/window"
	"github.com/forgeworks/forgestat/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit  = 20
	MaxResultLimit      = 1000
	DefaultPrecision    = 1
	DefaultFetchTimeout = 60 * time.Second
	MaxFetchTimeout     = 10 * time.Minute
)

// Config holds the runtime configuration for one aggregation run.
// This struct remains the "final, validated" config.
type Config struct {
	ForgeURL string
	Token    string
	Username string
	Password string

	Source   schema.SourceMode
	CloneDir string
	Timeout  time.Duration

	Window  window.Window
	Aliases schema.AliasMap

	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool
	Verbose     bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config
// file). Viper unmarshals into this struct.
type ConfigRawInput struct {
	ForgeURL string `mapstructure:"forge-url"`
	Token    string `mapstructure:"token"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	Source   string `mapstructure:"source"`
	CloneDir string `mapstructure:"clone-dir"`
	Timeout  string `mapstructure:"timeout"`

	Days    int    `mapstructure:"days"`
	Period  string `mapstructure:"period"`
	Since   string `mapstructure:"since"`
	End     string `mapstructure:"end"`
	Aliases string `mapstructure:"aliases"`

	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Limit      int    `mapstructure:"limit"`
	Precision  int    `mapstructure:"precision"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`
	Verbose    bool   `mapstructure:"verbose"`

	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateConnection(cfg, input); err != nil {
		return err
	}
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeWindow(cfg, input, time.Now()); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateConnection checks the forge URL and the credential pair. The run
// cannot start without a reachable URL and some usable authentication.
func validateConnection(cfg *Config, input *ConfigRawInput) error {
	cfg.ForgeURL = strings.TrimRight(strings.TrimSpace(input.ForgeURL), "/")
	if cfg.ForgeURL == "" {
		return fmt.Errorf("forge-url is required (set --forge-url or FORGESTAT_FORGE_URL)")
	}
	parsed, err := url.Parse(cfg.ForgeURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("forge-url %q is not a valid absolute URL", input.ForgeURL)
	}

	cfg.Token = strings.TrimSpace(input.Token)
	cfg.Username = strings.TrimSpace(input.Username)
	cfg.Password = input.Password
	if cfg.Token == "" && (cfg.Username == "" || cfg.Password == "") {
		return fmt.Errorf("authentication is required: set token, or username and password")
	}
	return nil
}

// validateSimpleInputs processes and validates all non-window fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.CloneDir = input.CloneDir
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose
	cfg.Aliases = schema.ParseAliases(input.Aliases)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Precision < 0 || input.Precision > 2 {
		return fmt.Errorf("precision must be between 0 and 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Source = schema.SourceMode(strings.ToLower(input.Source))
	if _, ok := schema.ValidSourceModes[cfg.Source]; !ok {
		return fmt.Errorf("invalid source '%s'. must be api, git", input.Source)
	}
	if cfg.Source == schema.GitSource && cfg.CloneDir == "" {
		return fmt.Errorf("clone-dir is required when using the git source")
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, json", input.Output)
	}

	cfg.Timeout = DefaultFetchTimeout
	if input.Timeout != "" {
		timeout, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", input.Timeout, err)
		}
		if timeout <= 0 || timeout > MaxFetchTimeout {
			return fmt.Errorf("timeout must be positive and at most %s (received %s)", MaxFetchTimeout, timeout)
		}
		cfg.Timeout = timeout
	}

	return nil
}

// processTimeWindow resolves the reporting window. Malformed explicit dates
// abort the run before any fetching begins.
func processTimeWindow(cfg *Config, input *ConfigRawInput, now time.Time) error {
	if input.Days < 0 {
		return fmt.Errorf("days must not be negative (received %d)", input.Days)
	}
	win, err := window.Resolve(window.Input{
		Days:      input.Days,
		Period:    input.Period,
		SinceDate: input.Since,
		EndDate:   input.End,
	}, now)
	if err != nil {
		return err
	}
	cfg.Window = win
	return nil
}

// ParseDatabaseBackend normalizes a raw backend value and rejects values
// outside the supported set. kind names the store in the error message.
func ParseDatabaseBackend(kind, raw string) (schema.DatabaseBackend, error) {
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid %s backend '%s'. must be sqlite, mysql, postgresql, none", kind, raw)
	}
	return backend, nil
}

// ValidateDatabaseConnectionString validates the format of database
// connection strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cacheBackend, err := ParseDatabaseBackend("cache", input.CacheBackend)
	if err != nil {
		return err
	}
	cfg.CacheBackend = cacheBackend
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// An empty history backend disables run recording. It is the flag
	// default, so the stock invocation must pass validation.
	cfg.HistoryBackend = ""
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if strings.TrimSpace(input.HistoryBackend) != "" {
		historyBackend, err := ParseDatabaseBackend("history", input.HistoryBackend)
		if err != nil {
			return err
		}
		cfg.HistoryBackend = historyBackend
		if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
			return err
		}
	}

	// Cache and history must not collide on the same SQLite file.
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}

	return nil
}
