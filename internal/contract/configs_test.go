package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeworks/forgestat/schema"
)

func validRawInput() *ConfigRawInput {
	return &ConfigRawInput{
		ForgeURL:       "https://git.corp.example/",
		Token:          "abc123",
		Source:         "api",
		Output:         "text",
		Limit:          DefaultResultLimit,
		Precision:      DefaultPrecision,
		Color:          "yes",
		Period:         "7",
		CacheBackend:   "none",
		HistoryBackend: "none",
	}
}

func TestProcessAndValidateHappyPath(t *testing.T) {
	cfg := &Config{}
	input := validRawInput()
	input.Aliases = "ci-bot:alice, ext:bob"

	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, "https://git.corp.example", cfg.ForgeURL)
	assert.Equal(t, schema.APISource, cfg.Source)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, DefaultFetchTimeout, cfg.Timeout)
	assert.Equal(t, schema.AliasMap{"ci-bot": "alice", "ext": "bob"}, cfg.Aliases)
	assert.False(t, cfg.Window.Since.IsZero())
	assert.True(t, cfg.Window.Until.IsZero())
	assert.True(t, cfg.UseColors)
}

func TestProcessAndValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConfigRawInput)
		wantErr string
	}{
		{
			name:    "missing forge url",
			mutate:  func(in *ConfigRawInput) { in.ForgeURL = "" },
			wantErr: "forge-url is required",
		},
		{
			name:    "relative forge url",
			mutate:  func(in *ConfigRawInput) { in.ForgeURL = "git.corp.example" },
			wantErr: "not a valid absolute URL",
		},
		{
			name: "no usable credentials",
			mutate: func(in *ConfigRawInput) {
				in.Token = ""
				in.Username = "alice"
			},
			wantErr: "authentication is required",
		},
		{
			name:    "invalid source mode",
			mutate:  func(in *ConfigRawInput) { in.Source = "svn" },
			wantErr: "invalid source",
		},
		{
			name:    "git source needs a clone dir",
			mutate:  func(in *ConfigRawInput) { in.Source = "git" },
			wantErr: "clone-dir is required",
		},
		{
			name:    "invalid output mode",
			mutate:  func(in *ConfigRawInput) { in.Output = "xml" },
			wantErr: "invalid output format",
		},
		{
			name:    "limit out of range",
			mutate:  func(in *ConfigRawInput) { in.Limit = 0 },
			wantErr: "limit must be greater than 0",
		},
		{
			name:    "negative days",
			mutate:  func(in *ConfigRawInput) { in.Days = -3 },
			wantErr: "days must not be negative",
		},
		{
			name: "malformed since date",
			mutate: func(in *ConfigRawInput) {
				in.Period = ""
				in.Since = "06/10/2025"
			},
			wantErr: "invalid date",
		},
		{
			name:    "invalid timeout",
			mutate:  func(in *ConfigRawInput) { in.Timeout = "soon" },
			wantErr: "invalid timeout",
		},
		{
			name:    "invalid cache backend",
			mutate:  func(in *ConfigRawInput) { in.CacheBackend = "redis" },
			wantErr: "invalid cache backend",
		},
		{
			name:    "invalid history backend",
			mutate:  func(in *ConfigRawInput) { in.HistoryBackend = "redis" },
			wantErr: "invalid history backend",
		},
		{
			name: "mysql backend without connection string",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "mysql"
			},
			wantErr: "connection string is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRawInput()
			tt.mutate(input)
			err := ProcessAndValidate(&Config{}, input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProcessAndValidateFlagDefaults(t *testing.T) {
	// The stock invocation provides only forge-url and credentials on top
	// of the built-in flag defaults. In particular history-backend stays
	// empty, which disables run recording rather than failing validation.
	cfg := &Config{}
	input := &ConfigRawInput{
		ForgeURL:     "https://git.corp.example",
		Token:        "abc123",
		Source:       "api",
		Timeout:      "60s",
		Limit:        DefaultResultLimit,
		Precision:    DefaultPrecision,
		Output:       "text",
		Color:        "yes",
		CacheBackend: "sqlite",
	}

	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, schema.SQLiteBackend, cfg.CacheBackend)
	assert.Equal(t, schema.DatabaseBackend(""), cfg.HistoryBackend)
}

func TestParseDatabaseBackend(t *testing.T) {
	backend, err := ParseDatabaseBackend("cache", "sqlite")
	require.NoError(t, err)
	assert.Equal(t, schema.SQLiteBackend, backend)

	backend, err = ParseDatabaseBackend("cache", " MySQL ")
	require.NoError(t, err)
	assert.Equal(t, schema.MySQLBackend, backend)

	_, err = ParseDatabaseBackend("cache", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cache backend 'bogus'")

	_, err = ParseDatabaseBackend("history", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid history backend")
}

func TestProcessAndValidateUserPassAuth(t *testing.T) {
	cfg := &Config{}
	input := validRawInput()
	input.Token = ""
	input.Username = "alice"
	input.Password = "s3cret"
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, "alice", cfg.Username)
}

func TestProcessTimeWindowDayCountBeatsEnd(t *testing.T) {
	cfg := &Config{}
	input := validRawInput()
	input.Days = 7
	input.End = "2025-01-31"
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, processTimeWindow(cfg, input, now))
	assert.Equal(t, now.AddDate(0, 0, -7), cfg.Window.Since)
	assert.True(t, cfg.Window.Until.IsZero())
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@tcp(localhost:3306)/forgestat"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=forgestat"))

	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, ""))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "localhost/forgestat"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "localhost"))
}

func TestSameSQLiteFileRejected(t *testing.T) {
	input := validRawInput()
	input.CacheBackend = "sqlite"
	input.HistoryBackend = "sqlite"
	input.CacheDBConnect = "/tmp/forgestat.db"
	input.HistoryDBConnect = "/tmp/forgestat.db"
	err := ProcessAndValidate(&Config{}, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different SQLite database files")
}
