// Package logx configures the shared structured logger used for run
// diagnostics. User-facing fatal errors still go through contract.LogFatal;
// this logger carries per-repository fetch, cache and skip events.
package logx

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

// Init initializes the logger with proper configuration.
func Init() {
	log = logrus.New()

	// Diagnostics go to stderr so report output on stdout stays clean.
	log.SetOutput(os.Stderr)

	switch os.Getenv("FORGESTAT_LOG_LEVEL") {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// GetLogger returns the configured logger instance.
func GetLogger() *logrus.Logger {
	if log == nil {
		Init()
	}
	return log
}

// SetVerbose lowers the level to debug regardless of environment.
func SetVerbose(verbose bool) {
	if verbose {
		GetLogger().SetLevel(logrus.DebugLevel)
	}
}

// WithField adds a field to the logger.
func WithField(key string, value any) *logrus.Entry {
	return GetLogger().WithField(key, value)
}

// WithFields adds multiple fields to the logger.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return GetLogger().WithFields(fields)
}

// WithError adds an error field to the logger.
func WithError(err error) *logrus.Entry {
	return GetLogger().WithError(err)
}
