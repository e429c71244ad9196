// Package window resolves the effective reporting time window from
// configuration values.
package window

import (
	"fmt"
	"time"

	"github.com/forgeworks/forgestat/schema"
)

// Accepted layouts for explicit date bounds, interpreted as UTC.
const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = "2006-01-02 15:04:05"
)

// Daily cutoff applied when the resolved day count is exactly one. A one-day
// window means "since yesterday's cutoff", not a literal 24 hours.
const (
	cutoffHour   = 17
	cutoffMinute = 30
)

// Input carries the raw configuration values a window is resolved from.
// An explicit day count wins over a named period, and any resolved day
// count wins over explicit date strings.
type Input struct {
	Days      int    // Explicit day count; 0 means unset
	Period    string // Named period mapped through schema.PeriodDays
	SinceDate string // Explicit lower bound, used only when no day count resolves
	EndDate   string // Explicit upper bound, ignored whenever a day count resolves
}

// Window is a resolved [Since, Until) pair. A zero bound is unbounded.
type Window struct {
	Since time.Time
	Until time.Time
}

// Bounded reports whether either end of the window is set.
func (w Window) Bounded() bool {
	return !w.Since.IsZero() || !w.Until.IsZero()
}

// Resolve computes the window from in, relative to now. Malformed explicit
// date strings are a configuration error; everything else resolves.
func Resolve(in Input, now time.Time) (Window, error) {
	now = now.UTC()
	days := in.Days
	if days == 0 && in.Period != "" {
		// Unlisted periods resolve no day count and fall through.
		days = schema.PeriodDays[in.Period]
	}
	switch {
	case days == 1:
		until := time.Date(now.Year(), now.Month(), now.Day(), cutoffHour, cutoffMinute, 0, 0, time.UTC)
		return Window{Since: until.AddDate(0, 0, -1), Until: until}, nil
	case days > 1:
		return Window{Since: now.AddDate(0, 0, -days)}, nil
	}
	var w Window
	if in.SinceDate != "" {
		since, err := parseBound(in.SinceDate)
		if err != nil {
			return Window{}, err
		}
		w.Since = since
	}
	if in.EndDate != "" {
		until, err := parseBound(in.EndDate)
		if err != nil {
			return Window{}, err
		}
		w.Until = until
	}
	return w, nil
}

func parseBound(value string) (time.Time, error) {
	for _, layout := range []string{DateTimeFormat, DateFormat} {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected %q or %q", value, DateFormat, DateTimeFormat)
}
