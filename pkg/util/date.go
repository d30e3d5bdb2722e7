package util

import (
	"fmt"
	"strconv"
	"time"
)

// unix timestamps at or above this are read as milliseconds.
const millisThreshold = 1e12

// ParseTime accepts RFC3339 (with or without fractional seconds), a bare
// date, unix seconds or unix milliseconds. Results are UTC.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		if ts >= millisThreshold {
			return time.UnixMilli(ts).UTC(), true
		}
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// ParseRange parses optional since/until bounds. A missing bound is the
// zero time. An unparseable or inverted range is an error.
func ParseRange(since, until string) (from, to time.Time, err error) {
	if since != "" {
		var ok bool
		if from, ok = ParseTime(since); !ok {
			return from, to, fmt.Errorf("invalid since %q", since)
		}
	}
	if until != "" {
		var ok bool
		if to, ok = ParseTime(until); !ok {
			return from, to, fmt.Errorf("invalid until %q", until)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, fmt.Errorf("until %s is before since %s", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	return from, to, nil
}
