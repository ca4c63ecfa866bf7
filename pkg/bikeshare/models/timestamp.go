package models

import (
	"fmt"
	"strings"
	"time"
)

// timestampFormats are tried in order. Trip exports use a space separator
// with optional fractional seconds and no zone.
var timestampFormats = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

// ParseTimestamp parses a trip timestamp. Values without zone information are
// read as wall-clock time in loc; values with an explicit offset are converted
// into loc so minute-of-day is always local.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if loc == nil {
		loc = time.Local
	}

	var parseErr error
	for _, format := range timestampFormats {
		t, err := time.ParseInLocation(format, s, loc)
		if err == nil {
			return t.In(loc), nil
		}
		parseErr = err
	}

	return time.Time{}, fmt.Errorf("unable to parse time %q: %w", s, parseErr)
}
