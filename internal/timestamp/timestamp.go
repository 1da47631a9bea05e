// Package timestamp parses the preview timestamp token format.
package timestamp

import "time"

// Layout is the fixed lexical format used by preview metadata documents.
const Layout = "20060102_150405"

// Parse converts a YYYYMMDD_HHMMSS token into a UTC instant.
//
// A malformed token (wrong length, non-numeric segments, impossible
// date/time) yields the current wall-clock time instead of an error. A single
// bad timestamp must never block the rest of the catalog from loading.
func Parse(s string) time.Time {
	return ParseAt(s, time.Now)
}

// ParseAt is Parse with an injectable clock for the fallback path.
func ParseAt(s string, now func() time.Time) time.Time {
	if len(s) != len(Layout) {
		return now().UTC()
	}
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return now().UTC()
	}
	return t
}
