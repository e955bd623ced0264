// Package extract locates date-keyed numeric markers inside the script blob
// returned by the occupancy dashboard.
//
// The dashboard embeds its series as a sequence of JavaScript object literals,
//
//	date:'2021-05-10', hospi_phg:1234}]);
//
// which is not JSON and is not parsed as such. Lookups are anchored on the
// exact literal prefix, so any drift in the upstream format (key name, quoting,
// spacing) makes every date report "not found" instead of failing loudly.
package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultKey        = "hospi_phg"
	DefaultTerminator = ";"
	DefaultTrim       = 3
)

// Marker describes how one day's value is embedded in the upstream text.
type Marker struct {
	Key        string // metric key following the date literal
	Terminator string // statement terminator closing the record
	Trim       int    // characters dropped immediately before the terminator
}

// DefaultMarker returns the marker used by the occupancy dashboard.
func DefaultMarker() Marker {
	return Marker{
		Key:        DefaultKey,
		Terminator: DefaultTerminator,
		Trim:       DefaultTrim,
	}
}

// Prefix returns the literal text that precedes the value for date.
func (m Marker) Prefix(date time.Time) string {
	return fmt.Sprintf("date:'%s', %s:", date.Format(time.DateOnly), m.Key)
}

// Validate reports configuration errors in the marker.
func (m Marker) Validate() error {
	if strings.TrimSpace(m.Key) == "" {
		return fmt.Errorf("marker key is empty")
	}
	if m.Terminator == "" {
		return fmt.Errorf("marker terminator is empty")
	}
	if m.Trim < 0 {
		return fmt.Errorf("marker trim must be >= 0, got %d", m.Trim)
	}
	return nil
}

// Extractor looks up per-day values in raw text. It holds no mutable state
// and is safe for concurrent use.
type Extractor struct {
	marker Marker
}

// New creates an Extractor for the given marker.
func New(marker Marker) *Extractor {
	return &Extractor{marker: marker}
}

// Marker returns the marker the extractor anchors on.
func (e *Extractor) Marker() Marker {
	return e.marker
}

// Lookup returns the value recorded for date in text. The second result is
// false when no marker exists for the date or the embedded value is malformed;
// neither case is an error.
func (e *Extractor) Lookup(text string, date time.Time) (int, bool) {
	prefix := e.marker.Prefix(date)

	start := strings.Index(text, prefix)
	if start < 0 {
		return 0, false
	}
	start += len(prefix)

	rel := strings.Index(text[start:], e.marker.Terminator)
	if rel < 0 {
		return 0, false
	}

	end := start + rel - e.marker.Trim
	if end <= start {
		return 0, false
	}

	value, err := strconv.Atoi(strings.TrimSpace(text[start:end]))
	if err != nil || value < 0 {
		return 0, false
	}

	return value, true
}
