package series

import "time"

// Extractor reports the value recorded for a date in raw text.
type Extractor interface {
	Lookup(text string, date time.Time) (int, bool)
}

// BuildStats summarizes one pass over the history range.
type BuildStats struct {
	Days    int `json:"days"`
	Found   int `json:"found"`
	Missing int `json:"missing"`
}

// Build scans text for every date in [start, end) and returns the days that
// carry a value. Days without a marker are skipped.
func Build(text string, ex Extractor, start, end time.Time) (Series, BuildStats) {
	out := make(Series, 0, DaysBetween(start, end))
	var stats BuildStats

	EachDay(start, end, func(d time.Time) {
		stats.Days++
		value, ok := ex.Lookup(text, d)
		if !ok {
			stats.Missing++
			return
		}
		stats.Found++
		out = append(out, DateValue{Date: d, Value: value})
	})

	return out, stats
}
