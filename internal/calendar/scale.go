package calendar

import (
	"fmt"
	"math"
	"sort"
)

const (
	DefaultPercentile = 95
	DefaultTicks      = 7
)

// ScaleOptions controls color-scale derivation.
type ScaleOptions struct {
	Percentile float64 `json:"percentile"`
	Ticks      int     `json:"ticks"`
}

// DefaultScaleOptions returns the 95th-percentile, 7-tick scale.
func DefaultScaleOptions() ScaleOptions {
	return ScaleOptions{Percentile: DefaultPercentile, Ticks: DefaultTicks}
}

// Scale holds the color-scale bounds for a projected year. Max is a
// percentile of the values, so cells above it render at the top color.
type Scale struct {
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
	TrueMax    float64   `json:"true_max"`
	TickValues []float64 `json:"tick_values"`
	TickLabels []string  `json:"tick_labels"`
}

// Bounds derives the color scale for values. When the percentile does not
// exceed the minimum (including an empty or constant input) the range is
// widened to [min, min+1] so downstream color mapping never divides by zero.
func Bounds(values []int, opts ScaleOptions) Scale {
	if opts.Ticks < 2 {
		opts.Ticks = 2
	}
	if opts.Percentile <= 0 || opts.Percentile > 100 {
		opts.Percentile = DefaultPercentile
	}

	sorted := make([]float64, len(values))
	for i, v := range values {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)

	var sc Scale
	if len(sorted) > 0 {
		sc.Min = sorted[0]
		sc.TrueMax = sorted[len(sorted)-1]
		sc.Max = Percentile(sorted, opts.Percentile)
	}
	if sc.Max <= sc.Min {
		sc.Max = sc.Min + 1
	}

	sc.TickValues = make([]float64, opts.Ticks)
	sc.TickLabels = make([]string, opts.Ticks)
	step := (sc.Max - sc.Min) / float64(opts.Ticks-1)
	for i := range sc.TickValues {
		v := sc.Min + step*float64(i)
		if i == opts.Ticks-1 {
			v = sc.Max
		}
		sc.TickValues[i] = v
		sc.TickLabels[i] = FormatTick(v)
	}
	sc.TickLabels[opts.Ticks-1] = "≥" + sc.TickLabels[opts.Ticks-1]

	return sc
}

// Percentile returns the p-th percentile of sorted values using linear
// interpolation between closest ranks.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}

// FormatTick renders values of 1000 and above in thousands ("1.2k").
func FormatTick(v float64) string {
	if math.Abs(v) >= 1000 {
		return fmt.Sprintf("%.1fk", v/1000)
	}
	return fmt.Sprintf("%.0f", v)
}

// Normalize maps v into [0, 1] on the scale, clamping values above Max.
func (sc Scale) Normalize(v float64) float64 {
	span := sc.Max - sc.Min
	if span <= 0 {
		return 0
	}
	n := (v - sc.Min) / span
	return math.Max(0, math.Min(1, n))
}
