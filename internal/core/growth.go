package core

import "math"

// GrowthRate is the percentage change between two period totals. Valid is
// false when the change is not computable (insufficient non-zero history);
// that sentinel is distinct from a genuine 0% change.
type GrowthRate struct {
	Pct   float64 `json:"pct"`
	Valid bool    `json:"valid"`
}

// Growth returns the percentage change between the two most recent
// non-zero totals in the series, scanning from the end. With fewer than
// two non-zero values the result is the not-computable sentinel.
func Growth(series []int64) GrowthRate {
	latest, prev := int64(0), int64(0)
	found := 0
	for i := len(series) - 1; i >= 0 && found < 2; i-- {
		if series[i] == 0 {
			continue
		}
		if found == 0 {
			latest = series[i]
		} else {
			prev = series[i]
		}
		found++
	}
	if found < 2 || prev == 0 {
		return GrowthRate{}
	}
	pct := float64(latest-prev) / float64(prev) * 100
	return GrowthRate{Pct: round1(pct), Valid: true}
}

// GrowthSeries returns month-over-month percentage changes, one per input
// position. Position 0 is always 0, and a zero previous value yields 0
// rather than a division error. The denominator is the absolute value of
// the previous total so that a negative balance does not flip the sign of
// the direction.
//
// Note the denominator convention deliberately differs from Growth, which
// divides by the signed previous value. Downstream consumers rely on each
// behavior independently.
func GrowthSeries(series []int64) []float64 {
	if len(series) == 0 {
		return nil
	}
	out := make([]float64, len(series))
	for i := 1; i < len(series); i++ {
		prev := series[i-1]
		if prev == 0 {
			continue
		}
		pct := float64(series[i]-prev) / math.Abs(float64(prev)) * 100
		out[i] = round1(pct)
	}
	return out
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
