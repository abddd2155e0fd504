package selection

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/wonny/equityscreen/internal/contracts"
)

// closeRelTol is the relative tolerance under which min and max count as equal
const closeRelTol = 1e-9

// Normalize rescales a metric vector to [0,1] across the universe.
// Only present, finite values take part. Absent values always score 0.
// A degenerate range gives every usable value 1.0.
// Lower-is-better metrics are inverted as 1 - scaled.
func Normalize(values []contracts.OptionalFloat, higherIsBetter bool) []float64 {
	scores := make([]float64, len(values))

	usable := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Usable() {
			f, _ := v.Get()
			usable = append(usable, f)
		}
	}
	if len(usable) == 0 {
		return scores
	}

	lo := floats.Min(usable)
	hi := floats.Max(usable)

	if isClose(lo, hi) {
		for i, v := range values {
			if v.Usable() {
				scores[i] = 1.0
			}
		}
		return scores
	}

	scale := hi - lo
	for i, v := range values {
		if !v.Usable() {
			continue
		}
		f, _ := v.Get()
		scaled := (f - lo) / scale
		if !higherIsBetter {
			scaled = 1 - scaled
		}
		scores[i] = scaled
	}
	return scores
}

func isClose(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= closeRelTol*math.Max(math.Abs(a), math.Abs(b))
}
