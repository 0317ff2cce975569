package ace

import "math"

// Range is the observed [Min, Max] interval of one channel's scores.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Flat reports whether the range has no spread to stretch.
func (r Range) Flat() bool {
	return !(r.Max > r.Min)
}

// Extrema holds one Range per color channel.
type Extrema [Channels]Range

// NewExtrema returns the identity element of Merge: every Min at +Inf, every Max at -Inf.
func NewExtrema() Extrema {
	var e Extrema
	for c := range e {
		e[c] = Range{Min: math.Inf(1), Max: math.Inf(-1)}
	}
	return e
}

// Observe widens the extrema to include one pixel's scores.
func (e *Extrema) Observe(scores [Channels]float64) {
	for c, s := range scores {
		if s < e[c].Min {
			e[c].Min = s
		}
		if s > e[c].Max {
			e[c].Max = s
		}
	}
}

// Merge folds other into e. The operation is commutative and associative, so
// worker results may be merged in any order.
func (e *Extrema) Merge(other Extrema) {
	for c := range e {
		e[c].Min = math.Min(e[c].Min, other[c].Min)
		e[c].Max = math.Max(e[c].Max, other[c].Max)
	}
}

// ReduceExtrema merges the worker-local extrema into one global value.
func ReduceExtrema(parts []Extrema) Extrema {
	global := NewExtrema()
	for _, p := range parts {
		global.Merge(p)
	}
	return global
}
