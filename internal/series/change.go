package series

import (
	"math"
	"time"
)

// PercentChange returns the point-to-point change of s in percent. The
// first point has no predecessor and is undefined. A step is also
// undefined when either endpoint is undefined or the predecessor is
// zero; the result never contains infinities.
func PercentChange(s Series) Series {
	out := Series{
		Times:  append([]time.Time(nil), s.Times...),
		Values: make([]float64, s.Len()),
	}
	for i := range out.Values {
		out.Values[i] = math.NaN()
		if i == 0 {
			continue
		}
		prev, cur := s.Values[i-1], s.Values[i]
		if !defined(prev) || !defined(cur) || prev == 0 {
			continue
		}
		out.Values[i] = (cur - prev) / prev * 100
	}
	return out
}

// ChangePct returns the overall change between two scalars in percent,
// or NaN when it is undefined (either endpoint unusable, or a zero
// start).
func ChangePct(first, last float64) float64 {
	if !defined(first) || !defined(last) || first == 0 {
		return math.NaN()
	}
	return (last - first) / first * 100
}
