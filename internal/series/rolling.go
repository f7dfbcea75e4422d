package series

import (
	"errors"
	"math"
	"time"
)

// ErrBadWindow reports a window size no rolling computation can use.
var ErrBadWindow = errors.New("window size must be at least 1")

// RollingMean returns the trailing mean of s over the given window.
// Early points where fewer than window values exist average what is
// available, so the result is defined from the first point on. An
// undefined value contributes nothing; a position whose whole window
// is undefined stays undefined. Window 1 reproduces the input.
func RollingMean(s Series, window int) (Series, error) {
	if window < 1 {
		return Series{}, ErrBadWindow
	}
	out := Series{
		Times:  append([]time.Time(nil), s.Times...),
		Values: make([]float64, s.Len()),
	}
	for i := range out.Values {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		sum, n := 0.0, 0
		for j := lo; j <= i; j++ {
			if defined(s.Values[j]) {
				sum += s.Values[j]
				n++
			}
		}
		if n == 0 {
			out.Values[i] = math.NaN()
			continue
		}
		out.Values[i] = sum / float64(n)
	}
	return out, nil
}
