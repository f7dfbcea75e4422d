package series

import (
	"math"
	"time"
)

// Series is one field observed or derived over time, one value per
// timestamp. Undefined points are carried as NaN so a derived series
// always has the same length and order as its source.
type Series struct {
	Times  []time.Time
	Values []float64
}

func (s Series) Len() int { return len(s.Values) }

func (s Series) Empty() bool { return len(s.Values) == 0 }

// Defined reports whether the value at i is a usable number.
func (s Series) Defined(i int) bool {
	return defined(s.Values[i])
}

// DropUndefined returns a new series holding only the defined points,
// in their original order.
func (s Series) DropUndefined() Series {
	out := Series{}
	for i, v := range s.Values {
		if defined(v) {
			out.Times = append(out.Times, s.Times[i])
			out.Values = append(out.Values, v)
		}
	}
	return out
}

func defined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Direction classifies the step from one point to the next.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Directions returns one Direction per point: up when the value rose
// from its predecessor, down when it fell, flat otherwise. The first
// point has no predecessor and is always flat, as is any step touching
// an undefined value.
func Directions(s Series) []Direction {
	if s.Len() == 0 {
		return nil
	}
	out := make([]Direction, s.Len())
	out[0] = DirectionFlat
	for i := 1; i < s.Len(); i++ {
		prev, cur := s.Values[i-1], s.Values[i]
		switch {
		case cur > prev:
			out[i] = DirectionUp
		case cur < prev:
			out[i] = DirectionDown
		default:
			// covers equality and NaN on either side
			out[i] = DirectionFlat
		}
	}
	return out
}
