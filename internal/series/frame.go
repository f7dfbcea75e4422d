// Package series implements the time-series operations the dashboard is
// built on: range filtering, calendar resampling and the derived
// sequences (percent change, rolling mean, crossover detection). All
// operations return new values and never mutate their input, so a
// Frame loaded once can safely back any number of requests.
package series

import (
	"fmt"
	"math"
	"sort"
	"time"

	"coinboard/internal/model"
)

// Field selects one column of a Frame.
type Field string

const (
	FieldOpen   Field = "open"
	FieldHigh   Field = "high"
	FieldLow    Field = "low"
	FieldClose  Field = "close"
	FieldVolume Field = "volume"
)

// ParseField maps a request parameter onto a Field.
func ParseField(s string) (Field, error) {
	switch Field(s) {
	case FieldOpen, FieldHigh, FieldLow, FieldClose, FieldVolume:
		return Field(s), nil
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// Frame is a time-ascending collection of bars. The sort order is
// established once by NewFrame; every derived Frame is a contiguous
// sub-sequence and keeps it. Callers must not mutate Bars.
type Frame struct {
	Bars []model.Bar
}

// NewFrame sorts bars by timestamp and wraps them in a Frame. The sort
// is stable so rows sharing a timestamp keep their input order, which
// makes "last value wins" aggregation deterministic.
func NewFrame(bars []model.Bar) Frame {
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})
	return Frame{Bars: bars}
}

func (f Frame) Len() int { return len(f.Bars) }

func (f Frame) Empty() bool { return len(f.Bars) == 0 }

// Start returns the earliest timestamp, or the zero time for an empty
// frame.
func (f Frame) Start() time.Time {
	if len(f.Bars) == 0 {
		return time.Time{}
	}
	return f.Bars[0].Time
}

// End returns the latest timestamp, or the zero time for an empty
// frame.
func (f Frame) End() time.Time {
	if len(f.Bars) == 0 {
		return time.Time{}
	}
	return f.Bars[len(f.Bars)-1].Time
}

// FilterRange returns the bars with start <= t <= end. Both ends are
// inclusive. An empty result is valid and carries no error; callers
// decide whether emptiness is reportable.
func (f Frame) FilterRange(start, end time.Time) Frame {
	lo := sort.Search(len(f.Bars), func(i int) bool {
		return !f.Bars[i].Time.Before(start)
	})
	hi := sort.Search(len(f.Bars), func(i int) bool {
		return f.Bars[i].Time.After(end)
	})
	if lo >= hi {
		return Frame{}
	}
	return Frame{Bars: f.Bars[lo:hi]}
}

// FilterYear returns the bars whose timestamp falls in the given UTC
// calendar year.
func (f Frame) FilterYear(year int) Frame {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return f.FilterRange(start, start.AddDate(1, 0, 0).Add(-time.Nanosecond))
}

// Years lists the distinct UTC calendar years present, ascending.
func (f Frame) Years() []int {
	var years []int
	for _, b := range f.Bars {
		y := b.Time.UTC().Year()
		if len(years) == 0 || years[len(years)-1] != y {
			years = append(years, y)
		}
	}
	return years
}

// Field extracts one column as a Series. The result owns its slices,
// so later derivations cannot reach back into the Frame.
func (f Frame) Field(field Field) Series {
	times := make([]time.Time, len(f.Bars))
	values := make([]float64, len(f.Bars))
	for i, b := range f.Bars {
		times[i] = b.Time
		values[i] = barValue(b, field)
	}
	return Series{Times: times, Values: values}
}

func barValue(b model.Bar, field Field) float64 {
	switch field {
	case FieldOpen:
		return b.Open
	case FieldHigh:
		return b.High
	case FieldLow:
		return b.Low
	case FieldClose:
		return b.Close
	case FieldVolume:
		return b.Volume
	}
	return math.NaN()
}
