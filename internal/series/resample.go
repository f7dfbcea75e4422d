package series

import (
	"fmt"
	"math"
	"time"

	"coinboard/internal/model"
)

// Period selects the calendar granularity a Frame is resampled to.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod maps a request parameter onto a Period.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDay, PeriodMonth, PeriodYear:
		return Period(s), nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// bucketStart truncates t to the start of its UTC calendar bucket.
func bucketStart(t time.Time, p Period) time.Time {
	t = t.UTC()
	switch p {
	case PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case PeriodYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// Resample groups the bars into UTC calendar buckets and aggregates
// each field: volume is the sum of its defined values, every price
// field keeps the last defined value of the bucket. Each output bar is
// stamped with its bucket start. Buckets with no source rows never
// appear; gaps in the data stay gaps.
func (f Frame) Resample(p Period) Frame {
	if len(f.Bars) == 0 {
		return Frame{}
	}
	out := make([]model.Bar, 0, len(f.Bars))
	cur := model.Bar{}
	open := false
	for _, b := range f.Bars {
		start := bucketStart(b.Time, p)
		if !open || !start.Equal(cur.Time) {
			if open {
				out = append(out, cur)
			}
			nan := math.NaN()
			cur = model.Bar{Time: start, Open: nan, High: nan, Low: nan, Close: nan}
			open = true
		}
		if defined(b.Open) {
			cur.Open = b.Open
		}
		if defined(b.High) {
			cur.High = b.High
		}
		if defined(b.Low) {
			cur.Low = b.Low
		}
		if defined(b.Close) {
			cur.Close = b.Close
		}
		if defined(b.Volume) {
			cur.Volume += b.Volume
		}
	}
	out = append(out, cur)
	return Frame{Bars: out}
}
