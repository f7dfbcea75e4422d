// Package views assembles the JSON payloads served by the dashboard
// API. Each builder takes an already range-filtered frame, derives the
// sequences it needs and reports ErrNoData when the selection has
// nothing to show.
package views

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"coinboard/internal/series"
)

// ErrNoData reports that a selection produced no points, typically an
// empty date range, an all-undefined metric or a year with no rows.
var ErrNoData = errors.New("no data points for the selection")

// Float is a float64 that marshals undefined values (NaN, ±Inf) as
// JSON null instead of failing the whole payload.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func floats(vs []float64) []Float {
	out := make([]Float, len(vs))
	for i, v := range vs {
		out[i] = Float(v)
	}
	return out
}

// Point is one timestamped value of a derived series. Direction is
// only set by views that color their points.
type Point struct {
	Time      time.Time        `json:"time"`
	Value     Float            `json:"value"`
	Direction series.Direction `json:"direction,omitempty"`
}

// Summary carries the headline scalars of a derived series: its first
// and last values and the overall change between them in percent. The
// change is null when the first value is zero or either end is
// undefined.
type Summary struct {
	First     Float `json:"first"`
	Last      Float `json:"last"`
	ChangePct Float `json:"change_pct"`
}

// newSummary expects a non-empty series.
func newSummary(s series.Series) Summary {
	first := s.Values[0]
	last := s.Values[s.Len()-1]
	return Summary{
		First:     Float(first),
		Last:      Float(last),
		ChangePct: Float(series.ChangePct(first, last)),
	}
}

// Meta describes the loaded dataset.
type Meta struct {
	Asset string    `json:"asset"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Rows  int       `json:"rows"`
	Years []int     `json:"years"`
}

func BuildMeta(f series.Frame, asset string) (*Meta, error) {
	if f.Empty() {
		return nil, ErrNoData
	}
	return &Meta{
		Asset: asset,
		Start: f.Start(),
		End:   f.End(),
		Rows:  f.Len(),
		Years: f.Years(),
	}, nil
}
