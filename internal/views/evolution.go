package views

import "coinboard/internal/series"

// Evolution is the per-bucket value of one metric, each point carrying
// the direction of its step from the previous bucket.
type Evolution struct {
	Metric  series.Field  `json:"metric"`
	Period  series.Period `json:"period"`
	Points  []Point       `json:"points"`
	Summary Summary       `json:"summary"`
}

// BuildEvolution resamples the frame to the requested period and
// extracts one metric. Volume buckets are sums, price buckets keep
// their last value. Buckets whose aggregate is undefined are dropped,
// so gaps in the source stay gaps in the chart.
func BuildEvolution(f series.Frame, metric series.Field, period series.Period) (*Evolution, error) {
	s := f.Resample(period).Field(metric).DropUndefined()
	if s.Empty() {
		return nil, ErrNoData
	}
	dirs := series.Directions(s)
	points := make([]Point, s.Len())
	for i := range points {
		points[i] = Point{Time: s.Times[i], Value: Float(s.Values[i]), Direction: dirs[i]}
	}
	return &Evolution{
		Metric:  metric,
		Period:  period,
		Points:  points,
		Summary: newSummary(s),
	}, nil
}
