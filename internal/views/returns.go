package views

import "coinboard/internal/series"

// MonthlyReturns is the month-over-month percent change of the close.
type MonthlyReturns struct {
	Points []Point `json:"points"`
}

// BuildMonthlyReturns derives monthly closes and their percent change.
// The first month has no predecessor; its point is kept with a null
// value so clients still see the month on the axis. A selection that
// spans fewer than two months has no returns and reports ErrNoData.
func BuildMonthlyReturns(f series.Frame) (*MonthlyReturns, error) {
	closes := f.Resample(series.PeriodMonth).Field(series.FieldClose).DropUndefined()
	ret := series.PercentChange(closes)
	if ret.DropUndefined().Empty() {
		return nil, ErrNoData
	}
	points := make([]Point, ret.Len())
	for i := range points {
		points[i] = Point{Time: ret.Times[i], Value: Float(ret.Values[i])}
	}
	return &MonthlyReturns{Points: points}, nil
}
