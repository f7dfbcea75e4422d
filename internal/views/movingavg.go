package views

import (
	"fmt"
	"time"

	"coinboard/internal/series"
)

// Marker is a crossover event anchored to the short average.
type Marker struct {
	Time  time.Time `json:"time"`
	Value Float     `json:"value"`
}

// MovingAverages is the close price with two trailing means and the
// points where the short one crosses the long one.
type MovingAverages struct {
	ShortWindow int         `json:"short_window"`
	LongWindow  int         `json:"long_window"`
	Times       []time.Time `json:"times"`
	Close       []Float     `json:"close"`
	ShortMA     []Float     `json:"short_ma"`
	LongMA      []Float     `json:"long_ma"`
	CrossUp     []Marker    `json:"cross_up"`
	CrossDown   []Marker    `json:"cross_down"`
}

// BuildMovingAverages computes both averages over the daily close and
// locates their crossings. The short window must stay strictly below
// the long one for a crossing to mean anything.
func BuildMovingAverages(f series.Frame, short, long int) (*MovingAverages, error) {
	if short < 1 || long < 1 {
		return nil, series.ErrBadWindow
	}
	if short >= long {
		return nil, fmt.Errorf("short window %d must be less than long window %d: %w",
			short, long, series.ErrBadWindow)
	}
	if f.Empty() {
		return nil, ErrNoData
	}
	closes := f.Field(series.FieldClose)
	shortMA, err := series.RollingMean(closes, short)
	if err != nil {
		return nil, err
	}
	longMA, err := series.RollingMean(closes, long)
	if err != nil {
		return nil, err
	}
	up, down, err := series.CrossoverPoints(shortMA, longMA)
	if err != nil {
		return nil, err
	}
	return &MovingAverages{
		ShortWindow: short,
		LongWindow:  long,
		Times:       closes.Times,
		Close:       floats(closes.Values),
		ShortMA:     floats(shortMA.Values),
		LongMA:      floats(longMA.Values),
		CrossUp:     markers(shortMA, up),
		CrossDown:   markers(shortMA, down),
	}, nil
}

func markers(s series.Series, idx []int) []Marker {
	out := make([]Marker, len(idx))
	for i, j := range idx {
		out[i] = Marker{Time: s.Times[j], Value: Float(s.Values[j])}
	}
	return out
}
