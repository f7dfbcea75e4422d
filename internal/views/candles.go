package views

import (
	"time"

	"coinboard/internal/series"
)

// Candle is one raw daily bar of the annual candlestick view.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   Float     `json:"open"`
	High   Float     `json:"high"`
	Low    Float     `json:"low"`
	Close  Float     `json:"close"`
	Volume Float     `json:"volume"`
}

// AnnualCandles is the candlestick sequence of a single calendar year
// with its close-to-close summary.
type AnnualCandles struct {
	Year    int      `json:"year"`
	Candles []Candle `json:"candles"`
	Summary Summary  `json:"summary"`
}

// BuildAnnualCandles slices one UTC calendar year out of the frame.
// The bars are passed through unresampled.
func BuildAnnualCandles(f series.Frame, year int) (*AnnualCandles, error) {
	yf := f.FilterYear(year)
	closes := yf.Field(series.FieldClose).DropUndefined()
	if closes.Empty() {
		return nil, ErrNoData
	}
	candles := make([]Candle, yf.Len())
	for i, b := range yf.Bars {
		candles[i] = Candle{
			Time:   b.Time,
			Open:   Float(b.Open),
			High:   Float(b.High),
			Low:    Float(b.Low),
			Close:  Float(b.Close),
			Volume: Float(b.Volume),
		}
	}
	return &AnnualCandles{Year: year, Candles: candles, Summary: newSummary(closes)}, nil
}
