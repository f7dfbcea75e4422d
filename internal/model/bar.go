package model

import "time"

// Bar represents a single candlestick row of the price history. Price
// fields may be NaN when the source row carried an unparsable value;
// consumers are expected to skip undefined values rather than treat
// them as zero.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
