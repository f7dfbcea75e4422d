package views

import (
	"time"

	"coinboard/internal/series"
)

// PriceVolume overlays the close price with the traded volume and a
// rolling mean of the volume. All slices are parallel to Times.
type PriceVolume struct {
	Window     int                `json:"window"`
	Times      []time.Time        `json:"times"`
	Close      []Float            `json:"close"`
	Volume     []Float            `json:"volume"`
	VolumeMean []Float            `json:"volume_mean"`
	VolumeDir  []series.Direction `json:"volume_direction"`
}

// BuildPriceVolume returns the daily close and volume plus the
// trailing mean of the volume over the given window. The direction of
// each volume step colors the bars; the first bar and any step
// touching an undefined volume stay flat.
func BuildPriceVolume(f series.Frame, window int) (*PriceVolume, error) {
	if f.Empty() {
		return nil, ErrNoData
	}
	volume := f.Field(series.FieldVolume)
	volMean, err := series.RollingMean(volume, window)
	if err != nil {
		return nil, err
	}
	closes := f.Field(series.FieldClose)
	return &PriceVolume{
		Window:     window,
		Times:      volume.Times,
		Close:      floats(closes.Values),
		Volume:     floats(volume.Values),
		VolumeMean: floats(volMean.Values),
		VolumeDir:  series.Directions(volume),
	}, nil
}
