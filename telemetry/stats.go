package telemetry

import "math"

// ItemSizeStats summarizes a sample of item payload sizes, for spotting
// collections whose items vary wildly in size. Neither engine's
// CollectionInfo computes it.
type ItemSizeStats struct {
	Min           float64
	Max           float64
	Mean          float64
	StdDeviation  float64
	MinMaxRatio   float64
}

// NewItemSizeStats computes summary statistics over samples. It returns
// the zero value if samples is empty.
func NewItemSizeStats(samples []float64) ItemSizeStats {
	if len(samples) == 0 {
		return ItemSizeStats{}
	}

	min, max, sum := samples[0], samples[0], 0.0
	for _, v := range samples {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	mean := sum / float64(len(samples))

	var variance float64
	for _, v := range samples {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(samples))

	ratio := 0.0
	if max != 0 {
		ratio = min / max
	}

	return ItemSizeStats{
		Min:          min,
		Max:          max,
		Mean:         mean,
		StdDeviation: math.Sqrt(variance),
		MinMaxRatio:  ratio,
	}
}
