package indicators

import (
	"FuturesSignalBot/internal/models"
	"math"
)

// EnrichedCandle is a candle plus every indicator the signal rules read.
// Fields that are still warming up hold NaN.
type EnrichedCandle struct {
	models.Candle

	ShortEMA  float64
	MediumEMA float64
	LongEMA   float64
	RSI       float64
	TrueRange float64
	ATR       float64

	Support    float64 // last low pivot, carried forward
	Resistance float64 // last high pivot, carried forward
	POC        float64 // point of control of the whole series
}

// Defined reports whether an indicator value has been computed
func Defined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Crossover compares two lines on consecutive bars.
// Returns 1 when fast crosses above slow, -1 when it crosses below, 0 otherwise.
func Crossover(prevFast, prevSlow, currFast, currSlow float64) int {
	if prevFast <= prevSlow && currFast > currSlow {
		return 1
	}
	if prevFast >= prevSlow && currFast < currSlow {
		return -1
	}
	return 0
}

// nanSlice returns a slice of n NaNs
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// rollingMean is the simple mean of x over `period` values ending at each index.
// Values before index `first` are not part of the series, so the first defined
// output sits at first+period-1. Each window is summed from scratch to keep
// zero windows exactly zero.
func rollingMean(x []float64, period, first int) []float64 {
	out := nanSlice(len(x))
	if period <= 0 {
		return out
	}
	for i := first + period - 1; i < len(x); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += x[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}
