package indicators

import (
	"math"
)

const (
	pivotLeft  = 2
	pivotRight = 2
)

// PivotLevels holds forward-filled support/resistance per bar
type PivotLevels struct {
	Support    []float64
	Resistance []float64
}

// PivotService finds fractal pivots over a centered window
type PivotService struct {
	left  int
	right int
}

func NewPivotService() *PivotService {
	return &PivotService{left: pivotLeft, right: pivotRight}
}

// Calculate marks bar i as a high pivot when its high is the max of
// [i-left, i+right] and as a low pivot when its low is the min. The level of
// the latest pivot is carried forward until a newer one appears. The last
// `right` bars can't be evaluated yet and only inherit earlier levels.
func (s *PivotService) Calculate(highs, lows []float64) *PivotLevels {
	n := len(highs)
	levels := &PivotLevels{
		Support:    nanSlice(n),
		Resistance: nanSlice(n),
	}
	if len(lows) != n {
		return levels
	}

	lastResistance := math.NaN()
	lastSupport := math.NaN()
	for i := 0; i < n; i++ {
		if i >= s.left && i+s.right < n {
			if s.isExtreme(highs, i, func(a, b float64) bool { return a > b }) {
				lastResistance = highs[i]
			}
			if s.isExtreme(lows, i, func(a, b float64) bool { return a < b }) {
				lastSupport = lows[i]
			}
		}
		levels.Resistance[i] = lastResistance
		levels.Support[i] = lastSupport
	}
	return levels
}

// isExtreme reports whether no value in the window beats x[i].
// Ties still count as pivots; any undefined value in the window disqualifies it.
func (s *PivotService) isExtreme(x []float64, i int, beats func(a, b float64) bool) bool {
	for j := i - s.left; j <= i+s.right; j++ {
		if !Defined(x[j]) || beats(x[j], x[i]) {
			return false
		}
	}
	return true
}
