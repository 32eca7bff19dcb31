package indicators

import "math"

type ATRService struct{}

func NewATRService() *ATRService {
	return &ATRService{}
}

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|).
// The first bar has no previous close and uses high-low only.
func (s *ATRService) TrueRange(highs, lows, closes []float64) []float64 {
	n := len(highs)
	if len(lows) != n || len(closes) != n {
		return nil
	}

	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		r := math.Abs(highs[i] - lows[i])
		if i > 0 {
			r = math.Max(r, math.Abs(highs[i]-closes[i-1]))
			r = math.Max(r, math.Abs(lows[i]-closes[i-1]))
		}
		tr[i] = r
	}
	return tr
}

// Calculate is the simple rolling mean of the true range; defined from index period-1
func (s *ATRService) Calculate(trueRange []float64, period int) []float64 {
	return rollingMean(trueRange, period, 0)
}
