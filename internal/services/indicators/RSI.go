package indicators

import "math"

const (
	rsiMax     = 100.0
	rsiNeutral = 50.0
)

type RSIService struct{}

func NewRSIService() *RSIService {
	return &RSIService{}
}

// Calculate returns the RSI of prices using simple rolling means of gains and
// losses over `period` deltas. Indexes before `period` are NaN.
func (s *RSIService) Calculate(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period+1 {
		return nanSlice(len(prices))
	}

	gains := make([]float64, len(prices))
	losses := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = math.Abs(change)
		}
	}

	// deltas start at index 1
	avgGain := rollingMean(gains, period, 1)
	avgLoss := rollingMean(losses, period, 1)

	rsi := nanSlice(len(prices))
	for i := period; i < len(prices); i++ {
		rsi[i] = s.calculatePoint(avgGain[i], avgLoss[i])
	}
	return rsi
}

// calculatePoint turns average gain/loss into RSI with explicit zero-loss handling
func (s *RSIService) calculatePoint(avgGain, avgLoss float64) float64 {
	if !Defined(avgGain) || !Defined(avgLoss) {
		return math.NaN()
	}
	if avgLoss == 0 {
		if avgGain > 0 {
			return rsiMax
		}
		return rsiNeutral
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// IsOversold reports whether rsi is defined and below threshold
func IsOversold(rsi, threshold float64) bool {
	return Defined(rsi) && rsi < threshold
}

// IsOverbought reports whether rsi is defined and above threshold
func IsOverbought(rsi, threshold float64) bool {
	return Defined(rsi) && rsi > threshold
}
