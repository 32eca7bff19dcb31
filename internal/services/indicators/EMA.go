package indicators

// EMAService provides Exponential Moving Average calculations
type EMAService struct{}

// NewEMAService creates a new EMA service instance
func NewEMAService() *EMAService {
	return &EMAService{}
}

// Calculate computes the EMA for the entire price series.
// The first value is seeded with the first price, so there is no warm-up gap.
func (s *EMAService) Calculate(prices []float64, span int) []float64 {
	if !s.validateInputs(prices, span) {
		return nanSlice(len(prices))
	}

	ema := make([]float64, len(prices))
	multiplier := s.getMultiplier(span)

	ema[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		ema[i] = s.calculatePoint(prices[i], ema[i-1], multiplier)
	}

	return ema
}

// Private helper methods

func (s *EMAService) validateInputs(prices []float64, span int) bool {
	return len(prices) > 0 && span > 0
}

func (s *EMAService) getMultiplier(span int) float64 {
	return 2.0 / float64(span+1)
}

func (s *EMAService) calculatePoint(price, prevEMA, multiplier float64) float64 {
	return multiplier*price + (1-multiplier)*prevEMA
}
