package indicators

import (
	"FuturesSignalBot/internal/models"
	"math"
)

const (
	profileBuckets = 10
	rangeEpsilon   = 0.01
)

// VolumeProfile is volume summed per equal-width close-price bucket
type VolumeProfile struct {
	Low         float64
	High        float64
	BucketWidth float64
	Volumes     []float64
	POCBucket   int // -1 when the profile fell back to the mean close
	POC         float64
}

type VolumeProfileService struct {
	buckets int
}

func NewVolumeProfileService() *VolumeProfileService {
	return &VolumeProfileService{buckets: profileBuckets}
}

// Calculate builds the profile from every bar with a finite close and volume.
// The range is [min low, max high] over the finite lows and highs of those bars;
// a collapsed range is widened by rangeEpsilon. With no usable bars or no finite
// range the POC is the mean of the finite closes (NaN when there are none).
func (s *VolumeProfileService) Calculate(candles []models.Candle) *VolumeProfile {
	valid := make([]models.Candle, 0, len(candles))
	low, high := math.Inf(1), math.Inf(-1)
	for _, c := range candles {
		if !Defined(c.Close) || !Defined(c.Volume) {
			continue
		}
		valid = append(valid, c)
		if Defined(c.Low) {
			low = math.Min(low, c.Low)
		}
		if Defined(c.High) {
			high = math.Max(high, c.High)
		}
	}
	if len(valid) == 0 || math.IsInf(low, 0) || math.IsInf(high, 0) {
		return &VolumeProfile{
			Low:       math.NaN(),
			High:      math.NaN(),
			POCBucket: -1,
			POC:       meanClose(candles),
		}
	}

	if high == low {
		high += rangeEpsilon
	}
	width := (high - low) / float64(s.buckets)

	volumes := make([]float64, s.buckets)
	seen := make([]bool, s.buckets)
	for _, c := range valid {
		b := s.bucketOf(c.Close, low, width)
		volumes[b] += c.Volume
		seen[b] = true
	}

	poc := -1
	for b := 0; b < s.buckets; b++ {
		if !seen[b] {
			continue
		}
		if poc < 0 || volumes[b] > volumes[poc] {
			poc = b
		}
	}

	return &VolumeProfile{
		Low:         low,
		High:        high,
		BucketWidth: width,
		Volumes:     volumes,
		POCBucket:   poc,
		POC:         low + (float64(poc)+0.5)*width,
	}
}

// bucketOf truncates toward zero and clips into [0, buckets-1]
func (s *VolumeProfileService) bucketOf(price, low, width float64) int {
	b := int((price - low) / width)
	if b < 0 {
		return 0
	}
	if b > s.buckets-1 {
		return s.buckets - 1
	}
	return b
}

func meanClose(candles []models.Candle) float64 {
	sum, n := 0.0, 0
	for _, c := range candles {
		if Defined(c.Close) {
			sum += c.Close
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
