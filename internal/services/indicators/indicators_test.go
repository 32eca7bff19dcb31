package indicators

import (
	"FuturesSignalBot/internal/models"
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

// helper: n candles with close rising by step each bar
func mkRising(base, step float64, n int) []models.Candle {
	out := make([]models.Candle, n)
	t0 := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := base + float64(i)*step
		out[i] = models.Candle{
			OpenTime: t0.Add(time.Duration(i) * 5 * time.Minute),
			Open:     c - step/2,
			High:     c + 1,
			Low:      c - 1,
			Close:    c,
			Volume:   100,
		}
	}
	return out
}

func closesOf(cs []models.Candle) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Close
	}
	return out
}

func TestEMA_SeedAndRecursion(t *testing.T) {
	prices := []float64{10, 11, 9, 12, 12.5, 8, 15}
	for _, span := range []int{9, 21, 50} {
		ema := NewEMAService().Calculate(prices, span)
		if ema[0] != prices[0] {
			t.Fatalf("span %d: ema[0]=%v want %v", span, ema[0], prices[0])
		}
		alpha := 2.0 / float64(span+1)
		prev := prices[0]
		for i := 1; i < len(prices); i++ {
			want := alpha*prices[i] + (1-alpha)*prev
			if ema[i] != want {
				t.Fatalf("span %d: ema[%d]=%v want %v", span, i, ema[i], want)
			}
			prev = want
		}
	}
}

func TestEMA_InvalidSpan(t *testing.T) {
	ema := NewEMAService().Calculate([]float64{1, 2}, 0)
	if len(ema) != 2 || Defined(ema[0]) || Defined(ema[1]) {
		t.Fatalf("expected undefined values for span 0, got %v", ema)
	}
}

func TestRSI_RisingSeriesHoldsAt100(t *testing.T) {
	closes := closesOf(mkRising(5000, 0.5, 60))
	rsi := NewRSIService().Calculate(closes, 14)

	for i := 0; i < 14; i++ {
		if Defined(rsi[i]) {
			t.Fatalf("rsi[%d] should be undefined during warm-up, got %v", i, rsi[i])
		}
	}
	for i := 14; i < len(rsi); i++ {
		if rsi[i] != 100 {
			t.Fatalf("rsi[%d]=%v want 100", i, rsi[i])
		}
	}
}

func TestRSI_EdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		period int
		want   float64
	}{
		{"flat", []float64{5, 5, 5, 5}, 3, 50},
		{"falling", []float64{9, 8, 7, 6}, 3, 0},
		{"mixed", []float64{10, 11, 12, 11}, 3, 100 - 100/(1+2.0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rsi := NewRSIService().Calculate(tc.prices, tc.period)
			got := rsi[tc.period]
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("rsi=%v want %v", got, tc.want)
			}
		})
	}
}

func TestRSI_ShortSeriesUndefined(t *testing.T) {
	rsi := NewRSIService().Calculate([]float64{1, 2, 3}, 14)
	for i, v := range rsi {
		if Defined(v) {
			t.Fatalf("rsi[%d] should be undefined, got %v", i, v)
		}
	}
	if IsOversold(rsi[2], 30) || IsOverbought(rsi[2], 70) {
		t.Fatalf("undefined RSI must not satisfy extremes")
	}
}

func TestATR_TrueRangeAndWarmup(t *testing.T) {
	highs := []float64{10, 12, 11, 15}
	lows := []float64{8, 9, 7, 14}
	closes := []float64{9, 11, 8, 14.5}
	svc := NewATRService()

	tr := svc.TrueRange(highs, lows, closes)
	want := []float64{2, 3, 4, 7}
	for i := range want {
		if tr[i] != want[i] {
			t.Fatalf("tr[%d]=%v want %v", i, tr[i], want[i])
		}
	}

	atr := svc.Calculate(tr, 2)
	if Defined(atr[0]) {
		t.Fatalf("atr[0] should be undefined for period 2")
	}
	if atr[1] != 2.5 || atr[3] != 5.5 {
		t.Fatalf("unexpected atr %v", atr)
	}
	for i := 1; i < len(atr); i++ {
		if atr[i] < 0 {
			t.Fatalf("atr[%d] negative: %v", i, atr[i])
		}
	}
}

func TestPivots_ForwardFill(t *testing.T) {
	//            0    1    2    3    4    5    6    7    8
	highs := []float64{10, 11, 14, 12, 11, 10, 11, 12, 13}
	lows := []float64{9, 10, 12, 10, 8, 9, 10, 11, 12}

	levels := NewPivotService().Calculate(highs, lows)

	for i := 0; i < 2; i++ {
		if Defined(levels.Resistance[i]) {
			t.Fatalf("resistance[%d] should be undefined before first pivot", i)
		}
	}
	for i := 2; i < len(highs); i++ {
		if levels.Resistance[i] != 14 {
			t.Fatalf("resistance[%d]=%v want 14", i, levels.Resistance[i])
		}
	}
	for i := 0; i < 4; i++ {
		if Defined(levels.Support[i]) {
			t.Fatalf("support[%d] should be undefined before first low pivot", i)
		}
	}
	for i := 4; i < len(lows); i++ {
		if levels.Support[i] != 8 {
			t.Fatalf("support[%d]=%v want 8", i, levels.Support[i])
		}
	}
}

func TestPivots_LastTwoBarsNotEvaluated(t *testing.T) {
	highs := []float64{1, 2, 3, 4, 5, 6, 20}
	lows := []float64{0, 1, 2, 3, 4, 5, 6}
	levels := NewPivotService().Calculate(highs, lows)
	for i, v := range levels.Resistance {
		if Defined(v) {
			t.Fatalf("resistance[%d]=%v: a rising series has no evaluable high pivot", i, v)
		}
	}
}

func TestVolumeProfile_POCInsideRange(t *testing.T) {
	candles := mkRising(100, 1, 30)
	candles[25].Volume = 10_000 // heavy bar near the top

	p := NewVolumeProfileService().Calculate(candles)
	if p.POCBucket != 8 {
		t.Fatalf("expected POC bucket 8, got %d", p.POCBucket)
	}
	if p.POC < p.Low || p.POC > p.High {
		t.Fatalf("POC %v outside [%v, %v]", p.POC, p.Low, p.High)
	}
	wantPOC := p.Low + 8.5*p.BucketWidth
	if math.Abs(p.POC-wantPOC) > 1e-9 {
		t.Fatalf("POC=%v want %v", p.POC, wantPOC)
	}
}

func TestVolumeProfile_DegenerateRange(t *testing.T) {
	candles := []models.Candle{
		{Open: 5, High: 5, Low: 5, Close: 5, Volume: 3},
		{Open: 5, High: 5, Low: 5, Close: 5, Volume: 4},
	}
	p := NewVolumeProfileService().Calculate(candles)
	if p.High != 5+rangeEpsilon {
		t.Fatalf("expected widened range, got high=%v", p.High)
	}
	if p.POCBucket != 0 || !Defined(p.POC) {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestVolumeProfile_Fallbacks(t *testing.T) {
	empty := NewVolumeProfileService().Calculate(nil)
	if Defined(empty.POC) || empty.POCBucket != -1 {
		t.Fatalf("empty input should give undefined POC, got %+v", empty)
	}

	invalid := []models.Candle{
		{Open: 1, High: 2, Low: 0, Close: 1, Volume: math.NaN()},
		{Open: 1, High: 2, Low: 0, Close: 3, Volume: math.Inf(1)},
	}
	p := NewVolumeProfileService().Calculate(invalid)
	if p.POC != 2 {
		t.Fatalf("expected mean close fallback 2, got %v", p.POC)
	}
}

func TestVolumeProfile_KeepsBarsWithFiniteCloseAndVolume(t *testing.T) {
	candles := []models.Candle{
		{Open: math.NaN(), High: 10, Low: 0, Close: 9.5, Volume: 500},
		{Open: 1, High: math.NaN(), Low: math.NaN(), Close: 1, Volume: 10},
		{Open: 2, High: 3, Low: 1, Close: 2, Volume: 20},
		{Open: 5, High: 50, Low: -50, Close: math.NaN(), Volume: 1000},
	}

	p := NewVolumeProfileService().Calculate(candles)
	if p.Low != 0 || p.High != 10 {
		t.Fatalf("expected range [0, 10] from finite lows/highs of usable bars, got [%v, %v]", p.Low, p.High)
	}
	if p.POCBucket != 9 || math.Abs(p.POC-9.5) > 1e-9 {
		t.Fatalf("expected the NaN-open bar to set POC bucket 9 (9.5), got %d (%v)", p.POCBucket, p.POC)
	}
	if p.Volumes[1] != 10 || p.Volumes[2] != 20 {
		t.Fatalf("unexpected bucket volumes %v", p.Volumes)
	}
}

func TestVolumeProfile_NoFiniteRange(t *testing.T) {
	candles := []models.Candle{
		{High: math.NaN(), Low: math.NaN(), Close: 4, Volume: 1},
		{High: math.NaN(), Low: math.NaN(), Close: 6, Volume: 1},
	}
	p := NewVolumeProfileService().Calculate(candles)
	if p.POCBucket != -1 || p.POC != 5 {
		t.Fatalf("expected mean close fallback 5, got %+v", p)
	}
}

func TestEngine_Enrich(t *testing.T) {
	eng, err := NewEngine(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	candles := mkRising(5000, 0.5, 60)

	bars, err := eng.Enrich(context.Background(), candles)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if len(bars) != len(candles) {
		t.Fatalf("got %d bars want %d", len(bars), len(candles))
	}
	if bars[0].ShortEMA != candles[0].Close || bars[0].LongEMA != candles[0].Close {
		t.Fatalf("EMAs must be seeded with the first close")
	}
	if Defined(bars[12].ATR) || !Defined(bars[13].ATR) {
		t.Fatalf("ATR warm-up mismatch: atr[12]=%v atr[13]=%v", bars[12].ATR, bars[13].ATR)
	}
	if bars[14].RSI != 100 {
		t.Fatalf("rsi[14]=%v want 100", bars[14].RSI)
	}
	for i := range bars {
		if bars[i].POC != bars[0].POC {
			t.Fatalf("POC should be constant across the series")
		}
	}
}

func TestEngine_EmptyAndInvalid(t *testing.T) {
	eng, _ := NewEngine(DefaultConfig(), nil)
	bars, err := eng.Enrich(context.Background(), nil)
	if err != nil || len(bars) != 0 {
		t.Fatalf("empty input: bars=%v err=%v", bars, err)
	}

	cfg := DefaultConfig()
	cfg.RSIPeriod = 0
	if _, err := NewEngine(cfg, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestEngine_Cancelled(t *testing.T) {
	eng, _ := NewEngine(DefaultConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := eng.Enrich(ctx, mkRising(1, 1, 10)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCrossover(t *testing.T) {
	if Crossover(1, 2, 3, 2) != 1 {
		t.Fatalf("expected bullish cross")
	}
	if Crossover(3, 2, 1, 2) != -1 {
		t.Fatalf("expected bearish cross")
	}
	if Crossover(3, 2, 4, 2) != 0 {
		t.Fatalf("expected no cross")
	}
	if Crossover(math.NaN(), 2, 3, 2) != 0 {
		t.Fatalf("undefined input must not cross")
	}
}
