package strategy

import (
	"FuturesSignalBot/internal/logger"
	"FuturesSignalBot/internal/services/indicators"
	"FuturesSignalBot/internal/services/scoring"
	"math"

	"go.uber.org/zap"
)

const (
	baseStrength      = 0.6
	rsiExtremeBoost   = 0.2
	levelBoost        = 0.1
	levelProximityATR = 0.5
	rewardToRisk      = 2.0
	firstSignalBar    = 2
)

// SignalGenerator scores each enriched bar. It keeps no state between bars:
// everything it needs is already on the EnrichedCandle.
type SignalGenerator struct {
	cfg    Config
	logger *zap.Logger
}

func NewSignalGenerator(cfg Config, log *zap.Logger) (*SignalGenerator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SignalGenerator{cfg: cfg, logger: logger.OrNop(log)}, nil
}

// Generate returns one signal per bar, aligned by index
func (g *SignalGenerator) Generate(bars []indicators.EnrichedCandle) []Signal {
	signals := make([]Signal, len(bars))
	for i := range bars {
		if i < firstSignalBar {
			signals[i] = noSignal(i, bars[i])
			continue
		}
		signals[i] = g.evaluate(i, bars[i-1], bars[i])
	}

	sum := Summary(signals)
	g.logger.Debug("Signals generated",
		zap.Int("bars", len(bars)),
		zap.Int("buys", sum.Buys),
		zap.Int("sells", sum.Sells))

	return signals
}

func (g *SignalGenerator) evaluate(i int, prev, curr indicators.EnrichedCandle) Signal {
	cross := indicators.Crossover(prev.ShortEMA, prev.MediumEMA, curr.ShortEMA, curr.MediumEMA)

	uptrend := curr.Close > curr.LongEMA
	downtrend := curr.Close < curr.LongEMA
	volumeRising := curr.Volume > prev.Volume
	bullish := curr.Close > curr.Open
	bearish := curr.Close < curr.Open

	// stop and target need a positive range
	rangeReady := indicators.Defined(curr.ATR) && curr.ATR > 0

	switch {
	case cross == 1 && uptrend && volumeRising && bullish && rangeReady:
		return g.buildSignal(i, curr, Buy,
			indicators.IsOversold(curr.RSI, g.cfg.RSIOversold),
			g.isNear(curr.Close, curr.Support, curr.ATR))
	case cross == -1 && downtrend && volumeRising && bearish && rangeReady:
		return g.buildSignal(i, curr, Sell,
			indicators.IsOverbought(curr.RSI, g.cfg.RSIOverbought),
			g.isNear(curr.Close, curr.Resistance, curr.ATR))
	}
	return noSignal(i, curr)
}

func (g *SignalGenerator) buildSignal(i int, bar indicators.EnrichedCandle, dir Direction, rsiExtreme, nearLevel bool) Signal {
	strength := baseStrength
	if rsiExtreme {
		strength += rsiExtremeBoost
	}
	if nearLevel {
		strength += levelBoost
	}
	hourFactor, dayFactor := scoring.Factors(bar.OpenTime)
	strength = clamp(strength*hourFactor*dayFactor, 0, 1)

	price := bar.Close
	risk := bar.ATR * g.cfg.ATRMultiplier
	stop := price - risk
	target := price + risk*rewardToRisk
	if dir == Sell {
		stop = price + risk
		target = price - risk*rewardToRisk
	}

	return Signal{
		Index:      i,
		Time:       bar.OpenTime,
		Direction:  dir,
		Strength:   strength,
		EntryPrice: price,
		StopLoss:   stop,
		TakeProfit: target,
		RSIExtreme: rsiExtreme,
		NearLevel:  nearLevel,
	}
}

// isNear reports whether price is within half an ATR of level. Undefined inputs are never near.
func (g *SignalGenerator) isNear(price, level, atr float64) bool {
	return math.Abs(price-level) < atr*levelProximityATR
}

func noSignal(i int, bar indicators.EnrichedCandle) Signal {
	return Signal{
		Index:      i,
		Time:       bar.OpenTime,
		Direction:  None,
		EntryPrice: bar.Close,
		StopLoss:   math.NaN(),
		TakeProfit: math.NaN(),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
