package indicators

import (
	"FuturesSignalBot/internal/logger"
	"FuturesSignalBot/internal/models"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidConfig = errors.New("invalid indicator configuration")

// Config holds indicator windows in bars
type Config struct {
	ShortPeriod  int `yaml:"short_period"`
	MediumPeriod int `yaml:"medium_period"`
	LongPeriod   int `yaml:"long_period"`
	RSIPeriod    int `yaml:"rsi_period"`
	ATRPeriod    int `yaml:"atr_period"`
}

// DefaultConfig returns the standard 9/21/50 EMA, 14 RSI, 14 ATR setup
func DefaultConfig() Config {
	return Config{
		ShortPeriod:  9,
		MediumPeriod: 21,
		LongPeriod:   50,
		RSIPeriod:    14,
		ATRPeriod:    14,
	}
}

func (c Config) Validate() error {
	periods := []struct {
		name  string
		value int
	}{
		{"short_period", c.ShortPeriod},
		{"medium_period", c.MediumPeriod},
		{"long_period", c.LongPeriod},
		{"rsi_period", c.RSIPeriod},
		{"atr_period", c.ATRPeriod},
	}
	for _, p := range periods {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, p.name, p.value)
		}
	}
	return nil
}

// Engine enriches a candle series with every indicator
type Engine struct {
	cfg Config

	ema     *EMAService
	rsi     *RSIService
	atr     *ATRService
	pivots  *PivotService
	profile *VolumeProfileService

	logger *zap.Logger
}

func NewEngine(cfg Config, log *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:     cfg,
		ema:     NewEMAService(),
		rsi:     NewRSIService(),
		atr:     NewATRService(),
		pivots:  NewPivotService(),
		profile: NewVolumeProfileService(),
		logger:  logger.OrNop(log),
	}, nil
}

// Enrich computes all indicators for candles. The indicator families are
// independent and run concurrently; each is causal over bars, so no family is
// split across goroutines. Results are written into one ordered slice by index.
func (e *Engine) Enrich(ctx context.Context, candles []models.Candle) ([]EnrichedCandle, error) {
	n := len(candles)
	if n == 0 {
		return []EnrichedCandle{}, nil
	}

	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
	}

	var (
		shortEMA, mediumEMA, longEMA []float64
		rsi, trueRange, atr          []float64
		levels                       *PivotLevels
		profile                      *VolumeProfile
	)

	g, gctx := errgroup.WithContext(ctx)
	run := func(fn func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	run(func() { shortEMA = e.ema.Calculate(closes, e.cfg.ShortPeriod) })
	run(func() { mediumEMA = e.ema.Calculate(closes, e.cfg.MediumPeriod) })
	run(func() { longEMA = e.ema.Calculate(closes, e.cfg.LongPeriod) })
	run(func() { rsi = e.rsi.Calculate(closes, e.cfg.RSIPeriod) })
	run(func() {
		trueRange = e.atr.TrueRange(highs, lows, closes)
		atr = e.atr.Calculate(trueRange, e.cfg.ATRPeriod)
	})
	run(func() { levels = e.pivots.Calculate(highs, lows) })
	run(func() { profile = e.profile.Calculate(candles) })

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("indicator computation cancelled: %w", err)
	}

	enriched := make([]EnrichedCandle, n)
	for i := range candles {
		enriched[i] = EnrichedCandle{
			Candle:     candles[i],
			ShortEMA:   shortEMA[i],
			MediumEMA:  mediumEMA[i],
			LongEMA:    longEMA[i],
			RSI:        rsi[i],
			TrueRange:  trueRange[i],
			ATR:        atr[i],
			Support:    levels.Support[i],
			Resistance: levels.Resistance[i],
			POC:        profile.POC,
		}
	}

	e.logger.Debug("Indicators computed",
		zap.Int("bars", n),
		zap.Float64("poc", profile.POC),
		zap.Int("poc_bucket", profile.POCBucket))

	return enriched, nil
}
