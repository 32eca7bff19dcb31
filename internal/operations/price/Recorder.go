package price

import (
	"FuturesSignalBot/internal/logger"
	"FuturesSignalBot/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultRecordDuration = 300 * time.Second
	DefaultRecordInterval = 500 * time.Millisecond
)

// QuoteClient returns the current top of book for a symbol
type QuoteClient interface {
	GetQuote(ctx context.Context, symbol string) (*models.Tick, error)
}

// TickRecorder polls live quotes for a fixed duration and turns them into candles
type TickRecorder struct {
	client   QuoteClient
	symbol   string
	duration time.Duration
	interval time.Duration
}

func NewTickRecorder(client QuoteClient, symbol string, duration, interval time.Duration) *TickRecorder {
	if duration <= 0 {
		duration = DefaultRecordDuration
	}
	if interval <= 0 {
		interval = DefaultRecordInterval
	}
	return &TickRecorder{
		client:   client,
		symbol:   symbol,
		duration: duration,
		interval: interval,
	}
}

// Record collects ticks until the duration elapses or ctx is cancelled.
// Failed polls are logged and skipped.
func (r *TickRecorder) Record(ctx context.Context) ([]models.Tick, error) {
	ctx, cancel := context.WithTimeout(ctx, r.duration)
	defer cancel()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger.Info("Starting tick recording",
		zap.String("symbol", r.symbol),
		zap.Duration("duration", r.duration),
		zap.Duration("interval", r.interval))

	var ticks []models.Tick
	for {
		tick, err := r.client.GetQuote(ctx, r.symbol)
		switch {
		case err == nil && tick != nil:
			ticks = append(ticks, *tick)
		case err != nil && ctx.Err() == nil:
			logger.Warn("Error getting quote", zap.String("symbol", r.symbol), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			logger.Info("Stopping tick recording", zap.String("symbol", r.symbol), zap.Int("ticks", len(ticks)))
			if parent := context.Cause(ctx); parent != nil && !errors.Is(parent, context.DeadlineExceeded) {
				return ticks, parent
			}
			return ticks, nil
		case <-ticker.C:
		}
	}
}

// Candles records for the configured duration and converts the ticks
func (r *TickRecorder) Candles(ctx context.Context) ([]models.Candle, error) {
	ticks, err := r.Record(ctx)
	if err != nil {
		return nil, err
	}
	candles := TicksToCandles(r.symbol, ticks)
	if len(candles) == 0 {
		return nil, fmt.Errorf("no ticks recorded for %s: %w", r.symbol, ErrDataUnavailable)
	}
	return candles, nil
}

// TicksToCandles turns each tick into a one-tick bar: open, high and low are the
// last trade price when known (the mid otherwise), close is the mid.
func TicksToCandles(symbol string, ticks []models.Tick) []models.Candle {
	candles := make([]models.Candle, 0, len(ticks))
	for _, t := range ticks {
		mid := t.Mid()
		ref := mid
		if t.Last > 0 {
			ref = t.Last
		}
		candles = append(candles, models.Candle{
			Symbol:    symbol,
			TimeFrame: models.TimeFrameTick,
			OpenTime:  t.Time,
			CloseTime: t.Time,
			Open:      ref,
			High:      ref,
			Low:       ref,
			Close:     mid,
			Volume:    t.Volume,
		})
	}
	return candles
}
