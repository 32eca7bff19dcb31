package price

import (
	"FuturesSignalBot/internal/models"
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDataUnavailable is returned by a source that has nothing to offer for the request
var ErrDataUnavailable = errors.New("price data unavailable")

// CandleSource yields a chronologically ordered candle series
type CandleSource interface {
	Candles(ctx context.Context) ([]models.Candle, error)
}

// CandleStore is the stored-candle lookup RepositorySource needs
type CandleStore interface {
	GetLatestCandle(symbol, timeFrame string) (*models.Candle, error)
	GetCandlesByTimeFrame(symbol, timeFrame string, start, end time.Time) ([]models.Candle, error)
}

// RepositorySource reads the last `days` days of stored candles, counted back
// from the newest stored bar so an older dataset still loads.
type RepositorySource struct {
	store     CandleStore
	symbol    string
	timeFrame string
	days      int
}

func NewRepositorySource(store CandleStore, symbol, timeFrame string, days int) *RepositorySource {
	return &RepositorySource{
		store:     store,
		symbol:    symbol,
		timeFrame: timeFrame,
		days:      days,
	}
}

func (s *RepositorySource) Candles(ctx context.Context) ([]models.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	latest, err := s.store.GetLatestCandle(s.symbol, s.timeFrame)
	if err != nil {
		return nil, fmt.Errorf("loading latest stored candle: %w", err)
	}
	if latest == nil {
		return nil, fmt.Errorf("no stored %s %s candles: %w", s.symbol, s.timeFrame, ErrDataUnavailable)
	}

	end := latest.OpenTime
	start := end.AddDate(0, 0, -s.days)
	candles, err := s.store.GetCandlesByTimeFrame(s.symbol, s.timeFrame, start, end)
	if err != nil {
		return nil, fmt.Errorf("loading stored candles: %w", err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%s %s between %s and %s: %w",
			s.symbol, s.timeFrame, start.Format(time.DateTime), end.Format(time.DateTime), ErrDataUnavailable)
	}
	return candles, nil
}
