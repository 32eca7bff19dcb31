package price

import (
	"FuturesSignalBot/internal/logger"
	"FuturesSignalBot/internal/models"
	"FuturesSignalBot/internal/operations/binance"
	"context"
	"fmt"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"go.uber.org/zap"
)

// KlineClient is the part of the exchange client the fetcher needs
type KlineClient interface {
	GetHistoricalKlines(ctx context.Context, symbol, interval string, start, end time.Time) ([]*futures.Kline, error)
}

type PriceFetcher struct {
	client    KlineClient
	symbol    string
	timeFrame string
	days      int
	now       func() time.Time
}

func NewPriceFetcher(client KlineClient, symbol, timeFrame string, days int) *PriceFetcher {
	return &PriceFetcher{
		client:    client,
		symbol:    symbol,
		timeFrame: timeFrame,
		days:      days,
		now:       time.Now,
	}
}

// Candles downloads the last `days` days of klines
func (f *PriceFetcher) Candles(ctx context.Context) ([]models.Candle, error) {
	endTime := f.now()
	startTime := endTime.AddDate(0, 0, -f.days)

	klines, err := f.client.GetHistoricalKlines(ctx, f.symbol, f.timeFrame, startTime, endTime)
	if err != nil {
		return nil, fmt.Errorf("fetching %s %s klines: %w", f.symbol, f.timeFrame, err)
	}

	candles, err := KlinesToCandles(f.symbol, f.timeFrame, klines)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("no %s klines for %s: %w", f.timeFrame, f.symbol, ErrDataUnavailable)
	}

	logger.Info("Fetched candles",
		zap.String("symbol", f.symbol),
		zap.String("timeframe", f.timeFrame),
		zap.Int("count", len(candles)),
		zap.Time("from", candles[0].OpenTime),
		zap.Time("to", candles[len(candles)-1].OpenTime))

	return candles, nil
}

// KlinesToCandles converts exchange klines; a malformed or inconsistent kline is an error
func KlinesToCandles(symbol, timeFrame string, klines []*futures.Kline) ([]models.Candle, error) {
	candles := make([]models.Candle, 0, len(klines))
	for _, k := range klines {
		if k == nil {
			continue
		}
		candle := models.Candle{
			Symbol:     symbol,
			TimeFrame:  timeFrame,
			OpenTime:   time.UnixMilli(k.OpenTime).UTC(),
			CloseTime:  time.UnixMilli(k.CloseTime).UTC(),
			Open:       binance.ParseFloat(k.Open),
			High:       binance.ParseFloat(k.High),
			Low:        binance.ParseFloat(k.Low),
			Close:      binance.ParseFloat(k.Close),
			Volume:     binance.ParseFloat(k.Volume),
			TradeCount: k.TradeNum,
		}
		if !candle.Valid() {
			return nil, fmt.Errorf("kline %s at %s: inconsistent OHLC open=%s high=%s low=%s close=%s",
				symbol, candle.OpenTime.Format(time.DateTime), k.Open, k.High, k.Low, k.Close)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}
