package binance

import (
	"FuturesSignalBot/internal/models"
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"golang.org/x/time/rate"
)

const klinesLimit = 500

type BinanceClient struct {
	client      *futures.Client
	rateLimiter *rate.Limiter
	httpClient  *http.Client
}

func NewBinanceClient(apiKey, secretKey string) *BinanceClient {
	// Create custom HTTP client with timeouts
	httpClient := &http.Client{
		Timeout: time.Second * 10,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	futuresClient := futures.NewClient(apiKey, secretKey)
	futuresClient.HTTPClient = httpClient

	// 10 requests per second with burst of 20
	limiter := rate.NewLimiter(rate.Limit(10), 20)

	return &BinanceClient{
		client:      futuresClient,
		rateLimiter: limiter,
		httpClient:  httpClient,
	}
}

// GetKlines fetches one page of klines with rate limiting and exponential backoff
func (c *BinanceClient) GetKlines(ctx context.Context, symbol, interval string, startTime, endTime int64) ([]*futures.Kline, error) {
	var klines []*futures.Kline
	err := c.withRetry(ctx, func() error {
		var err error
		klines, err = c.client.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(startTime).
			EndTime(endTime).
			Limit(klinesLimit).
			Do(ctx)
		return err
	})
	return klines, err
}

// GetHistoricalKlines pages through [start, end] in chunks of klinesLimit bars
func (c *BinanceClient) GetHistoricalKlines(ctx context.Context, symbol, interval string, start, end time.Time) ([]*futures.Kline, error) {
	step, err := IntervalDuration(interval)
	if err != nil {
		return nil, err
	}
	chunk := step * klinesLimit

	var allKlines []*futures.Kline
	for current := start; current.Before(end); current = current.Add(chunk) {
		chunkEnd := current.Add(chunk)
		if chunkEnd.After(end) {
			chunkEnd = end
		}

		klines, err := c.GetKlines(ctx, symbol, interval, current.UnixMilli(), chunkEnd.UnixMilli()-1)
		if err != nil {
			return nil, err
		}
		allKlines = append(allKlines, klines...)
	}

	return allKlines, nil
}

// GetQuote returns the current top of book plus the last trade
func (c *BinanceClient) GetQuote(ctx context.Context, symbol string) (*models.Tick, error) {
	var tickers []*futures.BookTicker
	err := c.withRetry(ctx, func() error {
		var err error
		tickers, err = c.client.NewListBookTickersService().Symbol(symbol).Do(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("book ticker for %s: %w", symbol, err)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("book ticker for %s: empty response", symbol)
	}

	tick := &models.Tick{
		Time: time.Now(),
		Bid:  ParseFloat(tickers[0].BidPrice),
		Ask:  ParseFloat(tickers[0].AskPrice),
	}

	var trades []*futures.Trade
	err = c.withRetry(ctx, func() error {
		var err error
		trades, err = c.client.NewRecentTradesService().Symbol(symbol).Limit(1).Do(ctx)
		return err
	})
	if err == nil && len(trades) > 0 {
		tick.Last = ParseFloat(trades[0].Price)
		tick.Volume = ParseFloat(trades[0].Quantity)
		tick.Time = time.UnixMilli(trades[0].Time)
	}

	return tick, nil
}

func (c *BinanceClient) withRetry(ctx context.Context, call func() error) error {
	maxRetries := 3
	backoff := 100 * time.Millisecond

	for attempt := 0; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		err := call()
		if err == nil {
			return nil
		}
		if attempt == maxRetries {
			return err
		}

		waitTime := time.Duration(math.Pow(2, float64(attempt))) * backoff
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

// IntervalDuration maps an exchange interval to its bar length
func IntervalDuration(interval string) (time.Duration, error) {
	intervals := map[string]time.Duration{
		models.TimeFrame1m:  time.Minute,
		models.TimeFrame5m:  5 * time.Minute,
		models.TimeFrame15m: 15 * time.Minute,
		models.TimeFrame1h:  time.Hour,
	}
	d, ok := intervals[interval]
	if !ok {
		return 0, errors.New("unsupported interval: " + interval)
	}
	return d, nil
}

// ParseFloat converts exchange decimal strings; malformed values become NaN
func ParseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
