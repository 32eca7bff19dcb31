package main

import (
	"FuturesSignalBot/internal/models"
	"FuturesSignalBot/internal/operations/price"
	"context"
	"errors"
	"fmt"
	"testing"
)

type stubLoader struct {
	candles []models.Candle
	err     error
}

func (s stubLoader) LoadCandles(ctx context.Context) ([]models.Candle, error) {
	return s.candles, s.err
}

func TestLoadCandles_MissingDataIsEmptyRun(t *testing.T) {
	err := fmt.Errorf("csv file data/candles.csv: %w", price.ErrDataUnavailable)
	candles, got := loadCandles(context.Background(), stubLoader{err: err})
	if got != nil || len(candles) != 0 {
		t.Fatalf("expected an empty series without error, got %d candles, %v", len(candles), got)
	}
}

func TestLoadCandles_OtherErrorsSurface(t *testing.T) {
	tests := []error{
		errors.New("data/candles.csv: line 7: inconsistent OHLC"),
		fmt.Errorf("loading stored candles: %w", errors.New("connection refused")),
		context.Canceled,
	}
	for _, want := range tests {
		if _, err := loadCandles(context.Background(), stubLoader{err: want}); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestLoadCandles_PassesThrough(t *testing.T) {
	candles, err := loadCandles(context.Background(), stubLoader{candles: []models.Candle{{Close: 1}}})
	if err != nil || len(candles) != 1 {
		t.Fatalf("expected one candle, got %d, %v", len(candles), err)
	}
}
