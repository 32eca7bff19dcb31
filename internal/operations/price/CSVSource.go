package price

import (
	"FuturesSignalBot/internal/logger"
	"FuturesSignalBot/internal/models"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

var csvColumns = []string{"timestamp", "open", "high", "low", "close", "volume"}

var csvTimeLayouts = []string{time.RFC3339, time.DateTime}

// CSVSource loads historical bars from a file with a
// timestamp,open,high,low,close,volume header. Extra columns are ignored.
type CSVSource struct {
	path      string
	symbol    string
	timeFrame string
}

func NewCSVSource(path, symbol, timeFrame string) *CSVSource {
	return &CSVSource{path: path, symbol: symbol, timeFrame: timeFrame}
}

func (s *CSVSource) Candles(ctx context.Context) ([]models.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("csv file %s: %w", s.path, ErrDataUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("opening csv file: %w", err)
	}
	defer f.Close()

	candles, err := ParseCSV(f, s.symbol, s.timeFrame)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("csv file %s has no rows: %w", s.path, ErrDataUnavailable)
	}

	logger.Info("Loaded candles from csv", zap.String("path", s.path), zap.Int("count", len(candles)))
	return candles, nil
}

// ParseCSV reads rows in file order
func ParseCSV(r io.Reader, symbol, timeFrame string) ([]models.Candle, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	cols := make([]int, len(csvColumns))
	for i, name := range csvColumns {
		col, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		cols[i] = col
	}

	var candles []models.Candle
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		candle, err := parseRecord(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		candle.Symbol = symbol
		candle.TimeFrame = timeFrame
		candles = append(candles, candle)
	}
	return candles, nil
}

func parseRecord(record []string, cols []int) (models.Candle, error) {
	field := func(i int) (string, error) {
		if cols[i] >= len(record) {
			return "", fmt.Errorf("missing %s", csvColumns[i])
		}
		return strings.TrimSpace(record[cols[i]]), nil
	}

	raw, err := field(0)
	if err != nil {
		return models.Candle{}, err
	}
	ts, err := parseTimestamp(raw)
	if err != nil {
		return models.Candle{}, err
	}

	values := make([]float64, len(csvColumns)-1)
	for i := range values {
		raw, err := field(i + 1)
		if err != nil {
			return models.Candle{}, err
		}
		values[i], err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("invalid %s %q", csvColumns[i+1], raw)
		}
	}

	candle := models.Candle{
		OpenTime:  ts,
		CloseTime: ts,
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}
	if !candle.Valid() {
		return models.Candle{}, fmt.Errorf("inconsistent OHLC open=%v high=%v low=%v close=%v",
			candle.Open, candle.High, candle.Low, candle.Close)
	}
	return candle, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
