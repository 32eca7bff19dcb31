package handlers

import (
	"FuturesSignalBot/config"
	"FuturesSignalBot/internal/models"
	"FuturesSignalBot/internal/operations/backtest"
	"FuturesSignalBot/internal/operations/price"
	"FuturesSignalBot/internal/services/strategy"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

type stubSource struct {
	candles []models.Candle
	err     error
	calls   int
}

func (s *stubSource) Candles(ctx context.Context) ([]models.Candle, error) {
	s.calls++
	return s.candles, s.err
}

func unavailable() error {
	return fmt.Errorf("empty csv: %w", price.ErrDataUnavailable)
}

func TestLoadCandles_Primary(t *testing.T) {
	primary := &stubSource{candles: []models.Candle{{Close: 1}}}
	fallback := &stubSource{}

	candles, err := NewPriceHandler(primary, fallback, nil, nil).LoadCandles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 1 || fallback.calls != 0 {
		t.Fatalf("expected primary data only, got %d candles and %d fallback calls", len(candles), fallback.calls)
	}
}

func TestLoadCandles_FallsBackWhenUnavailable(t *testing.T) {
	primary := &stubSource{err: unavailable()}
	fallback := &stubSource{candles: []models.Candle{{Close: 1}, {Close: 2}}}

	candles, err := NewPriceHandler(primary, fallback, nil, nil).LoadCandles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 2 || fallback.calls != 1 {
		t.Fatalf("expected fallback data, got %d candles", len(candles))
	}
}

func TestLoadCandles_NoFallback(t *testing.T) {
	_, err := NewPriceHandler(&stubSource{err: unavailable()}, nil, nil, nil).LoadCandles(context.Background())
	if !errors.Is(err, price.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestLoadCandles_OtherErrorsDoNotFallBack(t *testing.T) {
	boom := errors.New("connection refused")
	fallback := &stubSource{candles: []models.Candle{{Close: 1}}}

	_, err := NewPriceHandler(&stubSource{err: boom}, fallback, nil, nil).LoadCandles(context.Background())
	if !errors.Is(err, boom) || fallback.calls != 0 {
		t.Fatalf("expected primary error without fallback, got %v (fallback calls %d)", err, fallback.calls)
	}
}

// zigzag builds an oscillating 5 minute series long enough to warm every indicator
func zigzag(n int) []models.Candle {
	t0 := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	for i := range out {
		c := 5000 + 15*math.Sin(float64(i)/6) + 0.05*float64(i)
		open := c - 0.5*math.Cos(float64(i)/6)
		out[i] = models.Candle{
			Symbol:    "WDO",
			TimeFrame: models.TimeFrame5m,
			OpenTime:  t0.Add(time.Duration(i) * 5 * time.Minute),
			Open:      open,
			High:      math.Max(open, c) + 2,
			Low:       math.Min(open, c) - 2,
			Close:     c,
			Volume:    100 + float64(i%7)*10,
		}
	}
	return out
}

func newTestStrategyHandler(t *testing.T) *StrategyHandler {
	t.Helper()
	h, err := NewStrategyHandler(config.DefaultStrategyConfig(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return h
}

func TestStrategyHandler_EmptySeries(t *testing.T) {
	report, err := newTestStrategyHandler(t).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Bars != 0 || len(report.Signals) != 0 || report.BacktestSignals != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
	if report.Results.Metrics.FinalCapital != backtest.InitialCapital || report.Results.Metrics.TotalTrades != 0 {
		t.Fatalf("expected untouched capital, got %+v", report.Results.Metrics)
	}
}

func TestStrategyHandler_FiltersAndBacktests(t *testing.T) {
	candles := zigzag(240)
	report, err := newTestStrategyHandler(t).Run(context.Background(), candles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Bars != len(candles) || report.Symbol != "WDO" || report.TimeFrame != models.TimeFrame5m {
		t.Fatalf("unexpected report header %+v", report)
	}

	buys, sells := 0, 0
	for _, s := range report.Signals {
		if s.Direction == strategy.None || s.Strength < config.ReportThreshold {
			t.Fatalf("signal below report threshold in report: %+v", s)
		}
		if s.Direction == strategy.Buy {
			buys++
		} else {
			sells++
		}
	}
	if report.Summary.Buys != buys || report.Summary.Sells != sells {
		t.Fatalf("summary %+v does not match signals %d/%d", report.Summary, buys, sells)
	}

	strong := 0
	for _, s := range report.Signals {
		if s.Strength >= config.BacktestThreshold {
			strong++
		}
	}
	if report.BacktestSignals != strong {
		t.Fatalf("expected %d tradable signals, got %d", strong, report.BacktestSignals)
	}
	traded := report.Results.Metrics.TotalTrades + len(report.Results.Skipped)
	if !report.Results.Stopped && traded != strong {
		t.Fatalf("expected every tradable signal to be traded or skipped, got %d of %d", traded, strong)
	}
}

func TestStrategyHandler_Deterministic(t *testing.T) {
	h := newTestStrategyHandler(t)
	candles := zigzag(240)

	first, err := h.Run(context.Background(), candles)
	if err != nil {
		t.Fatal(err)
	}
	second, err := h.Run(context.Background(), candles)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(first.Lines(), "\n") != strings.Join(second.Lines(), "\n") {
		t.Fatal("expected identical reports for identical input")
	}
}

func TestStrategyHandler_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestStrategyHandler(t).Run(ctx, zigzag(60)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewStrategyHandler_InvalidConfig(t *testing.T) {
	cfg := config.DefaultStrategyConfig()
	cfg.Backtest.RiskFraction = 0
	if _, err := NewStrategyHandler(cfg, nil, nil); !errors.Is(err, backtest.ErrInvalidConfig) {
		t.Fatalf("expected backtest.ErrInvalidConfig, got %v", err)
	}
}

func TestNewBacktestRun(t *testing.T) {
	t0 := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	candles := []models.Candle{{OpenTime: t0}, {OpenTime: t0.Add(5 * time.Minute)}, {OpenTime: t0.Add(10 * time.Minute)}}
	report := &Report{
		Symbol:    "WDO",
		TimeFrame: models.TimeFrame5m,
		Results: &backtest.Results{
			Trades: []backtest.Trade{
				{Direction: strategy.Buy, EntryPrice: 5000, ExitPrice: 5008, PnL: 200, Reason: backtest.ExitTakeProfit, CapitalAfter: 10200},
				{Direction: strategy.Sell, EntryPrice: 5010, ExitPrice: 5014, PnL: -100, Reason: backtest.ExitStopLoss, CapitalAfter: 10100},
			},
			Skipped: []backtest.SkippedSignal{{Reason: backtest.SkipNoExitData}},
			Metrics: backtest.Metrics{InitialCapital: 10000, FinalCapital: 10100, TotalTrades: 2, HitRate: 50},
		},
	}

	run := newBacktestRun(report, candles)
	if !run.FirstBar.Equal(t0) || !run.LastBar.Equal(t0.Add(10*time.Minute)) || run.Bars != 3 {
		t.Fatalf("unexpected run window %+v", run)
	}
	if run.TotalTrades != 2 || run.SkippedSignals != 1 || run.FinalCapital != 10100 {
		t.Fatalf("unexpected run totals %+v", run)
	}
	if len(run.Trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(run.Trades))
	}
	if run.Trades[0].Seq != 1 || run.Trades[0].Side != models.TradeSideLong || run.Trades[0].ExitReason != "take_profit" {
		t.Fatalf("unexpected first trade %+v", run.Trades[0])
	}
	if run.Trades[1].Seq != 2 || run.Trades[1].Side != models.TradeSideShort || run.Trades[1].PnL != -100 {
		t.Fatalf("unexpected second trade %+v", run.Trades[1])
	}
}

func TestReportLines(t *testing.T) {
	report := &Report{
		Bars: 3,
		Signals: []strategy.Signal{{
			Time:       time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC),
			Direction:  strategy.Buy,
			Strength:   0.9,
			EntryPrice: 5000,
			StopLoss:   4996,
			TakeProfit: 5008,
		}},
		Summary: strategy.SignalSummary{Buys: 1},
		Results: &backtest.Results{
			Metrics: backtest.Metrics{InitialCapital: 10000, FinalCapital: 10200.456, ReturnPercent: 2.00456},
		},
	}

	out := strings.Join(report.Lines(), "\n")
	for _, want := range []string{
		"Buy signals: 1",
		"2025-03-04 10:00:00 buy  strength=0.90 entry=5000.00 stop=4996.00 target=5008.00",
		"Final Capital: 10200.46",
		"Return: 2.00%",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Run ID") {
		t.Fatal("unsaved run should not print an id")
	}
}

func TestMoney_NotFinite(t *testing.T) {
	if got := money(math.NaN()); got != "n/a" {
		t.Fatalf("expected n/a, got %q", got)
	}
}
