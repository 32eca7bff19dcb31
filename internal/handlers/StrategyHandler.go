package handlers

import (
	"FuturesSignalBot/config"
	"FuturesSignalBot/internal/logger"
	"FuturesSignalBot/internal/models"
	"FuturesSignalBot/internal/operations/backtest"
	"FuturesSignalBot/internal/repositories"
	"FuturesSignalBot/internal/services/indicators"
	"FuturesSignalBot/internal/services/strategy"
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StrategyHandler runs the full pipeline over one candle series:
// indicators, signals, two strength filters and the backtest.
type StrategyHandler struct {
	indicatorEngine *indicators.Engine
	generator       *strategy.SignalGenerator
	backtester      *backtest.Engine

	reportThreshold   float64
	backtestThreshold float64

	backtestRepo *repositories.BacktestRepository // nil disables persistence
	log          *zap.Logger
}

// Report is what one run produced
type Report struct {
	Symbol    string
	TimeFrame string
	Bars      int

	// Signals at or above the report threshold
	Signals []strategy.Signal
	Summary strategy.SignalSummary

	// Number of signals at or above the backtest threshold
	BacktestSignals int
	Results         *backtest.Results

	RunID uuid.UUID // set when the run was persisted
}

func NewStrategyHandler(cfg config.StrategyConfig, backtestRepo *repositories.BacktestRepository, log *zap.Logger) (*StrategyHandler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	indicatorEngine, err := indicators.NewEngine(cfg.Indicators, log)
	if err != nil {
		return nil, err
	}
	generator, err := strategy.NewSignalGenerator(cfg.Signals, log)
	if err != nil {
		return nil, err
	}
	backtester, err := backtest.NewEngine(cfg.Backtest, log)
	if err != nil {
		return nil, err
	}

	return &StrategyHandler{
		indicatorEngine:   indicatorEngine,
		generator:         generator,
		backtester:        backtester,
		reportThreshold:   cfg.ReportThreshold,
		backtestThreshold: cfg.BacktestThreshold,
		backtestRepo:      backtestRepo,
		log:               logger.OrNop(log),
	}, nil
}

// Run processes candles end to end. An empty series gives an empty report.
func (h *StrategyHandler) Run(ctx context.Context, candles []models.Candle) (*Report, error) {
	report := &Report{Bars: len(candles)}
	if len(candles) > 0 {
		report.Symbol = candles[0].Symbol
		report.TimeFrame = candles[0].TimeFrame
	}

	enriched, err := h.indicatorEngine.Enrich(ctx, candles)
	if err != nil {
		return nil, err
	}

	signals := h.generator.Generate(enriched)

	report.Signals = strategy.FilterSignals(signals, h.reportThreshold)
	report.Summary = strategy.Summary(report.Signals)

	tradable := strategy.FilterSignals(signals, h.backtestThreshold)
	report.BacktestSignals = len(tradable)
	report.Results = h.backtester.Run(candles, tradable)

	h.log.Info("Strategy run complete",
		zap.Int("bars", report.Bars),
		zap.Int("buy_signals", report.Summary.Buys),
		zap.Int("sell_signals", report.Summary.Sells),
		zap.Int("trades", report.Results.Metrics.TotalTrades))

	if h.backtestRepo != nil && len(candles) > 0 {
		run := newBacktestRun(report, candles)
		if err := h.backtestRepo.SaveRun(run); err != nil {
			return report, fmt.Errorf("saving backtest run: %w", err)
		}
		report.RunID = run.ID
		h.log.Info("Backtest run saved", zap.String("run_id", run.ID.String()))
	}

	return report, nil
}

func newBacktestRun(report *Report, candles []models.Candle) *models.BacktestRun {
	res := report.Results
	run := &models.BacktestRun{
		Symbol:         report.Symbol,
		TimeFrame:      report.TimeFrame,
		FirstBar:       candles[0].OpenTime,
		LastBar:        candles[len(candles)-1].OpenTime,
		Bars:           len(candles),
		InitialCapital: res.Metrics.InitialCapital,
		FinalCapital:   res.Metrics.FinalCapital,
		HitRate:        res.Metrics.HitRate,
		MaxDrawdown:    res.Metrics.MaxDrawdown,
		ReturnPercent:  res.Metrics.ReturnPercent,
		TotalTrades:    res.Metrics.TotalTrades,
		SkippedSignals: len(res.Skipped),
		Trades:         make([]models.BacktestTrade, 0, len(res.Trades)),
	}

	for i, t := range res.Trades {
		side := models.TradeSideLong
		if t.Direction == strategy.Sell {
			side = models.TradeSideShort
		}
		run.Trades = append(run.Trades, models.BacktestTrade{
			Seq:          i + 1,
			Side:         side,
			EntryTime:    t.EntryTime,
			ExitTime:     t.ExitTime,
			EntryPrice:   t.EntryPrice,
			ExitPrice:    t.ExitPrice,
			StopLoss:     t.StopLoss,
			TakeProfit:   t.TakeProfit,
			Size:         t.Size,
			PnL:          t.PnL,
			ExitReason:   string(t.Reason),
			CapitalAfter: t.CapitalAfter,
		})
	}
	return run
}

// Lines renders the report for the console
func (r *Report) Lines() []string {
	lines := []string{
		"=== Signals ===",
		fmt.Sprintf("Bars analysed: %d", r.Bars),
		fmt.Sprintf("Buy signals: %d", r.Summary.Buys),
		fmt.Sprintf("Sell signals: %d", r.Summary.Sells),
	}

	for _, s := range r.Signals {
		lines = append(lines, fmt.Sprintf("%s %-4s strength=%s entry=%s stop=%s target=%s",
			s.Time.Format("2006-01-02 15:04:05"),
			s.Direction,
			decimal.NewFromFloat(s.Strength).StringFixed(2),
			money(s.EntryPrice),
			money(s.StopLoss),
			money(s.TakeProfit)))
	}

	if r.Results == nil {
		return lines
	}

	m := r.Results.Metrics
	lines = append(lines,
		"",
		"=== Backtest Results ===",
		fmt.Sprintf("Signals traded: %d", r.BacktestSignals),
		fmt.Sprintf("Total Trades: %d", m.TotalTrades),
		fmt.Sprintf("Winning Trades: %d", m.WinningTrades),
		fmt.Sprintf("Hit Rate: %s%%", money(m.HitRate)),
		fmt.Sprintf("Initial Capital: %s", money(m.InitialCapital)),
		fmt.Sprintf("Final Capital: %s", money(m.FinalCapital)),
		fmt.Sprintf("Return: %s%%", money(m.ReturnPercent)),
		fmt.Sprintf("Max Drawdown: %s", money(m.MaxDrawdown)),
	)
	if len(r.Results.Skipped) > 0 {
		lines = append(lines, fmt.Sprintf("Skipped Signals: %d", len(r.Results.Skipped)))
	}
	if r.Results.Stopped {
		lines = append(lines, "Capital depleted before all signals were processed")
	}
	if r.RunID != uuid.Nil {
		lines = append(lines, fmt.Sprintf("Run ID: %s", r.RunID))
	}
	return lines
}

func money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}
