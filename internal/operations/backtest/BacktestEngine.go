// backtest/engine.go

package backtest

import (
	"FuturesSignalBot/internal/logger"
	"FuturesSignalBot/internal/models"
	"FuturesSignalBot/internal/services/strategy"
	"math"
	"sort"

	"go.uber.org/zap"
)

type positionState int

const (
	pendingEntry positionState = iota
	openPosition
	closedAtStop
	closedAtTarget
	closedAtWindowEnd
)

// position is a trade in flight
type position struct {
	state  positionState
	signal strategy.Signal
	size   float64
	exit   float64
	exitAt int
}

// Engine replays filtered signals against the bars that follow them.
// Trades are strictly sequential: each one is sized from the capital left by the previous ones.
type Engine struct {
	config Config
	logger *zap.Logger
}

func NewEngine(config Config, log *zap.Logger) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Engine{config: config, logger: logger.OrNop(log)}, nil
}

// Run simulates one trade per signal in chronological order. Signals that
// can't be traded are returned in Results.Skipped. The loop stops once capital
// is exhausted.
func (e *Engine) Run(candles []models.Candle, signals []strategy.Signal) *Results {
	ordered := make([]strategy.Signal, len(signals))
	copy(ordered, signals)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})

	res := &Results{
		Trades:      make([]Trade, 0, len(ordered)),
		Skipped:     make([]SkippedSignal, 0),
		EquityCurve: make([]EquityPoint, 0, len(ordered)),
	}

	capital := e.config.InitialCapital
	for _, sig := range ordered {
		if capital <= 0 {
			res.Stopped = true
			e.logger.Warn("Capital depleted, stopping backtest", zap.Float64("capital", capital))
			break
		}

		pos, reason := e.openPosition(sig, capital, len(candles))
		if pos == nil {
			res.Skipped = append(res.Skipped, SkippedSignal{Signal: sig, Reason: reason})
			e.logger.Debug("Signal skipped",
				zap.Int("index", sig.Index),
				zap.String("reason", string(reason)))
			continue
		}

		e.scanExit(pos, candles)
		trade := e.closePosition(pos, candles, capital)
		capital = trade.CapitalAfter

		res.Trades = append(res.Trades, trade)
		res.EquityCurve = append(res.EquityCurve, EquityPoint{
			Timestamp: trade.ExitTime,
			Balance:   capital,
		})

		e.logger.Debug("Trade closed",
			zap.Int("index", trade.SignalIndex),
			zap.String("side", trade.Direction.String()),
			zap.String("reason", string(trade.Reason)),
			zap.Float64("pnl", trade.PnL),
			zap.Float64("capital", capital))
	}

	res.Metrics = calculateMetrics(e.config.InitialCapital, capital, res.Trades)

	e.logger.Info("Backtest finished",
		zap.Int("trades", res.Metrics.TotalTrades),
		zap.Int("skipped", len(res.Skipped)),
		zap.Float64("final_capital", res.Metrics.FinalCapital),
		zap.Float64("hit_rate", res.Metrics.HitRate))

	return res
}

// openPosition sizes a position from the risk budget. A nil position means the signal was rejected.
func (e *Engine) openPosition(sig strategy.Signal, capital float64, bars int) (*position, SkipReason) {
	if sig.Direction == strategy.None || sig.Index < 0 || sig.Index >= bars {
		return nil, SkipInvalidSignal
	}

	pos := &position{state: pendingEntry, signal: sig}

	riskAmount := capital * e.config.RiskFraction
	pointsAtRisk := math.Abs(sig.EntryPrice - sig.StopLoss)
	if !(pointsAtRisk > 0) || math.IsInf(pointsAtRisk, 0) {
		return nil, SkipDegenerateRisk
	}
	if sig.Index == bars-1 {
		return nil, SkipNoExitData
	}

	pos.size = math.Min(e.config.MaxPositionSize, riskAmount/(pointsAtRisk*e.config.PointValue))
	pos.state = openPosition
	return pos, ""
}

// scanExit walks the lookahead window. On each bar the stop is checked before
// the target; without a breach the position closes at the last scanned bar.
func (e *Engine) scanExit(pos *position, candles []models.Candle) {
	sig := pos.signal
	last := sig.Index + e.config.Lookahead
	if last > len(candles)-1 {
		last = len(candles) - 1
	}

	for j := sig.Index + 1; j <= last; j++ {
		c := candles[j]
		if sig.Direction == strategy.Buy {
			if c.Low <= sig.StopLoss {
				pos.state, pos.exit, pos.exitAt = closedAtStop, sig.StopLoss, j
				return
			}
			if c.High >= sig.TakeProfit {
				pos.state, pos.exit, pos.exitAt = closedAtTarget, sig.TakeProfit, j
				return
			}
		} else {
			if c.High >= sig.StopLoss {
				pos.state, pos.exit, pos.exitAt = closedAtStop, sig.StopLoss, j
				return
			}
			if c.Low <= sig.TakeProfit {
				pos.state, pos.exit, pos.exitAt = closedAtTarget, sig.TakeProfit, j
				return
			}
		}
	}

	pos.state, pos.exit, pos.exitAt = closedAtWindowEnd, candles[last].Close, last
}

func (e *Engine) closePosition(pos *position, candles []models.Candle, capital float64) Trade {
	sig := pos.signal

	points := pos.exit - sig.EntryPrice
	if sig.Direction == strategy.Sell {
		points = sig.EntryPrice - pos.exit
	}
	pnl := points * e.config.PointValue * pos.size

	return Trade{
		SignalIndex:   sig.Index,
		EntryTime:     candles[sig.Index].OpenTime,
		ExitTime:      candles[pos.exitAt].OpenTime,
		Direction:     sig.Direction,
		EntryPrice:    sig.EntryPrice,
		ExitPrice:     pos.exit,
		StopLoss:      sig.StopLoss,
		TakeProfit:    sig.TakeProfit,
		Size:          pos.size,
		Points:        points,
		PnL:           pnl,
		Reason:        exitReason(pos.state),
		CapitalBefore: capital,
		CapitalAfter:  capital + pnl,
	}
}

func exitReason(state positionState) ExitReason {
	switch state {
	case closedAtStop:
		return ExitStopLoss
	case closedAtTarget:
		return ExitTakeProfit
	default:
		return ExitWindowEnd
	}
}
