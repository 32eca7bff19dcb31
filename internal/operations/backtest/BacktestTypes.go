// backtest/types.go

package backtest

import (
	"FuturesSignalBot/internal/services/strategy"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidConfig = errors.New("invalid backtest configuration")

type ExitReason string

const (
	ExitStopLoss   ExitReason = "stop_loss"
	ExitTakeProfit ExitReason = "take_profit"
	ExitWindowEnd  ExitReason = "window_end"
)

type SkipReason string

const (
	SkipDegenerateRisk SkipReason = "degenerate_risk" // stop equals entry
	SkipNoExitData     SkipReason = "no_exit_data"    // signal on the last bar
	SkipInvalidSignal  SkipReason = "invalid_signal"  // no direction or index outside the series
)

// Core trade record
type Trade struct {
	SignalIndex int
	EntryTime   time.Time
	ExitTime    time.Time
	Direction   strategy.Direction
	EntryPrice  float64
	ExitPrice   float64
	StopLoss    float64
	TakeProfit  float64
	Size        float64
	Points      float64 // signed result in price points
	PnL         float64
	Reason      ExitReason

	CapitalBefore float64
	CapitalAfter  float64
}

// SkippedSignal is a filtered signal that did not become a trade
type SkippedSignal struct {
	Signal strategy.Signal
	Reason SkipReason
}

// For tracking equity changes
type EquityPoint struct {
	Timestamp time.Time
	Balance   float64
}

type Metrics struct {
	InitialCapital float64
	FinalCapital   float64
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	HitRate        float64 // percent of trades with positive PnL
	MaxDrawdown    float64 // money, peak to trough of capital
	ReturnPercent  float64
}

// Final backtest results
type Results struct {
	Trades      []Trade
	Skipped     []SkippedSignal
	EquityCurve []EquityPoint
	Metrics     Metrics

	// Stopped is set when capital ran out before every signal was processed
	Stopped bool
}

// Defaults for a mini futures contract
const (
	InitialCapital  = 10000.0
	MaxPositionSize = 1.0
	RiskFraction    = 0.01
	PointValue      = 10.0
	Lookahead       = 20
)

// Simulation config
type Config struct {
	InitialCapital  float64 `yaml:"initial_capital"`
	MaxPositionSize float64 `yaml:"max_position_size"`
	RiskFraction    float64 `yaml:"risk_fraction"`
	PointValue      float64 `yaml:"point_value"`
	Lookahead       int     `yaml:"lookahead"` // bars scanned for an exit
}

// NewConfig creates default config
func NewConfig() Config {
	return Config{
		InitialCapital:  InitialCapital,
		MaxPositionSize: MaxPositionSize,
		RiskFraction:    RiskFraction,
		PointValue:      PointValue,
		Lookahead:       Lookahead,
	}
}

func (c Config) Validate() error {
	switch {
	case c.InitialCapital <= 0:
		return fmt.Errorf("%w: initial capital must be positive, got %.2f", ErrInvalidConfig, c.InitialCapital)
	case c.RiskFraction <= 0:
		return fmt.Errorf("%w: risk fraction must be positive, got %.4f", ErrInvalidConfig, c.RiskFraction)
	case c.PointValue <= 0:
		return fmt.Errorf("%w: point value must be positive, got %.2f", ErrInvalidConfig, c.PointValue)
	case c.MaxPositionSize <= 0:
		return fmt.Errorf("%w: max position size must be positive, got %.2f", ErrInvalidConfig, c.MaxPositionSize)
	case c.Lookahead <= 0:
		return fmt.Errorf("%w: lookahead must be positive, got %d", ErrInvalidConfig, c.Lookahead)
	}
	return nil
}
