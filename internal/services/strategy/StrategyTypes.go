package strategy

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidConfig = errors.New("invalid strategy configuration")

// Direction of a signal: 1 buy, -1 sell, 0 none
type Direction int

const (
	None Direction = 0
	Buy  Direction = 1
	Sell Direction = -1
)

func (d Direction) String() string {
	switch d {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "none"
	}
}

// Signal is the strategy verdict for one bar.
// StopLoss and TakeProfit are NaN when Direction is None.
type Signal struct {
	Index     int
	Time      time.Time
	Direction Direction
	Strength  float64 // 0-1

	EntryPrice float64
	StopLoss   float64
	TakeProfit float64

	// Confirmations that raised the strength
	RSIExtreme bool
	NearLevel  bool
}

// Config holds the signal rule thresholds
type Config struct {
	RSIOversold   float64 `yaml:"rsi_oversold"`
	RSIOverbought float64 `yaml:"rsi_overbought"`
	ATRMultiplier float64 `yaml:"atr_multiplier"`
}

func DefaultConfig() Config {
	return Config{
		RSIOversold:   30,
		RSIOverbought: 70,
		ATRMultiplier: 2,
	}
}

func (c Config) Validate() error {
	if c.RSIOversold < 0 || c.RSIOverbought > 100 || c.RSIOversold >= c.RSIOverbought {
		return fmt.Errorf("%w: rsi thresholds %.2f/%.2f", ErrInvalidConfig, c.RSIOversold, c.RSIOverbought)
	}
	if c.ATRMultiplier <= 0 {
		return fmt.Errorf("%w: atr_multiplier must be positive, got %.2f", ErrInvalidConfig, c.ATRMultiplier)
	}
	return nil
}

// SignalSummary counts directional signals
type SignalSummary struct {
	Buys  int
	Sells int
}

// Summary counts buys and sells in signals
func Summary(signals []Signal) SignalSummary {
	var s SignalSummary
	for _, sig := range signals {
		switch sig.Direction {
		case Buy:
			s.Buys++
		case Sell:
			s.Sells++
		}
	}
	return s
}
