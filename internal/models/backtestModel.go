package models

import (
	"time"

	"github.com/google/uuid"
)

// BacktestRun is one persisted replay of the strategy over a candle range
type BacktestRun struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Symbol    string    `gorm:"index;not null"`
	TimeFrame string    `gorm:"not null"`
	FirstBar  time.Time
	LastBar   time.Time
	Bars      int

	InitialCapital float64 `gorm:"type:decimal(20,2);not null"`
	FinalCapital   float64 `gorm:"type:decimal(20,2);not null"`
	HitRate        float64 `gorm:"type:decimal(10,4)"`
	MaxDrawdown    float64 `gorm:"type:decimal(20,2)"`
	ReturnPercent  float64 `gorm:"type:decimal(10,4)"`
	TotalTrades    int
	SkippedSignals int

	CreatedAt time.Time `gorm:"autoCreateTime"`

	Trades []BacktestTrade `gorm:"foreignKey:RunID"`
}

type BacktestTrade struct {
	ID         uint      `gorm:"primaryKey"`
	RunID      uuid.UUID `gorm:"type:uuid;index;not null"`
	Seq        int       `gorm:"not null"`
	Side       string    `gorm:"not null"`
	EntryTime  time.Time `gorm:"index;not null"`
	ExitTime   time.Time
	EntryPrice float64 `gorm:"type:decimal(20,8);not null"`
	ExitPrice  float64 `gorm:"type:decimal(20,8);not null"`
	StopLoss   float64 `gorm:"type:decimal(20,8)"`
	TakeProfit float64 `gorm:"type:decimal(20,8)"`
	Size       float64 `gorm:"type:decimal(20,8)"`
	PnL        float64 `gorm:"type:decimal(20,2)"`
	ExitReason string  `gorm:"not null"`

	CapitalAfter float64 `gorm:"type:decimal(20,2)"`
}

const (
	TradeSideLong  = "long"
	TradeSideShort = "short"
)
