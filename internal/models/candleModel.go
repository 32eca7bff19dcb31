package models

import (
	"time"
)

type Candle struct {
	ID         uint      `gorm:"primaryKey"`
	Symbol     string    `gorm:"uniqueIndex:idx_candle_bar;not null"`
	TimeFrame  string    `gorm:"uniqueIndex:idx_candle_bar;not null"`
	OpenTime   time.Time `gorm:"uniqueIndex:idx_candle_bar;index;not null"`
	CloseTime  time.Time `gorm:"index"`
	Open       float64   `gorm:"type:decimal(20,8)"`
	High       float64   `gorm:"type:decimal(20,8)"`
	Low        float64   `gorm:"type:decimal(20,8)"`
	Close      float64   `gorm:"type:decimal(20,8)"`
	Volume     float64   `gorm:"type:decimal(20,8)"`
	TradeCount int64
}

const (
	TimeFrameTick = "tick"
	TimeFrame1m   = "1m"
	TimeFrame5m   = "5m"
	TimeFrame15m  = "15m"
	TimeFrame1h   = "1h"
)

// TableName sets the table name for Candle model
func (Candle) TableName() string {
	return "candles"
}

// Valid reports whether the OHLC values are consistent (high is the top, low the bottom)
func (c Candle) Valid() bool {
	return c.High >= c.Open && c.High >= c.Close && c.High >= c.Low &&
		c.Low <= c.Open && c.Low <= c.Close
}
