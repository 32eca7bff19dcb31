package config

import (
	"FuturesSignalBot/internal/operations/backtest"
	"FuturesSignalBot/internal/services/indicators"
	"FuturesSignalBot/internal/services/strategy"
	"time"
)

// Minimum signal strength for the report and for the backtest
const (
	ReportThreshold   = 0.7
	BacktestThreshold = 0.8
)

// Data sources selectable with DATA_SOURCE
const (
	DataSourceDB      = "db"
	DataSourceCSV     = "csv"
	DataSourceBinance = "binance"
	DataSourceTicks   = "ticks"
)

type Config struct {
	Exchange       ExchangeConfig
	Database       DatabaseConfig
	Market         MarketConfig
	Data           DataConfig
	Strategy       StrategyConfig
	PersistResults bool
}

type ExchangeConfig struct {
	APIKey    string
	SecretKey string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// Enabled reports whether a database host is configured
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

type MarketConfig struct {
	Symbol      string
	TimeFrame   string
	HistoryDays int
}

type DataConfig struct {
	Source       string
	CSVPath      string
	LiveFallback bool // record live ticks when the historical source is empty
	TickDuration time.Duration
	TickInterval time.Duration
}

// StrategyConfig groups every tunable parameter of the pipeline
type StrategyConfig struct {
	Indicators        indicators.Config `yaml:"indicators"`
	Signals           strategy.Config   `yaml:"signals"`
	Backtest          backtest.Config   `yaml:"backtest"`
	ReportThreshold   float64           `yaml:"report_threshold"`
	BacktestThreshold float64           `yaml:"backtest_threshold"`
}
