package config

import (
	"FuturesSignalBot/internal/models"
	"FuturesSignalBot/internal/operations/backtest"
	"FuturesSignalBot/internal/operations/price"
	"FuturesSignalBot/internal/services/indicators"
	"FuturesSignalBot/internal/services/strategy"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads .env when present, then builds the config from the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	strategyCfg := DefaultStrategyConfig()
	if path := os.Getenv("STRATEGY_CONFIG"); path != "" {
		var err error
		if strategyCfg, err = LoadStrategyFile(path, strategyCfg); err != nil {
			return nil, err
		}
	}
	if err := applyStrategyEnv(&strategyCfg); err != nil {
		return nil, err
	}
	if err := strategyCfg.Validate(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Exchange: ExchangeConfig{
			APIKey:    os.Getenv("BINANCE_API_KEY"),
			SecretKey: os.Getenv("BINANCE_SECRET_KEY"),
		},
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     EnvtoInt(os.Getenv("DB_PORT")),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		Market: MarketConfig{
			Symbol:      getEnv("TRADING_SYMBOL", "BTCUSDT"),
			TimeFrame:   getEnv("TIMEFRAME", models.TimeFrame5m),
			HistoryDays: 7,
		},
		Data: DataConfig{
			Source:       strings.ToLower(getEnv("DATA_SOURCE", DataSourceCSV)),
			CSVPath:      getEnv("CSV_PATH", "data/candles.csv"),
			LiveFallback: envBool("LIVE_FALLBACK", true),
			TickDuration: price.DefaultRecordDuration,
			TickInterval: price.DefaultRecordInterval,
		},
		Strategy:       strategyCfg,
		PersistResults: envBool("PERSIST_RESULTS", false),
	}

	if days := EnvtoInt(os.Getenv("HISTORY_DAYS")); days > 0 {
		cfg.Market.HistoryDays = days
	}
	if d, err := time.ParseDuration(os.Getenv("TICK_DURATION")); err == nil && d > 0 {
		cfg.Data.TickDuration = d
	}
	if d, err := time.ParseDuration(os.Getenv("TICK_INTERVAL")); err == nil && d > 0 {
		cfg.Data.TickInterval = d
	}

	switch cfg.Data.Source {
	case DataSourceDB, DataSourceCSV, DataSourceBinance, DataSourceTicks:
	default:
		return nil, fmt.Errorf("%w: unknown DATA_SOURCE %q", ErrInvalidConfig, cfg.Data.Source)
	}
	if (cfg.Data.Source == DataSourceDB || cfg.PersistResults) && !cfg.Database.Enabled() {
		return nil, fmt.Errorf("%w: DB_HOST is required for DATA_SOURCE=db or PERSIST_RESULTS", ErrInvalidConfig)
	}

	return cfg, nil
}

func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		Indicators:        indicators.DefaultConfig(),
		Signals:           strategy.DefaultConfig(),
		Backtest:          backtest.NewConfig(),
		ReportThreshold:   ReportThreshold,
		BacktestThreshold: BacktestThreshold,
	}
}

// LoadStrategyFile overlays a YAML file on base; keys absent from the file keep their base value
func LoadStrategyFile(path string, base StrategyConfig) (StrategyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading strategy config: %w", err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parsing strategy config %s: %w", path, err)
	}
	return cfg, nil
}

func (c StrategyConfig) Validate() error {
	if err := c.Indicators.Validate(); err != nil {
		return err
	}
	if err := c.Signals.Validate(); err != nil {
		return err
	}
	if err := c.Backtest.Validate(); err != nil {
		return err
	}
	for _, th := range []float64{c.ReportThreshold, c.BacktestThreshold} {
		if th < 0 || th > 1 {
			return fmt.Errorf("%w: strength threshold %.2f outside [0, 1]", ErrInvalidConfig, th)
		}
	}
	return nil
}

func applyStrategyEnv(c *StrategyConfig) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"STRATEGY_SHORT_PERIOD", &c.Indicators.ShortPeriod},
		{"STRATEGY_MEDIUM_PERIOD", &c.Indicators.MediumPeriod},
		{"STRATEGY_LONG_PERIOD", &c.Indicators.LongPeriod},
		{"STRATEGY_RSI_PERIOD", &c.Indicators.RSIPeriod},
		{"STRATEGY_ATR_PERIOD", &c.Indicators.ATRPeriod},
		{"STRATEGY_LOOKAHEAD", &c.Backtest.Lookahead},
	}
	for _, o := range ints {
		raw, ok := os.LookupEnv(o.key)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, o.key, raw)
		}
		*o.dst = v
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"STRATEGY_RSI_OVERSOLD", &c.Signals.RSIOversold},
		{"STRATEGY_RSI_OVERBOUGHT", &c.Signals.RSIOverbought},
		{"STRATEGY_ATR_MULTIPLIER", &c.Signals.ATRMultiplier},
		{"STRATEGY_INITIAL_CAPITAL", &c.Backtest.InitialCapital},
		{"STRATEGY_MAX_POSITION_SIZE", &c.Backtest.MaxPositionSize},
		{"STRATEGY_RISK_FRACTION", &c.Backtest.RiskFraction},
		{"STRATEGY_POINT_VALUE", &c.Backtest.PointValue},
		{"STRATEGY_REPORT_THRESHOLD", &c.ReportThreshold},
		{"STRATEGY_BACKTEST_THRESHOLD", &c.BacktestThreshold},
	}
	for _, o := range floats {
		raw, ok := os.LookupEnv(o.key)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, o.key, raw)
		}
		*o.dst = v
	}
	return nil
}

// helper env(string) to int
func EnvtoInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}
