package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"FuturesSignalBot/config"
	"FuturesSignalBot/internal/handlers"
	"FuturesSignalBot/internal/logger"
	"FuturesSignalBot/internal/models"
	"FuturesSignalBot/internal/operations/binance"
	"FuturesSignalBot/internal/operations/price"
	"FuturesSignalBot/internal/repositories"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	logger.Init()
	log := logger.Component()
	defer log.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		priceRepo    *repositories.PriceRepository
		backtestRepo *repositories.BacktestRepository
	)
	if cfg.Database.Enabled() {
		db := setupDatabase(cfg.Database)
		priceRepo = repositories.NewPriceRepository(db)
		if cfg.PersistResults {
			backtestRepo = repositories.NewBacktestRepository(db)
		}
	}

	// Initialize Binance client
	client := binance.NewBinanceClient(cfg.Exchange.APIKey, cfg.Exchange.SecretKey)

	primary, fallback := buildSources(cfg, client, priceRepo)

	// Downloaded candles are kept when a database is configured
	var storeRepo *repositories.PriceRepository
	if cfg.Data.Source != config.DataSourceDB {
		storeRepo = priceRepo
	}
	priceHandler := handlers.NewPriceHandler(primary, fallback, storeRepo, log)

	strategyHandler, err := handlers.NewStrategyHandler(cfg.Strategy, backtestRepo, log)
	if err != nil {
		logger.Fatal("Invalid strategy configuration", zap.Error(err))
	}

	candles, err := loadCandles(ctx, priceHandler)
	if err != nil {
		logger.Fatal("Failed to load candles", zap.Error(err))
	}

	report, err := strategyHandler.Run(ctx, candles)
	if err != nil {
		logger.Error("Strategy run failed", zap.Error(err))
		if report == nil {
			os.Exit(1)
		}
	}

	fmt.Println()
	for _, line := range report.Lines() {
		fmt.Println(line)
	}
}

// loadCandles treats missing data as an empty series; any other failure is returned
func loadCandles(ctx context.Context, loader interface {
	LoadCandles(ctx context.Context) ([]models.Candle, error)
}) ([]models.Candle, error) {
	candles, err := loader.LoadCandles(ctx)
	if errors.Is(err, price.ErrDataUnavailable) {
		logger.Warn("No price data available, reporting an empty run", zap.Error(err))
		return nil, nil
	}
	return candles, err
}

func buildSources(cfg *config.Config, client *binance.BinanceClient, priceRepo *repositories.PriceRepository) (price.CandleSource, price.CandleSource) {
	ticks := price.NewTickRecorder(client, cfg.Market.Symbol, cfg.Data.TickDuration, cfg.Data.TickInterval)

	var primary price.CandleSource
	switch cfg.Data.Source {
	case config.DataSourceDB:
		primary = price.NewRepositorySource(priceRepo, cfg.Market.Symbol, cfg.Market.TimeFrame, cfg.Market.HistoryDays)
	case config.DataSourceBinance:
		primary = price.NewPriceFetcher(client, cfg.Market.Symbol, cfg.Market.TimeFrame, cfg.Market.HistoryDays)
	case config.DataSourceTicks:
		return ticks, nil
	default:
		primary = price.NewCSVSource(cfg.Data.CSVPath, cfg.Market.Symbol, cfg.Market.TimeFrame)
	}

	if !cfg.Data.LiveFallback {
		return primary, nil
	}
	return primary, ticks
}

func setupDatabase(dbConfig config.DatabaseConfig) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Auto migrate database schemas
	if err := db.AutoMigrate(&models.Candle{}, &models.BacktestRun{}, &models.BacktestTrade{}); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	return db
}
