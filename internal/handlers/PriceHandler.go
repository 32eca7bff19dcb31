package handlers

import (
	"FuturesSignalBot/internal/logger"
	"FuturesSignalBot/internal/models"
	"FuturesSignalBot/internal/operations/price"
	"FuturesSignalBot/internal/repositories"
	"context"
	"errors"

	"go.uber.org/zap"
)

// PriceHandler loads the candle series for a run. When the primary source has
// no data and a fallback is set, the fallback (live ticks) is used instead.
type PriceHandler struct {
	primary   price.CandleSource
	fallback  price.CandleSource
	priceRepo *repositories.PriceRepository
	log       *zap.Logger
}

// NewPriceHandler wires the sources. fallback and priceRepo may be nil;
// with a repository every loaded candle is stored.
func NewPriceHandler(primary, fallback price.CandleSource, priceRepo *repositories.PriceRepository, log *zap.Logger) *PriceHandler {
	return &PriceHandler{
		primary:   primary,
		fallback:  fallback,
		priceRepo: priceRepo,
		log:       logger.OrNop(log),
	}
}

func (h *PriceHandler) LoadCandles(ctx context.Context) ([]models.Candle, error) {
	candles, err := h.primary.Candles(ctx)
	if errors.Is(err, price.ErrDataUnavailable) && h.fallback != nil {
		h.log.Warn("No historical data, falling back to live ticks", zap.Error(err))
		candles, err = h.fallback.Candles(ctx)
	}
	if err != nil {
		return nil, err
	}

	if h.priceRepo != nil {
		if err := h.priceRepo.CreateBatch(candles); err != nil {
			h.log.Error("Error saving candles", zap.Error(err))
		}
	}

	h.log.Info("Candles loaded", zap.Int("count", len(candles)))
	return candles, nil
}
