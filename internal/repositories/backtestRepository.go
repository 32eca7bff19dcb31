package repositories

import (
	"FuturesSignalBot/internal/models"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BacktestRepository struct {
	db *gorm.DB
}

func NewBacktestRepository(db *gorm.DB) *BacktestRepository {
	return &BacktestRepository{db: db}
}

// SaveRun stores a run and its trades in one transaction. Money columns are rounded to cents.
func (r *BacktestRepository) SaveRun(run *models.BacktestRun) error {
	if run == nil {
		return errors.New("run cannot be nil")
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	run.InitialCapital = roundCents(run.InitialCapital)
	run.FinalCapital = roundCents(run.FinalCapital)
	run.MaxDrawdown = roundCents(run.MaxDrawdown)
	for i := range run.Trades {
		run.Trades[i].RunID = run.ID
		run.Trades[i].PnL = roundCents(run.Trades[i].PnL)
		run.Trades[i].CapitalAfter = roundCents(run.Trades[i].CapitalAfter)
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(run).Error
	})
}

func roundCents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
