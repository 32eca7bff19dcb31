package backtest

import "math"

// calculateMetrics rolls up hit rate, drawdown and return over the ledger.
// Drawdown is measured on the post-trade capitals only; the initial capital is not a peak.
func calculateMetrics(initial, final float64, trades []Trade) Metrics {
	m := Metrics{
		InitialCapital: initial,
		FinalCapital:   final,
		TotalTrades:    len(trades),
	}
	if len(trades) == 0 {
		return m
	}

	peak := trades[0].CapitalAfter
	for _, t := range trades {
		if t.PnL > 0 {
			m.WinningTrades++
		} else {
			m.LosingTrades++
		}
		peak = math.Max(peak, t.CapitalAfter)
		m.MaxDrawdown = math.Max(m.MaxDrawdown, peak-t.CapitalAfter)
	}

	m.HitRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	m.ReturnPercent = (final - initial) / initial * 100
	return m
}
