package strategy

// FilterSignals keeps directional signals whose strength reaches minStrength.
// Order is preserved. The threshold is the caller's: reporting and backtesting
// use different ones.
func FilterSignals(signals []Signal, minStrength float64) []Signal {
	out := make([]Signal, 0, len(signals))
	for _, s := range signals {
		if s.Direction != None && s.Strength >= minStrength {
			out = append(out, s)
		}
	}
	return out
}
