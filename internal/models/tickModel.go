package models

import "time"

// Tick is one top-of-book snapshot of the instrument
type Tick struct {
	Time   time.Time
	Bid    float64
	Ask    float64
	Last   float64 // last traded price, 0 when unknown
	Volume float64 // quantity of the last trade
}

// Mid is the bid/ask midpoint
func (t Tick) Mid() float64 {
	return (t.Bid + t.Ask) / 2
}
