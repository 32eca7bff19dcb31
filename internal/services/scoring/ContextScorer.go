package scoring

import "time"

const defaultDayFactor = 0.5

// Correlation of the instrument with the global USD market by weekday.
// Weekends carry a low value because the market is closed.
var dayFactors = map[time.Weekday]float64{
	time.Monday:    0.65,
	time.Tuesday:   0.70,
	time.Wednesday: 0.75,
	time.Thursday:  0.68,
	time.Friday:    0.60,
	time.Saturday:  0.40,
	time.Sunday:    0.40,
}

type hourWindow struct {
	from, to int // [from, to)
	factor   float64
}

// Intraday liquidity windows of the trading session
var hourWindows = []hourWindow{
	{9, 10, 0.9},  // opening, high volatility
	{10, 12, 0.7}, // consolidation
	{12, 13, 0.3}, // lunch, thin book
	{13, 15, 0.9}, // US open
	{15, 17, 0.8},
	{17, 18, 0.7}, // close
}

const offHoursFactor = 0.2

// DayFactor returns the weekday correlation factor; unknown days get 0.5
func DayFactor(day time.Weekday) float64 {
	if f, ok := dayFactors[day]; ok {
		return f
	}
	return defaultDayFactor
}

// HourFactor returns the liquidity factor for an hour of the day
func HourFactor(hour int) float64 {
	for _, w := range hourWindows {
		if hour >= w.from && hour < w.to {
			return w.factor
		}
	}
	return offHoursFactor
}

// Factors returns the hour and day factors of a timestamp in its own location
func Factors(t time.Time) (hour, day float64) {
	return HourFactor(t.Hour()), DayFactor(t.Weekday())
}
