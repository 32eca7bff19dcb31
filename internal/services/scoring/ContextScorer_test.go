package scoring

import (
	"testing"
	"time"
)

func TestDayFactor(t *testing.T) {
	tests := []struct {
		day  time.Weekday
		want float64
	}{
		{time.Monday, 0.65},
		{time.Tuesday, 0.70},
		{time.Wednesday, 0.75},
		{time.Thursday, 0.68},
		{time.Friday, 0.60},
		{time.Saturday, 0.40},
		{time.Sunday, 0.40},
		{time.Weekday(9), 0.5},
	}
	for _, tc := range tests {
		if got := DayFactor(tc.day); got != tc.want {
			t.Fatalf("DayFactor(%d)=%v want %v", tc.day, got, tc.want)
		}
	}
}

func TestHourFactor(t *testing.T) {
	tests := []struct {
		hour int
		want float64
	}{
		{0, 0.2}, {8, 0.2}, {9, 0.9}, {10, 0.7}, {11, 0.7}, {12, 0.3},
		{13, 0.9}, {14, 0.9}, {15, 0.8}, {16, 0.8}, {17, 0.7}, {18, 0.2}, {23, 0.2},
	}
	for _, tc := range tests {
		if got := HourFactor(tc.hour); got != tc.want {
			t.Fatalf("HourFactor(%d)=%v want %v", tc.hour, got, tc.want)
		}
	}
}

func TestFactors(t *testing.T) {
	// 2025-03-05 is a Wednesday
	hour, day := Factors(time.Date(2025, 3, 5, 13, 30, 0, 0, time.UTC))
	if hour != 0.9 || day != 0.75 {
		t.Fatalf("got hour=%v day=%v", hour, day)
	}
}
