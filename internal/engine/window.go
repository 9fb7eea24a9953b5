package engine

import (
	"errors"
	"fmt"
)

const (
	MinWindowHours = 1
	MaxWindowHours = 12
)

var (
	ErrInvalidDuration = errors.New("window duration out of range")
	ErrNoWindow        = errors.New("no window of the requested length fits the available hours")
)

// BestWindow finds the contiguous run of durationHours hours with the
// lowest average display price and the cost of drawing powerWatts across
// it. Windows never wrap past the end of the day, and on a partial day a
// window must also not straddle a gap in the published hours. Ties go to
// the earliest start hour. When every candidate has the same average
// (fixed-rate tariffs) the result carries AllEqual so callers can report
// "any hour works" instead of a meaningless best start.
func BestWindow(series PricedSeries, durationHours int, powerWatts float64) (UsageWindow, error) {
	if durationHours < MinWindowHours || durationHours > MaxWindowHours {
		return UsageWindow{}, fmt.Errorf("%w: %d hours (want %d-%d)",
			ErrInvalidDuration, durationHours, MinWindowHours, MaxWindowHours)
	}
	if powerWatts < 0 {
		return UsageWindow{}, fmt.Errorf("%w: negative power draw", ErrInvalidDuration)
	}

	hours := series.Hours
	if len(hours) < durationHours {
		return UsageWindow{}, ErrNoWindow
	}

	best := UsageWindow{StartHour: -1, DurationHours: durationHours, AllEqual: true}
	for i := 0; i+durationHours <= len(hours); i++ {
		window := hours[i : i+durationHours]
		if !contiguousHours(window) {
			continue
		}

		sum := 0.0
		for _, h := range window {
			sum += h.Display
		}
		avg := sum / float64(durationHours)

		if best.StartHour < 0 {
			best.StartHour = window[0].Hour
			best.AveragePrice = avg
			continue
		}
		if avg != best.AveragePrice {
			best.AllEqual = false
		}
		if avg < best.AveragePrice {
			best.StartHour = window[0].Hour
			best.AveragePrice = avg
		}
	}

	if best.StartHour < 0 {
		return UsageWindow{}, ErrNoWindow
	}

	best.EstimatedCost = powerWatts / 1000 * float64(durationHours) * best.AveragePrice
	return best, nil
}

// contiguousHours verifies the hours are consecutive clock hours
func contiguousHours(hours []FinalHourlyPrice) bool {
	for i := 1; i < len(hours); i++ {
		if hours[i].Hour != hours[i-1].Hour+1 {
			return false
		}
	}
	return true
}
