package engine

import (
	"fmt"
	"sort"
	"time"
)

// Resample normalizes raw sub-hourly samples into one price per local
// clock hour of the given day. Grouping happens after conversion to the
// zone's local time, and each hour is the arithmetic mean of every sample
// falling inside it, whatever the source resolution. Samples outside the
// target day are ignored. An empty input yields an empty series, and a
// partial day yields fewer than 24 hours; neither is an error.
func Resample(samples []PriceSample, day time.Time, zone Zone) (DailySeries, error) {
	loc, err := zone.Location()
	if err != nil {
		return DailySeries{}, fmt.Errorf("loading zone timezone: %w", err)
	}

	day = day.In(loc)
	series := DailySeries{
		Date:    time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc),
		Zone:    zone,
		Weekend: isWeekend(day),
	}

	var sums, counts [24]float64
	for _, s := range samples {
		local := s.Time.In(loc)
		if local.Year() != day.Year() || local.Month() != day.Month() || local.Day() != day.Day() {
			continue
		}
		h := local.Hour()
		sums[h] += s.EURPerMWh
		counts[h]++
	}

	for h := 0; h < 24; h++ {
		if counts[h] == 0 {
			continue
		}
		series.Hours = append(series.Hours, HourlyPrice{
			Hour:      h,
			EURPerMWh: sums[h] / counts[h],
		})
	}

	// Bucket order follows hour index already, but keep the invariant
	// explicit for callers that append their own hours
	sort.Slice(series.Hours, func(i, j int) bool {
		return series.Hours[i].Hour < series.Hours[j].Hour
	})

	return series, nil
}

// Complete reports whether the series covers all 24 hours of the day
func (s DailySeries) Complete() bool {
	return len(s.Hours) == 24
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
