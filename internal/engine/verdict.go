package engine

import "time"

// Clock abstracts wall-clock time so the live verdict is testable
// without depending on when the tests run
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// RealClock reads the system clock
func RealClock() Clock { return ClockFunc(time.Now) }

// VerdictPolicy selects the averaging basis for the live verdict
type VerdictPolicy string

const (
	// VerdictFullDay compares against the mean of every published hour
	VerdictFullDay VerdictPolicy = "full_day"
	// VerdictElapsed compares against the mean of the hours up to and
	// including the current one
	VerdictElapsed VerdictPolicy = "elapsed"
)

// Verdict rates the current hour's price
type Verdict string

const (
	VerdictCheap     Verdict = "cheap"
	VerdictNormal    Verdict = "normal"
	VerdictExpensive Verdict = "expensive"
	VerdictUnknown   Verdict = "unknown"
)

// Prices within this fraction of the reference average rate as normal
const verdictBand = 0.10

// LiveVerdict rates the price of the hour the clock currently shows
// against the day's average. It only applies when the series is for the
// clock's current local day; otherwise, or when the current hour is
// missing from the series, it returns VerdictUnknown.
func LiveVerdict(series PricedSeries, clock Clock, policy VerdictPolicy) Verdict {
	loc, err := series.Zone.Location()
	if err != nil {
		return VerdictUnknown
	}
	now := clock.Now().In(loc)
	if now.Year() != series.Date.Year() || now.YearDay() != series.Date.YearDay() {
		return VerdictUnknown
	}

	hour := now.Hour()
	current, ok := series.priceAt(hour)
	if !ok {
		return VerdictUnknown
	}

	ref := series
	if policy == VerdictElapsed {
		elapsed := PricedSeries{Zone: series.Zone}
		for _, h := range series.Hours {
			if h.Hour <= hour {
				elapsed.Hours = append(elapsed.Hours, h)
			}
		}
		ref = elapsed
	}
	stats, err := ref.Stats()
	if err != nil {
		return VerdictUnknown
	}

	switch {
	case current < stats.Average*(1-verdictBand):
		return VerdictCheap
	case current > stats.Average*(1+verdictBand):
		return VerdictExpensive
	default:
		return VerdictNormal
	}
}

func (s PricedSeries) priceAt(hour int) (float64, bool) {
	for _, h := range s.Hours {
		if h.Hour == hour {
			return h.Display, true
		}
	}
	return 0, false
}
