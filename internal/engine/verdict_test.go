package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verdictSeries(t *testing.T, prices ...float64) PricedSeries {
	t.Helper()
	loc := madrid(t)
	s := PricedSeries{
		Date: time.Date(2025, 3, 4, 0, 0, 0, 0, loc),
		Zone: ZoneES,
		Mode: ModeRaw,
	}
	for h, p := range prices {
		s.Hours = append(s.Hours, FinalHourlyPrice{Hour: h, Display: p})
	}
	return s
}

func clockAt(t *testing.T, hour int) Clock {
	t.Helper()
	loc := madrid(t)
	return ClockFunc(func() time.Time {
		return time.Date(2025, 3, 4, hour, 30, 0, 0, loc)
	})
}

func TestLiveVerdictFullDay(t *testing.T) {
	// Average 100; hour 0 is 50 (cheap), hour 1 is 150 (expensive),
	// hour 2 is 100 (normal)
	series := verdictSeries(t, 50, 150, 100, 100)

	assert.Equal(t, VerdictCheap, LiveVerdict(series, clockAt(t, 0), VerdictFullDay))
	assert.Equal(t, VerdictExpensive, LiveVerdict(series, clockAt(t, 1), VerdictFullDay))
	assert.Equal(t, VerdictNormal, LiveVerdict(series, clockAt(t, 2), VerdictFullDay))
}

func TestLiveVerdictElapsedPolicy(t *testing.T) {
	// At hour 2 the elapsed mean is (10+10+40)/3 = 20, so 40 is
	// expensive; against the full day (mean 77.5) it would be cheap
	series := verdictSeries(t, 10, 10, 40, 250)

	assert.Equal(t, VerdictExpensive, LiveVerdict(series, clockAt(t, 2), VerdictElapsed))
	assert.Equal(t, VerdictCheap, LiveVerdict(series, clockAt(t, 2), VerdictFullDay))
}

func TestLiveVerdictOtherDay(t *testing.T) {
	series := verdictSeries(t, 50, 150)
	loc := madrid(t)
	tomorrow := ClockFunc(func() time.Time {
		return time.Date(2025, 3, 5, 1, 0, 0, 0, loc)
	})

	assert.Equal(t, VerdictUnknown, LiveVerdict(series, tomorrow, VerdictFullDay))
}

func TestLiveVerdictMissingHour(t *testing.T) {
	series := verdictSeries(t, 50, 150) // hours 0 and 1 only

	assert.Equal(t, VerdictUnknown, LiveVerdict(series, clockAt(t, 10), VerdictFullDay))
}

func TestRealClock(t *testing.T) {
	before := time.Now()
	now := RealClock().Now()
	require.False(t, now.Before(before))
}
