package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pricedDay(prices ...float64) PricedSeries {
	s := PricedSeries{Zone: ZoneES, Mode: ModeRaw}
	for h, p := range prices {
		s.Hours = append(s.Hours, FinalHourlyPrice{Hour: h, Display: p})
	}
	return s
}

func fullDay(fill float64, overrides map[int]float64) PricedSeries {
	prices := make([]float64, 24)
	for i := range prices {
		prices[i] = fill
	}
	for h, p := range overrides {
		prices[h] = p
	}
	return pricedDay(prices...)
}

func TestBestWindowFindsCheapestRun(t *testing.T) {
	// 5 1 1 1 9 9 ... : the 3-hour window starting at hour 1 averages 1.0
	series := fullDay(9, map[int]float64{0: 5, 1: 1, 2: 1, 3: 1})

	w, err := BestWindow(series, 3, 2000)
	require.NoError(t, err)
	assert.Equal(t, 1, w.StartHour)
	assert.InDelta(t, 1.0, w.AveragePrice, 1e-9)
	assert.False(t, w.AllEqual)
	// 2 kW * 3 h * 1.0 EUR/kWh
	assert.InDelta(t, 6.0, w.EstimatedCost, 1e-9)
}

func TestBestWindowTieBreaksEarlier(t *testing.T) {
	// Two identical cheap windows, hours 2-3 and 10-11
	series := fullDay(9, map[int]float64{2: 1, 3: 1, 10: 1, 11: 1})

	w, err := BestWindow(series, 2, 1000)
	require.NoError(t, err)
	assert.Equal(t, 2, w.StartHour)
}

func TestBestWindowDoesNotWrap(t *testing.T) {
	// Cheapest hours sit at both ends of the day; a wrapping window
	// would win, but windows must stay inside the day
	series := fullDay(9, map[int]float64{22: 1, 23: 1, 0: 1})

	w, err := BestWindow(series, 3, 1000)
	require.NoError(t, err)
	// Best non-wrapping 3-hour window containing two of the cheap hours
	assert.Equal(t, 21, w.StartHour)
}

func TestBestWindowAllEqualOnFixedRate(t *testing.T) {
	series := fullDay(0.1815, nil)
	series.Mode = ModeFixed

	w, err := BestWindow(series, 4, 1500)
	require.NoError(t, err)
	assert.True(t, w.AllEqual)
	assert.Equal(t, 0, w.StartHour)
	assert.InDelta(t, 1.5*4*0.1815, w.EstimatedCost, 1e-9)
}

func TestBestWindowPartialDay(t *testing.T) {
	series := pricedDay(5, 4, 3) // only hours 0-2 published

	w, err := BestWindow(series, 2, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, w.StartHour)

	_, err = BestWindow(series, 4, 1000)
	require.ErrorIs(t, err, ErrNoWindow)
}

func TestBestWindowSkipsGaps(t *testing.T) {
	// Hours 0,1 then a gap, then 5,6: no 2-hour window may straddle it
	series := PricedSeries{Zone: ZoneES, Hours: []FinalHourlyPrice{
		{Hour: 0, Display: 9},
		{Hour: 1, Display: 8},
		{Hour: 5, Display: 1},
		{Hour: 6, Display: 1},
	}}

	w, err := BestWindow(series, 2, 1000)
	require.NoError(t, err)
	assert.Equal(t, 5, w.StartHour)

	_, err = BestWindow(series, 3, 1000)
	require.ErrorIs(t, err, ErrNoWindow)
}

func TestBestWindowDurationBounds(t *testing.T) {
	series := fullDay(1, nil)

	_, err := BestWindow(series, 0, 1000)
	require.ErrorIs(t, err, ErrInvalidDuration)

	_, err = BestWindow(series, 13, 1000)
	require.ErrorIs(t, err, ErrInvalidDuration)

	_, err = BestWindow(series, 12, 1000)
	require.NoError(t, err)
}

func TestBestWindowEmptySeries(t *testing.T) {
	_, err := BestWindow(PricedSeries{}, 1, 1000)
	require.ErrorIs(t, err, ErrNoWindow)
}
