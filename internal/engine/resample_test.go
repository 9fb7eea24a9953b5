package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func madrid(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)
	return loc
}

func TestResampleQuarterHourly(t *testing.T) {
	loc := madrid(t)
	day := time.Date(2025, 3, 4, 0, 0, 0, 0, loc) // Tuesday

	// 4 samples per hour for the full day
	samples := []PriceSample{}
	for h := 0; h < 24; h++ {
		for q := 0; q < 4; q++ {
			samples = append(samples, PriceSample{
				Time:      time.Date(2025, 3, 4, h, q*15, 0, 0, loc),
				EURPerMWh: float64(h*10) + float64(q), // mean = h*10 + 1.5
			})
		}
	}

	series, err := Resample(samples, day, ZoneES)
	require.NoError(t, err)
	require.True(t, series.Complete())
	assert.False(t, series.Weekend)

	for h, got := range series.Hours {
		assert.Equal(t, h, got.Hour)
		assert.InDelta(t, float64(h*10)+1.5, got.EURPerMWh, 1e-9)
	}
}

func TestResampleHourlyIsIdentity(t *testing.T) {
	loc := madrid(t)
	day := time.Date(2025, 3, 4, 0, 0, 0, 0, loc)

	samples := make([]PriceSample, 24)
	for h := range samples {
		samples[h] = PriceSample{
			Time:      time.Date(2025, 3, 4, h, 0, 0, 0, loc),
			EURPerMWh: 40 + float64(h)*0.25,
		}
	}

	series, err := Resample(samples, day, ZoneES)
	require.NoError(t, err)
	require.Len(t, series.Hours, 24)

	// Mean of a single sample is that sample: no special case needed
	for h, got := range series.Hours {
		assert.Equal(t, samples[h].EURPerMWh, got.EURPerMWh)
	}
}

func TestResampleGroupsByLocalHour(t *testing.T) {
	loc := madrid(t)
	day := time.Date(2025, 3, 4, 0, 0, 0, 0, loc)

	// 23:30 UTC on March 3rd is 00:30 local on the 4th (CET is UTC+1)
	samples := []PriceSample{
		{Time: time.Date(2025, 3, 3, 23, 30, 0, 0, time.UTC), EURPerMWh: 50},
	}

	series, err := Resample(samples, day, ZoneES)
	require.NoError(t, err)
	require.Len(t, series.Hours, 1)
	assert.Equal(t, 0, series.Hours[0].Hour)
	assert.Equal(t, 50.0, series.Hours[0].EURPerMWh)
}

func TestResampleIgnoresOtherDays(t *testing.T) {
	loc := madrid(t)
	day := time.Date(2025, 3, 4, 0, 0, 0, 0, loc)

	samples := []PriceSample{
		{Time: time.Date(2025, 3, 3, 10, 0, 0, 0, loc), EURPerMWh: 99},
		{Time: time.Date(2025, 3, 4, 10, 0, 0, 0, loc), EURPerMWh: 42},
		{Time: time.Date(2025, 3, 5, 10, 0, 0, 0, loc), EURPerMWh: 99},
	}

	series, err := Resample(samples, day, ZoneES)
	require.NoError(t, err)
	require.Len(t, series.Hours, 1)
	assert.Equal(t, 10, series.Hours[0].Hour)
	assert.Equal(t, 42.0, series.Hours[0].EURPerMWh)
}

func TestResampleEmptyInput(t *testing.T) {
	loc := madrid(t)
	day := time.Date(2025, 3, 4, 0, 0, 0, 0, loc)

	series, err := Resample(nil, day, ZoneES)
	require.NoError(t, err)
	assert.Empty(t, series.Hours)
	assert.False(t, series.Complete())
}

func TestResampleWeekendFlag(t *testing.T) {
	loc := madrid(t)

	saturday := time.Date(2025, 3, 8, 0, 0, 0, 0, loc)
	series, err := Resample(nil, saturday, ZoneES)
	require.NoError(t, err)
	assert.True(t, series.Weekend)

	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
	series, err = Resample(nil, monday, ZoneES)
	require.NoError(t, err)
	assert.False(t, series.Weekend)
}

func TestResampleFallBackAveragesRepeatedHour(t *testing.T) {
	loc := madrid(t)
	// DST ends 2025-10-26: 02:00 local occurs twice. Both occurrences
	// land in the hour-2 bucket and average together.
	day := time.Date(2025, 10, 26, 0, 0, 0, 0, loc)

	samples := []PriceSample{
		{Time: time.Date(2025, 10, 26, 0, 0, 0, 0, time.UTC), EURPerMWh: 10}, // 02:00 CEST
		{Time: time.Date(2025, 10, 26, 1, 0, 0, 0, time.UTC), EURPerMWh: 30}, // 02:00 CET
	}

	series, err := Resample(samples, day, ZoneES)
	require.NoError(t, err)
	require.Len(t, series.Hours, 1)
	assert.Equal(t, 2, series.Hours[0].Hour)
	assert.Equal(t, 20.0, series.Hours[0].EURPerMWh)
}
