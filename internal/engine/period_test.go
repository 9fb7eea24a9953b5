package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyHourWeekday(t *testing.T) {
	want := map[int]Period{
		0: PeriodOffPeak, 3: PeriodOffPeak, 7: PeriodOffPeak,
		8: PeriodStandard, 9: PeriodStandard,
		10: PeriodPeak, 13: PeriodPeak,
		14: PeriodStandard, 17: PeriodStandard,
		18: PeriodPeak, 21: PeriodPeak,
		22: PeriodStandard, 23: PeriodStandard,
	}
	for hour, period := range want {
		assert.Equal(t, period, ClassifyHour(hour, false), "hour %d", hour)
	}
}

func TestClassifyHourWeekendOverride(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		assert.Equal(t, PeriodOffPeak, ClassifyHour(hour, true), "hour %d", hour)
	}
}

func TestGridFeesFor(t *testing.T) {
	fees := GridFees{Peak: 0.13, Standard: 0.04, OffPeak: 0.01}
	assert.Equal(t, 0.13, fees.For(PeriodPeak))
	assert.Equal(t, 0.04, fees.For(PeriodStandard))
	assert.Equal(t, 0.01, fees.For(PeriodOffPeak))
}
