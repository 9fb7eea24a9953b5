package engine

// ClassifyHour maps an hour of day to its time-of-use billing period
// under the Spanish 2.0TD residential schedule. Weekends (and by
// regulation national holidays, which we treat as ordinary days) are
// off-peak for all 24 hours. The schedule is a fixed domain constant;
// it does not vary by zone or date.
//
//	00-08  off-peak
//	08-10  standard
//	10-14  peak
//	14-18  standard
//	18-22  peak
//	22-24  standard
func ClassifyHour(hour int, weekend bool) Period {
	if weekend {
		return PeriodOffPeak
	}
	switch {
	case hour < 8:
		return PeriodOffPeak
	case hour < 10:
		return PeriodStandard
	case hour < 14:
		return PeriodPeak
	case hour < 18:
		return PeriodStandard
	case hour < 22:
		return PeriodPeak
	default:
		return PeriodStandard
	}
}
