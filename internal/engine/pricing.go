package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNoData        = errors.New("no hourly prices available")
	ErrInvalidTariff = errors.New("invalid tariff configuration")
)

// Validate rejects out-of-range tariff parameters. Invalid values are
// an error at construction time, never clamped.
func (c TariffConfig) Validate() error {
	switch c.Mode {
	case ModeRaw, ModeFixed, ModeIndexed:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidTariff, c.Mode)
	}
	if c.TaxRate < 0 {
		return fmt.Errorf("%w: tax rate %v is negative", ErrInvalidTariff, c.TaxRate)
	}
	if c.MarginEURPerKWh < 0 {
		return fmt.Errorf("%w: margin %v is negative", ErrInvalidTariff, c.MarginEURPerKWh)
	}
	if c.FlatFeeEURPerKWh < 0 {
		return fmt.Errorf("%w: flat fee %v is negative", ErrInvalidTariff, c.FlatFeeEURPerKWh)
	}
	if c.TOUFees != nil {
		if c.TOUFees.Peak < 0 || c.TOUFees.Standard < 0 || c.TOUFees.OffPeak < 0 {
			return fmt.Errorf("%w: time-of-use fees must not be negative", ErrInvalidTariff)
		}
	}
	if c.Mode == ModeFixed && c.FixedEURPerKWh <= 0 {
		return fmt.Errorf("%w: fixed mode needs a positive contracted price", ErrInvalidTariff)
	}
	return nil
}

// ComputePrices applies the tariff formula to every hour of the series.
// Exactly one formula runs per mode:
//
//	raw      display = wholesale EUR/MWh, untouched
//	fixed    display = contracted EUR/kWh * (1 + tax)
//	indexed  display = (wholesale/1000 + margin + period fee) * (1 + tax)
//
// The /1000 MWh->kWh conversion happens only in indexed mode. Partial
// days pass through with their missing hours still missing.
func ComputePrices(series DailySeries, cfg TariffConfig) (PricedSeries, error) {
	if err := cfg.Validate(); err != nil {
		return PricedSeries{}, err
	}

	priced := PricedSeries{
		Date:    series.Date,
		Zone:    series.Zone,
		Weekend: series.Weekend,
		Mode:    cfg.Mode,
		Hours:   make([]FinalHourlyPrice, 0, len(series.Hours)),
	}

	for _, h := range series.Hours {
		fh := FinalHourlyPrice{Hour: h.Hour, EURPerMWh: h.EURPerMWh}
		switch cfg.Mode {
		case ModeRaw:
			fh.Display = h.EURPerMWh
		case ModeFixed:
			fh.Display = cfg.FixedEURPerKWh * (1 + cfg.TaxRate)
		case ModeIndexed:
			fh.Period = ClassifyHour(h.Hour, series.Weekend)
			fee := cfg.FlatFeeEURPerKWh
			if cfg.TOUFees != nil {
				fee = cfg.TOUFees.For(fh.Period)
			}
			preTax := h.EURPerMWh/1000 + cfg.MarginEURPerKWh + fee
			fh.Display = preTax * (1 + cfg.TaxRate)
		}
		priced.Hours = append(priced.Hours, fh)
	}

	return priced, nil
}

// Stats computes the unweighted mean, minimum and maximum of the display
// prices over the hours actually present. Missing hours are excluded,
// not zero. Ties on min/max resolve to the earliest hour. Returns
// ErrNoData for an empty series instead of undefined statistics.
func (s PricedSeries) Stats() (Stats, error) {
	if len(s.Hours) == 0 {
		return Stats{}, ErrNoData
	}

	st := Stats{
		Min:     s.Hours[0].Display,
		MinHour: s.Hours[0].Hour,
		Max:     s.Hours[0].Display,
		MaxHour: s.Hours[0].Hour,
	}

	sum := 0.0
	for _, h := range s.Hours {
		sum += h.Display
		if h.Display < st.Min {
			st.Min = h.Display
			st.MinHour = h.Hour
		}
		if h.Display > st.Max {
			st.Max = h.Display
			st.MaxHour = h.Hour
		}
	}
	st.Average = sum / float64(len(s.Hours))

	return st, nil
}
