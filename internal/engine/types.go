package engine

import "time"

// Zone identifies an Iberian bidding zone
type Zone string

const (
	ZoneES Zone = "ES" // Spain
	ZonePT Zone = "PT" // Portugal
)

// Location returns the local timezone governing hour-of-day boundaries
// for the zone
func (z Zone) Location() (*time.Location, error) {
	switch z {
	case ZonePT:
		return time.LoadLocation("Europe/Lisbon")
	default:
		return time.LoadLocation("Europe/Madrid")
	}
}

// Valid reports whether the zone is a known bidding zone
func (z Zone) Valid() bool {
	return z == ZoneES || z == ZonePT
}

// PriceSample is a single raw observation from the price source at its
// native resolution (15-minute and hourly have both been observed)
type PriceSample struct {
	Time      time.Time
	EURPerMWh float64
}

// HourlyPrice is the wholesale price for one clock hour of the target day
type HourlyPrice struct {
	Hour      int // 0-23, local time
	EURPerMWh float64
}

// DailySeries holds the resampled hourly prices for one calendar day in
// one bidding zone. Hours are sorted ascending and may be fewer than 24
// when the source published a partial day.
type DailySeries struct {
	Date    time.Time
	Zone    Zone
	Weekend bool
	Hours   []HourlyPrice
}

// TariffMode selects which pricing formula applies
type TariffMode string

const (
	ModeRaw     TariffMode = "raw"     // wholesale passthrough, EUR/MWh
	ModeFixed   TariffMode = "fixed"   // flat contracted price, EUR/kWh
	ModeIndexed TariffMode = "indexed" // PVPC-style wholesale + fees, EUR/kWh
)

// Period is a time-of-use billing period
type Period string

const (
	PeriodPeak     Period = "peak"
	PeriodStandard Period = "standard"
	PeriodOffPeak  Period = "offpeak"
)

// GridFees maps each time-of-use period to its access toll in EUR/kWh
type GridFees struct {
	Peak     float64 `json:"peak"`
	Standard float64 `json:"standard"`
	OffPeak  float64 `json:"offpeak"`
}

// For returns the fee for a period
func (g GridFees) For(p Period) float64 {
	switch p {
	case PeriodPeak:
		return g.Peak
	case PeriodStandard:
		return g.Standard
	default:
		return g.OffPeak
	}
}

// TariffConfig captures one pricing scenario. Fields irrelevant to the
// active mode are ignored. Construct once per request and pass by value;
// nothing in the engine mutates it.
type TariffConfig struct {
	Mode TariffMode `json:"mode"`

	// TaxRate is fractional, e.g. 0.21 for 21% VAT
	TaxRate float64 `json:"tax_rate"`

	// MarginEURPerKWh is the retailer margin, indexed mode only
	MarginEURPerKWh float64 `json:"margin_eur_per_kwh"`

	// FlatFeeEURPerKWh is used in indexed mode when TOUFees is nil
	FlatFeeEURPerKWh float64 `json:"flat_fee_eur_per_kwh"`

	// TOUFees, when set, selects the fee by time-of-use period instead
	// of the flat fee
	TOUFees *GridFees `json:"tou_fees,omitempty"`

	// FixedEURPerKWh is the pre-tax contracted price, fixed mode only
	FixedEURPerKWh float64 `json:"fixed_eur_per_kwh"`
}

// FinalHourlyPrice is an HourlyPrice with the consumer-facing price
// attached. Display is EUR/kWh except in raw mode, where it is the
// unchanged EUR/MWh wholesale value. Period is only meaningful in
// indexed mode.
type FinalHourlyPrice struct {
	Hour      int
	EURPerMWh float64
	Display   float64
	Period    Period
}

// PricedSeries is a DailySeries after the tariff formula has been applied
type PricedSeries struct {
	Date    time.Time
	Zone    Zone
	Weekend bool
	Mode    TariffMode
	Hours   []FinalHourlyPrice
}

// Stats summarizes the display prices of a priced day. MinHour/MaxHour
// are the earliest hours achieving the extremes.
type Stats struct {
	Average float64
	Min     float64
	MinHour int
	Max     float64
	MaxHour int
}

// UsageWindow is the result of a cheapest-window search. AllEqual is set
// when every candidate window had the same average price (fixed-rate
// tariffs), meaning any start hour is equally good.
type UsageWindow struct {
	StartHour     int
	DurationHours int
	AveragePrice  float64
	EstimatedCost float64
	AllEqual      bool
}
