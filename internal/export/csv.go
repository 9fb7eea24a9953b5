// Package export serializes a priced day as CSV for the data-table and
// download surfaces. The format is a direct dump of the hourly rows: no
// derived values are computed here.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/luzwatch/luzwatch/internal/engine"
)

// Write emits one row per hour: the hour label, the display price and,
// outside raw mode, the wholesale price it derives from. Floats use the
// shortest round-tripping representation so Parse recovers them exactly.
func Write(w io.Writer, series engine.PricedSeries) error {
	cw := csv.NewWriter(w)

	header := []string{"hour", "price"}
	withWholesale := series.Mode != engine.ModeRaw
	if withWholesale {
		header = append(header, "wholesale_eur_mwh")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, h := range series.Hours {
		row := []string{
			fmt.Sprintf("%02d:00", h.Hour),
			strconv.FormatFloat(h.Display, 'g', -1, 64),
		}
		if withWholesale {
			row = append(row, strconv.FormatFloat(h.EURPerMWh, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing hour %d: %w", h.Hour, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Parse reads the CSV format back into hourly rows. The wholesale
// column is optional, matching raw-mode output.
func Parse(r io.Reader) ([]engine.FinalHourlyPrice, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv")
	}

	hours := make([]engine.FinalHourlyPrice, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) < 2 {
			return nil, fmt.Errorf("row %d: want at least 2 fields, got %d", i+1, len(rec))
		}

		var h engine.FinalHourlyPrice
		if _, err := fmt.Sscanf(rec[0], "%d:00", &h.Hour); err != nil {
			return nil, fmt.Errorf("row %d: bad hour %q: %w", i+1, rec[0], err)
		}
		if h.Display, err = strconv.ParseFloat(rec[1], 64); err != nil {
			return nil, fmt.Errorf("row %d: bad price %q: %w", i+1, rec[1], err)
		}
		if len(rec) > 2 {
			if h.EURPerMWh, err = strconv.ParseFloat(rec[2], 64); err != nil {
				return nil, fmt.Errorf("row %d: bad wholesale price %q: %w", i+1, rec[2], err)
			}
		}
		hours = append(hours, h)
	}

	return hours, nil
}
