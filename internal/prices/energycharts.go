package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/luzwatch/luzwatch/internal/engine"
)

const defaultBaseURL = "https://api.energy-charts.info"

// Client fetches day-ahead prices from the Energy-Charts API
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for the Energy-Charts price endpoint
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithBase creates a client pointed at a non-default base URL
func NewClientWithBase(base string) *Client {
	c := NewClient()
	c.baseURL = base
	return c
}

// priceResponse represents the API response structure: parallel arrays
// of unix timestamps and EUR/MWh prices
type priceResponse struct {
	UnixSeconds []int64    `json:"unix_seconds"`
	Price       []*float64 `json:"price"`
	Unit        string     `json:"unit"`
}

// FetchDay fetches the day-ahead series for one local calendar day and
// bidding zone. Resolution varies by market phase (hourly and 15-minute
// have both been observed); callers resample rather than assume either.
// A day the market has not published yet comes back as an empty slice,
// not an error.
func (c *Client) FetchDay(ctx context.Context, day time.Time, zone engine.Zone) ([]engine.PriceSample, error) {
	if !zone.Valid() {
		return nil, fmt.Errorf("unknown bidding zone %q", zone)
	}
	loc, err := zone.Location()
	if err != nil {
		return nil, fmt.Errorf("loading zone timezone: %w", err)
	}

	dateStr := day.In(loc).Format("2006-01-02")
	params := url.Values{}
	params.Add("bzn", string(zone))
	params.Add("start", dateStr)
	params.Add("end", dateStr)

	fullURL := fmt.Sprintf("%s/price?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}
	defer resp.Body.Close()

	// The API answers 404 for dates it has no data for
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var pr priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(pr.UnixSeconds) != len(pr.Price) {
		return nil, fmt.Errorf("malformed response: %d timestamps for %d prices",
			len(pr.UnixSeconds), len(pr.Price))
	}

	samples := make([]engine.PriceSample, 0, len(pr.UnixSeconds))
	for i, ts := range pr.UnixSeconds {
		// Unpublished slots show up as nulls near the end of the day
		if pr.Price[i] == nil {
			continue
		}
		samples = append(samples, engine.PriceSample{
			Time:      time.Unix(ts, 0).In(loc),
			EURPerMWh: *pr.Price[i],
		})
	}

	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Time.Before(samples[j].Time)
	})

	return samples, nil
}
