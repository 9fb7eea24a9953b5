package prices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luzwatch/luzwatch/internal/engine"
)

func TestFetchDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/price", r.URL.Path)
		assert.Equal(t, "ES", r.URL.Query().Get("bzn"))
		assert.Equal(t, "2025-03-04", r.URL.Query().Get("start"))
		assert.Equal(t, "2025-03-04", r.URL.Query().Get("end"))
		// Out of order on purpose; null marks an unpublished slot
		w.Write([]byte(`{
			"unix_seconds": [1741047300, 1741046400, 1741048200],
			"price": [50.5, 48.0, null],
			"unit": "EUR/MWh"
		}`))
	}))
	defer srv.Close()

	client := NewClientWithBase(srv.URL)
	day := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	samples, err := client.FetchDay(context.Background(), day, engine.ZoneES)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	// Sorted ascending, nulls dropped
	assert.True(t, samples[0].Time.Before(samples[1].Time))
	assert.Equal(t, 48.0, samples[0].EURPerMWh)
	assert.Equal(t, 50.5, samples[1].EURPerMWh)
}

func TestFetchDayNotYetPublished(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClientWithBase(srv.URL)
	samples, err := client.FetchDay(context.Background(), time.Now().AddDate(0, 0, 2), engine.ZonePT)
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestFetchDayMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unix_seconds": [1741046400], "price": []}`))
	}))
	defer srv.Close()

	client := NewClientWithBase(srv.URL)
	_, err := client.FetchDay(context.Background(), time.Now(), engine.ZoneES)
	require.Error(t, err)
}

func TestFetchDayUnknownZone(t *testing.T) {
	client := NewClient()
	_, err := client.FetchDay(context.Background(), time.Now(), engine.Zone("FR"))
	require.Error(t, err)
}
