package uiapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/luzwatch/luzwatch/internal/engine"
	"github.com/luzwatch/luzwatch/internal/export"
	"github.com/luzwatch/luzwatch/internal/prices"
	"github.com/luzwatch/luzwatch/internal/store"
)

type Server struct {
	store   *store.Store
	client  *prices.Client
	clock   engine.Clock
	verdict engine.VerdictPolicy
}

func NewServer(st *store.Store, client *prices.Client) *Server {
	return &Server{
		store:   st,
		client:  client,
		clock:   engine.RealClock(),
		verdict: engine.VerdictFullDay,
	}
}

// WithClock replaces the wall clock, used by tests
func (s *Server) WithClock(c engine.Clock) *Server {
	s.clock = c
	return s
}

// WithVerdictPolicy switches the live-verdict averaging basis
func (s *Server) WithVerdictPolicy(p engine.VerdictPolicy) *Server {
	s.verdict = p
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.AllowAll().Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/prices", s.handleGetPrices)
		r.Get("/window", s.handleGetWindow)
		r.Get("/export.csv", s.handleExportCSV)
		r.Get("/tariff", s.handleGetTariff)
		r.Put("/tariff", s.handleUpdateTariff)
		r.Get("/devices", s.handleGetDevices)
		r.Post("/devices", s.handleCreateDevice)
		r.Get("/devices/{id}", s.handleGetDevice)
		r.Delete("/devices/{id}", s.handleDeleteDevice)
	})

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": "1.0.0",
	})
}

// dayQuery resolves the date and zone query parameters, defaulting to
// today in zone ES
func (s *Server) dayQuery(r *http.Request) (time.Time, engine.Zone, error) {
	zone := engine.ZoneES
	if z := r.URL.Query().Get("zone"); z != "" {
		zone = engine.Zone(z)
		if !zone.Valid() {
			return time.Time{}, "", errors.New("unknown zone (want ES or PT)")
		}
	}

	loc, err := zone.Location()
	if err != nil {
		return time.Time{}, "", err
	}

	day := s.clock.Now().In(loc)
	if d := r.URL.Query().Get("date"); d != "" {
		day, err = time.ParseInLocation("2006-01-02", d, loc)
		if err != nil {
			return time.Time{}, "", errors.New("invalid date (want YYYY-MM-DD)")
		}
	}

	return day, zone, nil
}

// pricedDay fetches (through the cache), resamples and prices one day
func (s *Server) pricedDay(ctx context.Context, day time.Time, zone engine.Zone) (engine.PricedSeries, error) {
	samples, err := s.store.CachedSamples(zone, day)
	if err != nil {
		samples, err = s.client.FetchDay(ctx, day, zone)
		if err != nil {
			return engine.PricedSeries{}, err
		}
		if len(samples) > 0 {
			if err := s.store.CacheSamples(zone, day, samples); err != nil {
				return engine.PricedSeries{}, err
			}
		}
	}

	series, err := engine.Resample(samples, day, zone)
	if err != nil {
		return engine.PricedSeries{}, err
	}

	cfg, err := s.store.GetTariff()
	if err != nil {
		return engine.PricedSeries{}, err
	}

	return engine.ComputePrices(series, cfg)
}

type pricesResponse struct {
	Date    string            `json:"date"`
	Zone    engine.Zone       `json:"zone"`
	Mode    engine.TariffMode `json:"mode"`
	Weekend bool              `json:"weekend"`
	Partial bool              `json:"partial"`
	Hours   []hourResponse    `json:"hours"`
	Stats   *statsResponse    `json:"stats,omitempty"`
	Verdict engine.Verdict    `json:"verdict"`
}

type hourResponse struct {
	Hour      int           `json:"hour"`
	Wholesale float64       `json:"wholesale_eur_mwh"`
	Price     float64       `json:"price"`
	Period    engine.Period `json:"period,omitempty"`
}

type statsResponse struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	MinHour int     `json:"min_hour"`
	Max     float64 `json:"max"`
	MaxHour int     `json:"max_hour"`
}

func (s *Server) handleGetPrices(w http.ResponseWriter, r *http.Request) {
	day, zone, err := s.dayQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	priced, err := s.pricedDay(r.Context(), day, zone)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	resp := pricesResponse{
		Date:    priced.Date.Format("2006-01-02"),
		Zone:    zone,
		Mode:    priced.Mode,
		Weekend: priced.Weekend,
		Partial: len(priced.Hours) > 0 && len(priced.Hours) < 24,
		Hours:   make([]hourResponse, 0, len(priced.Hours)),
		Verdict: engine.LiveVerdict(priced, s.clock, s.verdict),
	}
	for _, h := range priced.Hours {
		resp.Hours = append(resp.Hours, hourResponse{
			Hour:      h.Hour,
			Wholesale: h.EURPerMWh,
			Price:     h.Display,
			Period:    h.Period,
		})
	}

	if stats, err := priced.Stats(); err == nil {
		resp.Stats = &statsResponse{
			Average: stats.Average,
			Min:     stats.Min,
			MinHour: stats.MinHour,
			Max:     stats.Max,
			MaxHour: stats.MaxHour,
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetWindow(w http.ResponseWriter, r *http.Request) {
	day, zone, err := s.dayQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	durationHours := 0
	powerWatts := 0.0

	if id := q.Get("device"); id != "" {
		device, err := s.store.GetDevice(id)
		if err != nil {
			respondError(w, http.StatusNotFound, "device not found")
			return
		}
		durationHours = device.DurationHours
		powerWatts = device.PowerWatts
	} else {
		durationHours, err = strconv.Atoi(q.Get("hours"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid hours parameter")
			return
		}
		powerWatts, err = strconv.ParseFloat(q.Get("watts"), 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid watts parameter")
			return
		}
	}

	priced, err := s.pricedDay(r.Context(), day, zone)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	window, err := engine.BestWindow(priced, durationHours, powerWatts)
	if errors.Is(err, engine.ErrInvalidDuration) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, engine.ErrNoWindow) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"start_hour":     window.StartHour,
		"duration_hours": window.DurationHours,
		"average_price":  window.AveragePrice,
		"estimated_cost": window.EstimatedCost,
		"all_equal":      window.AllEqual,
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	day, zone, err := s.dayQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	priced, err := s.pricedDay(r.Context(), day, zone)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		"attachment; filename=prices-"+string(zone)+"-"+priced.Date.Format("2006-01-02")+".csv")
	if err := export.Write(w, priced); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleGetTariff(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.GetTariff()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleUpdateTariff(w http.ResponseWriter, r *http.Request) {
	var cfg engine.TariffConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := cfg.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.SaveTariff(cfg); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleGetDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.store.GetDevices()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, devices)
}

func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var device store.Device
	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if device.ID == "" {
		device.ID = device.Name + "-" + time.Now().Format("20060102150405")
	}

	if err := s.store.SaveDevice(&device); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, device)
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	device, err := s.store.GetDevice(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "device not found")
		return
	}
	respondJSON(w, http.StatusOK, device)
}

func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteDevice(id); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "deleted", "id": id})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
