package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/luzwatch/luzwatch/internal/engine"
	_ "modernc.org/sqlite"
)

// Prices fetched longer ago than this are considered stale; the source
// republishes within the hour
const cacheFreshness = time.Hour

// ErrNotFound is returned when a cache or device lookup misses
var ErrNotFound = errors.New("not found")

// Store handles persistent storage using SQLite
type Store struct {
	db *sql.DB
}

// NewStore creates a new store and initializes the database
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// initialize creates the database schema
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS price_cache (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		zone TEXT NOT NULL,
		date TEXT NOT NULL,
		samples TEXT NOT NULL,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(zone, date)
	);

	CREATE TABLE IF NOT EXISTS devices (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		power_watts REAL NOT NULL,
		duration_hours INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS tariff (
		id TEXT PRIMARY KEY,
		config TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_price_cache_date ON price_cache(zone, date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// cachedSample is the JSON shape stored in price_cache.samples
type cachedSample struct {
	Time      time.Time `json:"time"`
	EURPerMWh float64   `json:"eur_per_mwh"`
}

// CacheSamples stores a fetched sample series for a zone and day
func (s *Store) CacheSamples(zone engine.Zone, date time.Time, samples []engine.PriceSample) error {
	rows := make([]cachedSample, len(samples))
	for i, smp := range samples {
		rows[i] = cachedSample{Time: smp.Time, EURPerMWh: smp.EURPerMWh}
	}
	samplesJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encoding samples: %w", err)
	}

	query := `INSERT OR REPLACE INTO price_cache (zone, date, samples, fetched_at)
		VALUES (?, ?, ?, ?)`

	_, err = s.db.Exec(query, string(zone), date.Format("2006-01-02"), string(samplesJSON), time.Now())
	return err
}

// CachedSamples retrieves a cached sample series if it is still fresh.
// Misses and stale entries both return ErrNotFound.
func (s *Store) CachedSamples(zone engine.Zone, date time.Time) ([]engine.PriceSample, error) {
	query := `SELECT samples, fetched_at FROM price_cache WHERE zone = ? AND date = ?`

	var samplesJSON string
	var fetchedAt time.Time
	err := s.db.QueryRow(query, string(zone), date.Format("2006-01-02")).Scan(&samplesJSON, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if time.Since(fetchedAt) > cacheFreshness {
		return nil, ErrNotFound
	}

	var rows []cachedSample
	if err := json.Unmarshal([]byte(samplesJSON), &rows); err != nil {
		return nil, fmt.Errorf("decoding samples: %w", err)
	}

	samples := make([]engine.PriceSample, len(rows))
	for i, r := range rows {
		samples[i] = engine.PriceSample{Time: r.Time, EURPerMWh: r.EURPerMWh}
	}
	return samples, nil
}

// Device is an appliance whose cheapest run window the user plans for
type Device struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	PowerWatts    float64 `json:"power_watts"`
	DurationHours int     `json:"duration_hours"`
}

// SaveDevice saves or updates a device
func (s *Store) SaveDevice(d *Device) error {
	if d.PowerWatts < 0 {
		return fmt.Errorf("device %q: negative power draw", d.Name)
	}
	if d.DurationHours < engine.MinWindowHours || d.DurationHours > engine.MaxWindowHours {
		return fmt.Errorf("device %q: duration %d outside %d-%d hours",
			d.Name, d.DurationHours, engine.MinWindowHours, engine.MaxWindowHours)
	}

	query := `INSERT OR REPLACE INTO devices (id, name, power_watts, duration_hours, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query, d.ID, d.Name, d.PowerWatts, d.DurationHours, time.Now())
	return err
}

// GetDevice retrieves a single device by ID
func (s *Store) GetDevice(id string) (*Device, error) {
	query := `SELECT id, name, power_watts, duration_hours FROM devices WHERE id = ?`

	var d Device
	err := s.db.QueryRow(query, id).Scan(&d.ID, &d.Name, &d.PowerWatts, &d.DurationHours)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDevices retrieves all devices, sorted by name
func (s *Store) GetDevices() ([]*Device, error) {
	rows, err := s.db.Query(`SELECT id, name, power_watts, duration_hours FROM devices ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	devices := []*Device{}
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.ID, &d.Name, &d.PowerWatts, &d.DurationHours); err != nil {
			return nil, err
		}
		devices = append(devices, &d)
	}
	return devices, rows.Err()
}

// DeleteDevice deletes a device by ID
func (s *Store) DeleteDevice(id string) error {
	_, err := s.db.Exec(`DELETE FROM devices WHERE id = ?`, id)
	return err
}

// SaveTariff persists the active tariff configuration
func (s *Store) SaveTariff(cfg engine.TariffConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding tariff: %w", err)
	}

	query := `INSERT OR REPLACE INTO tariff (id, config, updated_at) VALUES ('active', ?, ?)`
	_, err = s.db.Exec(query, string(cfgJSON), time.Now())
	return err
}

// GetTariff retrieves the active tariff configuration, defaulting to the
// raw wholesale passthrough when none has been saved yet
func (s *Store) GetTariff() (engine.TariffConfig, error) {
	var cfgJSON string
	err := s.db.QueryRow(`SELECT config FROM tariff WHERE id = 'active'`).Scan(&cfgJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.TariffConfig{Mode: engine.ModeRaw}, nil
	}
	if err != nil {
		return engine.TariffConfig{}, err
	}

	var cfg engine.TariffConfig
	if err := json.Unmarshal([]byte(cfgJSON), &cfg); err != nil {
		return engine.TariffConfig{}, fmt.Errorf("decoding tariff: %w", err)
	}
	return cfg, nil
}
