package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luzwatch/luzwatch/internal/engine"
	"github.com/luzwatch/luzwatch/internal/export"
	"github.com/luzwatch/luzwatch/internal/prices"
	"github.com/luzwatch/luzwatch/internal/store"
)

var (
	cfgFile string
	dbPath  string
	zone    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "luzwatch",
		Short: "LuzWatch - Iberian day-ahead electricity prices and tariffs",
		Long: `LuzWatch fetches day-ahead electricity prices for Spain and Portugal,
converts them to consumer tariffs (raw, fixed or indexed/PVPC) and finds
the cheapest hours to run your appliances.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.luzwatch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default is $HOME/.luzwatch/luzwatch.db)")
	rootCmd.PersistentFlags().StringVarP(&zone, "zone", "z", "", "bidding zone, ES or PT (default ES)")

	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(dayCmd())
	rootCmd.AddCommand(windowCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(deviceCmd())
	rootCmd.AddCommand(tariffCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".luzwatch")
		os.MkdirAll(configDir, 0755)

		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("luzwatch")
	viper.AutomaticEnv()
	viper.SetDefault("zone", "ES")
	viper.ReadInConfig()

	if zone == "" {
		zone = viper.GetString("zone")
	}
	if dbPath == "" {
		if dbPath = viper.GetString("db"); dbPath == "" {
			home, _ := os.UserHomeDir()
			dbPath = filepath.Join(home, ".luzwatch", "luzwatch.db")
		}
	}
}

// resolveDay parses the --date flag in the zone's local time
func resolveDay(date string) (time.Time, engine.Zone, error) {
	z := engine.Zone(zone)
	if !z.Valid() {
		return time.Time{}, "", fmt.Errorf("unknown zone %q (want ES or PT)", zone)
	}
	loc, err := z.Location()
	if err != nil {
		return time.Time{}, "", err
	}
	if date == "today" {
		return time.Now().In(loc), z, nil
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
	}
	return day, z, nil
}

// fetchSamples goes through the store cache when one is open
func fetchSamples(ctx context.Context, st *store.Store, day time.Time, z engine.Zone) ([]engine.PriceSample, error) {
	if st != nil {
		if samples, err := st.CachedSamples(z, day); err == nil {
			return samples, nil
		}
	}

	samples, err := prices.NewClient().FetchDay(ctx, day, z)
	if err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}
	if st != nil && len(samples) > 0 {
		if err := st.CacheSamples(z, day, samples); err != nil {
			return nil, fmt.Errorf("caching prices: %w", err)
		}
	}
	return samples, nil
}

// pricedDay runs the full pipeline for one day using the stored tariff
func pricedDay(ctx context.Context, st *store.Store, day time.Time, z engine.Zone) (engine.PricedSeries, error) {
	samples, err := fetchSamples(ctx, st, day, z)
	if err != nil {
		return engine.PricedSeries{}, err
	}

	series, err := engine.Resample(samples, day, z)
	if err != nil {
		return engine.PricedSeries{}, err
	}

	cfg := engine.TariffConfig{Mode: engine.ModeRaw}
	if st != nil {
		if cfg, err = st.GetTariff(); err != nil {
			return engine.PricedSeries{}, err
		}
	}

	return engine.ComputePrices(series, cfg)
}

func openStore() (*store.Store, error) {
	return store.NewStore(dbPath)
}

func fetchCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch raw day-ahead prices as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, z, err := resolveDay(date)
			if err != nil {
				return err
			}

			samples, err := fetchSamples(context.Background(), nil, day, z)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(samples)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "today", "Date to fetch (YYYY-MM-DD or 'today')")
	return cmd
}

func dayCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "Show the priced day with summary statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, z, err := resolveDay(date)
			if err != nil {
				return err
			}

			st, err := openStore()
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer st.Close()

			priced, err := pricedDay(context.Background(), st, day, z)
			if err != nil {
				return err
			}
			if len(priced.Hours) == 0 {
				return fmt.Errorf("no prices published yet for %s in %s", day.Format("2006-01-02"), z)
			}

			unit := "EUR/kWh"
			if priced.Mode == engine.ModeRaw {
				unit = "EUR/MWh"
			}

			fmt.Printf("%s  zone %s  tariff %s\n\n", priced.Date.Format("Mon 2006-01-02"), z, priced.Mode)
			fmt.Printf("%-7s %12s %10s\n", "HOUR", unit, "PERIOD")
			for _, h := range priced.Hours {
				period := ""
				if priced.Mode == engine.ModeIndexed {
					period = string(h.Period)
				}
				fmt.Printf("%02d:00 %14.5f %10s\n", h.Hour, h.Display, period)
			}

			stats, err := priced.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("\naverage %.5f  min %.5f (at %02d:00)  max %.5f (at %02d:00)\n",
				stats.Average, stats.Min, stats.MinHour, stats.Max, stats.MaxHour)

			if len(priced.Hours) < 24 {
				fmt.Fprintf(os.Stderr, "warning: partial day, only %d of 24 hours published\n", len(priced.Hours))
			}

			if v := engine.LiveVerdict(priced, engine.RealClock(), engine.VerdictFullDay); v != engine.VerdictUnknown {
				fmt.Printf("right now: %s\n", v)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "today", "Date to show (YYYY-MM-DD or 'today')")
	return cmd
}

func windowCmd() *cobra.Command {
	var date, deviceID string
	var hours int
	var watts float64

	cmd := &cobra.Command{
		Use:   "window",
		Short: "Find the cheapest contiguous hours for a run",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, z, err := resolveDay(date)
			if err != nil {
				return err
			}

			st, err := openStore()
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer st.Close()

			name := fmt.Sprintf("%.0fW for %dh", watts, hours)
			if deviceID != "" {
				device, err := st.GetDevice(deviceID)
				if err != nil {
					return fmt.Errorf("device not found: %s", deviceID)
				}
				hours = device.DurationHours
				watts = device.PowerWatts
				name = device.Name
			}

			priced, err := pricedDay(context.Background(), st, day, z)
			if err != nil {
				return err
			}

			window, err := engine.BestWindow(priced, hours, watts)
			if err != nil {
				return err
			}

			if window.AllEqual {
				fmt.Printf("%s: any %d-hour start works, the price never changes\n", name, hours)
			} else {
				fmt.Printf("%s: start at %02d:00 (until %02d:00)\n",
					name, window.StartHour, window.StartHour+window.DurationHours)
			}
			fmt.Printf("average price %.5f, estimated cost %.4f EUR\n",
				window.AveragePrice, window.EstimatedCost)

			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "today", "Date (YYYY-MM-DD or 'today')")
	cmd.Flags().IntVar(&hours, "hours", 2, "Run duration in hours (1-12)")
	cmd.Flags().Float64Var(&watts, "watts", 1000, "Power draw in watts")
	cmd.Flags().StringVar(&deviceID, "device", "", "Use a stored device instead of --hours/--watts")
	return cmd
}

func exportCmd() *cobra.Command {
	var date, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the priced day as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, z, err := resolveDay(date)
			if err != nil {
				return err
			}

			st, err := openStore()
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer st.Close()

			priced, err := pricedDay(context.Background(), st, day, z)
			if err != nil {
				return err
			}

			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			return export.Write(w, priced)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "today", "Date (YYYY-MM-DD or 'today')")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func deviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Manage stored devices",
	}

	cmd.AddCommand(deviceAddCmd())
	cmd.AddCommand(deviceListCmd())
	cmd.AddCommand(deviceRmCmd())
	return cmd
}

func deviceAddCmd() *cobra.Command {
	var name string
	var watts float64
	var hours int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a device",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			device := &store.Device{
				ID:            fmt.Sprintf("%s-%d", name, time.Now().Unix()),
				Name:          name,
				PowerWatts:    watts,
				DurationHours: hours,
			}
			if err := st.SaveDevice(device); err != nil {
				return err
			}

			fmt.Printf("Added device: %s\n", name)
			fmt.Printf("  ID: %s\n", device.ID)
			fmt.Printf("  Draw: %.0f W for %d h\n", watts, hours)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Device name (required)")
	cmd.Flags().Float64VarP(&watts, "watts", "w", 1000, "Power draw in watts")
	cmd.Flags().IntVar(&hours, "hours", 2, "Run duration in hours (1-12)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func deviceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			devices, err := st.GetDevices()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Println("No devices configured")
				return nil
			}

			fmt.Printf("%-25s %-30s %8s %6s\n", "NAME", "ID", "WATTS", "HOURS")
			for _, d := range devices {
				fmt.Printf("%-25s %-30s %8.0f %6d\n", d.Name, d.ID, d.PowerWatts, d.DurationHours)
			}
			return nil
		},
	}
}

func deviceRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			return st.DeleteDevice(args[0])
		},
	}
}

func tariffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tariff",
		Short: "Inspect or update the active tariff",
	}

	cmd.AddCommand(tariffShowCmd())
	cmd.AddCommand(tariffSetCmd())
	return cmd
}

func tariffShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active tariff",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			cfg, err := st.GetTariff()
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
}

func tariffSetCmd() *cobra.Command {
	var mode string
	var tax, margin, fixed, flatFee float64
	var peakFee, standardFee, offPeakFee float64
	var tou bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the active tariff",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := engine.TariffConfig{
				Mode:             engine.TariffMode(mode),
				TaxRate:          tax,
				MarginEURPerKWh:  margin,
				FixedEURPerKWh:   fixed,
				FlatFeeEURPerKWh: flatFee,
			}
			if tou {
				cfg.TOUFees = &engine.GridFees{
					Peak:     peakFee,
					Standard: standardFee,
					OffPeak:  offPeakFee,
				}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.SaveTariff(cfg); err != nil {
				return err
			}
			fmt.Printf("Tariff set to %s\n", mode)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "raw", "Tariff mode: raw, fixed or indexed")
	cmd.Flags().Float64Var(&tax, "tax", 0.21, "Tax rate (fractional, e.g. 0.21)")
	cmd.Flags().Float64Var(&margin, "margin", 0, "Retailer margin EUR/kWh (indexed)")
	cmd.Flags().Float64Var(&fixed, "price", 0, "Contracted price EUR/kWh (fixed)")
	cmd.Flags().Float64Var(&flatFee, "fee", 0, "Flat grid fee EUR/kWh (indexed)")
	cmd.Flags().BoolVar(&tou, "tou", false, "Use time-of-use grid fees")
	cmd.Flags().Float64Var(&peakFee, "fee-peak", 0.13, "Peak grid fee EUR/kWh")
	cmd.Flags().Float64Var(&standardFee, "fee-standard", 0.04, "Standard grid fee EUR/kWh")
	cmd.Flags().Float64Var(&offPeakFee, "fee-offpeak", 0.01, "Off-peak grid fee EUR/kWh")
	return cmd
}
