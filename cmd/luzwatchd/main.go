package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/luzwatch/luzwatch/internal/engine"
	"github.com/luzwatch/luzwatch/internal/prices"
	"github.com/luzwatch/luzwatch/internal/store"
	"github.com/luzwatch/luzwatch/internal/uiapi"
)

func main() {
	var port int
	var dbPath string
	var elapsedVerdict bool

	rootCmd := &cobra.Command{
		Use:   "luzwatchd",
		Short: "LuzWatch HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				home, _ := os.UserHomeDir()
				dbPath = filepath.Join(home, ".luzwatch", "luzwatch.db")
			}

			st, err := store.NewStore(dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer st.Close()

			srv := uiapi.NewServer(st, prices.NewClient())
			if elapsedVerdict {
				srv.WithVerdictPolicy(engine.VerdictElapsed)
			}

			addr := fmt.Sprintf(":%d", port)
			log.Printf("luzwatchd listening on %s", addr)
			log.Printf("Database: %s", dbPath)

			return http.ListenAndServe(addr, srv.Handler())
		},
	}

	rootCmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP port")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "Database path")
	rootCmd.Flags().BoolVar(&elapsedVerdict, "elapsed-verdict", false,
		"Rate the live price against hours elapsed so far instead of the full day")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
