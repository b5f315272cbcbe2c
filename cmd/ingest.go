package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lexatlas/bill-tracker-backend/internal/config"
	"github.com/lexatlas/bill-tracker-backend/internal/congress"
	httpapi "github.com/lexatlas/bill-tracker-backend/internal/http"
	"github.com/lexatlas/bill-tracker-backend/internal/repo"
)

var ingestFrom string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion and exit",
	Long: `Fetch bills updated since the given date and persist the unseen ones.
Repeating a run with the same --from after a success is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest()
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestFrom, "from", "", "ingestion cutoff date (YYYY-MM-DD); defaults to the configured lookback")
}

func runIngest() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	fromDate := time.Now().UTC().Add(-cfg.Ingest.Lookback).Truncate(24 * time.Hour)
	if ingestFrom != "" {
		fromDate, err = time.Parse("2006-01-02", ingestFrom)
		if err != nil {
			return fmt.Errorf("invalid --from %q: %w", ingestFrom, err)
		}
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}

	source := congress.NewClient(cfg.Congress.BaseURL, cfg.Congress.APIKey)
	svc := httpapi.NewIngestionService(db, source)

	persisted := svc.IngestRecentBills(context.Background(), fromDate)
	log.Info().
		Time("from_date", fromDate).
		Int("documents", persisted).
		Msg("ingestion finished")
	return nil
}
