package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"etasim/adapters/excel"
	"etasim/adapters/postgres"
	"etasim/adapters/rng"
	"etasim/adapters/seed"
	"etasim/app"
	"etasim/domain/forecast"
	"etasim/internal"
	"etasim/internal/config"
	"etasim/internal/testkit"
	"etasim/ports"
)

func main() {
	// Load .env if present; environment variables win
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	mainMag := flag.Float64("mag", 6.0, "mainshock magnitude")
	eventID := flag.String("event", "synthetic", "mainshock event id")
	branchRatio := flag.Float64("n", 0.9, "target branch ratio for the simulated model")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewDefaultLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *eventID, *mainMag, *branchRatio); err != nil {
		logger.Error("run failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *internal.Logger, eventID string, mainMag, branchRatio float64) error {
	fcfg := forecast.DefaultConfig()
	fcfg.NumSim = cfg.Sim.NumSim

	params := testkit.CriticalParams(branchRatio)
	if mainMag > params.MSup {
		return fmt.Errorf("mainshock magnitude %.2f above m_sup %.2f", mainMag, params.MSup)
	}

	service := app.NewForecastService(rng.NewStreamAdapter(), seed.NewStaticAdapter(), logger)
	service.SetVerbose(cfg.Sim.Verbose)

	mainshock := ports.Mainshock{EventID: eventID, TDay: 0, Mag: mainMag}
	models := []app.ModelSpec{{Name: fcfg.Models[0], Params: params}}

	logger.Info("simulating %d catalogs per cell for event %s (M%.1f, branch ratio %.2f)",
		fcfg.NumSim, eventID, mainMag, branchRatio)

	set, runID, err := service.RunSimulations(ctx, fcfg, mainshock, models, cfg.Sim.BaseSeed, app.ObservedEvents{})
	if err != nil {
		return err
	}

	counts := set.CountStats()
	gammas := set.GammaTable()

	fmt.Println()
	fmt.Print(set.RenderCountStats())
	fmt.Println()
	fmt.Print(set.RenderGammaTable())

	if cfg.Database.Enabled {
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to archive database: %w", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		archive := postgres.NewForecastArchive(db)
		if err := archive.SaveCountStats(ctx, runID, counts); err != nil {
			return err
		}
		if err := archive.SaveGammaTable(ctx, runID, gammas); err != nil {
			return err
		}
		logger.Info("archived forecast tables for run %s", runID)
	}

	if cfg.Paths.ExcelFile != "" {
		exporter := excel.NewTableExporter()
		if err := exporter.Export(cfg.Paths.ExcelFile, counts, gammas); err != nil {
			return err
		}
		logger.Info("exported forecast workbook to %s", cfg.Paths.ExcelFile)
	}

	return nil
}
