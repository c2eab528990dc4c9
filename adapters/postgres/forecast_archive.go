package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"etasim/domain/core"
	"etasim/domain/forecast"
	"etasim/ports"
)

// forecastArchive implements the ForecastArchive interface
type forecastArchive struct {
	db *sqlx.DB
}

// NewForecastArchive creates a new forecast archive
func NewForecastArchive(db *sqlx.DB) ports.ForecastArchive {
	return &forecastArchive{db: db}
}

// EnsureSchema creates the archive tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS forecast_count_stats (
		run_id TEXT NOT NULL,
		forecast_lag TEXT NOT NULL,
		model TEXT NOT NULL,
		advisory_window TEXT NOT NULL,
		mag DOUBLE PRECISION NOT NULL,
		obs DOUBLE PRECISION NOT NULL,
		mean DOUBLE PRECISION NOT NULL,
		median DOUBLE PRECISION NOT NULL,
		fractile_5 DOUBLE PRECISION NOT NULL,
		fractile_95 DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (run_id, forecast_lag, model, advisory_window, mag)
	);
	CREATE TABLE IF NOT EXISTS forecast_gamma (
		run_id TEXT NOT NULL,
		forecast_lag TEXT NOT NULL,
		model TEXT NOT NULL,
		advisory_window TEXT NOT NULL,
		mag DOUBLE PRECISION NOT NULL,
		gamma_lo DOUBLE PRECISION NOT NULL,
		gamma_hi DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (run_id, forecast_lag, model, advisory_window, mag)
	);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure forecast archive schema: %w", err)
	}
	return nil
}

// SaveCountStats inserts the count-statistics rows for a run.
func (a *forecastArchive) SaveCountStats(ctx context.Context, runID core.RunID, rows []forecast.CountRow) error {
	const query = `INSERT INTO forecast_count_stats (
		run_id, forecast_lag, model, advisory_window, mag, obs, mean, median, fractile_5, fractile_95
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range rows {
		if _, err := tx.ExecContext(ctx, query,
			runID.String(), r.Lag, r.Model.String(), r.Window, r.MagBin,
			r.Obs, r.Mean, r.Median, r.F5, r.F95,
		); err != nil {
			return fmt.Errorf("failed to insert count stats row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit count stats: %w", err)
	}
	return nil
}

// SaveGammaTable inserts the gamma score rows for a run.
func (a *forecastArchive) SaveGammaTable(ctx context.Context, runID core.RunID, rows []forecast.GammaRow) error {
	const query = `INSERT INTO forecast_gamma (
		run_id, forecast_lag, model, advisory_window, mag, gamma_lo, gamma_hi
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range rows {
		if _, err := tx.ExecContext(ctx, query,
			runID.String(), r.Lag, r.Model.String(), r.Window, r.MagBin,
			r.GammaLo, r.GammaHi,
		); err != nil {
			return fmt.Errorf("failed to insert gamma row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit gamma table: %w", err)
	}
	return nil
}
