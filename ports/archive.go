package ports

import (
	"context"

	"etasim/domain/core"
	"etasim/domain/forecast"
)

// ForecastArchive persists forecast summary statistics.  Simulated
// catalogs themselves are never persisted; only the reduced per-cell
// statistics and gamma bounds are.
type ForecastArchive interface {
	SaveCountStats(ctx context.Context, runID core.RunID, rows []forecast.CountRow) error
	SaveGammaTable(ctx context.Context, runID core.RunID, rows []forecast.GammaRow) error
}

// TableExporter writes forecast tables to a review artifact such as a
// workbook.
type TableExporter interface {
	Export(path string, counts []forecast.CountRow, gammas []forecast.GammaRow) error
}
