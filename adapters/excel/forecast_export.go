package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"etasim/domain/forecast"
	"etasim/ports"
)

// TableExporter writes forecast tables to an xlsx workbook with one
// sheet for count statistics and one for gamma scores.
type TableExporter struct{}

// NewTableExporter creates a new workbook exporter.
func NewTableExporter() *TableExporter {
	return &TableExporter{}
}

// Export writes both tables to the given path.
func (e *TableExporter) Export(path string, counts []forecast.CountRow, gammas []forecast.GammaRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const countSheet = "CountStats"
	const gammaSheet = "Gamma"

	if err := f.SetSheetName("Sheet1", countSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(gammaSheet); err != nil {
		return fmt.Errorf("failed to create gamma sheet: %w", err)
	}

	countHeader := []interface{}{"forecast_lag", "model", "advisory_window", "mag", "obs", "mean", "median", "fractile_5", "fractile_95"}
	if err := f.SetSheetRow(countSheet, "A1", &countHeader); err != nil {
		return fmt.Errorf("failed to write count header: %w", err)
	}
	for i, r := range counts {
		row := []interface{}{r.Lag, r.Model.String(), r.Window, r.MagBin, r.Obs, r.Mean, r.Median, r.F5, r.F95}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(countSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write count row %d: %w", i, err)
		}
	}

	gammaHeader := []interface{}{"forecast_lag", "model", "advisory_window", "mag", "gamma_lo", "gamma_hi"}
	if err := f.SetSheetRow(gammaSheet, "A1", &gammaHeader); err != nil {
		return fmt.Errorf("failed to write gamma header: %w", err)
	}
	for i, r := range gammas {
		row := []interface{}{r.Lag, r.Model.String(), r.Window, r.MagBin, r.GammaLo, r.GammaHi}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(gammaSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write gamma row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

var _ ports.TableExporter = (*TableExporter)(nil)
