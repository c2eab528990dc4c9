package forecast

import (
	"fmt"

	"etasim/domain/core"
)

// AdvisoryWindow is a prospective interval over which forecast counts
// are tallied, in days relative to the forecast issuance time.
type AdvisoryWindow struct {
	Name   string  `json:"name"`
	TBegin float64 `json:"t_begin"`
	TEnd   float64 `json:"t_end"`
}

// Config describes the forecast evaluation grid: the lags at which
// forecasts are issued, the advisory windows and minimum-magnitude
// bins counts are tallied over, the model kinds compared, and the
// number of simulations per cell.
type Config struct {
	ForecastLags []float64        `json:"forecast_lags"`
	Windows      []AdvisoryWindow `json:"advisory_windows"`
	MagBins      []float64        `json:"mag_bins"`
	Models       []core.ModelName `json:"models"`
	NumSim       int              `json:"num_sim"`
}

// DefaultConfig returns the standard evaluation grid: forecasts at
// 1 day, 1 week and 1 month after the mainshock, advisory windows of
// one day, one week and one month, and magnitude bins 3 through 7.
func DefaultConfig() Config {
	return Config{
		ForecastLags: []float64{1.0, 7.0, 30.0},
		Windows: []AdvisoryWindow{
			{Name: "1-day", TBegin: 0.0, TEnd: 1.0},
			{Name: "1-week", TBegin: 0.0, TEnd: 7.0},
			{Name: "1-month", TBegin: 0.0, TEnd: 30.0},
		},
		MagBins: []float64{3.0, 4.0, 5.0, 6.0, 7.0},
		Models:  []core.ModelName{"etas"},
		NumSim:  1000,
	}
}

// Validate checks that the grid is usable.
func (c Config) Validate() error {
	if len(c.ForecastLags) == 0 {
		return core.NewInvariantError("forecast_lags", "at least one lag required")
	}
	if len(c.Windows) == 0 {
		return core.NewInvariantError("advisory_windows", "at least one window required")
	}
	for _, w := range c.Windows {
		if w.TBegin >= w.TEnd {
			return core.NewInvariantError("advisory_windows",
				fmt.Sprintf("window %q has t_begin >= t_end", w.Name))
		}
	}
	if len(c.MagBins) == 0 {
		return core.NewInvariantError("mag_bins", "at least one magnitude bin required")
	}
	if len(c.Models) == 0 {
		return core.NewInvariantError("models", "at least one model required")
	}
	if c.NumSim < 2 {
		return fmt.Errorf("%w: num_sim = %d", core.ErrInsufficientSims, c.NumSim)
	}
	return nil
}
