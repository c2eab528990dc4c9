package ports

import (
	"context"

	"etasim/domain/catalog"
)

// Mainshock identifies the triggering event a forecast is issued for.
// Times are days from the shared epoch; coordinates are in the
// parameter space frame.
type Mainshock struct {
	EventID string  `json:"event_id"`
	TDay    float64 `json:"t_day"`
	Mag     float64 `json:"mag"`
	XKm     float64 `json:"x_km"`
	YKm     float64 `json:"y_km"`
}

// SeedSource supplies the seed ruptures that become generation zero of
// a simulated catalog.  Implementations translate an external event
// view (for example a retrieved catalog) into the parameter time and
// space frame; productivities must already be corrected for the
// generation-zero magnitude range.
type SeedSource interface {
	SeedRuptures(ctx context.Context, main Mainshock, params catalog.Params) ([]catalog.Rupture, catalog.GenerationInfo, error)
}
