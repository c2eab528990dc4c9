package seed

import (
	"context"
	"fmt"

	"etasim/domain/catalog"
	"etasim/domain/etas"
	"etasim/ports"
)

// StaticAdapter supplies seed ruptures from the mainshock alone, or
// from a fixed list of foreshocks configured up front.  It stands in
// for a live catalog retrieval service, which hands the core the same
// (time, magnitude, coordinates) tuples.
type StaticAdapter struct {
	extra []catalog.Rupture
}

// NewStaticAdapter creates a seed source that seeds catalogs with just
// the mainshock.
func NewStaticAdapter() *StaticAdapter {
	return &StaticAdapter{}
}

// NewStaticAdapterWithSeeds creates a seed source that prepends the
// given extra ruptures to every seed generation.
func NewStaticAdapterWithSeeds(extra []catalog.Rupture) *StaticAdapter {
	return &StaticAdapter{extra: extra}
}

// SeedRuptures builds generation zero for the given mainshock.  Seed
// magnitudes are understood to be drawn from [m_ref, m_sup], so the
// generation info covers that range and each seed's productivity is
// corrected against it.
func (a *StaticAdapter) SeedRuptures(ctx context.Context, main ports.Mainshock, params catalog.Params) ([]catalog.Rupture, catalog.GenerationInfo, error) {
	if err := params.Validate(); err != nil {
		return nil, catalog.GenerationInfo{}, err
	}
	if main.Mag < params.MRef || main.Mag > params.MSup {
		return nil, catalog.GenerationInfo{}, fmt.Errorf(
			"seed: mainshock magnitude %.2f outside [m_ref, m_sup] = [%.2f, %.2f]",
			main.Mag, params.MRef, params.MSup)
	}

	var info catalog.GenerationInfo
	info.Set(params.MRef, params.MSup)

	seeds := make([]catalog.Rupture, 0, len(a.extra)+1)
	seeds = append(seeds, a.extra...)
	ms := catalog.NewSeed(main.TDay, main.Mag)
	ms.XKm = main.XKm
	ms.YKm = main.YKm
	seeds = append(seeds, ms)

	etas.CorrectSeeds(seeds, params, info)
	return seeds, info, nil
}

var _ ports.SeedSource = (*StaticAdapter)(nil)
