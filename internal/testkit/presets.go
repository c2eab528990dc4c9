package testkit

import (
	"etasim/domain/catalog"
	"etasim/domain/etas"
)

// Canonical parameter presets shared across tests.

// DeadParams returns a parameter set with productivity so low that
// catalogs die out almost immediately.
func DeadParams() catalog.Params {
	return catalog.Params{
		A:             -10.0,
		P:             1.1,
		C:             0.01,
		B:             1.0,
		Alpha:         1.0,
		MRef:          3.0,
		MSup:          8.0,
		MagMinLo:      3.0,
		MagMinHi:      3.0,
		MagMaxSim:     8.0,
		TBegin:        0.0,
		TEnd:          30.0,
		TEps:          0.0,
		GenSizeTarget: 100,
		GenCountMax:   10,
	}
}

// CriticalParams returns DeadParams with productivity re-solved so the
// branch ratio equals n.
func CriticalParams(n float64) catalog.Params {
	p := DeadParams()
	p.A = etas.CalcInvBranchRatio(n, p)
	return p
}

// SeedCatalog populates a builder with one frozen-ready seed
// generation: a single mainshock at the given time and magnitude with
// corrected productivity.  The builder is left catalog-open, ready for
// a generator.
func SeedCatalog(b *catalog.Builder, params catalog.Params, tDay, mag float64) error {
	if err := b.BeginCatalog(params); err != nil {
		return err
	}
	var info catalog.GenerationInfo
	info.Set(params.MRef, params.MSup)

	seed := catalog.NewSeed(tDay, mag)
	seed.KProd = etas.CalcKCorr(mag, params, info)

	b.BeginGeneration(info)
	b.AddRup(seed)
	b.EndGeneration()
	return nil
}
