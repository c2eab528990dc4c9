package app

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"etasim/domain/catalog"
	"etasim/domain/core"
	"etasim/domain/etas"
	"etasim/domain/forecast"
	"etasim/internal"
	"etasim/ports"
)

// ModelSpec pairs a model name with the catalog parameters it
// simulates under.  The time interval fields of Params are derived per
// forecast lag by the service; the remaining fields are used as given.
type ModelSpec struct {
	Name   core.ModelName
	Params catalog.Params
}

// ObservedEvents is the observed aftershock sequence used for gamma
// scoring, in the parameter time frame.
type ObservedEvents struct {
	Times []float64
	Mags  []float64
}

// ForecastService runs independent catalog simulations across the
// forecast evaluation grid and reduces them into count distributions.
type ForecastService struct {
	rngPort    ports.RNGPort
	seedSource ports.SeedSource
	logger     *internal.Logger
	verbose    bool
}

// NewForecastService creates a new forecast service.
func NewForecastService(rngPort ports.RNGPort, seedSource ports.SeedSource, logger *internal.Logger) *ForecastService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ForecastService{rngPort: rngPort, seedSource: seedSource, logger: logger}
}

// SetVerbose selects per-generation logging inside every simulated
// catalog.
func (s *ForecastService) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// RunSimulations runs cfg.NumSim independent catalogs for every
// (forecast lag, model) pair, tallies them into a forecast set, and
// finalizes it.  Simulations are embarrassingly parallel: each gets
// its own generator, builder and random stream, bounded by the number
// of CPUs.  Equal inputs produce an identical forecast set.
//
// Cancellation is cooperative; on context cancellation the first
// failing simulation's error is returned.
func (s *ForecastService) RunSimulations(
	ctx context.Context,
	cfg forecast.Config,
	main ports.Mainshock,
	models []ModelSpec,
	baseSeed uint64,
	observed ObservedEvents,
) (*forecast.Set, core.RunID, error) {

	if len(models) != len(cfg.Models) {
		return nil, "", fmt.Errorf("%w: %d model specs for %d configured models",
			core.ErrShapeMismatch, len(models), len(cfg.Models))
	}
	for i, spec := range models {
		if spec.Name != cfg.Models[i] {
			return nil, "", fmt.Errorf("%w: model spec %d is %q, config says %q",
				core.ErrShapeMismatch, i, spec.Name, cfg.Models[i])
		}
	}

	set, err := forecast.NewSet(cfg)
	if err != nil {
		return nil, "", err
	}
	runID := core.RunID(core.NewID())

	horizon := maxWindowEnd(cfg.Windows)

	for lagIdx, lag := range cfg.ForecastLags {
		for modelIdx, spec := range models {
			params := spec.Params
			params.TBegin = main.TDay + lag
			params.TEnd = params.TBegin + horizon
			if err := params.Validate(); err != nil {
				return nil, "", err
			}

			seeds, genInfo, err := s.seedSource.SeedRuptures(ctx, main, params)
			if err != nil {
				return nil, "", fmt.Errorf("seeding model %q at lag %g: %w", spec.Name, lag, err)
			}

			cs := set.At(lagIdx, modelIdx)
			if err := cs.SetObserved(forecast.BinObserved(
				observed.Times, observed.Mags, params.TBegin, cfg.Windows, cfg.MagBins)); err != nil {
				return nil, "", err
			}

			s.logger.Info("forecast run %s: model=%s lag=%g sims=%d interval=[%g, %g]",
				runID, spec.Name, lag, cfg.NumSim, params.TBegin, params.TEnd)

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(runtime.GOMAXPROCS(0))

			for sim := 0; sim < cfg.NumSim; sim++ {
				sim := sim
				g.Go(func() error {
					rng, err := s.rngPort.SimStream(gctx, spec.Name.String(), lagIdx, sim, baseSeed)
					if err != nil {
						return err
					}
					return s.runOne(gctx, rng, params, seeds, genInfo, cs, sim, cfg)
				})
			}
			if err := g.Wait(); err != nil {
				return nil, "", err
			}
		}
	}

	finalRng, err := s.rngPort.SeededStream(ctx, "finalize", baseSeed)
	if err != nil {
		return nil, "", err
	}
	if err := set.Finalize(false, finalRng); err != nil {
		return nil, "", err
	}
	return set, runID, nil
}

// runOne simulates a single catalog and tallies it into simulation
// slot sim.  Distinct simulations write distinct slots, so the shared
// count set needs no locking.
func (s *ForecastService) runOne(
	ctx context.Context,
	rng *etas.Rangen,
	params catalog.Params,
	seeds []catalog.Rupture,
	genInfo catalog.GenerationInfo,
	cs *forecast.CountSet,
	sim int,
	cfg forecast.Config,
) error {
	builder := catalog.NewBuilder()
	if err := builder.BeginCatalog(params); err != nil {
		return err
	}
	builder.BeginGeneration(genInfo)
	for _, r := range seeds {
		builder.AddRup(r)
	}
	builder.EndGeneration()

	gen := etas.NewGenerator()
	gen.Setup(rng, builder, s.verbose)
	if _, err := gen.CalcAllGen(ctx); err != nil {
		return err
	}

	cs.RecordCatalog(sim, builder, params.TBegin, cfg.Windows, cfg.MagBins)
	return nil
}

// maxWindowEnd returns the latest advisory window end, the simulation
// horizon past the forecast time.
func maxWindowEnd(windows []forecast.AdvisoryWindow) float64 {
	end := windows[0].TEnd
	for _, w := range windows[1:] {
		if w.TEnd > end {
			end = w.TEnd
		}
	}
	return end
}
