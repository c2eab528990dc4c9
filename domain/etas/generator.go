package etas

import (
	"context"
	"log"

	"etasim/domain/catalog"
)

// Generator produces the successive generations of one catalog.
//
// After a catalog is seeded (the builder is catalog-open with
// generation zero filled in), a Generator drives the builder through
// CalcNextGen until the sequence dies out.  The generator owns two
// scratch arrays sized to the current generation, retained across
// calls and grown by doubling, so the per-generation loop does not
// allocate.
//
// Only one goroutine may use a Generator at a time.  After a catalog
// has been generated the same instance can be reused for another.
type Generator struct {
	rng     *Rangen
	builder *catalog.Builder
	verbose bool
	params  catalog.Params

	nextInfo catalog.GenerationInfo
	curRup   catalog.Rupture
	nextRup  catalog.Rupture

	capacity   int
	omoriRate  []float64
	childCount []int
}

// NewGenerator returns a generator with default workspace capacity.
func NewGenerator() *Generator {
	g := &Generator{}
	g.clear()
	return g
}

// clear resets to default values.
func (g *Generator) clear() {
	g.rng = nil
	g.builder = nil
	g.verbose = false
	g.params = catalog.Params{}
	g.nextInfo.Clear()
	g.capacity = DefWorkspaceCapacity
	g.omoriRate = make([]float64, g.capacity)
	g.childCount = make([]int, g.capacity)
}

// Setup binds the random source and builder for one catalog run.
// It must be called before CalcNextGen or CalcAllGen; the builder's
// parameters are captured here.
func (g *Generator) Setup(rng *Rangen, builder *catalog.Builder, verbose bool) {
	g.rng = rng
	g.builder = builder
	g.verbose = verbose
	builder.CatParams(&g.params)
}

// Forget releases the random source and builder.
func (g *Generator) Forget() {
	g.rng = nil
	g.builder = nil
}

// Rangen returns the bound random source.
func (g *Generator) Rangen() *Rangen {
	return g.rng
}

// Builder returns the bound catalog builder.
func (g *Generator) Builder() *catalog.Builder {
	return g.builder
}

// CalcNextGen computes the next generation and returns its size.
// A return of zero means no generation was added and the catalog has
// reached its end: the generation cap was hit, the current generation
// is empty, the total Omori rate underflowed, the expected count fell
// below the tiny-count cutoff, or the Poisson draw came up zero.
func (g *Generator) CalcNextGen() int {

	// The next generation number is the current number of generations.
	nextIGen := g.builder.GenCount()
	if nextIGen >= g.params.GenCountMax {
		return 0
	}
	curIGen := nextIGen - 1
	g.nextInfo.Clear()

	curGenSize := g.builder.GenSize(curIGen)
	if curGenSize == 0 {
		return 0
	}

	// Grow the workspace by doubling until the generation fits.
	if curGenSize > g.capacity {
		for curGenSize > g.capacity {
			g.capacity *= 2
		}
		g.omoriRate = make([]float64, g.capacity)
		g.childCount = make([]int, g.capacity)
	}

	// Scan the current generation, accumulating each rupture's expected
	// rate over the forecast interval into the cumulative array.
	totalOmoriRate := 0.0
	for j := 0; j < curGenSize; j++ {
		g.builder.GetRup(curIGen, j, &g.curRup)
		totalOmoriRate += g.curRup.KProd * OmoriRateShifted(
			g.params.P,
			g.params.C,
			g.curRup.TDay,
			g.params.TEps,
			g.params.TBegin,
			g.params.TEnd,
		)
		g.omoriRate[j] = totalOmoriRate
		g.childCount[j] = 0
	}

	// Stop if the total rate is extremely small, to avoid divide-by-zero.
	// (GRInvRate cannot overflow even for a very large requested rate,
	// because its return is logarithmic.)
	if totalOmoriRate < TinyOmoriRate {
		return 0
	}

	// Choose the next generation's magnitude range so that its expected
	// size equals the target size.
	expectedCount := float64(g.params.GenSizeTarget)
	nextMagMin := GRInvRate(
		g.params.B,
		g.params.MRef,
		g.params.MagMaxSim,
		expectedCount/totalOmoriRate,
	)

	// If the minimum magnitude is outside the allowed range, clamp it
	// and recompute the true expected count for the clamped range.
	if nextMagMin < g.params.MagMinLo {
		nextMagMin = g.params.MagMinLo
		expectedCount = totalOmoriRate * GRRate(
			g.params.B,
			g.params.MRef,
			nextMagMin,
			g.params.MagMaxSim,
		)
	} else if nextMagMin > g.params.MagMinHi {
		nextMagMin = g.params.MagMinHi
		expectedCount = totalOmoriRate * GRRate(
			g.params.B,
			g.params.MRef,
			nextMagMin,
			g.params.MagMaxSim,
		)
	}

	// Very small expected counts are treated as zero.
	if expectedCount < TinyExpectedCount {
		return 0
	}

	// The size of the next generation is a Poisson variable.
	nextGenSize := g.rng.PoissonSample(expectedCount)
	if nextGenSize <= 0 {
		return 0
	}

	// Distribute the children over the parents with probability
	// proportional to each parent's expected rate.
	for n := 0; n < nextGenSize; n++ {
		iParent := g.rng.CumulativeSample(g.omoriRate, curGenSize)
		g.childCount[iParent]++
	}

	g.nextInfo.Set(nextMagMin, g.params.MagMaxSim)
	g.builder.BeginGeneration(g.nextInfo)

	// Scan the current generation again, drawing each parent's children.
	for j := 0; j < curGenSize; j++ {
		childCount := g.childCount[j]
		if childCount == 0 {
			continue
		}
		g.builder.GetRup(curIGen, j, &g.curRup)

		for n := 0; n < childCount; n++ {
			g.nextRup.TDay = g.rng.OmoriSampleShifted(
				g.params.P,
				g.params.C,
				g.curRup.TDay,
				g.params.TBegin,
				g.params.TEnd,
			)
			g.nextRup.RupMag = g.rng.GRSample(
				g.params.B,
				g.nextInfo.GenMagMin,
				g.nextInfo.GenMagMax,
			)
			g.nextRup.KProd = CalcKCorr(g.curRup.RupMag, g.params, g.nextInfo)
			g.nextRup.RupParent = j
			g.nextRup.XKm = g.curRup.XKm
			g.nextRup.YKm = g.curRup.YKm

			g.builder.AddRup(g.nextRup)
		}
	}

	g.builder.EndGeneration()

	if g.verbose {
		log.Printf("etas: generation %d: size=%d mag=[%.3f, %.3f] expected=%.3f",
			nextIGen, nextGenSize, g.nextInfo.GenMagMin, g.nextInfo.GenMagMax, expectedCount)
	}

	return nextGenSize
}

// CalcAllGen runs CalcNextGen until the catalog ends, then freezes the
// catalog.  It returns the number of generations.  Parameters are
// re-read from the builder first, so edits made after Setup take
// effect.
//
// Cancellation is cooperative: the context is polled once per
// generation, and on cancellation the catalog is still finalized so
// the partial result remains readable.
func (g *Generator) CalcAllGen(ctx context.Context) (int, error) {
	g.builder.CatParams(&g.params)

	genSize := g.builder.GenSize(0)
	for genSize > 0 {
		if err := ctx.Err(); err != nil {
			g.builder.EndCatalog()
			return g.builder.GenCount(), err
		}
		genSize = g.CalcNextGen()
	}

	g.builder.EndCatalog()
	return g.builder.GenCount(), nil
}
