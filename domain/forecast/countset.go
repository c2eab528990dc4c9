package forecast

import (
	"fmt"

	"etasim/domain/catalog"
	"etasim/domain/core"
	"etasim/domain/etas"
	"etasim/domain/stats"
)

// CountSet holds, for one (forecast lag, model) pair, the simulated
// event-count distribution of every advisory window x magnitude bin
// cell, plus the observed counts.
//
// Counts accumulate indexed by simulation, so distributions from
// different sources can be combined per-simulation before statistics
// are taken.  Finalize computes the all-window sums and sorts every
// column; after that the set is read-only and rank queries are valid.
type CountSet struct {
	numWin int
	numBin int
	numSim int

	counts [][][]float64 // [window][bin][sim]
	obs    [][]float64   // [window][bin]

	// All-window sums, built by Finalize before sorting.
	winSum    [][]float64 // [bin][sim]
	obsWinSum []float64   // [bin]

	final bool
}

// NewCountSet returns a zero-initialized count set with the given
// dimensions.
func NewCountSet(numWin, numBin, numSim int) *CountSet {
	cs := &CountSet{numWin: numWin, numBin: numBin, numSim: numSim}
	cs.counts = make([][][]float64, numWin)
	cs.obs = make([][]float64, numWin)
	for w := 0; w < numWin; w++ {
		cs.counts[w] = make([][]float64, numBin)
		cs.obs[w] = make([]float64, numBin)
		for b := 0; b < numBin; b++ {
			cs.counts[w][b] = make([]float64, numSim)
		}
	}
	return cs
}

// NumSim returns the number of simulations per cell.
func (cs *CountSet) NumSim() int { return cs.numSim }

// NumWindows returns the number of advisory windows.
func (cs *CountSet) NumWindows() int { return cs.numWin }

// NumBins returns the number of magnitude bins.
func (cs *CountSet) NumBins() int { return cs.numBin }

// RecordCatalog tallies one simulated catalog into simulation slot sim.
// The catalog must be frozen.  Generation zero holds the seeds and is
// excluded from the tally.  Windows are placed at forecastTime days
// after the epoch; a rupture falls in a window when its time lies in
// [forecastTime+TBegin, forecastTime+TEnd) and its magnitude is at or
// above the bin minimum.
func (cs *CountSet) RecordCatalog(sim int, b *catalog.Builder, forecastTime float64, windows []AdvisoryWindow, magBins []float64) {
	cs.checkMutable("RecordCatalog")
	var rup catalog.Rupture
	genCount := b.GenCount()
	for gi := 1; gi < genCount; gi++ {
		size := b.GenSize(gi)
		for ri := 0; ri < size; ri++ {
			b.GetRup(gi, ri, &rup)
			for w, win := range windows {
				if rup.TDay < forecastTime+win.TBegin || rup.TDay >= forecastTime+win.TEnd {
					continue
				}
				for bi, mag := range magBins {
					if rup.RupMag >= mag {
						cs.counts[w][bi][sim]++
					}
				}
			}
		}
	}
}

// SetObserved installs the observed count for every cell.
func (cs *CountSet) SetObserved(obs [][]float64) error {
	cs.checkMutable("SetObserved")
	if len(obs) != cs.numWin {
		return fmt.Errorf("%w: %d observed windows, want %d", core.ErrShapeMismatch, len(obs), cs.numWin)
	}
	for w := range obs {
		if len(obs[w]) != cs.numBin {
			return fmt.Errorf("%w: %d observed bins in window %d, want %d", core.ErrShapeMismatch, len(obs[w]), w, cs.numBin)
		}
		copy(cs.obs[w], obs[w])
	}
	return nil
}

// BinObserved tallies observed (time, magnitude) pairs into an
// observed-count matrix for the given forecast time and grid.
func BinObserved(times, mags []float64, forecastTime float64, windows []AdvisoryWindow, magBins []float64) [][]float64 {
	obs := make([][]float64, len(windows))
	for w := range windows {
		obs[w] = make([]float64, len(magBins))
	}
	for i := range times {
		for w, win := range windows {
			if times[i] < forecastTime+win.TBegin || times[i] >= forecastTime+win.TEnd {
				continue
			}
			for bi, mag := range magBins {
				if mags[i] >= mag {
					obs[w][bi]++
				}
			}
		}
	}
	return obs
}

// AddFrom adds another count set's contents into this one, cell by
// cell.  With randomize false, simulation slots are aligned by index;
// with randomize true, each destination slot draws a random source
// slot, which resamples the other distribution.  Observed counts are
// always added.  Both sets must be unfinalized and of identical shape.
func (cs *CountSet) AddFrom(other *CountSet, randomize bool, rng *etas.Rangen) error {
	cs.checkMutable("AddFrom")
	other.checkMutable("AddFrom(source)")
	if other.numWin != cs.numWin || other.numBin != cs.numBin || other.numSim != cs.numSim {
		return fmt.Errorf("%w: (%d,%d,%d) vs (%d,%d,%d)", core.ErrShapeMismatch,
			other.numWin, other.numBin, other.numSim, cs.numWin, cs.numBin, cs.numSim)
	}
	for w := 0; w < cs.numWin; w++ {
		for b := 0; b < cs.numBin; b++ {
			dst := cs.counts[w][b]
			src := other.counts[w][b]
			for s := 0; s < cs.numSim; s++ {
				j := s
				if randomize {
					j = int(rng.Uniform() * float64(cs.numSim))
					if j >= cs.numSim {
						j = cs.numSim - 1
					}
				}
				dst[s] += src[j]
			}
			cs.obs[w][b] += other.obs[w][b]
		}
	}
	return nil
}

// AddExpected adds an independent Poisson draw with the cell's mean to
// every simulation slot of that cell.  This injects an expected-rate
// contribution (for example a background rate) into the simulated
// distributions.
func (cs *CountSet) AddExpected(mean [][]float64, rng *etas.Rangen) error {
	cs.checkMutable("AddExpected")
	if len(mean) != cs.numWin {
		return fmt.Errorf("%w: %d mean windows, want %d", core.ErrShapeMismatch, len(mean), cs.numWin)
	}
	for w := range mean {
		if len(mean[w]) != cs.numBin {
			return fmt.Errorf("%w: %d mean bins in window %d, want %d", core.ErrShapeMismatch, len(mean[w]), w, cs.numBin)
		}
		for b := 0; b < cs.numBin; b++ {
			col := cs.counts[w][b]
			m := mean[w][b]
			for s := range col {
				col[s] += float64(rng.PoissonSample(m))
			}
		}
	}
	return nil
}

// Finalize builds the all-window sums and sorts every column.  After
// finalization the rank and fractile queries are valid and the set can
// no longer be mutated.
func (cs *CountSet) Finalize() {
	if cs.final {
		return
	}
	cs.winSum = make([][]float64, cs.numBin)
	cs.obsWinSum = make([]float64, cs.numBin)
	for b := 0; b < cs.numBin; b++ {
		cs.winSum[b] = make([]float64, cs.numSim)
		for w := 0; w < cs.numWin; w++ {
			col := cs.counts[w][b]
			for s := 0; s < cs.numSim; s++ {
				cs.winSum[b][s] += col[s]
			}
			cs.obsWinSum[b] += cs.obs[w][b]
		}
	}
	for w := 0; w < cs.numWin; w++ {
		stats.SortEachColumn(cs.counts[w], 0, cs.numSim)
	}
	stats.SortEachColumn(cs.winSum, 0, cs.numSim)
	cs.final = true
}

func (cs *CountSet) checkMutable(op string) {
	if cs.final {
		panic(core.NewProtocolError(op, "finalized count set"))
	}
}

func (cs *CountSet) checkFinal(op string) {
	if !cs.final {
		panic(core.NewProtocolError(op, "unfinalized count set"))
	}
}

//----- Rank queries (valid after Finalize) -----

// Observed returns the observed count of a cell.
func (cs *CountSet) Observed(win, bin int) float64 {
	return cs.obs[win][bin]
}

// Median returns the simulated median count of a cell.
func (cs *CountSet) Median(win, bin int) float64 {
	return cs.Fractile(win, bin, 0.5)
}

// Fractile returns the simulated count at the given fraction of the
// sorted distribution of a cell.
func (cs *CountSet) Fractile(win, bin int, frac float64) float64 {
	cs.checkFinal("Fractile")
	return stats.Fractile(cs.counts[win][bin], frac, 0, cs.numSim)
}

// Gamma returns the rank-based score bounds of a cell: the probability
// that a simulated count exceeds the observed count (low bound) and
// the probability that it equals or exceeds it (high bound).
func (cs *CountSet) Gamma(win, bin int) (lo, hi float64) {
	cs.checkFinal("Gamma")
	return gammaBounds(cs.counts[win][bin], cs.obs[win][bin], cs.numSim)
}

// GammaWindowSum returns the gamma bounds for the all-window sum of a
// magnitude bin.
func (cs *CountSet) GammaWindowSum(bin int) (lo, hi float64) {
	cs.checkFinal("GammaWindowSum")
	return gammaBounds(cs.winSum[bin], cs.obsWinSum[bin], cs.numSim)
}

// gammaBounds computes exceedance probabilities above and at-and-above
// the observed count within a sorted column.  Counts are integer
// valued, so the at-and-above bound probes half a count below the
// observation.
func gammaBounds(sorted []float64, obs float64, n int) (lo, hi float64) {
	lo = stats.ProbEx(sorted, obs, 0, n)
	hi = stats.ProbEx(sorted, obs-0.5, 0, n)
	return lo, hi
}
