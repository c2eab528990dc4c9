package forecast

import (
	"fmt"
	"strings"

	mstats "github.com/montanaflynn/stats"

	"etasim/domain/core"
	"etasim/domain/etas"
)

// Set holds the count distributions of one mainshock across every
// forecast lag and model kind.  The extra lag row at index LagCount()
// carries the per-simulation sum over all lags, built by Finalize.
type Set struct {
	cfg  Config
	sets [][]*CountSet // [lag (+1 for sum)][model]
}

// NewSet allocates zero-initialized count sets for the whole grid,
// including the sum-over-lags row.
func NewSet(cfg Config) (*Set, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	numLag := len(cfg.ForecastLags)
	numModel := len(cfg.Models)
	s := &Set{cfg: cfg, sets: make([][]*CountSet, numLag+1)}
	for l := 0; l <= numLag; l++ {
		s.sets[l] = make([]*CountSet, numModel)
		for m := 0; m < numModel; m++ {
			s.sets[l][m] = NewCountSet(len(cfg.Windows), len(cfg.MagBins), cfg.NumSim)
		}
	}
	return s, nil
}

// Config returns the evaluation grid.
func (s *Set) Config() Config { return s.cfg }

// LagCount returns the number of real forecast lags (the sum row is
// at this index).
func (s *Set) LagCount() int { return len(s.cfg.ForecastLags) }

// At returns the count set of one (lag, model) pair.  Passing
// LagCount() as the lag index returns the sum-over-lags set.
func (s *Set) At(lagIdx, modelIdx int) *CountSet {
	return s.sets[lagIdx][modelIdx]
}

// Finalize builds the sum-over-lags row, then finalizes every count
// set.  With randomize true the lag sums resample each lag's
// distribution instead of aligning simulation slots, which decorrelates
// lags that were simulated from a common seed.
func (s *Set) Finalize(randomize bool, rng *etas.Rangen) error {
	numLag := s.LagCount()
	for m := range s.cfg.Models {
		sum := s.sets[numLag][m]
		for l := 0; l < numLag; l++ {
			if err := sum.AddFrom(s.sets[l][m], randomize, rng); err != nil {
				return err
			}
		}
	}
	for l := 0; l <= numLag; l++ {
		for m := range s.cfg.Models {
			s.sets[l][m].Finalize()
		}
	}
	return nil
}

// CountRow is one line of the event-count statistics table.
type CountRow struct {
	Lag      string         `json:"forecast_lag"`
	Model    core.ModelName `json:"model"`
	Window   string         `json:"advisory_window"`
	MagBin   float64        `json:"mag"`
	Obs      float64        `json:"obs"`
	Mean     float64        `json:"mean"`
	Median   float64        `json:"median"`
	F5       float64        `json:"fractile_5"`
	F95      float64        `json:"fractile_95"`
}

// GammaRow is one line of the gamma score table.  Window "sum" is the
// all-window slot.
type GammaRow struct {
	Lag     string         `json:"forecast_lag"`
	Model   core.ModelName `json:"model"`
	Window  string         `json:"advisory_window"`
	MagBin  float64        `json:"mag"`
	GammaLo float64        `json:"gamma_lo"`
	GammaHi float64        `json:"gamma_hi"`
}

// lagLabel names a lag row; the extra row is the sum over lags.
func (s *Set) lagLabel(lagIdx int) string {
	if lagIdx == s.LagCount() {
		return "sum"
	}
	return fmt.Sprintf("%g-day", s.cfg.ForecastLags[lagIdx])
}

// CountStats returns the event-count statistics for every cell,
// including the sum-over-lags rows.  The set must be finalized.
func (s *Set) CountStats() []CountRow {
	rows := make([]CountRow, 0, (s.LagCount()+1)*len(s.cfg.Models)*len(s.cfg.Windows)*len(s.cfg.MagBins))
	for l := 0; l <= s.LagCount(); l++ {
		for m, model := range s.cfg.Models {
			cs := s.sets[l][m]
			for w, win := range s.cfg.Windows {
				for b, mag := range s.cfg.MagBins {
					mean, _ := mstats.Mean(cs.counts[w][b])
					rows = append(rows, CountRow{
						Lag:    s.lagLabel(l),
						Model:  model,
						Window: win.Name,
						MagBin: mag,
						Obs:    cs.Observed(w, b),
						Mean:   mean,
						Median: cs.Median(w, b),
						F5:     cs.Fractile(w, b, 0.05),
						F95:    cs.Fractile(w, b, 0.95),
					})
				}
			}
		}
	}
	return rows
}

// GammaTable returns the gamma score bounds for every cell, including
// the sum-over-lags rows and the all-window slot per magnitude bin.
// The set must be finalized.
func (s *Set) GammaTable() []GammaRow {
	rows := make([]GammaRow, 0, (s.LagCount()+1)*len(s.cfg.Models)*(len(s.cfg.Windows)+1)*len(s.cfg.MagBins))
	for l := 0; l <= s.LagCount(); l++ {
		for m, model := range s.cfg.Models {
			cs := s.sets[l][m]
			for w, win := range s.cfg.Windows {
				for b, mag := range s.cfg.MagBins {
					lo, hi := cs.Gamma(w, b)
					rows = append(rows, GammaRow{
						Lag: s.lagLabel(l), Model: model, Window: win.Name,
						MagBin: mag, GammaLo: lo, GammaHi: hi,
					})
				}
			}
			for b, mag := range s.cfg.MagBins {
				lo, hi := cs.GammaWindowSum(b)
				rows = append(rows, GammaRow{
					Lag: s.lagLabel(l), Model: model, Window: "sum",
					MagBin: mag, GammaLo: lo, GammaHi: hi,
				})
			}
		}
	}
	return rows
}

// RenderCountStats renders the count table as text, one cell per line.
func (s *Set) RenderCountStats() string {
	var sb strings.Builder
	for _, r := range s.CountStats() {
		fmt.Fprintf(&sb, "%s,  %s,  %s,  mag = %g,  obs = %g,  mean = %.2f,  median = %g,  fractile_5 = %g,  fractile_95 = %g\n",
			r.Lag, r.Model, r.Window, r.MagBin, r.Obs, r.Mean, r.Median, r.F5, r.F95)
	}
	return sb.String()
}

// RenderGammaTable renders the gamma table as text, one cell per line.
func (s *Set) RenderGammaTable() string {
	var sb strings.Builder
	for _, r := range s.GammaTable() {
		fmt.Fprintf(&sb, "%s,  %s,  %s,  mag = %g,  gamma_lo = %.4f,  gamma_hi = %.4f\n",
			r.Lag, r.Model, r.Window, r.MagBin, r.GammaLo, r.GammaHi)
	}
	return sb.String()
}
