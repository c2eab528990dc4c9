package catalog

import (
	"etasim/domain/core"
)

// Params bundles the ETAS parameters that shape one simulated catalog.
//
// The productivity parameter "a" is understood relative to the range
// [MRef, MSup] from which mainshock magnitudes are drawn.  MagMinLo and
// MagMinHi bound the adaptive minimum magnitude chosen for each
// generation; MagMaxSim is the maximum simulated magnitude.  Times are
// in days from a shared epoch.
type Params struct {
	A             float64 `json:"a"`
	P             float64 `json:"p"`
	C             float64 `json:"c"`
	B             float64 `json:"b"`
	Alpha         float64 `json:"alpha"`
	MRef          float64 `json:"m_ref"`
	MSup          float64 `json:"m_sup"`
	MagMinLo      float64 `json:"m_min_lo"`
	MagMinHi      float64 `json:"m_min_hi"`
	MagMaxSim     float64 `json:"m_max_sim"`
	TBegin        float64 `json:"t_begin"`
	TEnd          float64 `json:"t_end"`
	TEps          float64 `json:"teps"`
	GenSizeTarget int     `json:"gen_size_target"`
	GenCountMax   int     `json:"gen_count_max"`
}

// Validate checks the parameter invariants.  A catalog must not be
// built from a parameter set that fails validation.
func (p Params) Validate() error {
	if !(p.MRef <= p.MagMinLo && p.MagMinLo <= p.MagMinHi && p.MagMinHi <= p.MagMaxSim && p.MagMaxSim <= p.MSup) {
		return core.NewInvariantError("magnitude range",
			"require m_ref <= m_min_lo <= m_min_hi <= m_max_sim <= m_sup")
	}
	if p.P <= 0 {
		return core.NewInvariantError("p", "Omori exponent must be positive")
	}
	if p.C <= 0 {
		return core.NewInvariantError("c", "Omori offset must be positive")
	}
	if p.B <= 0 {
		return core.NewInvariantError("b", "Gutenberg-Richter slope must be positive")
	}
	if p.TBegin >= p.TEnd {
		return core.NewInvariantError("time interval", "require t_begin < t_end")
	}
	if p.TEps < 0 {
		return core.NewInvariantError("teps", "dead-zone width must be non-negative")
	}
	if p.GenSizeTarget < 1 {
		return core.NewInvariantError("gen_size_target", "must be at least 1")
	}
	if p.GenCountMax < 1 {
		return core.NewInvariantError("gen_count_max", "must be at least 1")
	}
	return nil
}

// TimeInterval returns the forecast interval length in days.
func (p Params) TimeInterval() float64 {
	return p.TEnd - p.TBegin
}
