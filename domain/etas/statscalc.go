package etas

import (
	"math"

	"etasim/domain/catalog"
)

// Productivity and branch-ratio calculus.
//
// The "a" productivity value is understood for mainshock magnitudes
// drawn from [m_ref, m_sup].  When a generation draws magnitudes from a
// truncated range [mag_min, mag_max] instead, the productivity must be
// rescaled so that the branch ratio is unchanged; CalcKCorr applies
// that correction.

// CalcKUncorr returns the uncorrected productivity
//
//	k = 10^(a + alpha*(m0 - mref))
//
// which implicitly assumes m0 was drawn from [mref, msup].
func CalcKUncorr(m0, a, alpha, mref float64) float64 {
	return math.Pow(10.0, a+alpha*(m0-mref))
}

// CalcKCorrRange returns the corrected productivity for a mainshock of
// magnitude m0 drawn from [magMin, magMax] while "a" is given for
// [mref, msup]:
//
//	k_corr = k * exp(v*(mref - magMin)) * (expm1(v*(msup-mref)) / expm1(v*(magMax-magMin)))
//	v = ln(10) * (alpha - b)
//
// with the degenerate ratio (msup-mref)/(magMax-magMin) when both expm1
// arguments are tiny (alpha == b).  The expm1 form avoids cancellation
// and divide-by-zero near alpha == b.
func CalcKCorrRange(m0, a, b, alpha, mref, msup, magMin, magMax float64) float64 {
	k := math.Pow(10.0, a+alpha*(m0-mref))

	v := CLog10 * (alpha - b)
	k *= math.Exp(v * (mref - magMin))

	deltaSupRef := msup - mref
	deltaMaxMin := magMax - magMin

	if math.Max(math.Abs(v*deltaSupRef), math.Abs(v*deltaMaxMin)) <= 1.0e-16 {
		return k * (deltaSupRef / deltaMaxMin)
	}
	return k * (math.Expm1(v*deltaSupRef) / math.Expm1(v*deltaMaxMin))
}

// CalcKCorr returns the corrected productivity for a mainshock of
// magnitude m0 under the given catalog parameters, with the descendant
// magnitude range taken from the generation info.
func CalcKCorr(m0 float64, p catalog.Params, gi catalog.GenerationInfo) float64 {
	return CalcKCorrRange(m0, p.A, p.B, p.Alpha, p.MRef, p.MSup, gi.GenMagMin, gi.GenMagMax)
}

// CalcBranchRatioParams returns the branch ratio, the expected number
// of direct offspring per event over the interval [0, tint]:
//
//	n = b * ln(10) * 10^a * expm1(v*(msup-mref))/v * OmoriRate(p, c, 0, tint)
//
// with expm1(x)/v replaced by (msup-mref) when the argument is tiny.
func CalcBranchRatioParams(a, p, c, b, alpha, mref, msup, tint float64) float64 {
	r := b * CLog10 * OmoriRate(p, c, 0.0, tint)
	r *= math.Pow(10.0, a)

	v := CLog10 * (alpha - b)
	deltaSupRef := msup - mref

	if math.Abs(v*deltaSupRef) <= 1.0e-16 {
		return r * deltaSupRef
	}
	return r * math.Expm1(v*deltaSupRef) / v
}

// CalcBranchRatio returns the branch ratio for the given catalog
// parameters over the forecast interval.
func CalcBranchRatio(p catalog.Params) float64 {
	return CalcBranchRatioParams(p.A, p.P, p.C, p.B, p.Alpha, p.MRef, p.MSup, p.TimeInterval())
}

// CalcInvBranchRatioParams returns the productivity "a" that makes the
// branch ratio equal n.
func CalcInvBranchRatioParams(n, p, c, b, alpha, mref, msup, tint float64) float64 {
	r := b * CLog10 * OmoriRate(p, c, 0.0, tint)

	v := CLog10 * (alpha - b)
	deltaSupRef := msup - mref

	if math.Abs(v*deltaSupRef) <= 1.0e-16 {
		r *= deltaSupRef
	} else {
		r *= math.Expm1(v*deltaSupRef) / v
	}
	return math.Log10(n / r)
}

// CalcInvBranchRatio returns the productivity "a" that makes the branch
// ratio equal n for the given catalog parameters.
func CalcInvBranchRatio(n float64, p catalog.Params) float64 {
	return CalcInvBranchRatioParams(n, p.P, p.C, p.B, p.Alpha, p.MRef, p.MSup, p.TimeInterval())
}

// CorrectSeeds replaces each seed's productivity with the corrected
// value for the generation-zero magnitude range.  Seeds are assumed to
// carry magnitudes drawn from [p.MRef, p.MSup].
func CorrectSeeds(seeds []catalog.Rupture, p catalog.Params, gi catalog.GenerationInfo) {
	for i := range seeds {
		seeds[i].KProd = CalcKCorr(seeds[i].RupMag, p, gi)
	}
}
