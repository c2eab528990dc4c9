package etas

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"etasim/domain/stats"
)

// Rangen is the pseudorandom source for catalog simulation.
//
// The generator is pinned to PCG XSL RR 128/64 (golang.org/x/exp/rand,
// the source type gonum's distributions draw from), so a given 64-bit
// seed reproduces the identical draw sequence on every platform.  The
// caller's seed is premixed through splitmix64 to decorrelate adjacent
// seeds.  All samplers draw from the single underlying stream; the
// order of draws is part of the reproducibility contract.
//
// Only one goroutine may use a Rangen at a time.
type Rangen struct {
	src *rand.Rand
}

// NewRangen creates a generator seeded from a single 64-bit value.
func NewRangen(seed uint64) *Rangen {
	return &Rangen{src: rand.New(rand.NewSource(splitmix64(seed)))}
}

// splitmix64 is the seed-expansion step of Vigna's SplitMix64.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// Uniform returns a uniform draw in [0, 1).
func (r *Rangen) Uniform() float64 {
	return r.src.Float64()
}

// UniformRange returns a uniform draw in [lo, hi).
func (r *Rangen) UniformRange(lo, hi float64) float64 {
	return lo + r.src.Float64()*(hi-lo)
}

// PoissonSample draws a Poisson count with the given mean.  Means below
// SmallExpectedCount yield zero.  The sampler is safe for means up to
// 1e18; the draw is performed in floating point and cannot overflow.
func (r *Rangen) PoissonSample(mean float64) int {
	if mean < SmallExpectedCount {
		return 0
	}
	return int(distuv.Poisson{Lambda: mean, Src: r.src}.Rand())
}

// GRSample draws a magnitude from the Gutenberg-Richter distribution
// truncated to [m1, m2].  When b*(m2-m1) is tiny the distribution is
// indistinguishable from uniform and the uniform draw avoids
// cancellation in the inverse CDF.
func (r *Rangen) GRSample(b, m1, m2 float64) float64 {
	y := b * (m2 - m1)
	if math.Abs(y) <= 1.0e-12 {
		return r.UniformRange(m1, m2)
	}
	u := r.Uniform()
	return m1 - math.Log1p(u*math.Expm1(-CLog10*y))/(CLog10*b)
}

// OmoriSampleShifted draws a time in [max(t1,t0), t2] from the density
// proportional to (t - t0 + c)^(-p), by inverse CDF on the primitive
// of (t + c)^(-p).
func (r *Rangen) OmoriSampleShifted(p, c, t0, t1, t2 float64) float64 {
	a := math.Max(t1, t0) - t0
	bb := t2 - t0
	u := r.Uniform()
	q := 1.0 - p
	var rel float64
	if q == 0 {
		la := math.Log(a + c)
		lb := math.Log(bb + c)
		rel = math.Exp(la+u*(lb-la)) - c
	} else {
		va := math.Pow(a+c, q)
		vb := math.Pow(bb+c, q)
		rel = math.Pow(va+u*(vb-va), 1.0/q) - c
	}
	// Inverse-CDF round trips can land an ulp outside the interval.
	if rel < a {
		rel = a
	}
	if rel > bb {
		rel = bb
	}
	return t0 + rel
}

// CumulativeSample selects an index in [0, n) with probability
// proportional to the weight differences of the cumulative array.
// Zero-weight entries are never selected.
func (r *Rangen) CumulativeSample(cum []float64, n int) int {
	v := r.Uniform() * cum[n-1]
	return stats.Bsearch(cum, v, 0, n)
}

//----- Rate functions (pure, no generator state) -----

// GRRate returns the Gutenberg-Richter event rate in the magnitude
// range [m1, m2], per unit Omori rate, relative to the reference
// magnitude mref:
//
//	rate = 10^(b*(mref-m1)) - 10^(b*(mref-m2))
func GRRate(b, mref, m1, m2 float64) float64 {
	return math.Pow(10.0, b*(mref-m1)) - math.Pow(10.0, b*(mref-m2))
}

// GRInvRate returns the minimum magnitude m1 such that
// GRRate(b, mref, m1, m2) equals rate.  The result is logarithmic in
// the requested rate, so it cannot overflow even for very large rates;
// as the rate tends to zero the result tends to m2.
func GRInvRate(b, mref, m2, rate float64) float64 {
	return mref - math.Log10(rate+math.Pow(10.0, b*(mref-m2)))/b
}

// OmoriRate returns the integral of (t + c)^(-p) from t1 to t2.
// The expm1 form keeps the difference of powers accurate when p is
// close to 1.
func OmoriRate(p, c, t1, t2 float64) float64 {
	q := 1.0 - p
	l1 := math.Log(t1 + c)
	l2 := math.Log(t2 + c)
	if q == 0 {
		return l2 - l1
	}
	return math.Exp(q*l1) * math.Expm1(q*(l2-l1)) / q
}

// OmoriRateShifted returns the Omori integral over the part of the
// forecast interval [t1, t2] that lies after the parent time t0 plus
// the dead-zone width teps.
func OmoriRateShifted(p, c, t0, teps, t1, t2 float64) float64 {
	if t2 <= t0+teps {
		return 0
	}
	return OmoriRate(p, c, math.Max(t1, t0+teps)-t0, t2-t0)
}
