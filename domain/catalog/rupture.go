package catalog

// Rupture is one earthquake in a simulated catalog.
//
// TDay is the event time in days from the shared epoch.  KProd is the
// corrected productivity, already rescaled for the magnitude range of
// the generation the rupture belongs to.  RupParent indexes the parent
// in the previous generation; seeds carry -1.  Coordinates are
// inherited from the parent in temporal ETAS.
type Rupture struct {
	TDay      float64 `json:"t_day"`
	RupMag    float64 `json:"rup_mag"`
	KProd     float64 `json:"k_prod"`
	RupParent int     `json:"rup_parent"`
	XKm       float64 `json:"x_km"`
	YKm       float64 `json:"y_km"`
}

// NoParent marks a seed rupture.
const NoParent = -1

// NewSeed returns a seed rupture at the given time and magnitude with
// uncorrected productivity zero and no parent.
func NewSeed(tDay, mag float64) Rupture {
	return Rupture{TDay: tDay, RupMag: mag, KProd: 0, RupParent: NoParent}
}

// GenerationInfo describes the truncated Gutenberg-Richter interval
// from which the magnitudes of one generation were drawn.
type GenerationInfo struct {
	GenMagMin float64 `json:"gen_mag_min"`
	GenMagMax float64 `json:"gen_mag_max"`
}

// Clear resets the generation info to an empty range.
func (gi *GenerationInfo) Clear() {
	gi.GenMagMin = 0
	gi.GenMagMax = 0
}

// Set assigns both bounds.
func (gi *GenerationInfo) Set(magMin, magMax float64) {
	gi.GenMagMin = magMin
	gi.GenMagMax = magMax
}
