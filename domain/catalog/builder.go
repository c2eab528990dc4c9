package catalog

import (
	"fmt"

	"etasim/domain/core"
)

// buildState tracks the builder lifecycle.
type buildState int

const (
	stateEmpty buildState = iota
	stateCatalogOpen
	stateGenerationOpen
	stateFrozen
)

func (s buildState) String() string {
	switch s {
	case stateEmpty:
		return "empty"
	case stateCatalogOpen:
		return "catalog-open"
	case stateGenerationOpen:
		return "generation-open"
	case stateFrozen:
		return "frozen"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// genIndex locates one generation inside the contiguous rupture buffer.
type genIndex struct {
	offset int
	size   int
	info   GenerationInfo
}

// Builder accumulates a catalog as an append-only, generation-partitioned
// store.  Ruptures live in a single contiguous buffer; each generation is
// an (offset, size, info) window into it, which gives O(1) random access
// and cache-friendly scans over a generation.
//
// The builder is a strict state machine:
//
//	empty -> BeginCatalog -> catalog-open
//	catalog-open -> BeginGeneration -> generation-open
//	generation-open -> AddRup* -> EndGeneration -> catalog-open
//	catalog-open (with at least one generation) -> EndCatalog -> frozen
//	any -> Clear -> empty
//
// Out-of-order calls are programming errors and panic.  Only one
// goroutine may drive a builder at a time.
type Builder struct {
	state  buildState
	params Params
	rups   []Rupture
	gens   []genIndex
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Clear discards all contents and returns the builder to the empty
// state so it can be reused for another catalog.  Storage is retained.
func (b *Builder) Clear() {
	b.state = stateEmpty
	b.params = Params{}
	b.rups = b.rups[:0]
	b.gens = b.gens[:0]
}

// BeginCatalog starts a new catalog with the given parameters.  The
// parameter invariants are checked here, before any simulation work.
func (b *Builder) BeginCatalog(params Params) error {
	if b.state != stateEmpty {
		panic(core.NewProtocolError("BeginCatalog", b.state.String()))
	}
	if err := params.Validate(); err != nil {
		return err
	}
	b.params = params
	b.state = stateCatalogOpen
	return nil
}

// BeginGeneration opens a new generation with the given info.
func (b *Builder) BeginGeneration(info GenerationInfo) {
	if b.state != stateCatalogOpen {
		panic(core.NewProtocolError("BeginGeneration", b.state.String()))
	}
	b.gens = append(b.gens, genIndex{offset: len(b.rups), info: info})
	b.state = stateGenerationOpen
}

// AddRup appends a rupture to the open generation.
func (b *Builder) AddRup(r Rupture) {
	if b.state != stateGenerationOpen {
		panic(core.NewProtocolError("AddRup", b.state.String()))
	}
	b.rups = append(b.rups, r)
	b.gens[len(b.gens)-1].size++
}

// EndGeneration closes the open generation.
func (b *Builder) EndGeneration() {
	if b.state != stateGenerationOpen {
		panic(core.NewProtocolError("EndGeneration", b.state.String()))
	}
	b.state = stateCatalogOpen
}

// EndCatalog freezes the catalog.  At least one generation must exist.
func (b *Builder) EndCatalog() {
	if b.state != stateCatalogOpen {
		panic(core.NewProtocolError("EndCatalog", b.state.String()))
	}
	if len(b.gens) == 0 {
		panic(core.NewProtocolError("EndCatalog", "catalog-open with no generations"))
	}
	b.state = stateFrozen
}

// IsFrozen reports whether EndCatalog has been called.
func (b *Builder) IsFrozen() bool {
	return b.state == stateFrozen
}

//----- Read queries -----
//
// Queries are valid in catalog-open and frozen states, and for
// already-closed generations while a generation is open.  Index errors
// are programming errors and panic, like any out-of-range access.

// GenCount returns the number of generations, including an open one.
func (b *Builder) GenCount() int {
	return len(b.gens)
}

// GenSize returns the number of ruptures in generation gi.
func (b *Builder) GenSize(gi int) int {
	return b.gens[gi].size
}

// GenInfo copies the info of generation gi into out.
func (b *Builder) GenInfo(gi int, out *GenerationInfo) {
	*out = b.gens[gi].info
}

// GetRup copies rupture ri of generation gi into out.
func (b *Builder) GetRup(gi, ri int, out *Rupture) {
	g := b.gens[gi]
	if ri < 0 || ri >= g.size {
		panic(fmt.Sprintf("catalog: rupture index %d out of range for generation %d (size %d)", ri, gi, g.size))
	}
	*out = b.rups[g.offset+ri]
}

// CatParams copies the catalog parameters into out.
func (b *Builder) CatParams(out *Params) {
	*out = b.params
}

// TotalSize returns the total number of ruptures across all generations.
func (b *Builder) TotalSize() int {
	return len(b.rups)
}
