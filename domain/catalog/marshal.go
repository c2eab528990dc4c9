package catalog

import (
	"encoding/json"

	"etasim/domain/core"
)

// snapshotVersion is the wire version for catalog checkpoints.
const snapshotVersion = 1

// GenerationSnapshot is the serialized form of one generation.
type GenerationSnapshot struct {
	Info     GenerationInfo `json:"info"`
	Ruptures []Rupture      `json:"ruptures"`
}

// Snapshot is the machine-readable checkpoint of a frozen catalog.
// Field names are stable; Version is checked on read.
type Snapshot struct {
	Version     int                  `json:"version"`
	Params      Params               `json:"params"`
	Generations []GenerationSnapshot `json:"generations"`
}

// Snapshot copies a frozen catalog into its serializable form.
func (b *Builder) Snapshot() (Snapshot, error) {
	if b.state != stateFrozen {
		return Snapshot{}, core.NewProtocolError("Snapshot", b.state.String())
	}
	snap := Snapshot{
		Version:     snapshotVersion,
		Params:      b.params,
		Generations: make([]GenerationSnapshot, len(b.gens)),
	}
	for i, g := range b.gens {
		rups := make([]Rupture, g.size)
		copy(rups, b.rups[g.offset:g.offset+g.size])
		snap.Generations[i] = GenerationSnapshot{Info: g.info, Ruptures: rups}
	}
	return snap, nil
}

// Restore loads a snapshot into an empty builder, leaving it frozen.
func (b *Builder) Restore(snap Snapshot) error {
	if b.state != stateEmpty {
		panic(core.NewProtocolError("Restore", b.state.String()))
	}
	if snap.Version != snapshotVersion {
		return core.NewVersionError("catalog.Snapshot", snap.Version, snapshotVersion)
	}
	if err := b.BeginCatalog(snap.Params); err != nil {
		return err
	}
	for _, g := range snap.Generations {
		b.BeginGeneration(g.Info)
		for _, r := range g.Ruptures {
			b.AddRup(r)
		}
		b.EndGeneration()
	}
	b.EndCatalog()
	return nil
}

// MarshalJSON renders the snapshot with its stable field names.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	type alias Snapshot
	return json.Marshal(alias(s))
}

// UnmarshalJSON reads a snapshot and rejects unknown versions.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type alias Snapshot
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Version != snapshotVersion {
		return core.NewVersionError("catalog.Snapshot", a.Version, snapshotVersion)
	}
	*s = Snapshot(a)
	return nil
}
