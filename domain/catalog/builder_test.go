package catalog

import (
	"encoding/json"
	"testing"

	"etasim/domain/core"
)

func buildSmallCatalog(t *testing.T) *Builder {
	t.Helper()
	b := NewBuilder()
	if err := b.BeginCatalog(validParams()); err != nil {
		t.Fatalf("BeginCatalog: %v", err)
	}

	var info GenerationInfo
	info.Set(3.0, 8.0)
	b.BeginGeneration(info)
	b.AddRup(Rupture{TDay: 0, RupMag: 6.0, KProd: 1.5, RupParent: NoParent})
	b.EndGeneration()

	info.Set(3.5, 8.0)
	b.BeginGeneration(info)
	b.AddRup(Rupture{TDay: 0.5, RupMag: 4.0, KProd: 0.2, RupParent: 0})
	b.AddRup(Rupture{TDay: 1.5, RupMag: 3.7, KProd: 0.1, RupParent: 0})
	b.EndGeneration()

	return b
}

// TestBuilderLifecycle tests the normal build sequence and queries
func TestBuilderLifecycle(t *testing.T) {
	b := buildSmallCatalog(t)

	if got := b.GenCount(); got != 2 {
		t.Fatalf("GenCount: expected 2, got %d", got)
	}
	if got := b.GenSize(0); got != 1 {
		t.Errorf("GenSize(0): expected 1, got %d", got)
	}
	if got := b.GenSize(1); got != 2 {
		t.Errorf("GenSize(1): expected 2, got %d", got)
	}
	if got := b.TotalSize(); got != 3 {
		t.Errorf("TotalSize: expected 3, got %d", got)
	}

	var info GenerationInfo
	b.GenInfo(1, &info)
	if info.GenMagMin != 3.5 || info.GenMagMax != 8.0 {
		t.Errorf("GenInfo(1): got %+v", info)
	}

	var rup Rupture
	b.GetRup(1, 1, &rup)
	if rup.TDay != 1.5 || rup.RupMag != 3.7 || rup.RupParent != 0 {
		t.Errorf("GetRup(1,1): got %+v", rup)
	}

	var p Params
	b.CatParams(&p)
	if p.B != 1.0 || p.GenCountMax != 50 {
		t.Errorf("CatParams: got %+v", p)
	}

	b.EndCatalog()
	if !b.IsFrozen() {
		t.Error("expected frozen after EndCatalog")
	}

	// Queries remain valid when frozen
	if got := b.GenCount(); got != 2 {
		t.Errorf("frozen GenCount: expected 2, got %d", got)
	}
}

// TestBuilderReuse tests Clear returning the builder to empty
func TestBuilderReuse(t *testing.T) {
	b := buildSmallCatalog(t)
	b.EndCatalog()

	b.Clear()
	if got := b.GenCount(); got != 0 {
		t.Fatalf("after Clear: GenCount = %d", got)
	}
	if err := b.BeginCatalog(validParams()); err != nil {
		t.Fatalf("BeginCatalog after Clear: %v", err)
	}
}

// TestBuilderInvalidParams tests that invariant violations surface
// before any simulation work
func TestBuilderInvalidParams(t *testing.T) {
	b := NewBuilder()
	p := validParams()
	p.C = 0
	err := b.BeginCatalog(p)
	if err == nil {
		t.Fatal("expected invariant error")
	}
	if !core.IsInvariantError(err) {
		t.Fatalf("expected invariant error, got %v", err)
	}
}

// TestBuilderProtocolMisuse tests that out-of-order calls panic
func TestBuilderProtocolMisuse(t *testing.T) {
	expectPanic := func(name string, f func()) {
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		f()
	}

	expectPanic("AddRup before BeginGeneration", func() {
		b := NewBuilder()
		_ = b.BeginCatalog(validParams())
		b.AddRup(Rupture{})
	})

	expectPanic("BeginGeneration before BeginCatalog", func() {
		b := NewBuilder()
		b.BeginGeneration(GenerationInfo{})
	})

	expectPanic("EndGeneration without open generation", func() {
		b := NewBuilder()
		_ = b.BeginCatalog(validParams())
		b.EndGeneration()
	})

	expectPanic("EndCatalog with open generation", func() {
		b := NewBuilder()
		_ = b.BeginCatalog(validParams())
		b.BeginGeneration(GenerationInfo{})
		b.EndCatalog()
	})

	expectPanic("EndCatalog with no generations", func() {
		b := NewBuilder()
		_ = b.BeginCatalog(validParams())
		b.EndCatalog()
	})

	expectPanic("double BeginCatalog", func() {
		b := NewBuilder()
		_ = b.BeginCatalog(validParams())
		_ = b.BeginCatalog(validParams())
	})
}

// TestSnapshotRoundTrip tests catalog checkpointing through JSON
func TestSnapshotRoundTrip(t *testing.T) {
	b := buildSmallCatalog(t)
	b.EndCatalog()

	snap, err := b.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Snapshot
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored := NewBuilder()
	if err := restored.Restore(back); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !restored.IsFrozen() {
		t.Error("restored catalog should be frozen")
	}
	if restored.GenCount() != b.GenCount() || restored.TotalSize() != b.TotalSize() {
		t.Fatalf("restored shape mismatch: %d gens / %d rups",
			restored.GenCount(), restored.TotalSize())
	}

	var want, got Rupture
	for gi := 0; gi < b.GenCount(); gi++ {
		for ri := 0; ri < b.GenSize(gi); ri++ {
			b.GetRup(gi, ri, &want)
			restored.GetRup(gi, ri, &got)
			if want != got {
				t.Errorf("rupture (%d,%d) mismatch: %+v vs %+v", gi, ri, want, got)
			}
		}
	}
}

// TestSnapshotVersionCheck tests that unknown versions are rejected
func TestSnapshotVersionCheck(t *testing.T) {
	data := []byte(`{"version": 99, "params": {}, "generations": []}`)
	var snap Snapshot
	err := json.Unmarshal(data, &snap)
	if err == nil {
		t.Fatal("expected version error")
	}
}

// TestSnapshotFieldNames tests the stable wire field names
func TestSnapshotFieldNames(t *testing.T) {
	r := Rupture{TDay: 1, RupMag: 5, KProd: 0.5, RupParent: 2, XKm: 10, YKm: 20}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal rupture: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal rupture: %v", err)
	}
	for _, field := range []string{"t_day", "rup_mag", "k_prod", "rup_parent", "x_km", "y_km"} {
		if _, ok := m[field]; !ok {
			t.Errorf("rupture wire form missing field %q", field)
		}
	}

	p := validParams()
	data, err = json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	m = nil
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	for _, field := range []string{"a", "p", "c", "b", "alpha", "m_ref", "m_sup",
		"m_min_lo", "m_min_hi", "m_max_sim", "t_begin", "t_end", "teps",
		"gen_size_target", "gen_count_max"} {
		if _, ok := m[field]; !ok {
			t.Errorf("params wire form missing field %q", field)
		}
	}
}
