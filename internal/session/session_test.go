package session

import (
	"testing"
	"time"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/field"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/units"
)

func snap(i int) Snapshot {
	return NewSnapshot(time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC), float64(i), field.Record{})
}

// #region history-tests

func TestHistoryEvictsOldestFIFO(t *testing.T) {
	h := NewHistory(DefaultCapacity)
	var evicted []float64
	for i := 0; i < 25; i++ {
		if old := h.Append(snap(i)); old != nil {
			evicted = append(evicted, old.RiskPercent)
		}
	}

	if h.Len() != 20 {
		t.Fatalf("expected 20 entries, got %d", h.Len())
	}
	if len(evicted) != 5 {
		t.Fatalf("expected 5 evictions, got %d", len(evicted))
	}
	for i, v := range evicted {
		if v != float64(i) {
			t.Fatalf("eviction %d: expected %d, got %v", i, i, v)
		}
	}

	items := h.Items()
	for i, s := range items {
		if s.RiskPercent != float64(i+5) {
			t.Fatalf("position %d: expected %d, got %v", i, i+5, s.RiskPercent)
		}
	}
}

func TestHistoryNeverExceedsCapacity(t *testing.T) {
	h := NewHistory(DefaultCapacity)
	for i := 0; i < 21; i++ {
		h.Append(snap(i))
		if h.Len() > 20 {
			t.Fatalf("length %d exceeds cap after append %d", h.Len(), i)
		}
	}
}

func TestHistoryItemsIsCopy(t *testing.T) {
	h := NewHistory(3)
	h.Append(snap(1))
	items := h.Items()
	items[0].RiskPercent = 99
	if h.Items()[0].RiskPercent != 1 {
		t.Fatal("mutating Items() result must not affect the history")
	}
}

func TestHistoryLatestAndClear(t *testing.T) {
	h := NewHistory(2)
	if _, ok := h.Latest(); ok {
		t.Fatal("expected no latest on empty history")
	}
	h.Append(snap(1))
	h.Append(snap(2))
	h.Append(snap(3))
	latest, ok := h.Latest()
	if !ok || latest.RiskPercent != 3 {
		t.Fatalf("expected latest 3, got %v", latest.RiskPercent)
	}
	h.Clear()
	if h.Len() != 0 || len(h.Items()) != 0 {
		t.Fatal("expected empty history after clear")
	}
}

func TestNewHistoryDefaultsCapacity(t *testing.T) {
	if NewHistory(0).Capacity() != DefaultCapacity {
		t.Fatal("non-positive capacity should fall back to the default")
	}
}

func TestSnapshotHasID(t *testing.T) {
	a, b := snap(1), snap(1)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected unique IDs, got %q and %q", a.ID, b.ID)
	}
}

// #endregion history-tests

// #region state-tests

func TestToggleUnits(t *testing.T) {
	s := New(units.US)
	if s.ToggleUnits() != units.SI {
		t.Fatal("expected SI after one toggle")
	}
	if s.ToggleUnits() != units.US {
		t.Fatal("expected US after two toggles")
	}
}

func TestDragLifecycle(t *testing.T) {
	s := New(units.US)
	if s.ActiveField() != field.None {
		t.Fatal("expected no active field initially")
	}
	s.BeginDrag(field.Glucose)
	if s.ActiveField() != field.Glucose {
		t.Fatalf("expected glucose, got %s", s.ActiveField())
	}
	s.EndDrag()
	if s.ActiveField() != field.None {
		t.Fatal("expected no active field after drag end")
	}
}

func TestComparisonDeltaNotRebaselined(t *testing.T) {
	s := New(units.US)
	p1, p2, p3 := 0.08, 0.13, 0.21

	if !s.ToggleComparison(p1, field.Record{}) {
		t.Fatal("expected comparison active")
	}
	d, ok := s.ComparisonDelta(p2)
	if !ok || d != p2-p1 {
		t.Fatalf("expected %v, got %v", p2-p1, d)
	}
	d, _ = s.ComparisonDelta(p3)
	if d != p3-p1 {
		t.Fatalf("expected delta against original baseline %v, got %v", p3-p1, d)
	}

	if s.ToggleComparison(p3, field.Record{}) {
		t.Fatal("expected comparison inactive after second toggle")
	}
	if _, ok := s.ComparisonDelta(p3); ok {
		t.Fatal("no delta when comparison is off")
	}
}

func TestResetClearsSessionButKeepsMode(t *testing.T) {
	s := New(units.SI)
	s.Snapshot(time.Now(), 7, field.Record{})
	s.ToggleComparison(0.1, field.Record{})
	s.BeginDrag(field.HDL)

	s.Reset()

	if s.History.Len() != 0 {
		t.Fatal("expected empty history")
	}
	if s.Comparing() {
		t.Fatal("expected comparison off")
	}
	if s.ActiveField() != field.None {
		t.Fatal("expected no active field")
	}
	if s.Mode != units.SI {
		t.Fatal("reset should keep the unit mode")
	}
}

func TestStateSnapshotReportsEviction(t *testing.T) {
	s := New(units.US)
	for i := 0; i < DefaultCapacity; i++ {
		if _, ev := s.Snapshot(time.Now(), float64(i), field.Record{}); ev != nil {
			t.Fatalf("unexpected eviction at %d", i)
		}
	}
	_, ev := s.Snapshot(time.Now(), 99, field.Record{})
	if ev == nil || ev.RiskPercent != 0 {
		t.Fatalf("expected the first snapshot evicted, got %v", ev)
	}
}

// #endregion state-tests
