package session

import (
	"time"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/field"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/units"
	"github.com/google/uuid"
)

// #region state
// State is the mutable interaction state of one calculator session. It is
// driven from a single thread of control and holds no locks.
type State struct {
	ID      string
	Mode    units.Mode
	History *History

	comparisonActive bool
	baseline         float64
	baselineSI       field.Record
	activeField      field.Field
}

// New creates a session in mode with the default history capacity.
func New(mode units.Mode) *State {
	return &State{
		ID:          uuid.New().String(),
		Mode:        mode,
		History:     NewHistory(DefaultCapacity),
		activeField: field.None,
	}
}

// #endregion state

// #region units
// ToggleUnits flips the display mode and returns the new one.
func (s *State) ToggleUnits() units.Mode {
	s.Mode = s.Mode.Toggle()
	return s.Mode
}

// #endregion units

// #region drag
// BeginDrag marks f as the slider being manipulated.
func (s *State) BeginDrag(f field.Field) {
	s.activeField = f
}

// EndDrag clears the active slider.
func (s *State) EndDrag() {
	s.activeField = field.None
}

// ActiveField returns the slider being dragged, or field.None.
func (s *State) ActiveField() field.Field {
	return s.activeField
}

// #endregion drag

// #region comparison
// ToggleComparison latches probability p (and its SI inputs) as the baseline
// when turning comparison on, and clears it when turning it off. Returns
// whether comparison is now active.
func (s *State) ToggleComparison(p float64, si field.Record) bool {
	if s.comparisonActive {
		s.comparisonActive = false
		s.baseline = 0
		s.baselineSI = field.Record{}
		return false
	}
	s.comparisonActive = true
	s.baseline = p
	s.baselineSI = si
	return true
}

// Comparing reports whether a baseline is latched.
func (s *State) Comparing() bool {
	return s.comparisonActive
}

// Baseline returns the latched probability and SI inputs.
func (s *State) Baseline() (float64, field.Record, bool) {
	return s.baseline, s.baselineSI, s.comparisonActive
}

// ComparisonDelta returns current − baseline. The baseline is never moved
// by input changes; only ToggleComparison sets it.
func (s *State) ComparisonDelta(current float64) (float64, bool) {
	if !s.comparisonActive {
		return 0, false
	}
	return current - s.baseline, true
}

// #endregion comparison

// #region snapshot-reset
// Snapshot appends a history entry and returns it with any evicted entry.
func (s *State) Snapshot(at time.Time, riskPercent float64, si field.Record) (Snapshot, *Snapshot) {
	snap := NewSnapshot(at, riskPercent, si)
	return snap, s.History.Append(snap)
}

// Reset clears history, comparison and drag state. The unit mode is kept.
func (s *State) Reset() {
	s.History.Clear()
	s.comparisonActive = false
	s.baseline = 0
	s.baselineSI = field.Record{}
	s.activeField = field.None
}

// #endregion snapshot-reset
