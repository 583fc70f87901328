package logging

import "time"

// #region trigger
// Trigger names the user interaction that caused a recompute.
type Trigger string

const (
	TriggerInit       Trigger = "init"
	TriggerInput      Trigger = "slider_input"
	TriggerDragStart  Trigger = "drag_start"
	TriggerDragEnd    Trigger = "drag_end"
	TriggerUnitToggle Trigger = "unit_toggle"
	TriggerSnapshot   Trigger = "snapshot"
	TriggerCompare    Trigger = "compare_toggle"
	TriggerReset      Trigger = "reset"
)

// #endregion trigger

// #region event-entry
// EventEntry is a single row in the event_log table.
type EventEntry struct {
	SessionID   string
	Trigger     Trigger
	Field       string // empty when the interaction is not field-specific
	Mode        string
	RiskPercent float64
	SignalsJSON string
	CreatedAt   time.Time
}

// #endregion event-entry

// #region event-signals
// EventSignals captures the inputs and derived values of one recompute.
// Serialized as JSON into event_log.signals_json.
type EventSignals struct {
	Raw             map[string]float64 `json:"raw"`
	Elevated        []string           `json:"elevated"`
	HighWaist       bool               `json:"high_waist"`
	Level           string             `json:"level"`
	ComparisonDelta *float64           `json:"comparison_delta,omitempty"`
	HistoryLen      int                `json:"history_len"`
}

// #endregion event-signals
