package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-event
// LogEvent writes an interaction row to the event_log table.
func LogEvent(db *sql.DB, entry EventEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO event_log (session_id, trigger_type, field, mode, risk_percent, signals_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		string(entry.Trigger),
		nullIfEmpty(entry.Field),
		entry.Mode,
		entry.RiskPercent,
		nullIfEmpty(entry.SignalsJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// #endregion log-event

// #region list-events
// ListEvents returns the most recent events of a session, newest first.
func ListEvents(db *sql.DB, sessionID string, limit int) ([]EventEntry, error) {
	rows, err := db.Query(
		`SELECT session_id, trigger_type, field, mode, risk_percent, signals_json, created_at
		 FROM event_log WHERE session_id = ? ORDER BY id DESC LIMIT ?`, sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var entries []EventEntry
	for rows.Next() {
		var e EventEntry
		var trigger, createdStr string
		var fieldName, signals sql.NullString
		if err := rows.Scan(&e.SessionID, &trigger, &fieldName, &e.Mode, &e.RiskPercent, &signals, &createdStr); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Trigger = Trigger(trigger)
		if fieldName.Valid {
			e.Field = fieldName.String
		}
		if signals.Valid {
			e.SignalsJSON = signals.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion list-events

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
