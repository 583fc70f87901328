package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/session"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/units"
	_ "modernc.org/sqlite"
)

// MemoryDSN keeps the journal inside the process for the session's lifetime.
const MemoryDSN = ":memory:"

// createdLayout is fixed-width so created_at sorts chronologically as text.
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id  TEXT PRIMARY KEY,
	mode        TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	snapshot_id   TEXT NOT NULL UNIQUE,
	session_id    TEXT NOT NULL,
	taken_at      TEXT NOT NULL,
	risk_percent  REAL NOT NULL,
	values_json   TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE TABLE IF NOT EXISTS event_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	trigger_type  TEXT NOT NULL,
	field         TEXT,
	mode          TEXT NOT NULL,
	risk_percent  REAL NOT NULL,
	signals_json  TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);
`

// #endregion schema

// #region journal-struct
// Journal mirrors a session's snapshot history and interaction events in
// SQLite so they can be queried and exported while the session runs.
type Journal struct {
	db *sql.DB
}

// #endregion journal-struct

// #region constructor
// Open opens dsn (usually MemoryDSN) and creates the schema.
func Open(dsn string) (*Journal, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// every pooled connection to :memory: would get its own empty database
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// DB returns the underlying *sql.DB for the logging package.
func (j *Journal) DB() *sql.DB {
	return j.db
}

// #endregion constructor

// #region sessions
// StartSession registers a session row.
func (j *Journal) StartSession(id string, mode units.Mode) error {
	_, err := j.db.Exec(
		`INSERT INTO sessions (session_id, mode, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET mode = excluded.mode`,
		id, mode.String(), time.Now().UTC().Format(createdLayout),
	)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	return nil
}

// SessionInfo summarizes one journaled session.
type SessionInfo struct {
	ID        string
	Mode      units.Mode
	CreatedAt time.Time
	Snapshots int
}

// ListSessions returns every session, newest first.
func (j *Journal) ListSessions() ([]SessionInfo, error) {
	rows, err := j.db.Query(
		`SELECT s.session_id, s.mode, s.created_at, COUNT(n.seq)
		 FROM sessions s LEFT JOIN snapshots n ON n.session_id = s.session_id
		 GROUP BY s.session_id ORDER BY s.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var modeStr, createdStr string
		if err := rows.Scan(&info.ID, &modeStr, &createdStr, &info.Snapshots); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if info.Mode, err = units.ParseMode(modeStr); err != nil {
			return nil, fmt.Errorf("session %s: %w", info.ID, err)
		}
		info.CreatedAt, _ = time.Parse(createdLayout, createdStr)
		out = append(out, info)
	}
	return out, rows.Err()
}

// LatestSession returns the most recently started session's ID.
func (j *Journal) LatestSession() (string, error) {
	var id string
	err := j.db.QueryRow(`SELECT session_id FROM sessions ORDER BY created_at DESC LIMIT 1`).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("latest session: %w", err)
	}
	return id, nil
}

// #endregion sessions

// #region snapshots
// AppendSnapshot inserts snap and trims the session's rows to capacity,
// oldest first, in one transaction.
func (j *Journal) AppendSnapshot(sessionID string, snap session.Snapshot, capacity int) error {
	valuesJSON, err := json.Marshal(snap.Values)
	if err != nil {
		return fmt.Errorf("marshal values: %w", err)
	}

	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO snapshots (snapshot_id, session_id, taken_at, risk_percent, values_json)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.ID, sessionID, snap.Timestamp.Format(time.RFC3339Nano), snap.RiskPercent, string(valuesJSON),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	_, err = tx.Exec(
		`DELETE FROM snapshots WHERE session_id = ? AND seq NOT IN (
			SELECT seq FROM snapshots WHERE session_id = ? ORDER BY seq DESC LIMIT ?
		)`,
		sessionID, sessionID, capacity,
	)
	if err != nil {
		return fmt.Errorf("trim snapshots: %w", err)
	}

	return tx.Commit()
}

// ListSnapshots returns the session's snapshots oldest first.
func (j *Journal) ListSnapshots(sessionID string) ([]session.Snapshot, error) {
	rows, err := j.db.Query(
		`SELECT snapshot_id, taken_at, risk_percent, values_json
		 FROM snapshots WHERE session_id = ? ORDER BY seq ASC`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []session.Snapshot
	for rows.Next() {
		var s session.Snapshot
		var takenStr, valuesJSON string
		if err := rows.Scan(&s.ID, &takenStr, &s.RiskPercent, &valuesJSON); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.Timestamp, _ = time.Parse(time.RFC3339Nano, takenStr)
		if err := json.Unmarshal([]byte(valuesJSON), &s.Values); err != nil {
			return nil, fmt.Errorf("unmarshal values: %w", err)
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// ClearSnapshots deletes every snapshot of the session.
func (j *Journal) ClearSnapshots(sessionID string) error {
	if _, err := j.db.Exec(`DELETE FROM snapshots WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	return nil
}

// #endregion snapshots
