package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/journal"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/logging"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to a journal database")
	sessionID := flag.String("session", "", "show one session's snapshots and events")
	last := flag.Int("last", 20, "show N most recent events")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/journal.db [--session id] [--last N] [--json]")
		os.Exit(2)
	}

	j, err := journal.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open journal: %v\n", err)
		os.Exit(1)
	}
	defer j.Close()

	if *sessionID != "" {
		err = runDetailMode(j, *sessionID, *last, *jsonOut)
	} else {
		err = runListMode(j, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
	Snapshots int    `json:"snapshots"`
	CreatedAt string `json:"created_at"`
}

func runListMode(j *journal.Journal, jsonOut bool) error {
	sessions, err := j.ListSessions()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stderr, "no sessions found")
		return nil
	}

	rows := make([]listRow, len(sessions))
	for i, s := range sessions {
		rows[i] = listRow{
			SessionID: s.ID,
			Mode:      s.Mode.String(),
			Snapshots: s.Snapshots,
			CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}
	fmt.Printf("%-36s  %-4s  %9s  %s\n", "Session", "Mode", "Snapshots", "Created")
	fmt.Printf("%-36s+-%-4s+-%9s+-%s\n", strings.Repeat("-", 36), "----", "---------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-36s  %-4s  %9d  %s\n", r.SessionID, r.Mode, r.Snapshots, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type snapshotRow struct {
	ID          string  `json:"id"`
	TakenAt     string  `json:"taken_at"`
	RiskPercent float64 `json:"risk_percent"`
}

type eventRow struct {
	Trigger     string   `json:"trigger"`
	Field       string   `json:"field,omitempty"`
	Mode        string   `json:"mode"`
	RiskPercent float64  `json:"risk_percent"`
	Level       string   `json:"level,omitempty"`
	Elevated    []string `json:"elevated,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

type detailOutput struct {
	SessionID string        `json:"session_id"`
	Snapshots []snapshotRow `json:"snapshots"`
	Events    []eventRow    `json:"events"`
}

func runDetailMode(j *journal.Journal, sessionID string, last int, jsonOut bool) error {
	snaps, err := j.ListSnapshots(sessionID)
	if err != nil {
		return err
	}
	events, err := logging.ListEvents(j.DB(), sessionID, last)
	if err != nil {
		return err
	}

	out := detailOutput{SessionID: sessionID}
	for _, s := range snaps {
		out.Snapshots = append(out.Snapshots, snapshotRow{
			ID:          s.ID,
			TakenAt:     s.Timestamp.Format("2006-01-02T15:04:05Z"),
			RiskPercent: s.RiskPercent,
		})
	}
	// events arrive newest first, print chronologically
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		row := eventRow{
			Trigger:     string(e.Trigger),
			Field:       e.Field,
			Mode:        e.Mode,
			RiskPercent: e.RiskPercent,
			CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if sig := parseSignals(e.SignalsJSON); sig != nil {
			row.Level = sig.Level
			row.Elevated = sig.Elevated
		}
		out.Events = append(out.Events, row)
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Session: %s\n", out.SessionID)
	fmt.Printf("\nSnapshots (%d):\n", len(out.Snapshots))
	for i, s := range out.Snapshots {
		fmt.Printf("  %2d  %s  %s  %6.2f%%\n", i+1, shortID(s.ID), s.TakenAt, s.RiskPercent)
	}
	fmt.Printf("\nEvents (last %d):\n", len(out.Events))
	for _, e := range out.Events {
		fmt.Printf("  %-14s %-10s %-3s %6.2f%%  %-8s %s\n",
			e.Trigger, e.Field, e.Mode, e.RiskPercent, e.Level, strings.Join(e.Elevated, ","))
	}
	return nil
}

// #endregion detail-mode

// #region output

func parseSignals(signalsJSON string) *logging.EventSignals {
	if signalsJSON == "" {
		return nil
	}
	var sig logging.EventSignals
	if err := json.Unmarshal([]byte(signalsJSON), &sig); err != nil {
		return nil
	}
	return &sig
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
