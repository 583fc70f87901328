package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/journal"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/logging"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/replay"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/units"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to a journal database")
	sessionID := flag.String("session", "", "session to export (default: latest)")
	last := flag.Int("last", 50, "number of most recent events to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/journal.db --out path/to/fixture.json [--session id] [--last N]")
		os.Exit(2)
	}

	if err := run(*dbPath, *sessionID, *last, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(dbPath, sessionID string, last int, outPath string) error {
	j, err := journal.Open(dbPath)
	if err != nil {
		return err
	}
	defer j.Close()

	if sessionID == "" {
		if sessionID, err = j.LatestSession(); err != nil {
			return err
		}
	}

	events, err := logging.ListEvents(j.DB(), sessionID, last)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("no events found for session %s", sessionID)
	}
	// newest first from the journal
	for i, k := 0, len(events)-1; i < k; i, k = i+1, k-1 {
		events[i], events[k] = events[k], events[i]
	}

	fmt.Printf("Found %d events for session %s\n", len(events), sessionID)

	fixture, err := buildFixture(sessionID, events)
	if err != nil {
		return err
	}
	return writeFixture(fixture, outPath)
}

// #endregion extract

// #region output

func buildFixture(sessionID string, events []logging.EventEntry) (replay.Fixture, error) {
	steps, err := replay.StepsFromEvents(events)
	if err != nil {
		return replay.Fixture{}, err
	}
	start, err := units.ParseMode(events[0].Mode)
	if err != nil {
		return replay.Fixture{}, err
	}
	return replay.Fixture{
		Description: fmt.Sprintf("Journal export: %d events from session %s", len(events), sessionID),
		StartMode:   start,
		Tolerance:   replay.DefaultTolerance,
		Steps:       steps,
	}, nil
}

func writeFixture(fixture replay.Fixture, outPath string) error {
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Printf("Wrote fixture to %s (%d bytes, %d steps)\n", outPath, len(data), len(fixture.Steps))
	return nil
}

// #endregion output
