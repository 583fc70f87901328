package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/journal"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/logging"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/model"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/replay"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to a journal database (DB mode)")
	sessionID := flag.String("session", "", "session to replay from the journal (DB mode)")
	configPath := flag.String("config", os.Getenv("RISKCALC_CONFIG"), "JSON config the session ran with (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	flag.Parse()

	logging.Init("riskcalc-replay")

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/journal.db [--session <id>] [--config path/to/config.json]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *sessionID, *configPath)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region db-extract

// maxEvents bounds how much of a journal one replay reads.
const maxEvents = 10000

// dbReplayConfig layers the config at path over the defaults, matching how
// riskcalc loads RISKCALC_CONFIG.
func dbReplayConfig(path string) (replay.ReplayConfig, error) {
	config := replay.DefaultReplayConfig()
	if path == "" {
		return config, nil
	}
	cfg, err := model.LoadConfig(path)
	if err != nil {
		return replay.ReplayConfig{}, err
	}
	config.Model = cfg
	return config, nil
}

func runDBMode(dbPath, sessionID, configPath string) int {
	config, err := dbReplayConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 2
	}

	j, err := journal.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open journal: %v\n", err)
		return 2
	}
	defer j.Close()

	if sessionID == "" {
		if sessionID, err = j.LatestSession(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 2
		}
	}

	events, err := logging.ListEvents(j.DB(), sessionID, maxEvents)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list events: %v\n", err)
		return 2
	}
	if len(events) == 0 {
		fmt.Fprintf(os.Stderr, "no events found for session %s\n", sessionID)
		return 2
	}
	// ListEvents is newest first
	for i, k := 0, len(events)-1; i < k; i, k = i+1, k-1 {
		events[i], events[k] = events[k], events[i]
	}

	steps, err := replay.StepsFromEvents(events)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build steps: %v\n", err)
		return 2
	}

	results, err := replay.Replay(context.Background(), steps, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}
	return printComparison(results, steps)
}

// #endregion db-extract

// #region output

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	config, err := f.ToReplayConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}
	if f.Description != "" {
		fmt.Printf("%s\n\n", f.Description)
	}

	results, err := replay.Replay(context.Background(), f.Steps, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}
	return printComparison(results, f.Steps)
}

// printComparison outputs a comparison table and returns the exit code.
func printComparison(results []replay.ReplayResult, steps []replay.Step) int {
	fmt.Printf("%-20s| %-12s| %-10s| %-10s| %s\n", "Step", "Action", "Expected", "Replayed", "Match")
	fmt.Printf("%-20s+%-13s+%-11s+%-11s+%s\n",
		"--------------------", "-------------", "-----------", "-----------", "------")

	for i, r := range results {
		exp := "-"
		if i < len(steps) && steps[i].ExpectRisk != nil {
			exp = fmt.Sprintf("%.4f", *steps[i].ExpectRisk)
		}
		match := "-"
		switch {
		case r.Checked && r.Match:
			match = "OK"
		case r.Checked:
			match = "DIFF " + r.Reason
		case r.Reason != "":
			match = "ERR " + r.Reason
		}
		fmt.Printf("%-20s| %-12s| %-10s| %-10.4f| %s\n", r.StepID, r.Action, exp, r.RiskPercent, match)
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d steps, %d checked, %d match, %d diverge, %d errors (final risk %.2f%%)\n",
		s.TotalSteps, s.Checked, s.Matches, s.Mismatches, s.Errors, s.FinalRisk)

	if s.Mismatches > 0 || s.Errors > 0 {
		return 1
	}
	return 0
}

// #endregion output
