package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/calculator"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/journal"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/logging"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/model"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/render"
	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/units"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// #region main
func main() {
	configPath := flag.String("config", envOr("RISKCALC_CONFIG", ""), "JSON config layered over the defaults")
	unitFlag := flag.String("units", envOr("RISKCALC_UNITS", "us"), "starting unit mode: us or si")
	journalDSN := flag.String("journal", envOr("RISKCALC_JOURNAL", journal.MemoryDSN), "SQLite DSN for the session journal")
	chartDir := flag.String("charts", envOr("RISKCALC_CHART_DIR", "."), "directory for exported charts")
	formatFlag := flag.String("format", "svg", "chart format: svg or png")
	flag.Parse()

	logging.Init("riskcalc")

	cfg := model.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = model.LoadConfig(*configPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	mode, err := units.ParseMode(*unitFlag)
	if err != nil {
		log.Fatalf("invalid units: %v", err)
	}
	format, err := render.ParseFormat(*formatFlag)
	if err != nil {
		log.Fatalf("invalid format: %v", err)
	}

	j, err := journal.Open(*journalDSN)
	if err != nil {
		log.Fatalf("failed to open journal: %v", err)
	}
	defer j.Close()

	calc, err := calculator.New(calculator.Options{Config: &cfg, Mode: mode, Journal: j})
	if err != nil {
		log.Fatalf("failed to start calculator: %v", err)
	}

	r := &repl{
		calc:     calc,
		out:      os.Stdout,
		p:        message.NewPrinter(language.Make(envOr("RISKCALC_LANG", "en"))),
		chartDir: *chartDir,
		format:   format,
	}

	fmt.Println("Diabetes risk calculator ready.")
	fmt.Printf("  Session: %s | Units: %s | Journal: %s\n", calc.SessionID(), mode, *journalDSN)
	fmt.Println("Type a command ('help' for the list, 'quit' to exit):")

	ctx := context.Background()
	r.show(calc.Evaluate(ctx))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		quit, err := r.exec(ctx, line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		if quit {
			break
		}
	}
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
