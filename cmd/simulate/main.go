package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/logging"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/replay"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/scenario"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/sim"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/store"
)

// #region main

func main() {
	scenarioPath := flag.String("scenario", "", "path to scenario JSON")
	defaultsPath := flag.String("defaults", "", "optional YAML overrides for model tunables")
	dbPath := flag.String("db", "", "optional SQLite path to persist and cache runs")
	concurrency := flag.Int("concurrency", 4, "parallel iterations")
	timestamp := flag.Int64("timestamp", 0, "logical run timestamp folded into the composite hash")
	budget := flag.Duration("iteration-budget", 5*time.Second, "per-iteration compute budget")
	force := flag.Bool("force", false, "recompute even when a cached run exists")
	fixtureOut := flag.String("export-fixture", "", "write a determinism fixture for this run")
	jsonOut := flag.Bool("json", false, "print the full result as JSON")
	flag.Parse()

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "usage: simulate --scenario path/to/scenario.json [--db runs.db] [--defaults tunables.yaml]")
		os.Exit(2)
	}
	if err := run(*scenarioPath, *defaultsPath, *dbPath, *concurrency, *timestamp, *budget, *force, *fixtureOut, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(scenarioPath, defaultsPath, dbPath string, concurrency int, timestamp int64, budget time.Duration, force bool, fixtureOut string, jsonOut bool) error {
	data, err := os.ReadFile(scenarioPath)
	if err != nil {
		return fmt.Errorf("read scenario: %w", err)
	}
	sc, err := scenario.ParseBytes(data)
	if err != nil {
		return err
	}
	// Re-decoded for fixture export only; ParseBytes already rejected
	// unknown fields and bound violations.
	var doc scenario.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse scenario: %w", err)
	}

	defaults := scenario.DefaultDefaults()
	if defaultsPath != "" {
		defaults, err = scenario.LoadDefaults(defaultsPath)
		if err != nil {
			return err
		}
	}

	var st *store.Store
	if dbPath != "" {
		st, err = store.NewStore(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()

		if !force {
			if cached, err := st.LookupCached(sc.ID, sc.RunSeed); err == nil {
				fmt.Fprintf(os.Stderr, "cached run %s (use --force to recompute)\n", cached.RunID)
				return emit(cached, jsonOut)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := sim.DefaultConfig()
	cfg.Concurrency = concurrency
	cfg.IterationBudget = budget
	cfg.Timestamp = timestamp

	// All executions go through the shared run cache: concurrent requests
	// for one (scenario, seed) key collapse to a single computation.
	res, fromCache, err := sim.NewRunner(cfg, defaults).RunCached(ctx, sc, sim.NewCache())
	if err != nil {
		return err
	}
	if fromCache {
		fmt.Fprintf(os.Stderr, "cached run %s\n", res.RunID)
	}

	if st != nil {
		if saveErr := st.SaveRun(res); saveErr != nil {
			return saveErr
		}
		if auditErr := logging.LogAudit(st.DB(), logging.AuditEntry{
			Actor:     "simulate",
			Action:    "run",
			SubjectID: res.RunID,
			DetailJSON: fmt.Sprintf(`{"scenario_id":%q,"status":%q,"composite_hash":%q}`,
				res.ScenarioID, res.Status, res.CompositeHash),
		}); auditErr != nil {
			return auditErr
		}
	}
	if fixtureOut != "" {
		f := replay.Export("exported by simulate", doc, res)
		if err := replay.SaveFixture(fixtureOut, f); err != nil {
			return err
		}
	}
	return emit(res, jsonOut)
}

func emit(res *sim.Result, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Printf("run        %s\n", res.RunID)
	fmt.Printf("scenario   %s\n", res.ScenarioID)
	fmt.Printf("status     %s (%d/%d iterations failed)\n", res.Status, res.Failed, res.Iterations)
	fmt.Printf("content    %s\n", res.ContentHash)
	fmt.Printf("composite  %s\n", res.CompositeHash)
	for _, k := range []string{"revenue_total", "purchases_total", "prospects_total", "share_us_final", "adoption_final"} {
		if v, ok := res.Aggregate[k]; ok {
			fmt.Printf("%-24s %.4f\n", k, v)
		}
	}
	return nil
}

// #endregion run
