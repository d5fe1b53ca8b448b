package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to runs.db")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	decisions := flag.String("decisions", "", "show decision history for a scenario ID")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db runs.db [--last N] [--run id] [--decisions scenario-id] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	switch {
	case *runID != "":
		err = runDetailMode(st, *runID, *jsonOut)
	case *decisions != "":
		err = runDecisionMode(st, *decisions, *jsonOut)
	default:
		err = runListMode(st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID         string `json:"run_id"`
	ScenarioID    string `json:"scenario_id"`
	Status        string `json:"status"`
	Iterations    int    `json:"iterations"`
	Failed        int    `json:"failed"`
	CompositeHash string `json:"composite_hash"`
	CreatedAt     string `json:"created_at"`
}

func runListMode(st *store.Store, last int, jsonOut bool) error {
	rows, err := st.DB().Query(`
		SELECT run_id, scenario_id, status, iterations, failed, composite_hash, created_at
		FROM simulation_runs ORDER BY created_at DESC LIMIT ?`, last)
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []listRow
	for rows.Next() {
		var r listRow
		if err := rows.Scan(&r.RunID, &r.ScenarioID, &r.Status, &r.Iterations, &r.Failed, &r.CompositeHash, &r.CreatedAt); err != nil {
			return fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	fmt.Printf("%-36s  %-16s  %-15s  %5s  %4s  %s\n", "RUN", "SCENARIO", "STATUS", "ITERS", "FAIL", "CREATED")
	for _, r := range out {
		fmt.Printf("%-36s  %-16s  %-15s  %5d  %4d  %s\n",
			r.RunID, r.ScenarioID, r.Status, r.Iterations, r.Failed, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(st *store.Store, runID string, jsonOut bool) error {
	res, err := st.GetRun(runID)
	if err != nil {
		return err
	}
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Printf("run        %s\n", res.RunID)
	fmt.Printf("scenario   %s\n", res.ScenarioID)
	fmt.Printf("seed       %d\n", res.RunSeed)
	fmt.Printf("status     %s (%d/%d iterations failed)\n", res.Status, res.Failed, res.Iterations)
	fmt.Printf("versions   %v\n", res.ModelVersions)
	fmt.Printf("content    %s\n", res.ContentHash)
	fmt.Printf("composite  %s\n", res.CompositeHash)
	fmt.Println("aggregate:")
	for _, line := range aggregateLines(res.Aggregate) {
		fmt.Printf("  %s\n", line)
	}
	return nil
}

func aggregateLines(agg map[string]float64) []string {
	keys := make([]string, 0, len(agg))
	for k := range agg {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%-28s %.6f", k, agg[k]))
	}
	return lines
}

// #endregion detail-mode

// #region decision-mode

func runDecisionMode(st *store.Store, scenarioID string, jsonOut bool) error {
	history, err := st.DecisionHistory(scenarioID)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("no decisions recorded for scenario %s", scenarioID)
	}
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}
	for _, rec := range history {
		marker := " "
		if rec.Supersedes != "" {
			marker = "^"
		}
		fmt.Printf("%s %-36s  %-5s  composite %6.2f  confidence %.2f  run %s\n",
			marker, rec.ID, rec.Verdict, rec.Composite, rec.Confidence, rec.RunID)
		if rec.Supersedes != "" {
			fmt.Printf("  supersedes %s\n", rec.Supersedes)
		}
	}
	return nil
}

// #endregion decision-mode
