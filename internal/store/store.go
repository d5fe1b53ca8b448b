package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/decision"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/sim"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/wtp"
)

// #region errors

// ErrNotFound marks a lookup miss.
var ErrNotFound = errors.New("not found")

// #endregion

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS simulation_runs (
	run_id             TEXT PRIMARY KEY,
	scenario_id        TEXT NOT NULL,
	run_seed           INTEGER NOT NULL,
	model_versions     TEXT NOT NULL,
	per_iteration_json TEXT NOT NULL,
	aggregate_json     TEXT NOT NULL,
	content_hash       TEXT NOT NULL,
	composite_hash     TEXT NOT NULL,
	status             TEXT NOT NULL,
	iterations         INTEGER NOT NULL,
	failed             INTEGER NOT NULL,
	logical_timestamp  INTEGER NOT NULL,
	created_at         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_simulation_runs_scenario
ON simulation_runs(scenario_id, run_seed);

CREATE TABLE IF NOT EXISTS scenario_cache (
	cache_key  TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES simulation_runs(run_id)
);

CREATE TABLE IF NOT EXISTS wtp_estimates (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	scenario_id   TEXT NOT NULL,
	run_id        TEXT,
	estimate_json TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS decision_records (
	record_id    TEXT PRIMARY KEY,
	scenario_id  TEXT NOT NULL,
	run_id       TEXT NOT NULL,
	record_json  TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	supersedes   TEXT,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	actor       TEXT NOT NULL,
	action      TEXT NOT NULL,
	subject_id  TEXT,
	detail_json TEXT,
	created_at  TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct

// Store persists runs, estimates and decision records in SQLite.
// decision_records and audit_log are append-only: nothing in this package
// issues UPDATE or DELETE against them.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion

// #region runs

// SaveRun persists a completed run and registers it in the scenario cache.
func (s *Store) SaveRun(res *sim.Result) error {
	versions, err := json.Marshal(res.ModelVersions)
	if err != nil {
		return fmt.Errorf("marshal versions: %w", err)
	}
	perIter, err := json.Marshal(res.PerIteration)
	if err != nil {
		return fmt.Errorf("marshal per-iteration metrics: %w", err)
	}
	aggregate, err := json.Marshal(res.Aggregate)
	if err != nil {
		return fmt.Errorf("marshal aggregate: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO simulation_runs
		(run_id, scenario_id, run_seed, model_versions, per_iteration_json,
		 aggregate_json, content_hash, composite_hash, status, iterations,
		 failed, logical_timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.ScenarioID, int64(res.RunSeed), string(versions),
		string(perIter), string(aggregate), res.ContentHash, res.CompositeHash,
		string(res.Status), res.Iterations, res.Failed, res.Timestamp, now,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	// Latest run for a (scenario, seed) key wins the cache slot.
	_, err = tx.Exec(`
		INSERT INTO scenario_cache (cache_key, run_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET run_id = excluded.run_id, created_at = excluded.created_at`,
		sim.CacheKey(res.ScenarioID, res.RunSeed), res.RunID, now,
	)
	if err != nil {
		return fmt.Errorf("cache run: %w", err)
	}
	return tx.Commit()
}

// GetRun loads one run by its ID.
func (s *Store) GetRun(runID string) (*sim.Result, error) {
	row := s.db.QueryRow(`
		SELECT run_id, scenario_id, run_seed, model_versions, per_iteration_json,
		       aggregate_json, content_hash, composite_hash, status, iterations,
		       failed, logical_timestamp
		FROM simulation_runs WHERE run_id = ?`, runID)
	return scanRun(row)
}

// LookupCached returns the cached run for (scenario, seed), or ErrNotFound.
func (s *Store) LookupCached(scenarioID string, runSeed uint64) (*sim.Result, error) {
	row := s.db.QueryRow(`
		SELECT r.run_id, r.scenario_id, r.run_seed, r.model_versions,
		       r.per_iteration_json, r.aggregate_json, r.content_hash,
		       r.composite_hash, r.status, r.iterations, r.failed,
		       r.logical_timestamp
		FROM scenario_cache c
		JOIN simulation_runs r ON r.run_id = c.run_id
		WHERE c.cache_key = ?`, sim.CacheKey(scenarioID, runSeed))
	return scanRun(row)
}

func scanRun(row *sql.Row) (*sim.Result, error) {
	var res sim.Result
	var seed int64
	var versions, perIter, aggregate, status string
	err := row.Scan(&res.RunID, &res.ScenarioID, &seed, &versions, &perIter,
		&aggregate, &res.ContentHash, &res.CompositeHash, &status,
		&res.Iterations, &res.Failed, &res.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	res.SchemaVersion = sim.ResultSchemaVersion
	res.RunSeed = uint64(seed)
	res.Status = sim.Status(status)
	if err := json.Unmarshal([]byte(versions), &res.ModelVersions); err != nil {
		return nil, fmt.Errorf("unmarshal versions: %w", err)
	}
	if err := json.Unmarshal([]byte(perIter), &res.PerIteration); err != nil {
		return nil, fmt.Errorf("unmarshal per-iteration metrics: %w", err)
	}
	if err := json.Unmarshal([]byte(aggregate), &res.Aggregate); err != nil {
		return nil, fmt.Errorf("unmarshal aggregate: %w", err)
	}
	return &res, nil
}

// #endregion

// #region estimates

// SaveEstimate persists a WTP estimate for a scenario.
func (s *Store) SaveEstimate(scenarioID, runID string, est *wtp.Estimate) error {
	data, err := json.Marshal(est)
	if err != nil {
		return fmt.Errorf("marshal estimate: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO wtp_estimates (scenario_id, run_id, estimate_json, created_at)
		VALUES (?, ?, ?, ?)`,
		scenarioID, runID, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert estimate: %w", err)
	}
	return nil
}

// LatestEstimate returns the newest estimate for a scenario, or ErrNotFound.
func (s *Store) LatestEstimate(scenarioID string) (*wtp.Estimate, error) {
	var data string
	err := s.db.QueryRow(`
		SELECT estimate_json FROM wtp_estimates
		WHERE scenario_id = ? ORDER BY id DESC LIMIT 1`, scenarioID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query estimate: %w", err)
	}
	var est wtp.Estimate
	if err := json.Unmarshal([]byte(data), &est); err != nil {
		return nil, fmt.Errorf("unmarshal estimate: %w", err)
	}
	return &est, nil
}

// #endregion

// #region decisions

// SaveDecision appends a decision record. Records are never updated in
// place; corrections arrive as new records with Supersedes set.
func (s *Store) SaveDecision(rec *decision.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO decision_records
		(record_id, scenario_id, run_id, record_json, content_hash, supersedes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ScenarioID, rec.RunID, string(data), rec.ContentHash,
		nullable(rec.Supersedes), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// GetDecision loads one record by ID.
func (s *Store) GetDecision(recordID string) (*decision.Record, error) {
	var data string
	err := s.db.QueryRow(`
		SELECT record_json FROM decision_records WHERE record_id = ?`, recordID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query decision: %w", err)
	}
	var rec decision.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal decision: %w", err)
	}
	return &rec, nil
}

// CurrentDecision returns the newest non-superseded record for a scenario,
// or ErrNotFound.
func (s *Store) CurrentDecision(scenarioID string) (*decision.Record, error) {
	var data string
	err := s.db.QueryRow(`
		SELECT record_json FROM decision_records d
		WHERE d.scenario_id = ?
		  AND NOT EXISTS (
			SELECT 1 FROM decision_records n WHERE n.supersedes = d.record_id
		  )
		ORDER BY d.rowid DESC LIMIT 1`, scenarioID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query decision: %w", err)
	}
	var rec decision.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal decision: %w", err)
	}
	return &rec, nil
}

// DecisionHistory lists every record for a scenario in append order.
// Ordering rides on rowid: created_at has one-second granularity, so two
// records appended within the same second would otherwise tie.
func (s *Store) DecisionHistory(scenarioID string) ([]decision.Record, error) {
	rows, err := s.db.Query(`
		SELECT record_json FROM decision_records
		WHERE scenario_id = ? ORDER BY rowid`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []decision.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		var rec decision.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal history: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion
