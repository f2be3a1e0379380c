package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Record is the stored outcome of one (case, variant) invocation
type Record struct {
	RunID      string
	Test       string
	Artifact   string
	Suite      string
	Case       string
	Variant    string
	State      string
	Message    string
	Duration   time.Duration
	RecordedAt time.Time
}

// RunSummary aggregates the records of one run
type RunSummary struct {
	RunID     string
	StartedAt time.Time
	Total     int
	Failed    int
}

// Record stores r, replacing an earlier record of the same artifact from the
// same test in the same run.
func (s *Store) Record(ctx context.Context, r Record) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("ledger not initialized")
	}
	if r.RunID == "" || r.Artifact == "" {
		return fmt.Errorf("record requires run id and artifact")
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO results (run_id, test_name, artifact, suite, case_name, variant, state, message, duration_ms, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Test, r.Artifact, r.Suite, r.Case, r.Variant, r.State, r.Message,
		r.Duration.Milliseconds(), r.RecordedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("record %s: %w", r.Artifact, err)
	}
	return nil
}

const recordColumns = `run_id, test_name, artifact, suite, case_name, variant, state, message, duration_ms, recorded_at`

// RunResults returns the records of one run ordered by artifact name
func (s *Store) RunResults(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM results WHERE run_id = ? ORDER BY artifact, test_name`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}
	return scanRecords(rows)
}

// Latest returns the most recent record of every artifact
func (s *Store) Latest(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+recordColumns+` FROM results
WHERE id IN (SELECT MAX(id) FROM results GROUP BY artifact, test_name)
ORDER BY artifact, test_name`)
	if err != nil {
		return nil, fmt.Errorf("query latest results: %w", err)
	}
	return scanRecords(rows)
}

// Runs summarizes every run, newest first
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, MIN(recorded_at), COUNT(*), SUM(CASE WHEN state != ? THEN 1 ELSE 0 END)
FROM results
GROUP BY run_id
ORDER BY MIN(recorded_at) DESC, MAX(id) DESC`, StateSuccess)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			sum     RunSummary
			started int64
		)
		if err := rows.Scan(&sum.RunID, &started, &sum.Total, &sum.Failed); err != nil {
			return nil, err
		}
		sum.StartedAt = time.Unix(0, started)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// LatestRunID returns the most recently started run, or "" for an empty ledger
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	var runID string
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id FROM results ORDER BY recorded_at DESC, id DESC LIMIT 1`).Scan(&runID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query latest run: %w", err)
	}
	return runID, nil
}

// StateSuccess is the state string of a passing invocation
const StateSuccess = "Success"

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r          Record
			durationMs int64
			recorded   int64
		)
		if err := rows.Scan(&r.RunID, &r.Test, &r.Artifact, &r.Suite, &r.Case, &r.Variant,
			&r.State, &r.Message, &durationMs, &recorded); err != nil {
			return nil, err
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.RecordedAt = time.Unix(0, recorded)
		out = append(out, r)
	}
	return out, rows.Err()
}
