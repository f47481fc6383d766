package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nongnai/nongnai/internal/executor"
)

// ExecutionStore is the SQLite-backed archive of terminal execution results.
// The executor's in-memory history stays authoritative for the running
// process; this store survives restarts and feeds the admin surface.
type ExecutionStore struct {
	db *DB
}

func NewExecutionStore(db *DB) *ExecutionStore {
	return &ExecutionStore{db: db}
}

// SaveExecution archives one terminal result. Results and errors are stored
// as JSON.
func (s *ExecutionStore) SaveExecution(ctx context.Context, r *executor.Result) error {
	id := r.ID
	if id == "" {
		id = "exec_" + uuid.New().String()
	}
	resultsJSON, err := json.Marshal(r.Results)
	if err != nil {
		return fmt.Errorf("execution save: marshal results: %w", err)
	}
	errorsJSON, err := json.Marshal(r.Errors)
	if err != nil {
		return fmt.Errorf("execution save: marshal errors: %w", err)
	}
	var completed *string
	var durationMS *int64
	if r.CompletedAt != nil {
		c := r.CompletedAt.UTC().Format(time.RFC3339Nano)
		completed = &c
		durationMS = r.ExecutionTimeMS()
	}
	_, err = s.db.SQLDB().ExecContext(ctx,
		`INSERT OR REPLACE INTO executions
		 (id, intent, status, started_at, completed_at, duration_ms, results, errors, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.Intent, string(r.Status),
		r.StartedAt.UTC().Format(time.RFC3339Nano), completed, durationMS,
		string(resultsJSON), string(errorsJSON),
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("execution save: %w", err)
	}
	return nil
}

// Recent returns up to limit archived results, most recent last. A
// non-positive limit returns everything.
func (s *ExecutionStore) Recent(ctx context.Context, limit int) ([]executor.Result, error) {
	query := `SELECT id, intent, status, started_at, completed_at, results, errors
	          FROM executions ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.SQLDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executions recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []executor.Result
	for rows.Next() {
		var id, intent, status, startedAt, resultsJSON, errorsJSON string
		var completedAt *string
		if err := rows.Scan(&id, &intent, &status, &startedAt, &completedAt, &resultsJSON, &errorsJSON); err != nil {
			return nil, fmt.Errorf("executions scan: %w", err)
		}
		r := executor.Result{ID: id, Intent: intent, Status: executor.Status(status)}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		if completedAt != nil {
			t, err := time.Parse(time.RFC3339Nano, *completedAt)
			if err == nil {
				r.CompletedAt = &t
			}
		}
		_ = json.Unmarshal([]byte(resultsJSON), &r.Results)
		_ = json.Unmarshal([]byte(errorsJSON), &r.Errors)
		if r.Errors == nil {
			r.Errors = []string{}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// DESC query, most-recent-last contract.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// CountByStatus reports how many archived executions ended in each status.
func (s *ExecutionStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.SQLDB().QueryContext(ctx,
		`SELECT status, COUNT(*) FROM executions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("executions count: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("executions count scan: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}
