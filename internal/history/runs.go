package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const runColumns = "id, session_id, owner, card_count, favorite, command_count, status, error_message, output_path, output_bytes, created_at, finished_at"

// Begin records a running run with its command titles in pending state.
func (s *Store) Begin(ctx context.Context, start RunStart) (*Run, error) {
	if strings.TrimSpace(start.SessionID) == "" {
		return nil, errors.New("session id is required")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (session_id, owner, card_count, favorite, command_count, status, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		start.SessionID,
		nullableString(start.Owner),
		start.CardCount,
		nullableString(start.Favorite),
		len(start.Commands),
		StatusRunning,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	for i, title := range start.Commands {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_commands (run_id, position, title, state) VALUES (?, ?, ?, ?)`,
			id, i, title, "pending",
		); err != nil {
			return nil, fmt.Errorf("insert command %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}
	return s.Get(ctx, id)
}

// Finish stores the outcome of a running run.
func (s *Store) Finish(ctx context.Context, id int64, outcome Outcome) error {
	status := StatusCompleted
	var message any
	if outcome.Err != nil {
		status = StatusFailed
		message = outcome.Err.Error()
	}
	finished := time.Now().UTC().Format(time.RFC3339Nano)

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin finish tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx,
			`UPDATE runs SET status = ?, error_message = ?, output_path = ?, output_bytes = ?, finished_at = ?
             WHERE id = ? AND status = ?`,
			status, message, nullableString(outcome.OutputPath), outcome.OutputBytes, finished,
			id, StatusRunning,
		)
		if err != nil {
			return fmt.Errorf("update run: %w", err)
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return fmt.Errorf("run %d is not running", id)
		}
		for _, cmd := range outcome.Commands {
			if _, err := tx.ExecContext(ctx,
				`UPDATE run_commands SET state = ?, elapsed_ms = ? WHERE run_id = ? AND position = ?`,
				cmd.State, cmd.Elapsed.Milliseconds(), id, cmd.Position,
			); err != nil {
				return fmt.Errorf("update command %d: %w", cmd.Position, err)
			}
		}
		return tx.Commit()
	})
}

// Get fetches a run by identifier. It returns nil when the run does not exist.
func (s *Store) Get(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs first, optionally filtered by status. A
// non-positive limit returns every match.
func (s *Store) List(ctx context.Context, limit int, statuses ...Status) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	args := make([]any, 0, len(statuses)+1)
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Commands returns the recorded commands of a run in queue order.
func (s *Store) Commands(ctx context.Context, id int64) ([]CommandRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, title, state, elapsed_ms FROM run_commands WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	defer rows.Close()

	var records []CommandRecord
	for rows.Next() {
		var (
			record    CommandRecord
			elapsedMS int64
		)
		if err := rows.Scan(&record.Position, &record.Title, &record.State, &elapsedMS); err != nil {
			return nil, err
		}
		record.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		records = append(records, record)
	}
	return records, rows.Err()
}

// Stats returns a count of runs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM runs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("run stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var (
			status Status
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// MarkAbandoned fails every run still marked running. It is called at
// startup, when no run of this process can be in flight.
func (s *Store) MarkAbandoned(ctx context.Context) (int64, error) {
	finished := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, error_message = ?, finished_at = ? WHERE status = ?`,
		StatusFailed, AbandonedReason, finished, StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("mark abandoned: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes finished runs and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM runs WHERE status != ?`, StatusRunning)
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return res.RowsAffected()
}
