package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"vidscribe/internal/config"
)

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// timeLayout is fixed width so stored timestamps sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrAmbiguousID is returned when an id prefix matches more than one run.
var ErrAmbiguousID = errors.New("run id prefix is ambiguous")

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open initializes or connects to the run database at cfg.Store.Path.
func Open(cfg *config.Config) (*Store, error) {
	return OpenPath(cfg.Store.Path)
}

// OpenPath opens the database at dbPath, creating it when missing.
func OpenPath(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, errors.New("run store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create run store directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin records a new running run. StartedAt defaults to now.
func (s *Store) Begin(ctx context.Context, run Run) (*Run, error) {
	if strings.TrimSpace(run.ID) == "" {
		return nil, errors.New("run id is required")
	}
	if strings.TrimSpace(run.VideoPath) == "" {
		return nil, errors.New("video path is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (
            id, video_path, transcript_path, output_dir, status, started_at
        ) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.VideoPath,
		nullableString(run.TranscriptPath),
		nullableString(run.OutputDir),
		StatusRunning,
		run.StartedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return s.Get(ctx, run.ID)
}

// Complete marks a run completed with its outcome.
func (s *Store) Complete(ctx context.Context, id string, outcome Outcome) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE runs
         SET status = ?, manifest_path = ?, title = ?, duration_seconds = ?,
             candidates = ?, selected = ?, segments = ?, gaps = ?,
             error_message = NULL, finished_at = ?
         WHERE id = ?`,
		StatusCompleted,
		nullableString(outcome.ManifestPath),
		nullableString(outcome.Title),
		outcome.Duration,
		outcome.Candidates,
		outcome.Selected,
		outcome.Segments,
		outcome.Gaps,
		time.Now().UTC().Format(timeLayout),
		id,
	)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	return requireRow(res, id)
}

// Fail marks a run failed or rejected with a message.
func (s *Store) Fail(ctx context.Context, id string, status Status, message string) error {
	if status != StatusFailed && status != StatusRejected {
		return fmt.Errorf("invalid failure status %q", status)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		status,
		nullableString(message),
		time.Now().UTC().Format(timeLayout),
		id,
	)
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// Get fetches a run by id. It returns nil when the run does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
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

// Find resolves a full id or unique id prefix. It returns nil when nothing matches.
func (s *Store) Find(ctx context.Context, prefix string) (*Run, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, errors.New("run id is required")
	}
	if run, err := s.Get(ctx, prefix); err != nil || run != nil {
		return run, err
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escaped+"%")
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	defer rows.Close()
	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
}

// List returns the most recent runs first, filtered by status when given.
// A limit <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int, statuses ...Status) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	args := make([]any, 0, len(statuses)+1)
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY started_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
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
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

const runColumns = "id, video_path, transcript_path, output_dir, manifest_path, status, title, duration_seconds, candidates, selected, segments, gaps, error_message, started_at, finished_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run            Run
		transcriptPath sql.NullString
		outputDir      sql.NullString
		manifestPath   sql.NullString
		statusStr      string
		title          sql.NullString
		errorMessage   sql.NullString
		startedRaw     string
		finishedRaw    sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.VideoPath,
		&transcriptPath,
		&outputDir,
		&manifestPath,
		&statusStr,
		&title,
		&run.Duration,
		&run.Candidates,
		&run.Selected,
		&run.Segments,
		&run.Gaps,
		&errorMessage,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	run.TranscriptPath = transcriptPath.String
	run.OutputDir = outputDir.String
	run.ManifestPath = manifestPath.String
	run.Status = Status(statusStr)
	run.Title = title.String
	run.ErrorMessage = errorMessage.String
	if started, err := time.Parse(timeLayout, startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := time.Parse(timeLayout, finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
