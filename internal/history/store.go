package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"api-test-generator/internal/logger"
)

// Entry kinds
const (
	KindGenerate = "generate"
	KindExecute  = "execute"
)

const (
	defaultLimit = 20
	maxLimit     = 500
)

// Entry is one recorded generation or execution
type Entry struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	ClassName  string    `json:"className"`
	Method     string    `json:"method"`
	Endpoint   string    `json:"endpoint"`
	Status     string    `json:"status"`
	Success    bool      `json:"success"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store records generations and executions
type Store interface {
	Record(ctx context.Context, e Entry) error
	// Recent returns up to limit entries, newest first
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// SQLStore is a Store backed by database/sql
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	log     *zap.Logger
	now     func() time.Time
}

// Open connects to the database and creates the history table if needed.
// driver is one of sqlite, postgres, mysql or sqlserver.
func Open(ctx context.Context, driver, dsn string, log *zap.Logger) (*SQLStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if driver == "sqlite" {
		// a single connection serializes writers
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	s := &SQLStore{db: db, dialect: d, log: logger.OrNop(log), now: time.Now}
	if _, err := db.ExecContext(ctx, d.createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}
	s.log.Info("History store ready", zap.String("driver", driver))
	return s, nil
}

// Record inserts the entry, filling in ID and CreatedAt when unset
func (s *SQLStore) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, s.dialect.insert(),
		e.ID, e.Kind, e.ClassName, e.Method, e.Endpoint, e.Status, e.Success, e.DurationMs, e.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record history entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries first. A non-positive limit means the
// default of 20; limits above 500 are capped.
func (s *SQLStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.recent, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.Kind, &e.ClassName, &e.Method, &e.Endpoint, &e.Status, &e.Success, &e.DurationMs, &created); err != nil {
			return nil, fmt.Errorf("failed to read history row: %w", err)
		}
		e.CreatedAt = time.UnixMilli(created).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}
