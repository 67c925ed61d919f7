package journal

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db      *sql.DB
	closed  bool
	writeMu sync.Mutex
}

// NewSQLiteStore creates a new SQLite journal store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Configure SQLite for concurrent access
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=60000", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		grp TEXT NOT NULL,
		server TEXT NOT NULL,
		source_key TEXT NOT NULL,
		target_key TEXT NOT NULL,
		size INTEGER NOT NULL,
		status TEXT NOT NULL,
		detail TEXT,
		dry_run INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_outcomes_status ON outcomes(status);
	CREATE INDEX IF NOT EXISTS idx_outcomes_grp ON outcomes(grp);
	`

	_, err := s.db.Exec(query)
	return err
}

// Append inserts one outcome record with retry on SQLITE_BUSY
func (s *SQLiteStore) Append(record *Record) error {
	if s.closed {
		return fmt.Errorf("journal store is closed")
	}

	// Serialize writes to avoid SQLITE_BUSY from multiple concurrent writers
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.retryOnBusy(func() error {
		return s.appendInternal(record)
	})
}

func (s *SQLiteStore) appendInternal(record *Record) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO outcomes
	(grp, server, source_key, target_key, size, status, detail, dry_run, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		record.Group,
		record.Server,
		record.SourceKey,
		record.TargetKey,
		record.Size,
		record.Status,
		record.Detail,
		record.DryRun,
		record.CreatedAt,
	)
	return err
}

// ListFailed returns all failed outcome records, oldest first
func (s *SQLiteStore) ListFailed() ([]*Record, error) {
	if s.closed {
		return nil, fmt.Errorf("journal store is closed")
	}

	query := `
	SELECT grp, server, source_key, target_key, size, status, detail, dry_run, created_at
	FROM outcomes WHERE status = ?
	ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.Query(query, StatusFailed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record

	for rows.Next() {
		var record Record
		var detail sql.NullString

		err := rows.Scan(
			&record.Group,
			&record.Server,
			&record.SourceKey,
			&record.TargetKey,
			&record.Size,
			&record.Status,
			&detail,
			&record.DryRun,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if detail.Valid {
			record.Detail = detail.String
		}

		records = append(records, &record)
	}

	return records, rows.Err()
}

// retryOnBusy retries the operation if SQLite is busy
func (s *SQLiteStore) retryOnBusy(operation func() error) error {
	const maxRetries = 10
	baseDelay := 50 * time.Millisecond

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = operation()
		if err == nil {
			return nil
		}

		if !isSQLiteBusyError(err) {
			return err
		}

		time.Sleep(baseDelay * time.Duration(1<<uint(attempt)))
	}

	return err
}

// isSQLiteBusyError checks if the error is a SQLite busy error
func isSQLiteBusyError(err error) bool {
	if err == nil {
		return false
	}
	errorStr := err.Error()
	return strings.Contains(errorStr, "database is locked") ||
		strings.Contains(errorStr, "SQLITE_BUSY")
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.closed = true
	return s.db.Close()
}
