package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConfig contains configuration for the SQLite audit store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "scoperoot-audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore creates a SQLite audit store. It initializes the database
// schema and enables WAL mode if configured.
func NewSQLiteStore(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "audit.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("audit store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Append persists a decision record.
func (s *SQLiteStore) Append(ctx context.Context, record *Record) error {
	query := `
		INSERT INTO decisions (id, decided_at, tool, operation, path, allowed, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var toolVal interface{}
	if record.Tool != "" {
		toolVal = record.Tool
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.Time, toolVal, record.Operation,
		record.Path, record.Allowed, record.Reason,
	)
	if err != nil {
		return NewStorageError("sqlite", "append", err)
	}

	return nil
}

// Query retrieves decision records matching the filters, newest first.
func (s *SQLiteStore) Query(ctx context.Context, query *Query) ([]*Record, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT id, decided_at, tool, operation, path, allowed, reason FROM decisions"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY decided_at DESC"

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the number of records matching the filters.
func (s *SQLiteStore) Count(ctx context.Context, query *Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM decisions"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// DeleteBefore removes records older than the cutoff.
func (s *SQLiteStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM decisions WHERE decided_at < ?", cutoff)
	if err != nil {
		return 0, NewStorageError("sqlite", "delete_before", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, NewStorageError("sqlite", "delete_before", err)
	}
	return deleted, nil
}

// DeleteOverCount removes the oldest records until at most max remain.
func (s *SQLiteStore) DeleteOverCount(ctx context.Context, max int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM decisions WHERE id IN (
			SELECT id FROM decisions ORDER BY decided_at DESC LIMIT -1 OFFSET ?
		)
	`, max)
	if err != nil {
		return 0, NewStorageError("sqlite", "delete_over_count", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, NewStorageError("sqlite", "delete_over_count", err)
	}
	return deleted, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("audit store closed")
	return nil
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the clause without the "WHERE" keyword and the query arguments.
func buildWhereClause(query *Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.StartTime != nil {
		conditions = append(conditions, "decided_at >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		conditions = append(conditions, "decided_at <= ?")
		args = append(args, *query.EndTime)
	}
	if query.Tool != "" {
		conditions = append(conditions, "tool = ?")
		args = append(args, query.Tool)
	}
	if query.Reason != "" {
		conditions = append(conditions, "reason = ?")
		args = append(args, query.Reason)
	}
	if query.Allowed != nil {
		conditions = append(conditions, "allowed = ?")
		args = append(args, *query.Allowed)
	}

	whereClause := ""
	for i, condition := range conditions {
		if i > 0 {
			whereClause += " AND "
		}
		whereClause += condition
	}

	return whereClause, args
}

// scanRow scans a database row into a Record.
func scanRow(row *sql.Rows) (*Record, error) {
	var record Record
	var toolVal sql.NullString

	err := row.Scan(
		&record.ID, &record.Time, &toolVal, &record.Operation,
		&record.Path, &record.Allowed, &record.Reason,
	)
	if err != nil {
		return nil, err
	}

	if toolVal.Valid {
		record.Tool = toolVal.String
	}

	return &record, nil
}
