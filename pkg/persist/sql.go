package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// SQLDialect represents the SQL dialect for query generation.
type SQLDialect int

const (
	// DialectSQLite uses SQLite syntax (? placeholders).
	DialectSQLite SQLDialect = iota
	// DialectPostgreSQL uses PostgreSQL syntax ($1, $2 placeholders).
	DialectPostgreSQL
	// DialectMySQL uses MySQL syntax (? placeholders).
	DialectMySQL
)

// SQLStorage is a Storage backed by a single database/sql table:
//
//	CREATE TABLE storectx_items (
//	    key TEXT PRIMARY KEY,
//	    value TEXT NOT NULL,
//	    updated_at BIGINT NOT NULL
//	);
//
// Calls run synchronously with an optional per-call timeout.
type SQLStorage struct {
	db        *sql.DB
	tableName string
	dialect   SQLDialect
	timeout   time.Duration
	ownsDB    bool
	closed    atomic.Bool
	logger    *slog.Logger
}

// SQLOption configures SQLStorage behavior.
type SQLOption func(*sqlConfig)

type sqlConfig struct {
	tableName string
	dialect   SQLDialect
	timeout   time.Duration
	logger    *slog.Logger
}

// WithSQLTableName sets the table name. Default: "storectx_items".
func WithSQLTableName(name string) SQLOption {
	return func(c *sqlConfig) {
		c.tableName = name
	}
}

// WithSQLDialect sets the SQL dialect. Default: DialectSQLite.
func WithSQLDialect(dialect SQLDialect) SQLOption {
	return func(c *sqlConfig) {
		c.dialect = dialect
	}
}

// WithSQLTimeout bounds each call. Zero (the default) means no timeout.
func WithSQLTimeout(d time.Duration) SQLOption {
	return func(c *sqlConfig) {
		c.timeout = d
	}
}

// WithSQLLogger sets the logger.
func WithSQLLogger(logger *slog.Logger) SQLOption {
	return func(c *sqlConfig) {
		c.logger = logger
	}
}

// NewSQLStorage wraps an open database. The caller keeps ownership of db.
func NewSQLStorage(db *sql.DB, opts ...SQLOption) *SQLStorage {
	cfg := &sqlConfig{
		tableName: "storectx_items",
		dialect:   DialectSQLite,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &SQLStorage{
		db:        db,
		tableName: cfg.tableName,
		dialect:   cfg.dialect,
		timeout:   cfg.timeout,
		logger:    cfg.logger,
	}
}

// OpenSQLite opens (creating if needed) a SQLite database at path, ensures
// the items table exists and returns a storage that owns the database.
func OpenSQLite(path string, opts ...SQLOption) (*SQLStorage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := "file:" + cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := NewSQLStorage(db, append([]SQLOption{WithSQLDialect(DialectSQLite)}, opts...)...)
	s.ownsDB = true
	if err := s.CreateTable(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create items table: %w", err)
	}

	s.logger.Info("sqlite storage opened", "path", cleanPath, "table", s.tableName)
	return s, nil
}

func (s *SQLStorage) ctx() (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(context.Background(), s.timeout)
	}
	return context.Background(), func() {}
}

// placeholder returns the placeholder syntax for the dialect.
func (s *SQLStorage) placeholder(n int) string {
	switch s.dialect {
	case DialectPostgreSQL:
		return fmt.Sprintf("$%d", n)
	default:
		return "?"
	}
}

// keyColumn returns the key column name, quoted where KEY is reserved.
func (s *SQLStorage) keyColumn() string {
	if s.dialect == DialectMySQL {
		return "`key`"
	}
	return "key"
}

func (s *SQLStorage) selectQuery() string {
	return fmt.Sprintf(`SELECT value FROM %s WHERE %s = %s`, s.tableName, s.keyColumn(), s.placeholder(1))
}

func (s *SQLStorage) deleteQuery() string {
	return fmt.Sprintf(`DELETE FROM %s WHERE %s = %s`, s.tableName, s.keyColumn(), s.placeholder(1))
}

func (s *SQLStorage) keysQuery() string {
	return fmt.Sprintf(`SELECT %[2]s FROM %[1]s ORDER BY %[2]s`, s.tableName, s.keyColumn())
}

func (s *SQLStorage) upsertQuery() string {
	switch s.dialect {
	case DialectPostgreSQL:
		return fmt.Sprintf(`
			INSERT INTO %s (key, value, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET
				value = EXCLUDED.value,
				updated_at = EXCLUDED.updated_at
		`, s.tableName)
	case DialectMySQL:
		return fmt.Sprintf(`
			INSERT INTO %s (%s, value, updated_at)
			VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE
				value = VALUES(value),
				updated_at = VALUES(updated_at)
		`, s.tableName, s.keyColumn())
	default:
		return fmt.Sprintf(`
			INSERT INTO %s (key, value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT (key) DO UPDATE SET
				value = excluded.value,
				updated_at = excluded.updated_at
		`, s.tableName)
	}
}

func (s *SQLStorage) createTableQuery() string {
	switch s.dialect {
	case DialectPostgreSQL:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at BIGINT NOT NULL
			)
		`, s.tableName)
	case DialectMySQL:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				%s VARCHAR(255) PRIMARY KEY,
				value LONGTEXT NOT NULL,
				updated_at BIGINT NOT NULL
			)
		`, s.tableName, s.keyColumn())
	default:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at INTEGER NOT NULL
			)
		`, s.tableName)
	}
}

// GetItem implements Storage.
func (s *SQLStorage) GetItem(key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, ErrClosed
	}
	ctx, cancel := s.ctx()
	defer cancel()

	var value string
	err := s.db.QueryRowContext(ctx, s.selectQuery(), key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// SetItem implements Storage.
func (s *SQLStorage) SetItem(key, value string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	ctx, cancel := s.ctx()
	defer cancel()

	_, err := s.db.ExecContext(ctx, s.upsertQuery(), key, value, time.Now().UTC().UnixMilli())
	return err
}

// RemoveItem implements Storage.
func (s *SQLStorage) RemoveItem(key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	ctx, cancel := s.ctx()
	defer cancel()

	_, err := s.db.ExecContext(ctx, s.deleteQuery(), key)
	return err
}

// Keys implements Lister.
func (s *SQLStorage) Keys() ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	ctx, cancel := s.ctx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, s.keysQuery())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// CreateTable creates the items table if it doesn't exist.
func (s *SQLStorage) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.createTableQuery())
	return err
}

// Close marks the storage closed and closes the database when OpenSQLite
// created it.
func (s *SQLStorage) Close() error {
	if s == nil || s.closed.Swap(true) {
		return nil
	}
	if s.ownsDB && s.db != nil {
		return s.db.Close()
	}
	return nil
}
