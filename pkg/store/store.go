package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

//go:embed migration/*.sql
var migrationFiles embed.FS

var (
	// ErrEmptyQuery is returned by lookups called without any criteria
	ErrEmptyQuery = errors.New("empty query")
	// ErrNoIdentity is returned by EnsureHost when neither IPv4 nor IPv6 is set
	ErrNoIdentity = errors.New("host needs an ipv4 or ipv6 address")
	// ErrDuplicateHost is returned by InsertHost when the address is already recorded
	ErrDuplicateHost = errors.New("host already exists")
)

// DefaultPath is the database file used when none is configured
const DefaultPath = "interceptor.db"

// Store is the SQLite database of discovered hosts, services and credentials
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path. Call InitSchema
// before first use.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// InitSchema creates the tables and indexes if they do not exist yet
func (s *Store) InitSchema(ctx context.Context) error {
	schema, err := migrationFiles.ReadFile("migration/001_initial.sql")
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	_, err = s.db.ExecContext(ctx, string(schema))
	if err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Session returns a dedicated connection. Concurrent workers each take their
// own session and close it when done.
func (s *Store) Session(ctx context.Context) (*Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	return &Session{conn: conn}, nil
}

// Session is one connection to the store. It is not safe for concurrent use.
type Session struct {
	conn *sql.Conn
}

// Close returns the connection to the pool
func (s *Session) Close() error {
	return s.conn.Close()
}

// Clear deletes every credential, service and host
func (s *Session) Clear(ctx context.Context) error {
	for _, table := range []string{"credentials", "services", "hosts"} {
		if _, err := s.conn.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
