// Package store implements the two-tier SQL mirror described in the query
// pipeline design: a private, in-memory SQLite database that the API layer
// queries directly, and a long-term on-disk SQLite database that the
// garbage collector flushes aged-out records into. The two are joined only
// for the duration of a single request via SQLite's ATTACH DATABASE, never
// held attached across requests, per the attach/detach protocol.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store owns the in-memory SQLite mirror and knows the path of the on-disk
// long-term database. Both databases share the same schema (see
// migrations/), so a query written against one works unmodified against the
// other, and against the "disk.queries" alias once attached.
type Store struct {
	mem      *sql.DB
	diskPath string

	// attachMu serializes attach/detach cycles: ATTACH/DETACH are scoped to
	// a single sql.Conn, and only one disk attachment may be outstanding at
	// a time per the single-writer assumption of a single-node deployment.
	attachMu sync.Mutex
}

// Open creates the in-memory database, runs migrations against it, and
// ensures the on-disk database at diskPath exists with the same schema
// (creating and migrating it if this is a fresh install). diskPath may be
// empty to run with no long-term retention (maxHistory-only deployments).
func Open(ctx context.Context, diskPath string) (*Store, error) {
	mem, err := sql.Open("sqlite", "file:mem.db?mode=memory&cache=shared&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}
	// A shared in-memory database is destroyed once every connection closes;
	// pin exactly one idle connection so the schema and data survive between
	// requests for the lifetime of the process.
	mem.SetMaxOpenConns(1)
	mem.SetConnMaxLifetime(0)

	if err := migrateDB(mem); err != nil {
		mem.Close()
		return nil, fmt.Errorf("migrate in-memory database: %w", err)
	}

	s := &Store{mem: mem, diskPath: diskPath}

	if diskPath != "" {
		disk, err := sql.Open("sqlite", dsn(diskPath))
		if err != nil {
			return nil, fmt.Errorf("open disk database: %w", err)
		}
		if err := migrateDB(disk); err != nil {
			disk.Close()
			return nil, fmt.Errorf("migrate disk database: %w", err)
		}
		disk.Close()
	}

	return s, nil
}

func dsn(path string) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
}

func migrateDB(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	dbDriver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close releases the in-memory database. The on-disk database is opened and
// closed per-operation (via WithDisk) and has nothing persistent to close.
func (s *Store) Close() error {
	return s.mem.Close()
}

// Health pings the in-memory database.
func (s *Store) Health(ctx context.Context) error {
	return s.mem.PingContext(ctx)
}

// MemDB exposes the in-memory database for callers (query-log reads,
// suggestions) that only ever need the hot tier.
func (s *Store) MemDB() *sql.DB { return s.mem }

// HasDisk reports whether a long-term database is configured.
func (s *Store) HasDisk() bool { return s.diskPath != "" }

// WithDisk runs fn against a single connection to the in-memory database
// with the on-disk database ATTACHed as "disk", detaching unconditionally
// before returning. This is the only way callers should touch the on-disk
// database: it keeps the attach lifetime scoped to one request, matching
// the "attach is per-request, never held open" rule.
func (s *Store) WithDisk(ctx context.Context, fn func(conn *sql.Conn) error) error {
	if s.diskPath == "" {
		return fmt.Errorf("store: no on-disk database configured")
	}

	s.attachMu.Lock()
	defer s.attachMu.Unlock()

	conn, err := s.mem.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	attachSQL := fmt.Sprintf("ATTACH DATABASE '%s' AS disk", s.diskPath)
	if _, err := conn.ExecContext(ctx, attachSQL); err != nil {
		return fmt.Errorf("attach disk database: %w", err)
	}
	defer conn.ExecContext(context.Background(), "DETACH DATABASE disk")

	return fn(conn)
}

// GetVersion returns the current schema-independent config revision stored
// in config_version (0 on a fresh database). bumpVersion is the only writer
// that increments it, and nothing in this package calls it.
func (s *Store) GetVersion(ctx context.Context) (int64, error) {
	var version int64
	err := s.mem.QueryRowContext(ctx, "SELECT version FROM config_version WHERE id = 1").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}

func (s *Store) bumpVersion(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, "UPDATE config_version SET version = version + 1 WHERE id = 1")
	return err
}

// LogMessage records a diagnosis-style event (GC runs, rate-limit
// transitions worth surfacing in the UI) into the message table, mirroring
// the original database's "message" log used for admin-facing diagnostics.
func (s *Store) LogMessage(ctx context.Context, msgType, message string, blobs ...string) error {
	b := make([]interface{}, 5)
	for i := range b {
		if i < len(blobs) {
			b[i] = blobs[i]
		} else {
			b[i] = nil
		}
	}
	_, err := s.mem.ExecContext(ctx,
		`INSERT INTO message (timestamp, type, message, blob1, blob2, blob3, blob4, blob5)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		float64(time.Now().UnixNano())/1e9, msgType, message, b[0], b[1], b[2], b[3], b[4])
	return err
}
