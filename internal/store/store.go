// Package store is the SQLite cache for scan results, keyed by scan root.
// The scan engine itself is stateless; caching is owned by the calling
// layer, which decides when to serve a cached table and when to invalidate.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jward/routemap/internal/resolve"
)

// Store is the SQLite data access layer for cached route tables.
type Store struct {
	db *sql.DB
}

// CachedScan is one root's cached route table plus its scan timestamp.
type CachedScan struct {
	Root      string
	ScannedAt time.Time
	Records   []resolve.RouteRecord
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS scans (
  id              INTEGER PRIMARY KEY,
  root            TEXT NOT NULL UNIQUE,
  scanned_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS routes (
  id              INTEGER PRIMARY KEY,
  scan_id         INTEGER NOT NULL REFERENCES scans(id),
  ordinal         INTEGER NOT NULL,
  verb            TEXT NOT NULL,
  path            TEXT NOT NULL,
  display_name    TEXT,
  decl_file       TEXT,
  decl_line       INTEGER,
  impl_file       TEXT,
  impl_line       INTEGER,
  client_name     TEXT
);

CREATE INDEX IF NOT EXISTS idx_routes_scan ON routes(scan_id);
CREATE INDEX IF NOT EXISTS idx_routes_path ON routes(path);
`

// SaveScan replaces the cached route table for root transactionally.
func (s *Store) SaveScan(root string, records []resolve.RouteRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteScanTx(tx, root); err != nil {
		return err
	}

	res, err := tx.Exec("INSERT INTO scans (root, scanned_at) VALUES (?, ?)", root, time.Now())
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	scanID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("scan id: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO routes
		(scan_id, ordinal, verb, path, display_name, decl_file, decl_line, impl_file, impl_line, client_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare route insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.Exec(scanID, i, r.Verb, r.Path, r.DisplayName,
			r.DeclFile, r.DeclLine, r.ImplFile, r.ImplLine, r.ClientName); err != nil {
			return fmt.Errorf("insert route %s: %w", r.Path, err)
		}
	}

	return tx.Commit()
}

// LoadScan returns the cached scan for root, or nil when none exists.
// Records come back in their saved order.
func (s *Store) LoadScan(root string) (*CachedScan, error) {
	var scanID int64
	var scannedAt time.Time
	err := s.db.QueryRow("SELECT id, scanned_at FROM scans WHERE root = ?", root).
		Scan(&scanID, &scannedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup scan: %w", err)
	}

	rows, err := s.db.Query(`SELECT verb, path, display_name, decl_file, decl_line,
		impl_file, impl_line, client_name
		FROM routes WHERE scan_id = ? ORDER BY ordinal`, scanID)
	if err != nil {
		return nil, fmt.Errorf("query routes: %w", err)
	}
	defer rows.Close()

	cached := &CachedScan{Root: root, ScannedAt: scannedAt}
	for rows.Next() {
		var r resolve.RouteRecord
		if err := rows.Scan(&r.Verb, &r.Path, &r.DisplayName, &r.DeclFile, &r.DeclLine,
			&r.ImplFile, &r.ImplLine, &r.ClientName); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		cached.Records = append(cached.Records, r)
	}
	return cached, rows.Err()
}

// InvalidateScan drops the cached route table for root. Removing a root
// that was never cached is a no-op.
func (s *Store) InvalidateScan(root string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteScanTx(tx, root); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteScanTx(tx *sql.Tx, root string) error {
	if _, err := tx.Exec("DELETE FROM routes WHERE scan_id IN (SELECT id FROM scans WHERE root = ?)", root); err != nil {
		return fmt.Errorf("delete routes: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM scans WHERE root = ?", root); err != nil {
		return fmt.Errorf("delete scan: %w", err)
	}
	return nil
}
