package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteDB is a shared handle for SQLiteStore namespaces.
type SQLiteDB struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLite opens (or creates) the database and runs migrations.
func OpenSQLite(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS ledger_kv (
		namespace  TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      BLOB NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now')),
		PRIMARY KEY (namespace, key)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return &SQLiteDB{db: db}, nil
}

// Namespace returns the KV view for one user.
func (s *SQLiteDB) Namespace(ns string) *SQLiteStore {
	return &SQLiteStore{parent: s, ns: ns}
}

func (s *SQLiteDB) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}

// SQLiteStore is one namespace of a SQLiteDB.
type SQLiteStore struct {
	parent *SQLiteDB
	ns     string
}

func (s *SQLiteStore) Get(key string) ([]byte, error) {
	var value []byte
	err := s.parent.db.QueryRow(`SELECT value FROM ledger_kv WHERE namespace = ? AND key = ?`, s.ns, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return value, err
}

// SetMany upserts all entries in one transaction.
func (s *SQLiteStore) SetMany(entries map[string][]byte) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()

	tx, err := s.parent.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for key, value := range entries {
		if _, err := tx.Exec(`INSERT INTO ledger_kv (namespace, key, value, updated_at)
			VALUES (?, ?, ?, strftime('%s','now'))
			ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			s.ns, key, value); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert %s: %w", key, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Clear() error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	_, err := s.parent.db.Exec(`DELETE FROM ledger_kv WHERE namespace = ?`, s.ns)
	return err
}

// Close is a no-op; the shared SQLiteDB owns the connection.
func (s *SQLiteStore) Close() error { return nil }
