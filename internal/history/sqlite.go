package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteBackend keeps named lists in a SQLite database.
type SQLiteBackend struct {
	db   *sql.DB
	list string
}

// OpenSQLite opens (and migrates) the database at path and binds the backend
// to the named list.
func OpenSQLite(path, list string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteBackend{db: db, list: list}, nil
}

func migrate(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS history (
			list TEXT NOT NULL,
			position INTEGER NOT NULL,
			entry TEXT NOT NULL,
			PRIMARY KEY (list, position)
		);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("history db migration failed: %w", err)
		}
	}
	return nil
}

// Close releases the database.
func (b *SQLiteBackend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *SQLiteBackend) Read() ([]string, error) {
	rows, err := b.db.Query(`SELECT entry FROM history WHERE list = ? ORDER BY position ASC`, b.list)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Write replaces the list in one transaction.
func (b *SQLiteBackend) Write(entries []string) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("starting history tx: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM history WHERE list = ?`, b.list); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clearing history: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO history (list, position, entry) VALUES (?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("preparing history insert: %w", err)
	}
	defer stmt.Close()
	for i, e := range entries {
		if _, err := stmt.Exec(b.list, i, e); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("inserting history: %w", err)
		}
	}
	return tx.Commit()
}
