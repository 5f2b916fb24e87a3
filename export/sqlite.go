package export

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pevans/festa/record"
)

// SQLiteExport writes records into an articles table. Each Write replaces
// the table's contents; nothing is read back.
type SQLiteExport struct {
	db *sql.DB
}

// NewSQLiteExport opens (or creates) the database file at path.
func NewSQLiteExport(path string) (*SQLiteExport, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	exp := &SQLiteExport{db: db}
	if err := exp.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return exp, nil
}

func (e *SQLiteExport) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		title TEXT NOT NULL,
		category TEXT NOT NULL,
		date TEXT NOT NULL,
		url TEXT NOT NULL,
		source TEXT NOT NULL
	);
	`

	_, err := e.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (e *SQLiteExport) Close() error {
	return e.db.Close()
}

// Write replaces the table's rows with records in one transaction.
func (e *SQLiteExport) Write(records []record.Record) error {
	tx, err := e.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM articles`); err != nil {
		return fmt.Errorf("failed to clear articles: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO articles (title, category, date, url, source) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.Exec(r.Title, r.Category, r.Date, r.URL, string(r.Source)); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// WriteSQLite writes records to a database file at path.
func WriteSQLite(path string, records []record.Record) error {
	exp, err := NewSQLiteExport(path)
	if err != nil {
		return err
	}
	defer exp.Close()

	return exp.Write(records)
}
