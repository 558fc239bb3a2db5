package datarecording

import (
	"database/sql"
	"fmt"
)

// SQLiteReader reads back what a SQLiteWriter recorded.
type SQLiteReader struct {
	*sql.DB
}

// NewReader opens the database file at filename.
func NewReader(filename string) (*SQLiteReader, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	return &SQLiteReader{DB: db}, nil
}

// ListTables returns the names of the tables in the database, sorted.
func (r *SQLiteReader) ListTables() ([]string, error) {
	rows, err := r.Query(
		"SELECT name FROM sqlite_master WHERE type='table' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		tables = append(tables, name)
	}

	return tables, rows.Err()
}

// CountRows returns the number of rows in a table.
func (r *SQLiteReader) CountRows(tableName string) (int, error) {
	var n int

	err := r.QueryRow("SELECT COUNT(*) FROM " + tableName).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting rows of %s: %w", tableName, err)
	}

	return n, nil
}
