package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// NewSQLite opens a single-file SQLite database for small deployments.
// SQLite serialises writers, so the pool is pinned to one connection.
func NewSQLite(path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	return open("sqlite", dsn, func(db *sqlx.DB) {
		db.SetMaxOpenConns(1)
	})
}
