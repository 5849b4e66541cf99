package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

// DB wraps the Postgres connection used for GitHub auth storage.
type DB struct {
	*sql.DB
}

// New opens and pings a Postgres connection. When the first ping fails and
// the connection string carries no sslmode, it retries once with
// sslmode=disable to cover local setups.
func New(connectionString string) (*DB, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("database connection string is required")
	}
	sqlDB, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		if !strings.Contains(strings.ToLower(connectionString), "sslmode") {
			sqlDB.Close()
			sep := "?"
			if strings.Contains(connectionString, "?") {
				sep = "&"
			}
			sqlDB, err = sql.Open("postgres", connectionString+sep+"sslmode=disable")
			if err != nil {
				return nil, fmt.Errorf("failed to open database: %w", err)
			}
			if err := sqlDB.Ping(); err != nil {
				sqlDB.Close()
				return nil, fmt.Errorf("failed to ping database: %w", err)
			}
		} else {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
	}
	return &DB{DB: sqlDB}, nil
}

// EnsureSchema creates the github_auth table when missing.
func (d *DB) EnsureSchema() error {
	_, err := d.Exec(`
		CREATE TABLE IF NOT EXISTS github_auth (
			session_id   TEXT PRIMARY KEY,
			github_token TEXT NOT NULL,
			github_owner TEXT NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
