package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mergex-backend/internal/db"
)

// GitHubAuth is a per-session GitHub credential row.
type GitHubAuth struct {
	SessionID   string
	GitHubToken string
	GitHubOwner string
	UpdatedAt   time.Time
}

// DatabaseStore stores GitHub authentication data in Postgres. It holds OAuth
// material only; review runs are never persisted.
type DatabaseStore struct {
	db *db.DB
}

func NewDatabaseStore(database *db.DB) *DatabaseStore {
	return &DatabaseStore{db: database}
}

func (s *DatabaseStore) SaveGitHubAuth(sessionID, token, owner string) error {
	_, err := s.db.Exec(`
		INSERT INTO github_auth (session_id, github_token, github_owner, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (session_id)
		DO UPDATE SET github_token = $2, github_owner = $3, updated_at = now()`,
		sessionID, token, owner)
	if err != nil {
		return fmt.Errorf("failed to save github auth: %w", err)
	}
	return nil
}

func (s *DatabaseStore) GetGitHubAuth(sessionID string) (*GitHubAuth, error) {
	row := s.db.QueryRow(`
		SELECT session_id, github_token, github_owner, updated_at
		FROM github_auth WHERE session_id = $1`, sessionID)
	var a GitHubAuth
	if err := row.Scan(&a.SessionID, &a.GitHubToken, &a.GitHubOwner, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get github auth: %w", err)
	}
	return &a, nil
}

func (s *DatabaseStore) DeleteGitHubAuth(sessionID string) error {
	if _, err := s.db.Exec(`DELETE FROM github_auth WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to delete github auth: %w", err)
	}
	return nil
}
