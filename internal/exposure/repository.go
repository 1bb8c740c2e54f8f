package exposure

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store persists the document revision history. Saves append a new
// revision; loading takes the newest.
type Store interface {
	SaveRevision(ctx context.Context, cfg *Config) (revisionID string, err error)
	LoadLatest(ctx context.Context) (*Config, string, error)
}

// SQLiteStore implements Store over the config_revisions table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed revision store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// SaveRevision appends the document as a new revision and returns its
// generated ID.
func (s *SQLiteStore) SaveRevision(ctx context.Context, cfg *Config) (string, error) {
	document, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encoding config document: %w", err)
	}

	revisionID := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO config_revisions (revision, document, created_at) VALUES (?, ?, ?)",
		revisionID,
		string(document),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("inserting config revision: %w", err)
	}
	return revisionID, nil
}

// LoadLatest returns the newest revision's document, normalized.
// Returns ErrNoRevisions when the history is empty.
func (s *SQLiteStore) LoadLatest(ctx context.Context) (*Config, string, error) {
	var revisionID, document string
	err := s.db.QueryRowContext(ctx,
		"SELECT revision, document FROM config_revisions ORDER BY rowid DESC LIMIT 1",
	).Scan(&revisionID, &document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNoRevisions
	}
	if err != nil {
		return nil, "", fmt.Errorf("querying latest revision: %w", err)
	}

	cfg, err := DecodeConfig([]byte(document))
	if err != nil {
		return nil, "", fmt.Errorf("decoding revision %s: %w", revisionID, err)
	}
	return cfg, revisionID, nil
}
