package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// WithTx runs fn inside a transaction, committing when fn returns nil and rolling back otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// encodeArtists stores an artist list as a JSON array in a TEXT column.
func encodeArtists(artists []string) (string, error) {
	if artists == nil {
		artists = []string{}
	}
	data, err := json.Marshal(artists)
	if err != nil {
		return "", fmt.Errorf("failed to encode artists: %w", err)
	}
	return string(data), nil
}

func decodeArtists(raw string) ([]string, error) {
	artists := []string{}
	if raw == "" {
		return artists, nil
	}
	if err := json.Unmarshal([]byte(raw), &artists); err != nil {
		return nil, fmt.Errorf("failed to decode artists: %w", err)
	}
	return artists, nil
}
