package store

import (
	"context"
	"database/sql"
	"time"
)

// Preferences are per-chat search defaults.
type Preferences struct {
	ChatID      int64
	DefaultCity string
}

// GetPreferences returns preferences for a chat, or zero-value defaults
// when none were saved yet.
func (db *DB) GetPreferences(ctx context.Context, chatID int64) (*Preferences, error) {
	row := db.QueryRowContext(ctx, `
		SELECT chat_id, default_city
		FROM preferences
		WHERE chat_id = ?`, chatID)

	var p Preferences
	err := row.Scan(&p.ChatID, &p.DefaultCity)
	if err != nil {
		if err == sql.ErrNoRows {
			return &Preferences{ChatID: chatID}, nil
		}
		return nil, err
	}
	return &p, nil
}

// UpsertPreferences creates or updates preferences for a chat.
func (db *DB) UpsertPreferences(ctx context.Context, p *Preferences) error {
	now := time.Now()
	_, err := db.ExecContext(ctx, `
		INSERT INTO preferences (chat_id, default_city, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			default_city = excluded.default_city,
			updated_at = excluded.updated_at`,
		p.ChatID, p.DefaultCity, now, now)
	return err
}
