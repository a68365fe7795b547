package store

import (
	"context"
	"time"
)

// StoredSession is a persisted session row: the opaque bearer token and
// the serialized user summary for one chat.
type StoredSession struct {
	ChatID   int64
	Token    string
	UserJSON []byte
}

// SaveSession upserts the token and user summary for a chat as one write.
func (db *DB) SaveSession(ctx context.Context, chatID int64, token string, userJSON []byte) error {
	now := time.Now()
	_, err := db.ExecContext(ctx, `
		INSERT INTO sessions (chat_id, token, user_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			token = excluded.token,
			user_json = excluded.user_json,
			updated_at = excluded.updated_at`,
		chatID, token, string(userJSON), now, now)
	return err
}

// DeleteSession removes the stored session for a chat. Deleting a session
// that does not exist is not an error.
func (db *DB) DeleteSession(ctx context.Context, chatID int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE chat_id = ?`, chatID)
	return err
}

// LoadSessions reads every persisted session; called once at startup to
// rehydrate logins across restarts.
func (db *DB) LoadSessions(ctx context.Context) ([]StoredSession, error) {
	rows, err := db.QueryContext(ctx, `SELECT chat_id, token, user_json FROM sessions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []StoredSession
	for rows.Next() {
		var s StoredSession
		var userJSON string
		if err := rows.Scan(&s.ChatID, &s.Token, &userJSON); err != nil {
			return nil, err
		}
		s.UserJSON = []byte(userJSON)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
