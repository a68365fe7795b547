package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"innkeeper/internal/store"
)

// User is the summary of the logged-in account, decoded from the login
// response and persisted alongside the token.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"-"`
	// RoleName keeps the raw server string for serialization; Role is the
	// parsed enum used everywhere else.
	RoleName string `json:"role"`
	HotelID  *int64 `json:"hotelId,omitempty"`
}

// Session is the current authentication state for one chat.
type Session struct {
	Token string
	User  User
}

// Store is the explicit session store: writers are limited to login,
// logout and server-signalled invalidation; everything else only reads
// the current value. State is persisted so logins survive restarts.
type Store struct {
	mu       sync.RWMutex
	db       *store.DB
	sessions map[int64]*Session
}

// NewStore builds a store and rehydrates persisted sessions.
func NewStore(ctx context.Context, db *store.DB) (*Store, error) {
	s := &Store{
		db:       db,
		sessions: make(map[int64]*Session),
	}

	persisted, err := db.LoadSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	for _, row := range persisted {
		var u User
		if err := json.Unmarshal(row.UserJSON, &u); err != nil {
			// A row we cannot decode is a stale session from an older
			// build; drop it rather than fail startup.
			_ = db.DeleteSession(ctx, row.ChatID)
			continue
		}
		role, err := ParseRole(u.RoleName)
		if err != nil {
			_ = db.DeleteSession(ctx, row.ChatID)
			continue
		}
		u.Role = role
		s.sessions[row.ChatID] = &Session{Token: row.Token, User: u}
	}
	return s, nil
}

// Get returns the current session for a chat, or nil when logged out.
func (s *Store) Get(chatID int64) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[chatID]
}

// Put records a login: token and user summary are persisted together.
func (s *Store) Put(ctx context.Context, chatID int64, sess *Session) error {
	sess.User.RoleName = sess.User.Role.String()
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.db.SaveSession(ctx, chatID, sess.Token, userJSON); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.sessions[chatID] = sess
	s.mu.Unlock()
	return nil
}

// Clear tears the session down: memory and durable state are cleared
// together. Used for logout and for 401-forced invalidation.
func (s *Store) Clear(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	delete(s.sessions, chatID)
	s.mu.Unlock()
	return s.db.DeleteSession(ctx, chatID)
}

// ChatIDs returns the chats that currently hold a session.
func (s *Store) ChatIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of active sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
