package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeeper/internal/store"
)

func newTestDB(t *testing.T) *store.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := store.Open(filepath.Join(t.TempDir(), "state.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStorePutGetClear(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	s, err := NewStore(ctx, db)
	require.NoError(t, err)

	assert.Nil(t, s.Get(42))
	assert.Equal(t, 0, s.Count())

	sess := &Session{
		Token: "tok-1",
		User:  User{ID: 7, Username: "alice", Email: "alice@example.com", Role: RoleGuest},
	}
	require.NoError(t, s.Put(ctx, 42, sess))

	got := s.Get(42)
	require.NotNil(t, got)
	assert.Equal(t, "tok-1", got.Token)
	assert.Equal(t, RoleGuest, got.User.Role)
	assert.Equal(t, 1, s.Count())

	require.NoError(t, s.Clear(ctx, 42))
	assert.Nil(t, s.Get(42))
	assert.Equal(t, 0, s.Count())
}

// A login must survive a restart: a fresh store over the same database
// sees the session, token and parsed role intact.
func TestStoreRehydration(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	first, err := NewStore(ctx, db)
	require.NoError(t, err)

	hotelID := int64(3)
	require.NoError(t, first.Put(ctx, 100, &Session{
		Token: "tok-mgr",
		User:  User{ID: 9, Username: "mgr", Email: "mgr@example.com", Role: RoleManager, HotelID: &hotelID},
	}))

	second, err := NewStore(ctx, db)
	require.NoError(t, err)

	got := second.Get(100)
	require.NotNil(t, got)
	assert.Equal(t, "tok-mgr", got.Token)
	assert.Equal(t, RoleManager, got.User.Role)
	require.NotNil(t, got.User.HotelID)
	assert.Equal(t, int64(3), *got.User.HotelID)
}

// Rows that no longer decode are dropped on startup instead of failing
// it, and are removed from the durable store.
func TestStoreRehydrationDropsBadRows(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, db.SaveSession(ctx, 1, "tok-bad", []byte("{not json")))
	require.NoError(t, db.SaveSession(ctx, 2, "tok-unknown-role", []byte(`{"id":5,"role":"SUPERUSER"}`)))

	good := User{ID: 6, Username: "ok", Role: RoleGuest, RoleName: "GUEST"}
	goodJSON := []byte(`{"id":6,"username":"ok","role":"GUEST"}`)
	require.NoError(t, db.SaveSession(ctx, 3, "tok-good", goodJSON))

	s, err := NewStore(ctx, db)
	require.NoError(t, err)

	assert.Nil(t, s.Get(1))
	assert.Nil(t, s.Get(2))
	got := s.Get(3)
	require.NotNil(t, got)
	assert.Equal(t, good.ID, got.User.ID)

	rows, err := db.LoadSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestStoreChatIDs(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	s, err := NewStore(ctx, db)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, 1, &Session{Token: "a", User: User{ID: 1, Role: RoleGuest}}))
	require.NoError(t, s.Put(ctx, 2, &Session{Token: "b", User: User{ID: 2, Role: RoleGuest}}))

	ids := s.ChatIDs()
	assert.ElementsMatch(t, []int64{1, 2}, ids)
}
