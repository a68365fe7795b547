package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := Open(filepath.Join(t.TempDir(), "state.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.SaveSession(ctx, 10, "tok-a", []byte(`{"id":1}`)))
	require.NoError(t, db.SaveSession(ctx, 20, "tok-b", []byte(`{"id":2}`)))

	rows, err := db.LoadSessions(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byChat := map[int64]StoredSession{}
	for _, r := range rows {
		byChat[r.ChatID] = r
	}
	assert.Equal(t, "tok-a", byChat[10].Token)
	assert.JSONEq(t, `{"id":2}`, string(byChat[20].UserJSON))
}

// Saving again for the same chat replaces the session, it does not add a
// second row.
func TestSessionUpsert(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.SaveSession(ctx, 10, "old", []byte(`{"id":1}`)))
	require.NoError(t, db.SaveSession(ctx, 10, "new", []byte(`{"id":1,"role":"GUEST"}`)))

	rows, err := db.LoadSessions(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "new", rows[0].Token)
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.SaveSession(ctx, 10, "tok", []byte(`{}`)))
	require.NoError(t, db.DeleteSession(ctx, 10))
	// Deleting a missing row is not an error.
	require.NoError(t, db.DeleteSession(ctx, 10))

	rows, err := db.LoadSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	// Missing row yields zero-valued defaults.
	p, err := db.GetPreferences(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ChatID)
	assert.Empty(t, p.DefaultCity)

	p.DefaultCity = "Lisbon"
	require.NoError(t, db.UpsertPreferences(ctx, p))

	got, err := db.GetPreferences(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", got.DefaultCity)

	got.DefaultCity = "Porto"
	require.NoError(t, db.UpsertPreferences(ctx, got))
	again, err := db.GetPreferences(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Porto", again.DefaultCity)
}

func TestBackupSnapshotIsReadable(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, db.SaveSession(ctx, 10, "tok-a", []byte(`{"id":1}`)))

	dir := filepath.Join(t.TempDir(), "backups")
	path, err := db.Backup(ctx, dir)
	require.NoError(t, err)

	logger := zerolog.Nop()
	snapshot, err := Open(path, &logger)
	require.NoError(t, err)
	defer snapshot.Close()

	rows, err := snapshot.LoadSessions(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "tok-a", rows[0].Token)
}
