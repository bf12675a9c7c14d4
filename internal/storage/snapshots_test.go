package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	config := DefaultConfig(filepath.Join(t.TempDir(), "test.db"))
	config.AutoMigrate = true

	db, err := Open(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSnapshotRepository_History(t *testing.T) {
	ctx := context.Background()
	repo := NewSnapshotRepository(setupTestDB(t))

	_, err := repo.LatestHistory(ctx, "s1")
	assert.ErrorIs(t, err, ErrNoSnapshot)

	first, err := repo.SaveHistory(ctx, "s1", 1, []byte(`[{"commander":"Krenko"}]`))
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	_, err = repo.SaveHistory(ctx, "s1", 2, []byte(`[{},{}]`))
	require.NoError(t, err)
	_, err = repo.SaveHistory(ctx, "s2", 0, []byte(`[]`))
	require.NoError(t, err)

	latest, err := repo.LatestHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", latest.SessionID)
	assert.Equal(t, 2, latest.Count)
	assert.Equal(t, `[{},{}]`, string(latest.Payload))
	assert.WithinDuration(t, time.Now(), latest.CreatedAt, time.Minute)

	list, err := repo.ListHistory(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Greater(t, list[0].ID, list[1].ID)
}

func TestSnapshotRepository_KnowledgePrunes(t *testing.T) {
	ctx := context.Background()
	repo := NewSnapshotRepository(setupTestDB(t))

	for i := 1; i <= 4; i++ {
		_, err := repo.SaveKnowledge(ctx, i, []byte(`[]`), 2)
		require.NoError(t, err)
	}

	n, err := repo.CountKnowledge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	latest, err := repo.LatestKnowledge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, latest.Count)
	assert.Empty(t, latest.SessionID)
}

func TestWithTransaction_RollsBack(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	boom := errors.New("boom")

	err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO knowledge_snapshots (user_count, payload, created_at) VALUES (1, '[]', 'x')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := NewSnapshotRepository(db).CountKnowledge(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
