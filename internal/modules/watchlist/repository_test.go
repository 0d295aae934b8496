package watchlist

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) *Repository {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db, zerolog.Nop())
	require.NoError(t, repo.InitSchema())
	return repo
}

func TestAddAndList(t *testing.T) {
	repo := setupTestRepo(t)

	entry, err := repo.Add("default", 120503, "Axis Bluechip Fund")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 120503, entry.SchemeCode)
	assert.Equal(t, "Axis Bluechip Fund", entry.SchemeName)
	assert.False(t, entry.AddedAt.IsZero())

	list, err := repo.List("default")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entry.ID, list[0].ID)
}

func TestAddDuplicateUpdatesName(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Add("default", 1, "Old Name")
	require.NoError(t, err)
	entry, err := repo.Add("default", 1, "New Name")
	require.NoError(t, err)
	assert.Equal(t, "New Name", entry.SchemeName)

	list, err := repo.List("default")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestListIsPerUser(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Add("alice", 1, "Fund A")
	require.NoError(t, err)
	_, err = repo.Add("bob", 2, "Fund B")
	require.NoError(t, err)

	list, err := repo.List("alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].SchemeCode)
}

func TestRemove(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Add("default", 1, "Fund")
	require.NoError(t, err)

	removed, err := repo.Remove("default", 1)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Remove("default", 1)
	require.NoError(t, err)
	assert.False(t, removed)

	list, err := repo.List("default")
	require.NoError(t, err)
	assert.Empty(t, list)
}
