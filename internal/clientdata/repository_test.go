package clientdata

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	repo := NewRepository(db)
	require.NoError(t, repo.InitSchema())

	return db
}

type testPayload struct {
	Name  string
	Value float64
}

func TestStoreAndGetIfFresh(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	in := testPayload{Name: "Test Fund", Value: 42.5}
	err := repo.Store("mfapi_scheme_detail", "120503", in, time.Hour)
	require.NoError(t, err)

	var out testPayload
	found, err := repo.GetIfFresh("mfapi_scheme_detail", "120503", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestGetIfFreshMissingKey(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	var out testPayload
	found, err := repo.GetIfFresh("mfapi_scheme_detail", "nonexistent", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetIfFreshExpired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	in := testPayload{Name: "Stale Fund", Value: 10}
	err := repo.Store("mfapi_scheme_detail", "100001", in, -time.Hour)
	require.NoError(t, err)

	var out testPayload
	found, err := repo.GetIfFresh("mfapi_scheme_detail", "100001", &out)
	require.NoError(t, err)
	assert.False(t, found)

	// Stale reads still succeed through Get.
	found, err = repo.Get("mfapi_scheme_detail", "100001", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestStoreReplacesExisting(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	require.NoError(t, repo.Store("mfapi_scheme_list", "all", testPayload{Name: "v1"}, time.Hour))
	require.NoError(t, repo.Store("mfapi_scheme_list", "all", testPayload{Name: "v2"}, time.Hour))

	var out testPayload
	found, err := repo.GetIfFresh("mfapi_scheme_list", "all", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v2", out.Name)
}

func TestInvalidTableRejected(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	err := repo.Store("users; DROP TABLE mfapi_scheme_list", "key", testPayload{}, time.Hour)
	assert.Error(t, err)

	var out testPayload
	_, err = repo.GetIfFresh("bogus_table", "key", &out)
	assert.Error(t, err)
}

func TestDeleteExpired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	require.NoError(t, repo.Store("mfapi_scheme_detail", "fresh", testPayload{Name: "fresh"}, time.Hour))
	require.NoError(t, repo.Store("mfapi_scheme_detail", "stale", testPayload{Name: "stale"}, -time.Hour))
	require.NoError(t, repo.Store("mfapi_scheme_list", "stale", testPayload{Name: "stale"}, -time.Minute))

	deleted, err := repo.DeleteExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var out testPayload
	found, err := repo.GetIfFresh("mfapi_scheme_detail", "fresh", &out)
	require.NoError(t, err)
	assert.True(t, found)
}
