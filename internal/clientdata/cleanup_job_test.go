package clientdata

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupJobRemovesExpired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	require.NoError(t, repo.Store("mfapi_scheme_detail", "fresh", testPayload{Name: "fresh"}, time.Hour))
	require.NoError(t, repo.Store("mfapi_scheme_detail", "stale", testPayload{Name: "stale"}, -time.Hour))

	job := NewCleanupJob(repo, zerolog.Nop())
	assert.Equal(t, "cache_cleanup", job.Name())
	require.NoError(t, job.Run())

	var out testPayload
	found, err := repo.Get("mfapi_scheme_detail", "stale", &out)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = repo.Get("mfapi_scheme_detail", "fresh", &out)
	require.NoError(t, err)
	assert.True(t, found)
}
