package virtualportfolio

import (
	"database/sql"
	"errors"
	"testing"

	"fundscope/internal/modules/navseries"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFundSource struct {
	series map[int]*navseries.Series
}

func (f *fakeFundSource) Series(schemeCode int) (*navseries.Series, error) {
	s, ok := f.series[schemeCode]
	if !ok {
		return nil, errors.New("no NAV data")
	}
	return s, nil
}

func setupService(t *testing.T) (*Service, *Repository) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db, zerolog.Nop())
	require.NoError(t, repo.InitSchema())

	// Flat-ish monthly NAV series covering 2023.
	raw := []navseries.RawNavPoint{
		{Date: "2023-01-01", NAV: "10.0"},
		{Date: "2023-02-01", NAV: "10.0"},
		{Date: "2023-03-01", NAV: "10.0"},
		{Date: "2023-04-01", NAV: "12.0"},
		{Date: "2023-05-01", NAV: "12.0"},
		{Date: "2023-06-01", NAV: "12.0"},
	}
	series, err := navseries.NewSeries(raw)
	require.NoError(t, err)

	funds := &fakeFundSource{series: map[int]*navseries.Series{1: series}}
	return NewService(repo, funds, zerolog.Nop()), repo
}

func validCreateRequest() CreateRequest {
	return CreateRequest{
		Name:       "My SIP Plan",
		SchemeCode: 1,
		SchemeName: "Test Fund",
		Amount:     1000,
		Frequency:  "monthly",
		StartDate:  "2023-01-01",
		EndDate:    "2023-06-01",
	}
}

func TestCreateRunsSimulation(t *testing.T) {
	service, _ := setupService(t)

	p, err := service.Create("default", validCreateRequest())
	require.NoError(t, err)

	_, err = uuid.Parse(p.ID)
	assert.NoError(t, err)
	assert.True(t, p.IsActive)

	require.NotNil(t, p.Metrics)
	assert.Equal(t, 6000.0, p.Metrics.TotalInvested)
	assert.Equal(t, 6, p.Metrics.Installments)
	// 3 installments at 10 and 3 at 12: 300 + 250 units at final NAV 12.
	assert.InDelta(t, 550.0, p.Metrics.TotalUnits, 1e-9)
	assert.InDelta(t, 6600.0, p.Metrics.FinalValue, 1e-9)
}

func TestCreateValidatesRequest(t *testing.T) {
	service, _ := setupService(t)

	req := validCreateRequest()
	req.Frequency = "fortnightly"
	_, err := service.Create("default", req)
	assert.ErrorIs(t, err, navseries.ErrInvalidParams)

	req = validCreateRequest()
	req.Amount = 0
	_, err = service.Create("default", req)
	assert.ErrorIs(t, err, navseries.ErrInvalidParams)

	req = validCreateRequest()
	req.Name = ""
	_, err = service.Create("default", req)
	assert.ErrorIs(t, err, navseries.ErrInvalidParams)
}

func TestGetAndListRoundTrip(t *testing.T) {
	service, _ := setupService(t)

	created, err := service.Create("default", validCreateRequest())
	require.NoError(t, err)

	got, err := service.Get(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.StartDate, got.StartDate)
	require.NotNil(t, got.Metrics)
	assert.Equal(t, created.Metrics.TotalInvested, got.Metrics.TotalInvested)

	list, err := service.List("default")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	missing, err := service.Get(uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateResimulates(t *testing.T) {
	service, _ := setupService(t)

	created, err := service.Create("default", validCreateRequest())
	require.NoError(t, err)

	amount := 2000.0
	updated, err := service.Update(created.ID, UpdateRequest{Amount: &amount})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 12000.0, updated.Metrics.TotalInvested)
}

func TestUpdateNameOnlyKeepsMetrics(t *testing.T) {
	service, _ := setupService(t)

	created, err := service.Create("default", validCreateRequest())
	require.NoError(t, err)

	name := "Renamed Plan"
	updated, err := service.Update(created.ID, UpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Plan", updated.Name)
	require.NotNil(t, updated.Metrics)
	assert.Equal(t, created.Metrics.RefreshedAt.Unix(), updated.Metrics.RefreshedAt.Unix())
}

func TestRefreshRecomputesMetrics(t *testing.T) {
	service, _ := setupService(t)

	created, err := service.Create("default", validCreateRequest())
	require.NoError(t, err)

	refreshed, err := service.Refresh(created.ID)
	require.NoError(t, err)
	require.NotNil(t, refreshed)
	assert.Equal(t, created.Metrics.TotalInvested, refreshed.Metrics.TotalInvested)
}

func TestDelete(t *testing.T) {
	service, _ := setupService(t)

	created, err := service.Create("default", validCreateRequest())
	require.NoError(t, err)

	removed, err := service.Delete(created.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = service.Delete(created.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}
