package watchlist

import (
	"fundscope/internal/modules/navseries"
	"fundscope/internal/modules/returns"

	"github.com/rs/zerolog"
)

// FundSource provides NAV series for watched schemes. Satisfied by the
// funds service.
type FundSource interface {
	Series(schemeCode int) (*navseries.Series, error)
}

// Service computes return snapshots for a user's watchlist.
type Service struct {
	repo  *Repository
	funds FundSource
	log   zerolog.Logger
}

// NewService creates a new watchlist service.
func NewService(repo *Repository, funds FundSource, log zerolog.Logger) *Service {
	return &Service{
		repo:  repo,
		funds: funds,
		log:   log.With().Str("service", "watchlist").Logger(),
	}
}

// horizons are the point-return windows shown on the watchlist page.
var horizons = []returns.Period{
	returns.Period1M,
	returns.Period3M,
	returns.Period6M,
	returns.Period1Y,
}

// Performance computes the return snapshot for every watched scheme.
// A scheme whose NAV data cannot be loaded is skipped with a warning
// rather than failing the whole snapshot.
func (s *Service) Performance(userID string) ([]Performance, error) {
	entries, err := s.repo.List(userID)
	if err != nil {
		return nil, err
	}

	result := make([]Performance, 0, len(entries))
	for _, entry := range entries {
		series, err := s.funds.Series(entry.SchemeCode)
		if err != nil {
			s.log.Warn().
				Int("scheme_code", entry.SchemeCode).
				Err(err).
				Msg("Skipping watched scheme, no NAV data")
			continue
		}
		result = append(result, s.snapshot(entry, series))
	}
	return result, nil
}

func (s *Service) snapshot(entry Entry, series *navseries.Series) Performance {
	perf := Performance{
		SchemeCode: entry.SchemeCode,
		SchemeName: entry.SchemeName,
	}

	latest, err := series.LastUsable()
	if err != nil {
		return perf
	}
	perf.LatestNAV = latest.NAV
	perf.LatestDate = latest.Date.Format("2006-01-02")

	if prev, ok := previousUsable(series, latest); ok {
		r := (latest.NAV - prev.NAV) / prev.NAV * 100
		perf.Return1D = &r
	}

	for _, period := range horizons {
		point, err := returns.PointForPeriod(series, period, latest.Date)
		if err != nil {
			continue
		}
		r := point.SimpleReturn
		switch period {
		case returns.Period1M:
			perf.Return1M = &r
		case returns.Period3M:
			perf.Return3M = &r
		case returns.Period6M:
			perf.Return6M = &r
		case returns.Period1Y:
			perf.Return1Y = &r
		}
	}
	return perf
}

// previousUsable finds the last positive observation strictly before
// the latest one, for the day-over-day change.
func previousUsable(series *navseries.Series, latest navseries.NavPoint) (navseries.NavPoint, bool) {
	points := series.Points()
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Date.Before(latest.Date) && points[i].NAV > 0 {
			return points[i], true
		}
	}
	return navseries.NavPoint{}, false
}
