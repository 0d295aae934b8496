package funds

import (
	"time"

	"github.com/rs/zerolog"
)

// SyncResult summarizes one refresh pass over the persisted funds.
type SyncResult struct {
	Total    int           `json:"total"`
	Synced   int           `json:"synced"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"-"`
}

// SyncService refreshes every persisted fund from the provider. It is
// driven by the scheduler and by the manual refresh endpoint.
type SyncService struct {
	service *Service
	repo    *Repository
	log     zerolog.Logger
}

// NewSyncService creates a new fund sync service.
func NewSyncService(service *Service, repo *Repository, log zerolog.Logger) *SyncService {
	return &SyncService{
		service: service,
		repo:    repo,
		log:     log.With().Str("service", "fund_sync").Logger(),
	}
}

// RefreshAll re-fetches NAV history for every persisted fund. A failure
// on one scheme does not stop the pass; failures are counted and logged.
func (s *SyncService) RefreshAll() (*SyncResult, error) {
	start := time.Now()

	list, err := s.repo.List()
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Total: len(list)}
	for _, fund := range list {
		if _, err := s.service.SyncFund(fund.SchemeCode); err != nil {
			result.Failed++
			s.log.Warn().
				Int("scheme_code", fund.SchemeCode).
				Err(err).
				Msg("Failed to refresh fund")
			continue
		}
		result.Synced++
	}
	result.Duration = time.Since(start)

	s.log.Info().
		Int("total", result.Total).
		Int("synced", result.Synced).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("Fund refresh pass complete")

	return result, nil
}
