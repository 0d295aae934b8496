package funds

import (
	"fmt"
	"strings"
	"time"

	"fundscope/internal/clients/mfapi"
	"fundscope/internal/modules/navseries"

	"github.com/rs/zerolog"
)

// syncFreshness is how long a persisted fund is served without
// re-fetching from the provider.
const syncFreshness = 12 * time.Hour

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// SchemeClient is the provider surface the service needs. Satisfied by
// *mfapi.Client.
type SchemeClient interface {
	GetSchemeList() ([]mfapi.SchemeListEntry, error)
	GetScheme(schemeCode int) (*mfapi.SchemeDetail, error)
}

// Service provides fund directory search and scheme detail lookups.
type Service struct {
	repo     *Repository
	client   SchemeClient
	keepDays int
	log      zerolog.Logger
}

// NewService creates a new fund service. keepDays bounds how much NAV
// history is persisted per scheme.
func NewService(repo *Repository, client SchemeClient, keepDays int, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		client:   client,
		keepDays: keepDays,
		log:      log.With().Str("service", "funds").Logger(),
	}
}

// SearchDirectory searches the scheme directory. All whitespace
// separated tokens of the query must appear in the searched text,
// case-insensitively. With activeOnly the search runs over persisted
// funds marked active and also matches fund house and category;
// otherwise it runs over the provider's full directory by name.
func (s *Service) SearchDirectory(query string, page, limit int, activeOnly bool) (*DirectoryPage, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	if page <= 0 {
		page = 1
	}

	tokens := strings.Fields(strings.ToLower(query))

	var matched []DirectoryEntry
	if activeOnly {
		funds, err := s.repo.List()
		if err != nil {
			return nil, err
		}
		for _, fund := range funds {
			if !fund.IsActive {
				continue
			}
			if matchesTokens(fund.Name+" "+fund.FundHouse+" "+fund.Category, tokens) {
				matched = append(matched, DirectoryEntry{
					SchemeCode: fund.SchemeCode,
					SchemeName: fund.Name,
				})
			}
		}
	} else {
		list, err := s.client.GetSchemeList()
		if err != nil {
			return nil, fmt.Errorf("failed to fetch scheme directory: %w", err)
		}
		for _, entry := range list {
			if matchesTokens(entry.SchemeName, tokens) {
				matched = append(matched, DirectoryEntry{
					SchemeCode: entry.SchemeCode,
					SchemeName: entry.SchemeName,
				})
			}
		}
	}

	result := &DirectoryPage{
		Total:      len(matched),
		Page:       page,
		Limit:      limit,
		TotalPages: (len(matched) + limit - 1) / limit,
	}
	offset := (page - 1) * limit
	if offset < len(matched) {
		end := offset + limit
		if end > len(matched) {
			end = len(matched)
		}
		result.Schemes = matched[offset:end]
	}
	return result, nil
}

func matchesTokens(text string, tokens []string) bool {
	lower := strings.ToLower(text)
	for _, tok := range tokens {
		if !strings.Contains(lower, tok) {
			return false
		}
	}
	return true
}

// GetFund returns a fund with its NAV history, syncing from the
// provider when the persisted copy is missing or stale.
func (s *Service) GetFund(schemeCode int) (*FundDetail, error) {
	fund, err := s.repo.GetByCode(schemeCode)
	if err != nil {
		return nil, err
	}

	if fund != nil && time.Since(fund.LastSynced) < syncFreshness {
		history, err := s.repo.GetNavHistory(schemeCode)
		if err != nil {
			return nil, err
		}
		if len(history) > 0 {
			return &FundDetail{Fund: *fund, History: history}, nil
		}
	}

	return s.SyncFund(schemeCode)
}

// Series builds a usable NAV series for a scheme.
func (s *Service) Series(schemeCode int) (*navseries.Series, error) {
	detail, err := s.GetFund(schemeCode)
	if err != nil {
		return nil, err
	}
	return navseries.NewSeries(detail.History)
}

// SyncFund fetches a scheme from the provider and persists it. History
// older than the keep window is dropped before storage.
func (s *Service) SyncFund(schemeCode int) (*FundDetail, error) {
	detail, err := s.client.GetScheme(schemeCode)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scheme %d: %w", schemeCode, err)
	}

	now := time.Now().UTC()
	history := truncateHistory(detail.Data, now, s.keepDays)
	if len(history) == 0 {
		// Nothing within the keep window, keep the full payload so the
		// fund is still usable.
		history = rawHistory(detail.Data)
	}

	fund := Fund{
		SchemeCode: schemeCode,
		Name:       detail.Meta.SchemeName,
		FundHouse:  detail.Meta.FundHouse,
		SchemeType: detail.Meta.SchemeType,
		Category:   deriveCategory(detail.Meta.SchemeCategory),
		LastSynced: now,
	}
	if fund.Name == "" {
		fund.Name = fmt.Sprintf("Scheme %d", schemeCode)
	}

	// Rows come newest first; the head is the latest observation.
	if latest, ok := latestObservation(detail.Data); ok {
		fund.LatestNAV = latest.NAV
		fund.LatestDate = latest.Date
		fund.IsActive = isRecent(latest.Date, now)
	}

	if err := s.repo.Upsert(&fund); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceNavHistory(schemeCode, history); err != nil {
		return nil, err
	}

	s.log.Info().
		Int("scheme_code", schemeCode).
		Int("nav_rows", len(history)).
		Bool("active", fund.IsActive).
		Msg("Synced fund")

	return &FundDetail{Fund: fund, History: history}, nil
}

// deriveCategory trims the scheme type prefix the provider bakes into
// its category strings ("Equity Scheme - Large Cap Fund").
func deriveCategory(schemeCategory string) string {
	if idx := strings.Index(schemeCategory, " - "); idx >= 0 {
		return schemeCategory[idx+len(" - "):]
	}
	return schemeCategory
}

// isRecent reports whether the latest NAV is from today or yesterday,
// which is how an actively traded scheme looks on a business day.
func isRecent(latest, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !latest.Before(today.AddDate(0, 0, -1))
}

func latestObservation(rows []mfapi.NavRow) (navseries.NavPoint, bool) {
	for _, row := range rows {
		date, err := navseries.ParseNavDate(row.Date)
		if err != nil {
			continue
		}
		nav, err := navseries.ParseNavValue(row.NAV)
		if err != nil || nav <= 0 {
			continue
		}
		return navseries.NavPoint{Date: date, NAV: nav}, true
	}
	return navseries.NavPoint{}, false
}

func truncateHistory(rows []mfapi.NavRow, now time.Time, keepDays int) []navseries.RawNavPoint {
	cutoff := now.AddDate(0, 0, -keepDays)

	var result []navseries.RawNavPoint
	for _, row := range rows {
		date, err := navseries.ParseNavDate(row.Date)
		if err != nil {
			continue
		}
		if date.Before(cutoff) {
			// Rows are newest first, everything past the cutoff is older.
			break
		}
		result = append(result, navseries.RawNavPoint{Date: row.Date, NAV: row.NAV})
	}
	return result
}

func rawHistory(rows []mfapi.NavRow) []navseries.RawNavPoint {
	result := make([]navseries.RawNavPoint, 0, len(rows))
	for _, row := range rows {
		result = append(result, navseries.RawNavPoint{Date: row.Date, NAV: row.NAV})
	}
	return result
}
