package virtualportfolio

import (
	"fmt"
	"time"

	"fundscope/internal/modules/navseries"
	"fundscope/internal/modules/simulation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FundSource provides NAV series for simulated schemes. Satisfied by
// the funds service.
type FundSource interface {
	Series(schemeCode int) (*navseries.Series, error)
}

// Service manages virtual portfolios and their simulation metrics.
type Service struct {
	repo  *Repository
	funds FundSource
	log   zerolog.Logger
}

// NewService creates a new virtual portfolio service.
func NewService(repo *Repository, funds FundSource, log zerolog.Logger) *Service {
	return &Service{
		repo:  repo,
		funds: funds,
		log:   log.With().Str("service", "virtual_portfolio").Logger(),
	}
}

// Create validates a new plan, runs its first simulation and persists
// it with cached metrics.
func (s *Service) Create(userID string, req CreateRequest) (*Portfolio, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", navseries.ErrInvalidParams)
	}
	if req.SchemeCode <= 0 {
		return nil, fmt.Errorf("%w: schemeCode is required", navseries.ErrInvalidParams)
	}

	params, err := buildParams(req.Amount, req.Frequency, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &Portfolio{
		ID:         uuid.New().String(),
		UserID:     userID,
		Name:       req.Name,
		SchemeCode: req.SchemeCode,
		SchemeName: req.SchemeName,
		Amount:     req.Amount,
		Frequency:  req.Frequency,
		StartDate:  params.From,
		EndDate:    params.To,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.simulate(p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(p); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("id", p.ID).
		Int("scheme_code", p.SchemeCode).
		Msg("Created virtual portfolio")
	return p, nil
}

// Get returns one portfolio, or nil if the id is unknown.
func (s *Service) Get(id string) (*Portfolio, error) {
	return s.repo.GetByID(id)
}

// List returns a user's portfolios.
func (s *Service) List(userID string) ([]Portfolio, error) {
	return s.repo.List(userID)
}

// Update applies a partial update and re-runs the simulation when any
// plan parameter changed.
func (s *Service) Update(id string, req UpdateRequest) (*Portfolio, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	resimulate := false
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Amount != nil {
		p.Amount = *req.Amount
		resimulate = true
	}
	if req.Frequency != nil {
		p.Frequency = *req.Frequency
		resimulate = true
	}
	if req.StartDate != nil {
		d, err := navseries.ParseNavDate(*req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid start date", navseries.ErrInvalidParams)
		}
		p.StartDate = d
		resimulate = true
	}
	if req.EndDate != nil {
		d, err := navseries.ParseNavDate(*req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid end date", navseries.ErrInvalidParams)
		}
		p.EndDate = d
		resimulate = true
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if resimulate {
		if err := s.simulate(p); err != nil {
			return nil, err
		}
	}

	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Refresh re-runs the SIP simulation against current NAV history and
// stores the new metrics.
func (s *Service) Refresh(id string) (*Portfolio, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	if err := s.simulate(p); err != nil {
		return nil, err
	}

	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(p); err != nil {
		return nil, err
	}

	s.log.Info().Str("id", p.ID).Msg("Refreshed virtual portfolio metrics")
	return p, nil
}

// Delete removes a portfolio. Returns false if the id was unknown.
func (s *Service) Delete(id string) (bool, error) {
	return s.repo.Delete(id)
}

func (s *Service) simulate(p *Portfolio) error {
	params, err := buildParams(p.Amount, p.Frequency, p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout))
	if err != nil {
		return err
	}

	series, err := s.funds.Series(p.SchemeCode)
	if err != nil {
		return fmt.Errorf("failed to load NAV series for scheme %d: %w", p.SchemeCode, err)
	}

	result, err := simulation.SIP(series, params)
	if err != nil {
		return err
	}

	p.Metrics = &Metrics{
		TotalInvested:    result.TotalInvested,
		FinalValue:       result.CurrentValue,
		TotalUnits:       result.TotalUnits,
		AbsoluteReturn:   result.AbsoluteReturn,
		AnnualizedReturn: result.AnnualizedReturn,
		Installments:     result.InstallmentCount,
		RefreshedAt:      time.Now().UTC(),
	}
	return nil
}

func buildParams(amount float64, frequency, startDate, endDate string) (simulation.SIPParams, error) {
	freq, err := navseries.ParseFrequency(frequency)
	if err != nil {
		return simulation.SIPParams{}, err
	}

	from, err := navseries.ParseNavDate(startDate)
	if err != nil {
		return simulation.SIPParams{}, fmt.Errorf("%w: invalid start date", navseries.ErrInvalidParams)
	}
	to, err := navseries.ParseNavDate(endDate)
	if err != nil {
		return simulation.SIPParams{}, fmt.Errorf("%w: invalid end date", navseries.ErrInvalidParams)
	}

	params := simulation.SIPParams{
		Amount:    amount,
		Frequency: freq,
		From:      from,
		To:        to,
	}
	if err := params.Validate(); err != nil {
		return simulation.SIPParams{}, err
	}
	return params, nil
}
