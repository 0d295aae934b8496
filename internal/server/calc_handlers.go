package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fundscope/internal/modules/navseries"
	"fundscope/internal/modules/returns"
	"fundscope/internal/modules/simulation"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// SeriesProvider loads the NAV series for a scheme. Satisfied by the
// funds service.
type SeriesProvider interface {
	Series(schemeCode int) (*navseries.Series, error)
}

// CalcHandlers serves the simulation and returns endpoints. All
// calculation semantics live in the pure core packages; this layer only
// decodes parameters, loads the series and maps errors to statuses.
type CalcHandlers struct {
	provider SeriesProvider
	log      zerolog.Logger
}

// NewCalcHandlers creates the calculation handlers.
func NewCalcHandlers(provider SeriesProvider, log zerolog.Logger) *CalcHandlers {
	return &CalcHandlers{
		provider: provider,
		log:      log.With().Str("handler", "calculations").Logger(),
	}
}

type rangeRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type lumpsumRequest struct {
	Amount float64 `json:"amount"`
	rangeRequest
}

type sipRequest struct {
	Amount           float64 `json:"amount"`
	Frequency        string  `json:"frequency"`
	StepUpPercentage float64 `json:"stepUpPercentage"`
	StepUpFrequency  string  `json:"stepUpFrequency"`
	rangeRequest
}

type swpRequest struct {
	InitialAmount    float64 `json:"initialAmount"`
	WithdrawalAmount float64 `json:"withdrawalAmount"`
	Frequency        string  `json:"frequency"`
	StepUpPercentage float64 `json:"stepUpPercentage"`
	StepUpFrequency  string  `json:"stepUpFrequency"`
	rangeRequest
}

type rollingRequest struct {
	Period string `json:"period"`
	rangeRequest
}

// HandleLumpsum handles POST /api/funds/{code}/lumpsum
func (h *CalcHandlers) HandleLumpsum(w http.ResponseWriter, r *http.Request) {
	var req lumpsumRequest
	series, ok := h.prepare(w, r, &req)
	if !ok {
		return
	}

	params, err := lumpsumParams(req)
	if err != nil {
		h.writeCalcError(w, err)
		return
	}

	result, err := simulation.Lumpsum(series, params)
	if err != nil {
		h.writeCalcError(w, err)
		return
	}
	h.writeJSON(w, result)
}

// HandleSIP handles POST /api/funds/{code}/sip and
// POST /api/funds/{code}/stepup-sip (the latter requires step-up fields).
func (h *CalcHandlers) HandleSIP(stepUp bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sipRequest
		series, ok := h.prepare(w, r, &req)
		if !ok {
			return
		}

		params, err := sipParams(req, stepUp)
		if err != nil {
			h.writeCalcError(w, err)
			return
		}

		result, err := simulation.SIP(series, params)
		if err != nil {
			h.writeCalcError(w, err)
			return
		}
		h.writeJSON(w, result)
	}
}

// HandleSWP handles POST /api/funds/{code}/swp and
// POST /api/funds/{code}/stepup-swp.
func (h *CalcHandlers) HandleSWP(stepUp bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req swpRequest
		series, ok := h.prepare(w, r, &req)
		if !ok {
			return
		}

		params, err := swpParams(req, stepUp)
		if err != nil {
			h.writeCalcError(w, err)
			return
		}

		result, err := simulation.SWP(series, params)
		if err != nil {
			h.writeCalcError(w, err)
			return
		}
		h.writeJSON(w, result)
	}
}

// HandleRollingReturns handles POST /api/funds/{code}/rolling-returns
func (h *CalcHandlers) HandleRollingReturns(w http.ResponseWriter, r *http.Request) {
	var req rollingRequest
	series, ok := h.prepare(w, r, &req)
	if !ok {
		return
	}

	period, err := returns.ParsePeriod(req.Period)
	if err != nil {
		h.writeCalcError(w, err)
		return
	}
	from, to, err := parseRange(req.rangeRequest)
	if err != nil {
		h.writeCalcError(w, err)
		return
	}

	result, err := returns.Rolling(series, period, from, to)
	if err != nil {
		h.writeCalcError(w, err)
		return
	}
	h.writeJSON(w, result)
}

// HandlePointReturns handles GET /api/funds/{code}/returns?period=1y
// and GET /api/funds/{code}/returns?from=...&to=... for custom ranges.
// Without a period it reports every horizon the history can cover.
func (h *CalcHandlers) HandlePointReturns(w http.ResponseWriter, r *http.Request) {
	series, ok := h.loadSeries(w, r)
	if !ok {
		return
	}

	if fromStr, toStr := r.URL.Query().Get("from"), r.URL.Query().Get("to"); fromStr != "" || toStr != "" {
		from, to, err := parseRange(rangeRequest{From: fromStr, To: toStr})
		if err != nil {
			h.writeCalcError(w, err)
			return
		}
		result, err := returns.PointBetween(series, from, to)
		if err != nil {
			h.writeCalcError(w, err)
			return
		}
		h.writeJSON(w, result)
		return
	}

	latest, err := series.LastUsable()
	if err != nil {
		h.writeCalcError(w, err)
		return
	}

	if tag := r.URL.Query().Get("period"); tag != "" {
		period, err := returns.ParsePeriod(tag)
		if err != nil {
			h.writeCalcError(w, err)
			return
		}
		result, err := returns.PointForPeriod(series, period, latest.Date)
		if err != nil {
			h.writeCalcError(w, err)
			return
		}
		h.writeJSON(w, map[string]*returns.PointResult{tag: result})
		return
	}

	all := make(map[string]*returns.PointResult)
	for _, period := range returns.AllPeriods() {
		result, err := returns.PointForPeriod(series, period, latest.Date)
		if err != nil {
			continue
		}
		all[period.String()] = result
	}
	h.writeJSON(w, all)
}

// prepare decodes the request body and loads the scheme's series.
func (h *CalcHandlers) prepare(w http.ResponseWriter, r *http.Request, body interface{}) (*navseries.Series, bool) {
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	return h.loadSeries(w, r)
}

func (h *CalcHandlers) loadSeries(w http.ResponseWriter, r *http.Request) (*navseries.Series, bool) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil {
		http.Error(w, "Invalid scheme code", http.StatusBadRequest)
		return nil, false
	}

	series, err := h.provider.Series(code)
	if err != nil {
		h.log.Warn().Err(err).Int("scheme_code", code).Msg("No NAV series for scheme")
		http.Error(w, "Fund not found", http.StatusNotFound)
		return nil, false
	}
	return series, true
}

func parseRange(req rangeRequest) (time.Time, time.Time, error) {
	if req.From == "" || req.To == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from and to dates are required", navseries.ErrInvalidParams)
	}
	from, err := navseries.ParseNavDate(req.From)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid from date", navseries.ErrInvalidParams)
	}
	to, err := navseries.ParseNavDate(req.To)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid to date", navseries.ErrInvalidParams)
	}
	return from, to, nil
}

func lumpsumParams(req lumpsumRequest) (simulation.LumpsumParams, error) {
	from, to, err := parseRange(req.rangeRequest)
	if err != nil {
		return simulation.LumpsumParams{}, err
	}
	return simulation.LumpsumParams{Amount: req.Amount, From: from, To: to}, nil
}

func sipParams(req sipRequest, stepUp bool) (simulation.SIPParams, error) {
	from, to, err := parseRange(req.rangeRequest)
	if err != nil {
		return simulation.SIPParams{}, err
	}
	freq, err := navseries.ParseFrequency(req.Frequency)
	if err != nil {
		return simulation.SIPParams{}, err
	}

	params := simulation.SIPParams{
		Amount:    req.Amount,
		Frequency: freq,
		From:      from,
		To:        to,
	}
	if stepUp {
		cadence, err := navseries.ParseStepUpCadence(req.StepUpFrequency)
		if err != nil {
			return simulation.SIPParams{}, err
		}
		params.StepUp = &simulation.StepUp{
			Percentage: req.StepUpPercentage,
			Cadence:    cadence,
		}
	}
	return params, nil
}

func swpParams(req swpRequest, stepUp bool) (simulation.SWPParams, error) {
	from, to, err := parseRange(req.rangeRequest)
	if err != nil {
		return simulation.SWPParams{}, err
	}
	freq, err := navseries.ParseFrequency(req.Frequency)
	if err != nil {
		return simulation.SWPParams{}, err
	}

	params := simulation.SWPParams{
		InitialAmount:    req.InitialAmount,
		WithdrawalAmount: req.WithdrawalAmount,
		Frequency:        freq,
		From:             from,
		To:               to,
	}
	if stepUp {
		cadence, err := navseries.ParseStepUpCadence(req.StepUpFrequency)
		if err != nil {
			return simulation.SWPParams{}, err
		}
		params.StepUp = &simulation.StepUp{
			Percentage: req.StepUpPercentage,
			Cadence:    cadence,
		}
	}
	return params, nil
}

// writeCalcError maps core calculation errors onto HTTP statuses. The
// core's messages are user-facing and pass through verbatim.
func (h *CalcHandlers) writeCalcError(w http.ResponseWriter, err error) {
	var rangeErr *returns.RangeTooShortError
	switch {
	case errors.As(err, &rangeErr),
		errors.Is(err, navseries.ErrInvalidParams),
		errors.Is(err, navseries.ErrInsufficientData),
		errors.Is(err, navseries.ErrNoData):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error().Err(err).Msg("Calculation failed")
		http.Error(w, "Calculation failed", http.StatusInternalServerError)
	}
}

func (h *CalcHandlers) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
