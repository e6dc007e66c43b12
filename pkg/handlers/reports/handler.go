package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/seo-tools/searchledger/pkg/adapters"
	"github.com/seo-tools/searchledger/pkg/models/api"
	"github.com/seo-tools/searchledger/pkg/models/domain"
	"github.com/seo-tools/searchledger/pkg/services/account"
	"github.com/seo-tools/searchledger/pkg/services/attribution"
	"github.com/seo-tools/searchledger/pkg/services/baseline"
	"github.com/seo-tools/searchledger/pkg/services/config"
	baselinestore "github.com/seo-tools/searchledger/pkg/store/baseline"
)

const (
	defaultDays  = 30
	defaultLimit = 25
)

type Handler struct {
	explorer account.Explorer
}

func NewHandler(explorer account.Explorer) *Handler {
	return &Handler{explorer: explorer}
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.explorer.ListAccounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := make([]api.Account, 0, len(accounts))
	for _, acc := range accounts {
		response = append(response, api.Account{Name: acc.Name})
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (h *Handler) RevenueQueries(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", defaultDays)
	if err != nil {
		writeBadRequest(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", defaultLimit)
	if err != nil {
		writeBadRequest(w, r, err)
		return
	}

	engine, err := h.engine(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := engine.RevenueQueries(r.Context(), days, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapRevenueQueriesDomainToApi(report))
}

func (h *Handler) CategoryPerformance(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", defaultDays)
	if err != nil {
		writeBadRequest(w, r, err)
		return
	}

	engine, err := h.engine(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := engine.CategoryPerformance(r.Context(), days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapCategoryReportDomainToApi(report))
}

func (h *Handler) ContentOpportunities(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", defaultDays)
	if err != nil {
		writeBadRequest(w, r, err)
		return
	}

	engine, err := h.engine(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := engine.ContentOpportunities(r.Context(), days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapOpportunityReportDomainToApi(report))
}

func (h *Handler) PageSummaries(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", defaultDays)
	if err != nil {
		writeBadRequest(w, r, err)
		return
	}

	engine, err := h.engine(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := engine.PageSummaries(r.Context(), days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapPageSummaryReportDomainToApi(report))
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", defaultDays)
	if err != nil {
		writeBadRequest(w, r, err)
		return
	}

	engine, err := h.engine(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := engine.Summary(r.Context(), days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapWindowSummaryDomainToApi(summary))
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	stats, err := engine.CacheStats()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapCacheStatsStoreToApi(stats))
}

func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	removed, err := engine.ClearCache()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, api.CacheClearResult{Removed: removed})
}

func (h *Handler) ListBaselines(w http.ResponseWriter, r *http.Request) {
	snapshotter, err := h.snapshotter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	baselines, err := snapshotter.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := make([]api.Baseline, 0, len(baselines))
	for _, b := range baselines {
		response = append(response, adapters.MapBaselineDomainToApi(b))
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (h *Handler) CreateBaseline(w http.ResponseWriter, r *http.Request) {
	var req api.CreateBaselineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, fmt.Errorf("decode request body: %w", err))
		return
	}
	if req.Days == 0 {
		req.Days = defaultDays
	}
	if req.Days < 0 {
		writeBadRequest(w, r, fmt.Errorf("days must be a positive integer, got %d", req.Days))
		return
	}

	snapshotter, err := h.snapshotter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := snapshotter.Create(r.Context(), req.Days, req.Label)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, adapters.MapBaselineDomainToApi(*created))
}

func (h *Handler) CompareBaseline(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")

	snapshotter, err := h.snapshotter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	comparison, err := snapshotter.Compare(r.Context(), label)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapComparisonDomainToApi(comparison))
}

func (h *Handler) engine(r *http.Request) (attribution.Service, error) {
	name := chi.URLParam(r, "account")
	return h.explorer.GetEngine(r.Context(), domain.Account{Name: name})
}

func (h *Handler) snapshotter(r *http.Request) (baseline.Service, error) {
	name := chi.URLParam(r, "account")
	return h.explorer.GetSnapshotter(r.Context(), domain.Account{Name: name})
}

// queryInt reads the named query parameter as a positive integer,
// falling back to def when the parameter is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("parameter %q must be a positive integer, got %q", name, raw)
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	writeJSON(w, r, http.StatusBadRequest, api.Error{Error: err.Error()})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("request failed")
	}
	writeJSON(w, r, status, api.Error{Error: err.Error()})
}

func statusFor(err error) int {
	var conflict *domain.BaselineConflictError
	var missing *domain.BaselineNotFoundError
	var source *domain.SourceError

	switch {
	case errors.Is(err, config.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, baselinestore.ErrInvalidLabel):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &missing):
		return http.StatusNotFound
	case errors.As(err, &source):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
