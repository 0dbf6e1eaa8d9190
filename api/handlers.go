/*
handlers.go - HTTP API handlers for the license analytics engine

PURPOSE:
  Exposes the analytics engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Reports:
    GET  /api/summary                    Portfolio KPI strip
    GET  /api/elp                        Effective License Position table
    GET  /api/alerts                     Prioritized alert feed
    GET  /api/renewals                   Renewal schedule
    GET  /api/renewals/summary           Renewal KPIs
    GET  /api/renewals/alert             Plain-text renewal alert
    GET  /api/departments                Cost allocation table
    GET  /api/departments/{name}         Department drilldown
    GET  /api/products/{software}        Product drilldown
    GET  /api/reclaim                    Terminated-holder installs
    GET  /api/lowusage                   Stale active installs

  Scenario:
    POST /api/scenario                   Seat-reduction what-if
    POST /api/scenario/export            What-if summary as CSV

  Exports:
    GET  /api/export/elp.csv
    GET  /api/export/renewals.csv
    GET  /api/export/servicenow.csv
    GET  /api/export/departments.csv
    GET  /api/export/reclaim.csv
    GET  /api/export/lowusage.csv

  Settings & admin:
    GET  /api/settings                   Session settings
    PUT  /api/settings                   Toggle count-by-user
    GET  /api/admin/status               Store row counts
    POST /api/admin/reload               Reload CSVs from the data dir
    POST /api/admin/demo                 Load the seeded demo estate

QUERY FILTERS (GET /api/elp and exports):
  vendor=V            repeatable vendor shortlist
  risk=CATEGORY       All | Over-Used | Expiring < 30d | Inactive Users Present
  min_savings=N       minimum potential savings in USD
  subscriptions_only  truthy to drop perpetual rows
  (renewals: vendor, subscriptions_only, max_days=N)

REQUEST FLOW:
  Every report request snapshots the session store, builds a fresh
  engine, and reads from it. Nothing derived is ever written back.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Unknown product or department
  - 422: Empty dataset, missing department data
  - 500: Internal errors

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/PaulSemaan007/OpenSAM/export"
	"github.com/PaulSemaan007/OpenSAM/fixture"
	"github.com/PaulSemaan007/OpenSAM/ingest"
	"github.com/PaulSemaan007/OpenSAM/sam"
	"github.com/PaulSemaan007/OpenSAM/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	DataDir string

	// Clock is injected so reports are reproducible in tests; nil means
	// wall-clock today.
	Clock func() sam.Date

	mu          sync.RWMutex
	countByUser bool
	thresholds  sam.Thresholds
}

// NewHandler creates a new handler over the session store.
func NewHandler(store *sqlite.Store, dataDir string) *Handler {
	return &Handler{
		Store:      store,
		DataDir:    dataDir,
		thresholds: sam.DefaultThresholds(),
	}
}

// SetCountByUser sets the session's default counting mode.
func (h *Handler) SetCountByUser(byUser bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.countByUser = byUser
}

// SetThresholds overrides the rule thresholds for the session.
func (h *Handler) SetThresholds(th sam.Thresholds) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.thresholds = th
}

func (h *Handler) today() sam.Date {
	if h.Clock != nil {
		return h.Clock()
	}
	return sam.Today()
}

// engine snapshots the store and starts an analytic run with the session's
// counting mode and thresholds.
func (h *Handler) engine(r *http.Request) (*sam.Engine, error) {
	h.mu.RLock()
	byUser := h.countByUser
	th := h.thresholds
	h.mu.RUnlock()

	data, err := h.Store.Snapshot(r.Context())
	if err != nil {
		return nil, err
	}

	var policy sam.CountingPolicy = sam.ByDevice{}
	if byUser {
		policy = sam.ByUser{}
	}
	return sam.NewEngine(data, policy, h.today(), sam.WithThresholds(th))
}

func (h *Handler) envelope(e *sam.Engine, data any) ReportEnvelope {
	return ReportEnvelope{
		RunID:       e.RunID,
		Today:       e.Today().String(),
		CountByUser: e.CountsByUser(),
		Data:        data,
	}
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetSummary returns the portfolio KPI strip over the filtered ELP table.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}

	rows, err := filteredELP(engine, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	s := sam.SummarizePortfolio(rows)
	writeJSON(w, http.StatusOK, h.envelope(engine, SummaryDTO{
		Vendors:             s.Vendors,
		Products:            s.Products,
		TotalSeats:          s.TotalSeats,
		PotentialSavingsUSD: s.PotentialSavingsUSD.String(),
	}))
}

// GetELP returns the Effective License Position table.
func (h *Handler) GetELP(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}

	rows, err := filteredELP(engine, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	dtos := make([]ELPRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = toELPRowDTO(row)
	}
	writeJSON(w, http.StatusOK, h.envelope(engine, dtos))
}

// GetAlerts returns the prioritized alert feed.
func (h *Handler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}

	alerts := engine.Alerts()
	dtos := make([]AlertDTO, len(alerts))
	for i, a := range alerts {
		dto := AlertDTO{
			Priority: int(a.Priority),
			Code:     a.Code,
			Title:    a.Title,
			Detail:   a.Detail,
			Products: a.Products,
		}
		if !a.SavingsUSD.IsZero() {
			dto.SavingsUSD = a.SavingsUSD.String()
		}
		dtos[i] = dto
	}
	writeJSON(w, http.StatusOK, h.envelope(engine, dtos))
}

// GetRenewals returns the renewal schedule, optionally filtered.
func (h *Handler) GetRenewals(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}

	rows, err := filteredRenewals(engine, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	dtos := make([]RenewalRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = toRenewalRowDTO(row)
	}
	writeJSON(w, http.StatusOK, h.envelope(engine, dtos))
}

// GetRenewalSummary returns the renewal radar KPIs.
func (h *Handler) GetRenewalSummary(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}

	rows, err := filteredRenewals(engine, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	s := sam.SummarizeRenewals(rows)
	writeJSON(w, http.StatusOK, h.envelope(engine, RenewalSummaryDTO{
		Products:                s.Products,
		Expiring30d:             s.Expiring30d,
		InNoticeWindow:          s.InNoticeWindow,
		SubscriptionAnnualSpend: s.SubscriptionAnnualSpend.String(),
	}))
}

// GetRenewalAlert returns the plain-text renewal alert message, or 204
// when no contract needs attention.
func (h *Handler) GetRenewalAlert(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}

	text := export.RenewalAlert(engine.RenewalSchedule(), engine.Today())
	if text == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, text)
}

// GetDepartments returns the cost allocation table.
func (h *Handler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}

	stats, err := engine.Departments()
	if err != nil {
		writeDomainError(w, "Department data unavailable", err)
		return
	}

	dtos := make([]DepartmentDTO, len(stats))
	for i, s := range stats {
		dtos[i] = toDepartmentDTO(s)
	}
	writeJSON(w, http.StatusOK, h.envelope(engine, dtos))
}

// GetDepartment returns the drilldown for one department.
func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}

	detail, err := engine.Department(name)
	if err != nil {
		writeDomainError(w, "Department data unavailable", err)
		return
	}
	if len(detail.SoftwareUsage) == 0 && len(detail.Reclaim) == 0 {
		writeError(w, http.StatusNotFound, "Department not found", nil)
		return
	}

	usage := make([]SoftwareStatusDTO, len(detail.SoftwareUsage))
	for i, c := range detail.SoftwareUsage {
		usage[i] = SoftwareStatusDTO{Software: c.Software, Status: string(c.Status), Count: c.Count}
	}
	writeJSON(w, http.StatusOK, h.envelope(engine, DepartmentDetailDTO{
		Department:         detail.Department,
		SoftwareUsage:      usage,
		Reclaim:            toInstallRecordDTOs(detail.Reclaim),
		ReclaimableSavings: detail.ReclaimableSavings.String(),
	}))
}

// GetProduct returns the optimization drilldown for one product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	software := chi.URLParam(r, "software")

	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}

	d, err := engine.Drilldown(software)
	if err != nil {
		writeDomainError(w, "Product lookup failed", err)
		return
	}

	writeJSON(w, http.StatusOK, h.envelope(engine, ProductDrilldownDTO{
		Software:            d.License.Software,
		Vendor:              d.License.Vendor,
		LicenseType:         d.License.LicenseType,
		SeatsPurchased:      d.SeatsPurchased,
		ActiveInstalls:      d.ActiveInstalls,
		UnusedSeats:         d.UnusedSeats,
		Overage:             d.Overage,
		PotentialSavingsUSD: d.PotentialSavingsUSD.String(),
		ImmediateSavingsUSD: d.ImmediateSavingsUSD.String(),
		LowUsageSavingsUSD:  d.LowUsageSavingsUSD.String(),
		Active:              toInstallRecordDTOs(d.Active),
		Reclaim:             toInstallRecordDTOs(d.Reclaim),
		LowUsage:            toInstallRecordDTOs(d.LowUsage),
	}))
}

// GetReclaim returns the portfolio-wide terminated-holder table.
func (h *Handler) GetReclaim(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, h.envelope(engine, toInstallRecordDTOs(engine.Reclaim())))
}

// GetLowUsage returns the portfolio-wide stale-install table.
func (h *Handler) GetLowUsage(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, h.envelope(engine, toInstallRecordDTOs(engine.LowUsage())))
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// RunScenario projects a seat-reduction what-if.
func (h *Handler) RunScenario(w http.ResponseWriter, r *http.Request) {
	var req ScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Software == "" {
		writeError(w, http.StatusBadRequest, "software is required", nil)
		return
	}

	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}

	result, err := engine.Scenario(sam.ScenarioInput{
		Software:          req.Software,
		ReduceSeats:       req.ReduceSeats,
		ExcludeTerminated: req.ExcludeTerminated,
	})
	if err != nil {
		writeDomainError(w, "Scenario failed", err)
		return
	}

	writeJSON(w, http.StatusOK, h.envelope(engine, toScenarioDTO(result)))
}

// ExportScenario streams the what-if summary as a CSV download.
func (h *Handler) ExportScenario(w http.ResponseWriter, r *http.Request) {
	var req ScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}

	result, err := engine.Scenario(sam.ScenarioInput{
		Software:          req.Software,
		ReduceSeats:       req.ReduceSeats,
		ExcludeTerminated: req.ExcludeTerminated,
	})
	if err != nil {
		writeDomainError(w, "Scenario failed", err)
		return
	}

	csvDownload(w, "scenario_summary.csv")
	if err := export.WriteScenarioSummary(w, result, engine.RunID, engine.Today()); err != nil {
		log.WithError(err).Error("scenario export failed mid-stream")
	}
}

// =============================================================================
// EXPORT HANDLERS
// =============================================================================

// ExportELP streams the filtered ELP table as CSV.
func (h *Handler) ExportELP(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}
	rows, err := filteredELP(engine, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	csvDownload(w, "elp_report.csv")
	if err := export.WriteELP(w, rows); err != nil {
		log.WithError(err).Error("elp export failed mid-stream")
	}
}

// ExportRenewals streams the renewal schedule as CSV.
func (h *Handler) ExportRenewals(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}
	rows, err := filteredRenewals(engine, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	csvDownload(w, "renewal_schedule.csv")
	if err := export.WriteRenewals(w, rows); err != nil {
		log.WithError(err).Error("renewal export failed mid-stream")
	}
}

// ExportServiceNow streams the ServiceNow-shaped renewal export.
func (h *Handler) ExportServiceNow(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}
	rows, err := filteredRenewals(engine, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	csvDownload(w, "servicenow_import.csv")
	if err := export.WriteServiceNow(w, rows); err != nil {
		log.WithError(err).Error("servicenow export failed mid-stream")
	}
}

// ExportDepartments streams the allocation table as CSV.
func (h *Handler) ExportDepartments(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}
	stats, err := engine.Departments()
	if err != nil {
		writeDomainError(w, "Department data unavailable", err)
		return
	}
	csvDownload(w, "department_allocation.csv")
	if err := export.WriteDepartments(w, stats); err != nil {
		log.WithError(err).Error("department export failed mid-stream")
	}
}

// ExportReclaim streams the terminated-holder table as CSV.
func (h *Handler) ExportReclaim(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}
	csvDownload(w, "reclaim_now.csv")
	if err := export.WriteInstallRecords(w, engine.Reclaim()); err != nil {
		log.WithError(err).Error("reclaim export failed mid-stream")
	}
}

// ExportLowUsage streams the stale-install table as CSV.
func (h *Handler) ExportLowUsage(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(r)
	if err != nil {
		writeDomainError(w, "Failed to start analysis", err)
		return
	}
	csvDownload(w, "low_usage.csv")
	if err := export.WriteInstallRecords(w, engine.LowUsage()); err != nil {
		log.WithError(err).Error("low-usage export failed mid-stream")
	}
}

// =============================================================================
// SETTINGS & ADMIN HANDLERS
// =============================================================================

// GetSettings returns the session settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	byUser := h.countByUser
	h.mu.RUnlock()
	writeJSON(w, http.StatusOK, SettingsDTO{CountByUser: byUser})
}

// UpdateSettings toggles the session's counting mode.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.SetCountByUser(req.CountByUser)
	log.WithField("count_by_user", req.CountByUser).Info("counting mode updated")
	writeJSON(w, http.StatusOK, SettingsDTO{CountByUser: req.CountByUser})
}

// GetStatus reports the session store contents.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Store.RowCounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read store", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusDTO{Tables: counts})
}

// ReloadData replaces the session with the CSVs from the data directory.
func (h *Handler) ReloadData(w http.ResponseWriter, r *http.Request) {
	data, warnings, err := ingest.LoadDir(h.DataDir)
	if err != nil {
		writeDomainError(w, "Failed to load data directory", err)
		return
	}
	if err := h.Store.Load(r.Context(), data); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store dataset", err)
		return
	}

	counts, err := h.Store.RowCounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read store", err)
		return
	}

	warningTexts := make([]string, len(warnings))
	for i, warn := range warnings {
		warningTexts[i] = warn.String()
	}
	log.WithFields(log.Fields{
		"source": h.DataDir, "warnings": len(warnings),
	}).Info("dataset reloaded")

	writeJSON(w, http.StatusOK, LoadResultDTO{
		Source: h.DataDir, Tables: counts, Warnings: warningTexts,
	})
}

// LoadDemo replaces the session with the seeded demo estate.
func (h *Handler) LoadDemo(w http.ResponseWriter, r *http.Request) {
	data := fixture.Acme(fixture.DefaultSeed, h.today())
	if err := h.Store.Load(r.Context(), data); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store dataset", err)
		return
	}

	counts, err := h.Store.RowCounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read store", err)
		return
	}
	log.Info("demo dataset loaded")
	writeJSON(w, http.StatusOK, LoadResultDTO{Source: "demo", Tables: counts})
}

// =============================================================================
// FILTER PARSING
// =============================================================================

// filteredELP applies the ELP query filters to the engine's table.
func filteredELP(e *sam.Engine, r *http.Request) ([]sam.ELPRow, error) {
	q := r.URL.Query()

	f := sam.Filter{
		Vendors:           q["vendor"],
		Risk:              sam.RiskCategory(q.Get("risk")),
		SubscriptionsOnly: truthy(q.Get("subscriptions_only")),
	}
	if raw := q.Get("min_savings"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("min_savings must be a number: %w", err)
		}
		f.MinSavingsUSD = v
	}
	return f.Apply(e.ELP()), nil
}

// filteredRenewals applies the renewal query filters.
func filteredRenewals(e *sam.Engine, r *http.Request) ([]sam.RenewalRow, error) {
	q := r.URL.Query()

	f := sam.RenewalFilter{
		Vendors:           q["vendor"],
		SubscriptionsOnly: truthy(q.Get("subscriptions_only")),
	}
	if raw := q.Get("max_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("max_days must be an integer: %w", err)
		}
		f.MaxDaysRemaining = n
	}
	return f.Apply(e.RenewalSchedule()), nil
}

func truthy(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case sam.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case sam.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, sam.ErrEmptyDataset), errors.Is(err, sam.ErrMissingDepartment):
		writeError(w, http.StatusUnprocessableEntity, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func csvDownload(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
