/*
handlers.go - HTTP handlers for the benefits cost aggregation service

PURPOSE:
  Exposes the aggregation engine over HTTP. Handles request translation,
  content negotiation, and error mapping; delegates all computation to
  the benefits package.

ENDPOINTS:
  Reports:
    GET  /api/reports/benefits-cost     Per-worker report (JSON or CSV)
    GET  /api/reports/benefits-by-dept  Department roll-up (JSON)
    GET  /api/reports/benefits-trend    Monthly trend (JSON)

  Legacy XML:
    GET  /api/soap/raas.wsdl            Service description
    POST /api/soap/raas                 GetBenefitsCost envelope

  Imports:
    POST /api/eib/import/workers        Multipart "file" CSV upload
    POST /api/eib/import/enrollments
    POST /api/eib/import/time-entries
    GET  /api/eib/samples/*.csv         Deterministic sample files

REQUEST TRANSLATION:
  Both report front ends funnel into the same benefits.Query: query
  params on the JSON side, envelope fields on the XML side. Identical
  filters therefore always produce identical record sets; only the
  encoding differs.

ERROR HANDLING:
  JSON surface: 400 for bad input, 500 for store failures, as
  ErrorResponse{error, details}. XML surface: every failure is a fault
  envelope with HTTP 500; internal error detail never enters the fault.

SEE ALSO:
  - server.go: Router setup and middleware
  - ../benefits: engine and projections
  - ../soap: envelope codec
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openhcm/benefits-engine/benefits"
	"github.com/openhcm/benefits-engine/eib"
	"github.com/openhcm/benefits-engine/fixture"
	"github.com/openhcm/benefits-engine/soap"
)

// maxUploadBytes caps import uploads and envelope bodies.
const maxUploadBytes = 5 << 20

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    benefits.Store
	Agg      *benefits.Aggregator
	Importer *eib.Importer

	// Now is injectable for deterministic tests.
	Now func() time.Time
}

// NewHandler creates a new handler over the given store.
func NewHandler(store benefits.Store) *Handler {
	return &Handler{
		Store:    store,
		Agg:      benefits.NewAggregator(store),
		Importer: eib.NewImporter(store),
		Now:      time.Now,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// BenefitsCost returns the per-worker report. Accept: text/csv switches
// the rendering to the CSV projection; everything else gets JSON.
func (h *Handler) BenefitsCost(w http.ResponseWriter, r *http.Request) {
	q, err := buildQuery(
		r.URL.Query().Get("from"),
		r.URL.Query().Get("to"),
		r.URL.Query().Get("dept"),
		h.Now(),
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date filter (use YYYY-MM-DD)", err)
		return
	}

	records, err := h.Agg.CostByWorker(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute benefits cost", err)
		return
	}

	var projector benefits.Projector = benefits.JSONProjector{}
	if wantsCSV(r.Header.Get("Accept")) {
		projector = benefits.CSVProjector{}
		w.Header().Set("Content-Disposition", `attachment; filename="benefits_cost.csv"`)
	}

	w.Header().Set("Content-Type", projector.ContentType())
	w.WriteHeader(http.StatusOK)
	_ = projector.Project(w, records)
}

// BenefitsByDept returns the department roll-up.
func (h *Handler) BenefitsByDept(w http.ResponseWriter, r *http.Request) {
	rollups, err := h.Agg.CostByDepartment(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute department roll-up", err)
		return
	}
	if rollups == nil {
		rollups = []benefits.DeptRollup{}
	}
	writeJSON(w, http.StatusOK, rollups)
}

// BenefitsTrend returns the monthly premium trend.
func (h *Handler) BenefitsTrend(w http.ResponseWriter, r *http.Request) {
	points, err := h.Agg.MonthlyTrend(r.Context(), r.URL.Query().Get("dept"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute benefits trend", err)
		return
	}
	if points == nil {
		points = []benefits.TrendPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

// =============================================================================
// LEGACY XML SURFACE
// =============================================================================

// WSDL serves the static service description.
func (h *Handler) WSDL(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, soap.WSDL)
}

// SOAPCall handles GetBenefitsCost envelopes. The payload translates
// onto the same query as the JSON endpoint; any failure becomes a fault
// envelope with HTTP 500.
func (h *Handler) SOAPCall(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		h.soapFault(w, "Failed to read request")
		return
	}

	payload, err := soap.ParseRequest(body)
	if err != nil {
		h.soapFault(w, "Malformed SOAP envelope")
		return
	}

	q, err := buildQuery(payload.From, payload.To, payload.Dept, h.Now())
	if err != nil {
		h.soapFault(w, "Invalid date filter")
		return
	}

	records, err := h.Agg.CostByWorker(r.Context(), q)
	if err != nil {
		h.soapFault(w, "Failed to compute benefits cost")
		return
	}

	projector := soap.EnvelopeProjector{}
	w.Header().Set("Content-Type", projector.ContentType())
	w.WriteHeader(http.StatusOK)
	_ = projector.Project(w, records)
}

func (h *Handler) soapFault(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = soap.WriteFault(w, message)
}

// =============================================================================
// IMPORT HANDLERS
// =============================================================================

// ImportWorkers accepts a multipart workers CSV.
// POST /api/eib/import/workers
func (h *Handler) ImportWorkers(w http.ResponseWriter, r *http.Request) {
	h.runImport(w, r, h.Importer.ImportWorkers)
}

// ImportEnrollments accepts a multipart enrollments CSV.
// POST /api/eib/import/enrollments
func (h *Handler) ImportEnrollments(w http.ResponseWriter, r *http.Request) {
	h.runImport(w, r, h.Importer.ImportEnrollments)
}

// ImportTimeEntries accepts a multipart time-entries CSV.
// POST /api/eib/import/time-entries
func (h *Handler) ImportTimeEntries(w http.ResponseWriter, r *http.Request) {
	h.runImport(w, r, h.Importer.ImportTimeEntries)
}

// runImport extracts the uploaded "file" part and feeds it to one of the
// importer methods.
func (h *Handler) runImport(w http.ResponseWriter, r *http.Request, do func(context.Context, io.Reader) (eib.Result, error)) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "file is required", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required", err)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "Only .csv files allowed", nil)
		return
	}

	result, err := do(r.Context(), file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse CSV", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// SAMPLE DOWNLOADS
// =============================================================================

func (h *Handler) SampleWorkers(w http.ResponseWriter, r *http.Request) {
	writeSample(w, "workers.csv", fixture.SampleWorkersCSV())
}

func (h *Handler) SampleEnrollments(w http.ResponseWriter, r *http.Request) {
	writeSample(w, "enrollments.csv", fixture.SampleEnrollmentsCSV())
}

func (h *Handler) SampleTimeEntries(w http.ResponseWriter, r *http.Request) {
	writeSample(w, "time_entries.csv", fixture.SampleTimeEntriesCSV())
}

func writeSample(w http.ResponseWriter, filename, body string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

// =============================================================================
// REQUEST TRANSLATION
// =============================================================================

// wantsCSV matches text/csv anywhere in the Accept header. No q-value
// weighing; the JSON rendering is the default for everything else.
func wantsCSV(accept string) bool {
	return strings.Contains(strings.ToLower(accept), "text/csv")
}

// buildQuery translates raw filter strings into the canonical query.
// Empty from/to fall back to the default window (epoch through today);
// any supplied date must be YYYY-MM-DD.
func buildQuery(from, to, dept string, now time.Time) (benefits.Query, error) {
	window := benefits.DefaultWindow(now)

	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return benefits.Query{}, fmt.Errorf("from: %w", err)
		}
		window.From = t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return benefits.Query{}, fmt.Errorf("to: %w", err)
		}
		window.To = t
	}

	return benefits.Query{Window: window, Dept: dept}, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
