package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/churnsight/churnsight/internal/alerts"
	"github.com/churnsight/churnsight/internal/analytics"
	"github.com/churnsight/churnsight/internal/config"
	"github.com/churnsight/churnsight/internal/session"
)

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads dataset state from the snapshot provider and returns JSON responses.
type Handler struct {
	provider *analytics.Provider
	sessions *session.Store
	engine   *alerts.Engine
	slider   config.SliderConfig
	mux      *http.ServeMux

	now func() time.Time
}

// New creates a Handler wired to the given snapshot provider and session
// store and registers all routes.
func New(p *analytics.Provider, st *session.Store, eng *alerts.Engine, slider config.SliderConfig) http.Handler {
	h := &Handler{
		provider: p,
		sessions: st,
		engine:   eng,
		slider:   slider,
		mux:      http.NewServeMux(),
		now:      time.Now,
	}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/importance", h.importance)
	h.mux.HandleFunc("/api/v1/histogram", h.histogram)
	h.mux.HandleFunc("/api/v1/churn", h.churn)
	h.mux.HandleFunc("/api/v1/sessions", h.createSession)
	h.mux.HandleFunc("/api/v1/sessions/", h.sessionByID) // subtree — extracts {id}
	h.mux.HandleFunc("/api/v1/employees/", h.employeeAttributions)
	h.mux.HandleFunc("/api/v1/alerts", h.alerts)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — dataset shape and liveness counters.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := h.provider.Current()
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:         "ok",
		EmployeeCount:  snap.Data.Predictions.Len(),
		FeatureCount:   len(snap.Data.Attributions.Features),
		LoadedAt:       snap.Data.LoadedAt.UTC().Format(time.RFC3339),
		ActiveSessions: h.sessions.Count(),
		AlertCount:     len(h.engine.Active()),
	})
}

// importance returns GET /api/v1/importance — the cached top-N feature
// ranking, ascending.
func (h *Handler) importance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := h.provider.Current()
	out := make([]ImportanceEntry, 0, len(snap.Importance))
	for _, fi := range snap.Importance {
		out = append(out, ImportanceEntry{Feature: fi.Feature, Importance: fi.Importance})
	}
	jsonResp(w, http.StatusOK, out)
}

// histogram returns GET /api/v1/histogram — prediction score distribution
// binned at the slider step width.
func (h *Handler) histogram(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := h.provider.Current()
	bins := analytics.Histogram(snap.Data.Predictions, h.slider.Step)
	out := make([]BinResponse, 0, len(bins))
	for _, b := range bins {
		out = append(out, BinResponse{Low: b.Low, High: b.High, Count: b.Count})
	}
	jsonResp(w, http.StatusOK, HistogramResponse{BinWidth: h.slider.Step, Bins: out})
}

// churn returns GET /api/v1/churn?threshold=&offset=&limit= — the filtered
// view without touching any session state.
func (h *Handler) churn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	threshold := h.slider.Default
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			jsonErr(w, http.StatusBadRequest, "malformed threshold")
			return
		}
		if !h.slider.Contains(t) {
			jsonErr(w, http.StatusBadRequest, "threshold outside slider domain")
			return
		}
		threshold = t
	}

	offset, limit, ok := pageParams(w, r)
	if !ok {
		return
	}

	view, err := h.buildView(threshold, offset, limit)
	if err != nil {
		h.viewErr(w, err)
		return
	}
	jsonResp(w, http.StatusOK, *view)
}

// createSession handles POST /api/v1/sessions — a new session at the slider
// default threshold, returned with its initial view.
func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s := h.sessions.Create()
	view, err := h.buildView(s.Threshold, 0, 0)
	if err != nil {
		h.viewErr(w, err)
		return
	}
	jsonResp(w, http.StatusCreated, toSessionResponse(s, view))
}

// sessionByID dispatches /api/v1/sessions/{id} and
// /api/v1/sessions/{id}/threshold.
func (h *Handler) sessionByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/sessions/")
	if rest == "" {
		h.createSession(w, r)
		return
	}

	if id, ok := strings.CutSuffix(rest, "/threshold"); ok {
		h.setThreshold(w, r, id)
		return
	}
	h.getSession(w, r, rest)
}

// getSession returns GET /api/v1/sessions/{id}; 404 if unknown or expired.
func (h *Handler) getSession(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s, ok := h.liveSession(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "session not found")
		return
	}

	offset, limit, ok := pageParams(w, r)
	if !ok {
		return
	}
	view, err := h.buildView(s.Threshold, offset, limit)
	if err != nil {
		h.viewErr(w, err)
		return
	}
	jsonResp(w, http.StatusOK, toSessionResponse(s, view))
}

// setThreshold handles PUT /api/v1/sessions/{id}/threshold — moves the
// session's slider and returns the recomputed view.
func (h *Handler) setThreshold(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body thresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Threshold == nil {
		jsonErr(w, http.StatusBadRequest, "body must be a JSON object with a threshold field")
		return
	}
	if !h.slider.Contains(*body.Threshold) {
		jsonErr(w, http.StatusBadRequest, "threshold outside slider domain")
		return
	}

	if _, ok := h.liveSession(id); !ok {
		jsonErr(w, http.StatusNotFound, "session not found")
		return
	}
	s, ok := h.sessions.SetThreshold(id, h.slider.Snap(*body.Threshold))
	if !ok {
		jsonErr(w, http.StatusNotFound, "session not found")
		return
	}

	view, err := h.buildView(s.Threshold, 0, 0)
	if err != nil {
		h.viewErr(w, err)
		return
	}
	jsonResp(w, http.StatusOK, toSessionResponse(s, view))
}

// employeeAttributions returns GET /api/v1/employees/{id}/attributions —
// the per-employee signed contribution breakdown.
func (h *Handler) employeeAttributions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/employees/")
	idStr, ok := strings.CutSuffix(rest, "/attributions")
	if !ok {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "malformed employee number")
		return
	}

	snap := h.provider.Current()
	attrs, err := analytics.EmployeeAttributions(snap.Data, id, len(snap.TopColumns))
	if err != nil {
		if errors.Is(err, analytics.ErrUnknownEmployee) {
			jsonErr(w, http.StatusNotFound, "employee not found")
			return
		}
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]AttributionEntry, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, AttributionEntry{
			Feature:      a.Feature,
			Value:        a.Value,
			Contribution: a.Contribution,
			Direction:    a.Direction,
		})
	}
	jsonResp(w, http.StatusOK, AttributionsResponse{EmployeeNumber: id, Attributions: out})
}

// alerts returns GET /api/v1/alerts — firing alerts plus recently resolved ones.
func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	active := h.engine.Active()
	if active == nil {
		active = []*alerts.Alert{}
	}
	jsonResp(w, http.StatusOK, active)
}

// BuildOverview assembles the dashboard overview from the current snapshot:
// the importance ranking, the score histogram, and the churn view at the
// slider default threshold. The websocket stream broadcasts it on every tick.
func BuildOverview(p *analytics.Provider, slider config.SliderConfig) (OverviewResponse, error) {
	snap := p.Current()

	imp := make([]ImportanceEntry, 0, len(snap.Importance))
	for _, fi := range snap.Importance {
		imp = append(imp, ImportanceEntry{Feature: fi.Feature, Importance: fi.Importance})
	}

	bins := analytics.Histogram(snap.Data.Predictions, slider.Step)
	hist := HistogramResponse{BinWidth: slider.Step, Bins: make([]BinResponse, 0, len(bins))}
	for _, b := range bins {
		hist.Bins = append(hist.Bins, BinResponse{Low: b.Low, High: b.High, Count: b.Count})
	}

	view, err := analytics.BuildView(snap.Data.Predictions, slider.Default, snap.TopColumns, 0, 0)
	if err != nil {
		return OverviewResponse{}, err
	}

	return OverviewResponse{
		Importance:  imp,
		Histogram:   hist,
		Churn:       *toChurnResponse(view),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// pageParams parses offset and limit query parameters. A false return means
// a 400 has already been written.
func pageParams(w http.ResponseWriter, r *http.Request) (offset, limit int, ok bool) {
	q := r.URL.Query()
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			jsonErr(w, http.StatusBadRequest, "malformed offset")
			return 0, 0, false
		}
		offset = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			jsonErr(w, http.StatusBadRequest, "malformed limit")
			return 0, 0, false
		}
		limit = n
	}
	return offset, limit, true
}

// buildView computes the churn view against the current snapshot.
func (h *Handler) buildView(threshold float64, offset, limit int) (*ChurnResponse, error) {
	snap := h.provider.Current()
	v, err := analytics.BuildView(snap.Data.Predictions, threshold, snap.TopColumns, offset, limit)
	if err != nil {
		return nil, err
	}
	return toChurnResponse(v), nil
}

func (h *Handler) viewErr(w http.ResponseWriter, err error) {
	if errors.Is(err, analytics.ErrEmptyTable) {
		jsonErr(w, http.StatusInternalServerError, "predictions table is empty")
		return
	}
	jsonErr(w, http.StatusInternalServerError, err.Error())
}

// liveSession fetches a session, excluding ones past the store TTL.
func (h *Handler) liveSession(id string) (session.Session, bool) {
	s, ok := h.sessions.Get(id)
	if !ok {
		return session.Session{}, false
	}
	// Exclude stale entries — treat them as not found.
	if h.now().Sub(s.UpdatedAt) > h.sessions.TTL() {
		return session.Session{}, false
	}
	return s, true
}

// toChurnResponse maps an analytics.ChurnView to its JSON representation.
func toChurnResponse(v *analytics.ChurnView) *ChurnResponse {
	rows := make([]RowResponse, 0, len(v.Rows))
	for _, r := range v.Rows {
		rows = append(rows, RowResponse{
			EmployeeNumber: r.EmployeeNumber,
			Prediction:     r.Prediction,
			Cells:          r.Cells,
		})
	}
	return &ChurnResponse{
		Threshold:     v.Threshold,
		Count:         v.Count,
		Fraction:      v.Fraction,
		AverageTenure: v.AverageTenure,
		Total:         v.Total,
		Columns:       v.Columns,
		Rows:          rows,
		Offset:        v.Offset,
	}
}

func toSessionResponse(s session.Session, view *ChurnResponse) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		Threshold: s.Threshold,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339),
		View:      *view,
	}
}
