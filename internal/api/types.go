package api

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status         string `json:"status"`
	EmployeeCount  int    `json:"employee_count"`
	FeatureCount   int    `json:"feature_count"`
	LoadedAt       string `json:"loaded_at"` // RFC3339
	ActiveSessions int    `json:"active_sessions"`
	AlertCount     int    `json:"alert_count"`
}

// ImportanceEntry is one ranked feature in GET /api/v1/importance.
// Entries are ordered ascending by importance, matching the horizontal
// bar chart the dashboard draws from bottom to top.
type ImportanceEntry struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// BinResponse is one histogram bucket in GET /api/v1/histogram.
type BinResponse struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// HistogramResponse is the payload for GET /api/v1/histogram.
type HistogramResponse struct {
	BinWidth float64       `json:"bin_width"`
	Bins     []BinResponse `json:"bins"`
}

// RowResponse is one at-risk employee row, projected to ChurnResponse.Columns.
type RowResponse struct {
	EmployeeNumber int      `json:"employee_number"`
	Prediction     float64  `json:"prediction"`
	Cells          []string `json:"cells"`
}

// ChurnResponse is the threshold-filtered view of the predictions table:
// the three summary statistics plus one page of selected employees.
// AverageTenure is null when no employee exceeds the threshold.
type ChurnResponse struct {
	Threshold     float64       `json:"threshold"`
	Count         int           `json:"count"`
	Fraction      float64       `json:"fraction"`
	AverageTenure *int          `json:"average_tenure"`
	Total         int           `json:"total"`
	Columns       []string      `json:"columns"`
	Rows          []RowResponse `json:"rows"`
	Offset        int           `json:"offset"`
}

// SessionResponse is the payload for the /api/v1/sessions endpoints.
// View is the churn view recomputed at the session's threshold.
type SessionResponse struct {
	ID        string        `json:"id"`
	Threshold float64       `json:"threshold"`
	CreatedAt string        `json:"created_at"` // RFC3339
	UpdatedAt string        `json:"updated_at"` // RFC3339
	View      ChurnResponse `json:"view"`
}

// thresholdRequest is the body of PUT /api/v1/sessions/{id}/threshold.
// Threshold is a pointer so a missing field is distinguishable from 0.
type thresholdRequest struct {
	Threshold *float64 `json:"threshold"`
}

// AttributionEntry is one feature's contribution to a single employee's
// score in GET /api/v1/employees/{id}/attributions. Entries are ordered
// ascending by absolute contribution.
type AttributionEntry struct {
	Feature      string  `json:"feature"`
	Value        string  `json:"value"`
	Contribution float64 `json:"contribution"`
	Direction    string  `json:"direction"`
}

// AttributionsResponse is the payload for GET /api/v1/employees/{id}/attributions.
type AttributionsResponse struct {
	EmployeeNumber int                `json:"employee_number"`
	Attributions   []AttributionEntry `json:"attributions"`
}

// OverviewResponse is the websocket broadcast payload: everything the
// dashboard landing page renders, computed at the slider default threshold.
type OverviewResponse struct {
	Importance  []ImportanceEntry `json:"importance"`
	Histogram   HistogramResponse `json:"histogram"`
	Churn       ChurnResponse     `json:"churn"`
	GeneratedAt string            `json:"generated_at"` // RFC3339
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
