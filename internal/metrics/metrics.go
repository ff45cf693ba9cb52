package metrics

import (
	"net/http"
	"sort"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Registry collects the server's operational counters and gauges and
// exposes them in Prometheus text exposition format.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu           sync.Mutex
	requests     map[string]float64 // key: endpoint path
	reloads      float64
	datasetRows  float64
	wsCount      func() int // nil until a hub is attached
	sessionCount func() int // nil until a session store is attached
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		requests: make(map[string]float64),
	}
}

// IncRequest counts one handled HTTP request for the given endpoint.
func (r *Registry) IncRequest(endpoint string) {
	r.mu.Lock()
	r.requests[endpoint]++
	r.mu.Unlock()
}

// IncReload counts one successful dataset reload.
func (r *Registry) IncReload() {
	r.mu.Lock()
	r.reloads++
	r.mu.Unlock()
}

// SetDatasetRows records the row count of the currently loaded predictions table.
func (r *Registry) SetDatasetRows(n int) {
	r.mu.Lock()
	r.datasetRows = float64(n)
	r.mu.Unlock()
}

// SetWSClientCounter registers a callback that reports the number of
// connected websocket clients at scrape time.
func (r *Registry) SetWSClientCounter(fn func() int) {
	r.mu.Lock()
	r.wsCount = fn
	r.mu.Unlock()
}

// SetSessionCounter registers a callback that reports the number of live
// sessions at scrape time.
func (r *Registry) SetSessionCounter(fn func() int) {
	r.mu.Lock()
	r.sessionCount = fn
	r.mu.Unlock()
}

// Middleware counts requests by URL path before passing them on.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.IncRequest(req.URL.Path)
		next.ServeHTTP(w, req)
	})
}

// Handler serves the registry contents as a Prometheus text exposition.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		format := expfmt.NewFormat(expfmt.TypeTextPlain)
		w.Header().Set("Content-Type", string(format))

		enc := expfmt.NewEncoder(w, format)
		for _, mf := range r.gather() {
			if err := enc.Encode(mf); err != nil {
				// Client went away mid-write; nothing useful to do.
				return
			}
		}
	})
}

// gather snapshots the registry into metric families, sorted by name.
func (r *Registry) gather() []*dto.MetricFamily {
	r.mu.Lock()
	defer r.mu.Unlock()

	families := []*dto.MetricFamily{
		counterFamily("churnsight_dataset_reloads_total",
			"Number of successful dataset reloads since start.",
			[]*dto.Metric{counterMetric(r.reloads, nil)}),
		gaugeFamily("churnsight_dataset_rows",
			"Row count of the currently loaded predictions table.",
			r.datasetRows),
		gaugeFamily("churnsight_ws_clients",
			"Number of connected websocket stream clients.",
			callbackValue(r.wsCount)),
		gaugeFamily("churnsight_sessions_active",
			"Number of live dashboard sessions.",
			callbackValue(r.sessionCount)),
	}

	if len(r.requests) > 0 {
		endpoints := make([]string, 0, len(r.requests))
		for ep := range r.requests {
			endpoints = append(endpoints, ep)
		}
		sort.Strings(endpoints)

		ms := make([]*dto.Metric, 0, len(endpoints))
		for _, ep := range endpoints {
			ms = append(ms, counterMetric(r.requests[ep], []*dto.LabelPair{
				{Name: strPtr("endpoint"), Value: strPtr(ep)},
			}))
		}
		families = append(families, counterFamily("churnsight_http_requests_total",
			"Number of HTTP requests handled, by endpoint.", ms))
	}

	sort.Slice(families, func(i, j int) bool {
		return families[i].GetName() < families[j].GetName()
	})
	return families
}

// --- family constructors ---

func counterFamily(name, help string, ms []*dto.Metric) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   strPtr(name),
		Help:   strPtr(help),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: ms,
	}
}

func gaugeFamily(name, help string, value float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: strPtr(name),
		Help: strPtr(help),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{
			{Gauge: &dto.Gauge{Value: f64Ptr(value)}},
		},
	}
}

func counterMetric(value float64, labels []*dto.LabelPair) *dto.Metric {
	return &dto.Metric{
		Label:   labels,
		Counter: &dto.Counter{Value: f64Ptr(value)},
	}
}

// callbackValue reads a scrape-time gauge callback, treating an unset
// callback as zero.
func callbackValue(fn func() int) float64 {
	if fn == nil {
		return 0
	}
	return float64(fn())
}

func strPtr(s string) *string { return &s }

func f64Ptr(f float64) *float64 { return &f }
