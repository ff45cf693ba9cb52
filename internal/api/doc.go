// Package api implements the HTTP REST API for churnsight-server.
//
// New(provider, sessions, engine, slider) returns an http.Handler that serves:
//
//	GET /api/v1/health                       — dataset shape, session and alert counts
//	GET /api/v1/importance                   — top-N feature ranking, ascending
//	GET /api/v1/histogram                    — prediction score distribution
//	GET /api/v1/churn                        — filtered view; ?threshold=&offset=&limit=
//	POST /api/v1/sessions                    — new session at the slider default
//	GET /api/v1/sessions/{id}                — session + view; 404 if unknown or expired
//	PUT /api/v1/sessions/{id}/threshold      — move the slider, returns recomputed view
//	GET /api/v1/employees/{id}/attributions  — per-employee contribution breakdown
//	GET /api/v1/alerts                       — firing + recently resolved alerts
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for unsupported methods
//   - Return 400 for thresholds outside the configured slider domain
//   - Read dataset state from the snapshot provider, never from disk
//
// JSON types are defined in types.go. No external HTTP framework is used.
package api
