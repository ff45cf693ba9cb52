// Package ws implements the WebSocket hub for churnsight-server.
//
// Hub manages a set of connected clients and broadcasts the dashboard
// overview to all of them on a configurable interval (default 5s in
// production).
//
// New(provider, slider, interval) creates a Hub.
// Hub.Run(ctx) starts the broadcast ticker — blocks until ctx is cancelled,
// then closes all active connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket, sends the current
// overview immediately on connect, then streams updates on each tick.
//
// Message format sent to clients:
//
//	{
//	  "event": "overview",
//	  "data":  { importance, histogram, churn, generated_at }
//	}
//
// The churn view inside the overview is computed at the slider default
// threshold; per-session thresholds stay on the REST API.
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. WebSocket endpoint is mounted at /ws/stream by the server.
package ws
