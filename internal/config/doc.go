// Package config loads the server configuration from the `server:` section
// of config.yaml.
//
// Config fields:
//   - HTTPPort        — port for the REST API and WebSocket stream (default 8080)
//   - Auth.Mode       — "apikey" or "none"
//   - Auth.KeyEnv     — environment variable holding the expected API key
//   - Auth.Header     — HTTP header name the key is read from (default "x-api-key")
//   - Data            — paths to the predictions and attributions CSVs, the
//     source probability column name, and the top-N feature count
//   - Slider          — the threshold control domain (default 0–0.9, step 0.1)
//   - Sessions.TTL    — how long an idle UI session is kept (default 30m)
//   - Stream.Interval — WebSocket overview broadcast cadence (default 5s)
//   - Alerts          — dataset-summary alert rules and webhook targets
//
// Load(path) applies defaults before unmarshalling, then validates.
package config
