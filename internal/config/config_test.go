package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

// minimal is the smallest valid config: only the two data paths are required.
const minimal = `server:
  data:
    predictions_path: /data/predictions.csv
    attributions_path: /data/shapley_values.csv
`

func TestLoad_Defaults(t *testing.T) {
	p := writeConfig(t, minimal)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Server.Data.PredictionColumn != DefaultPredictionColumn {
		t.Errorf("prediction_column: got %q, want %q", cfg.Server.Data.PredictionColumn, DefaultPredictionColumn)
	}
	if cfg.Server.Data.TopFeatures != DefaultTopFeatures {
		t.Errorf("top_features: got %d, want %d", cfg.Server.Data.TopFeatures, DefaultTopFeatures)
	}
	if cfg.Server.Slider.Default != DefaultSliderDefault {
		t.Errorf("slider.default: got %v, want %v", cfg.Server.Slider.Default, DefaultSliderDefault)
	}
	if cfg.Server.Sessions.TTL != DefaultSessionTTL {
		t.Errorf("sessions.ttl: got %v, want %v", cfg.Server.Sessions.TTL, DefaultSessionTTL)
	}
	if cfg.Server.Stream.Interval != DefaultStreamInterval {
		t.Errorf("stream.interval: got %v, want %v", cfg.Server.Stream.Interval, DefaultStreamInterval)
	}
}

func TestLoad_FullServer(t *testing.T) {
	p := writeConfig(t, `server:
  http_port: 9091
  auth:
    mode: apikey
    key_env: MY_KEY
    header: x-churn-key
  data:
    predictions_path: /srv/predictions.csv
    attributions_path: /srv/shapley.csv
    prediction_column: churn_prob
    top_features: 7
    watch: true
  slider:
    min: 0
    max: 0.8
    step: 0.05
    default: 0.4
  sessions:
    ttl: 10m
  stream:
    interval: 2s
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != 9091 {
		t.Errorf("http_port: got %d, want 9091", cfg.Server.HTTPPort)
	}
	if cfg.Server.Auth.EffectiveHeader() != "x-churn-key" {
		t.Errorf("header: got %q, want x-churn-key", cfg.Server.Auth.EffectiveHeader())
	}
	if cfg.Server.Data.PredictionColumn != "churn_prob" {
		t.Errorf("prediction_column: got %q, want churn_prob", cfg.Server.Data.PredictionColumn)
	}
	if !cfg.Server.Data.Watch {
		t.Error("data.watch: got false, want true")
	}
	if cfg.Server.Slider.Default != 0.4 {
		t.Errorf("slider.default: got %v, want 0.4", cfg.Server.Slider.Default)
	}
	if cfg.Server.Sessions.TTL != 10*time.Minute {
		t.Errorf("sessions.ttl: got %v, want 10m", cfg.Server.Sessions.TTL)
	}
}

func TestLoad_DefaultHeader(t *testing.T) {
	p := writeConfig(t, minimal)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h := cfg.Server.Auth.EffectiveHeader(); h != "x-api-key" {
		t.Errorf("EffectiveHeader: got %q, want x-api-key", h)
	}
}

func TestLoad_KeyEnvResolution(t *testing.T) {
	t.Setenv("TEST_SERVER_KEY", "supersecret")
	p := writeConfig(t, minimal+`  auth:
    mode: apikey
    key_env: TEST_SERVER_KEY
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if k := cfg.Server.Auth.Key(); k != "supersecret" {
		t.Errorf("Key(): got %q, want supersecret", k)
	}
}

func TestLoad_MissingDataPaths(t *testing.T) {
	p := writeConfig(t, `server:
  http_port: 8080
`)
	if _, err := Load(p); err == nil {
		t.Fatal("expected error for missing data paths, got nil")
	}
}

func TestLoad_UnknownAuthMode(t *testing.T) {
	p := writeConfig(t, minimal+`  auth:
    mode: oauth2
`)
	if _, err := Load(p); err == nil {
		t.Fatal("expected error for unknown auth mode, got nil")
	}
}

func TestLoad_BadSlider(t *testing.T) {
	cases := []struct {
		name    string
		slider  string
	}{
		{"min above max", "min: 0.9\n    max: 0.1\n    step: 0.1\n    default: 0.5"},
		{"zero step", "min: 0\n    max: 0.9\n    step: 0\n    default: 0.5"},
		{"default outside domain", "min: 0\n    max: 0.9\n    step: 0.1\n    default: 0.95"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := writeConfig(t, minimal+"  slider:\n    "+tc.slider+"\n")
			if _, err := Load(p); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestSlider_Contains(t *testing.T) {
	sl := SliderConfig{Min: 0, Max: 0.9, Step: 0.1, Default: 0.5}
	if !sl.Contains(0) || !sl.Contains(0.9) || !sl.Contains(0.5) {
		t.Error("Contains: in-domain values rejected")
	}
	// Float formatting noise from query parsing must not be rejected.
	if !sl.Contains(0.30000000000000004) {
		t.Error("Contains: rejected value within epsilon of the domain")
	}
	if sl.Contains(-0.1) || sl.Contains(0.91) {
		t.Error("Contains: out-of-domain values accepted")
	}
}

func TestSlider_Snap(t *testing.T) {
	sl := SliderConfig{Min: 0, Max: 0.9, Step: 0.1, Default: 0.5}
	cases := []struct{ in, want float64 }{
		{0.52, 0.5},
		{0.56, 0.6},
		{-1, 0},
		{2, 0.9},
	}
	for _, tc := range cases {
		if got := sl.Snap(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Snap(%v): got %v, want %v", tc.in, got, tc.want)
		}
	}
}
