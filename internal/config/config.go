package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort         = 8080
	DefaultPredictionColumn = "Attrition.Yes"
	DefaultTopFeatures      = 5
	DefaultSessionTTL       = 30 * time.Minute
	DefaultStreamInterval   = 5 * time.Second
	DefaultRowsPerPage      = 10
)

// Default slider domain. The threshold a user can pick runs from 0 to 0.9
// in steps of 0.1, starting at 0.5.
const (
	DefaultSliderMin     = 0.0
	DefaultSliderMax     = 0.9
	DefaultSliderStep    = 0.1
	DefaultSliderDefault = 0.5
)

// Config holds the configuration parsed from the `server:` section of
// config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket stream listen on
	// (default 8080).
	HTTPPort int `yaml:"http_port"`

	// Auth configures how the server authenticates incoming API clients.
	Auth AuthConfig `yaml:"auth"`

	// Data locates the prediction and attribution artifacts.
	Data DataConfig `yaml:"data"`

	// Slider defines the threshold control domain exposed to the UI.
	Slider SliderConfig `yaml:"slider"`

	// Sessions controls per-browser threshold state retention.
	Sessions SessionsConfig `yaml:"sessions"`

	// Stream controls the WebSocket broadcast cadence.
	Stream StreamConfig `yaml:"stream"`

	// Alerts holds rule definitions and webhook delivery targets.
	Alerts AlertsConfig `yaml:"alerts"`
}

// AuthConfig controls client authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected
	// API key. Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header name to read the key from.
	// Defaults to "x-api-key" if empty.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// DataConfig locates and describes the two CSV artifacts loaded at startup.
type DataConfig struct {
	// PredictionsPath is the CSV with one row per employee and a churn
	// probability column.
	PredictionsPath string `yaml:"predictions_path"`

	// AttributionsPath is the CSV with per-employee, per-feature signed
	// contribution values (contrib_* columns plus contrib_bias).
	AttributionsPath string `yaml:"attributions_path"`

	// PredictionColumn is the source column holding the churn probability.
	// It is exposed uniformly as "Prediction" regardless of this name.
	// Default: "Attrition.Yes".
	PredictionColumn string `yaml:"prediction_column"`

	// TopFeatures is how many features the importance ranking keeps
	// (default 5).
	TopFeatures int `yaml:"top_features"`

	// Watch enables fsnotify-based hot reload of the two CSV files.
	Watch bool `yaml:"watch"`
}

// SliderConfig defines the threshold control domain.
type SliderConfig struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Step    float64 `yaml:"step"`
	Default float64 `yaml:"default"`
}

// SessionsConfig controls in-memory session retention.
type SessionsConfig struct {
	// TTL is how long a session survives after its last threshold change.
	// Default: 30m.
	TTL time.Duration `yaml:"ttl"`
}

// StreamConfig controls the WebSocket overview broadcast.
type StreamConfig struct {
	// Interval is how often the overview snapshot is pushed to connected
	// dashboard clients. Default: 5s.
	Interval time.Duration `yaml:"interval"`
}

// AlertsConfig holds alerting rules and webhook delivery targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines one threshold-based alert condition evaluated against
// the dataset summary on every load and reload.
type AlertRule struct {
	// Name is the human-readable alert identifier, used as the deduplication key.
	Name string `yaml:"name"`

	// Condition is a simple expression: "churn_fraction > 0.3",
	// "churn_count > 100", "mean_prediction > 0.5", "employee_count < 500".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	// Defaults to 15 minutes if zero.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: teams | slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the config file at path, returning the server
// configuration. Missing fields are filled with sensible defaults before
// validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			Data: DataConfig{
				PredictionColumn: DefaultPredictionColumn,
				TopFeatures:      DefaultTopFeatures,
			},
			Slider: SliderConfig{
				Min:     DefaultSliderMin,
				Max:     DefaultSliderMax,
				Step:    DefaultSliderStep,
				Default: DefaultSliderDefault,
			},
			Sessions: SessionsConfig{
				TTL: DefaultSessionTTL,
			},
			Stream: StreamConfig{
				Interval: DefaultStreamInterval,
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Server

	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	switch s.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", s.Auth.Mode)
	}
	if s.Data.PredictionsPath == "" {
		return fmt.Errorf("server.data.predictions_path is required")
	}
	if s.Data.AttributionsPath == "" {
		return fmt.Errorf("server.data.attributions_path is required")
	}
	if s.Data.TopFeatures <= 0 {
		return fmt.Errorf("server.data.top_features must be positive")
	}
	if err := validateSlider(s.Slider); err != nil {
		return err
	}
	if s.Sessions.TTL < 0 {
		return fmt.Errorf("server.sessions.ttl must not be negative")
	}
	if s.Stream.Interval <= 0 {
		return fmt.Errorf("server.stream.interval must be positive")
	}
	return nil
}

// validateSlider checks the threshold control domain is coherent.
func validateSlider(sl SliderConfig) error {
	if sl.Min < 0 || sl.Max > 1 || sl.Min >= sl.Max {
		return fmt.Errorf("server.slider: min/max %v/%v must satisfy 0 <= min < max <= 1", sl.Min, sl.Max)
	}
	if sl.Step <= 0 || sl.Step > sl.Max-sl.Min {
		return fmt.Errorf("server.slider.step %v must be in (0, max-min]", sl.Step)
	}
	if sl.Default < sl.Min || sl.Default > sl.Max {
		return fmt.Errorf("server.slider.default %v is outside [%v, %v]", sl.Default, sl.Min, sl.Max)
	}
	return nil
}

// Contains reports whether t lies within the slider domain. A small epsilon
// absorbs float formatting noise from query parameters (0.30000000000000004).
func (sl SliderConfig) Contains(t float64) bool {
	const eps = 1e-9
	return t >= sl.Min-eps && t <= sl.Max+eps
}

// Snap rounds t to the nearest step within the slider domain.
func (sl SliderConfig) Snap(t float64) float64 {
	if t < sl.Min {
		return sl.Min
	}
	if t > sl.Max {
		return sl.Max
	}
	steps := math.Round((t - sl.Min) / sl.Step)
	return sl.Min + steps*sl.Step
}
