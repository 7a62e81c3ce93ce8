package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Global singleton for components that cannot take injected config (crontab reload)
var globalConfig *Config

// Config holds all environment backed configuration for support-api.
type Config struct {
	// HTTP Server
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"9091"`
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`

	// Vision / LLM provider (OpenAI-compatible)
	VisionBaseURL string `env:"VISION_BASE_URL" envDefault:"https://api.openai.com/v1"`
	VisionAPIKey  string `env:"VISION_API_KEY"`
	VisionModel   string `env:"VISION_MODEL" envDefault:"gpt-4o"`
	TextModel     string `env:"TEXT_MODEL" envDefault:"gpt-4o-mini"`

	// Extraction collaborators
	NLPServiceURL     string        `env:"NLP_SERVICE_URL" envDefault:"http://nlp-service:8001"`
	OCRServiceURL     string        `env:"OCR_SERVICE_URL" envDefault:"http://ocr-service:8002"`
	SerperAPIKey      string        `env:"SERPER_API_KEY"`
	ExtractionTimeout time.Duration `env:"EXTRACTION_TIMEOUT" envDefault:"30s"`

	// Verification tuning. Product-tuned values, not invariants.
	FaceMatchThreshold float64 `env:"KYC_FACE_MATCH_THRESHOLD" envDefault:"0.6"`
	TicketLocalIDWidth int     `env:"TICKET_LOCAL_ID_WIDTH" envDefault:"10"`

	// Session lifecycle
	SessionIdleTTL              time.Duration `env:"SESSION_IDLE_TTL" envDefault:"24h"`
	SessionSweepIntervalMinutes int           `env:"SESSION_SWEEP_INTERVAL_MINUTES" envDefault:"60"`
	SessionSweepEnabled         bool          `env:"SESSION_SWEEP_ENABLED" envDefault:"true"`

	// Observability / Logging
	HTTPTimeout      time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	OTLPEndpoint     string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders      string        `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ServiceName      string        `env:"SERVICE_NAME" envDefault:"support-api"`
	ServiceNamespace string        `env:"SERVICE_NAMESPACE" envDefault:"betline"`
	Environment      string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT" envDefault:"console"`

	// Features
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`

	// Internal
	EnvReloadedAt time.Time
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if _, err := url.ParseRequestURI(cfg.NLPServiceURL); err != nil {
		return nil, fmt.Errorf("invalid NLP_SERVICE_URL: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.OCRServiceURL); err != nil {
		return nil, fmt.Errorf("invalid OCR_SERVICE_URL: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.VisionBaseURL); err != nil {
		return nil, fmt.Errorf("invalid VISION_BASE_URL: %w", err)
	}

	if cfg.FaceMatchThreshold <= 0 || cfg.FaceMatchThreshold > 1 {
		return nil, fmt.Errorf("KYC_FACE_MATCH_THRESHOLD must be in (0,1], got %v", cfg.FaceMatchThreshold)
	}
	if cfg.TicketLocalIDWidth < 4 {
		return nil, fmt.Errorf("TICKET_LOCAL_ID_WIDTH must be at least 4, got %d", cfg.TicketLocalIDWidth)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.EnvReloadedAt = time.Now()

	globalConfig = cfg

	return cfg, nil
}

// GetGlobal returns the global config instance for components outside the DI graph.
func GetGlobal() *Config {
	return globalConfig
}

// GetEnvReloadedAt returns when the environment was last reloaded
func GetEnvReloadedAt() time.Time {
	if globalConfig != nil {
		return globalConfig.EnvReloadedAt
	}
	return time.Time{}
}

var Version = "dev"

func IsDev() bool {
	return strings.HasPrefix(Version, "dev")
}
