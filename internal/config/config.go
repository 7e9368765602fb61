// Package config carrega a configuração do gateway: .env opcional, variáveis de
// ambiente e, se LIMITS_FILE estiver definido, um YAML com limites por categoria.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"fitplan-gateway/middleware/ratelimit/domain"
)

type Config struct {
	ListenAddr  string `envconfig:"LISTEN_ADDR" default:":8080"`
	UpstreamURL string `envconfig:"UPSTREAM_URL" required:"true"`
	ChatPath    string `envconfig:"CHAT_PATH" default:"/api/chat"`
	PDFPath     string `envconfig:"PDF_PATH" default:"/api/pdf"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	AddHeaders           bool          `envconfig:"ADD_RATELIMIT_HEADERS" default:"false"`
	CleanupInterval      time.Duration `envconfig:"CLEANUP_INTERVAL" default:"10m"`
	FingerprintCacheSize int           `envconfig:"FINGERPRINT_CACHE_SIZE" default:"100000"`
	LimitsFile           string        `envconfig:"LIMITS_FILE"`

	PDFConcurrencyMax     int           `envconfig:"PDF_CONCURRENCY_MAX" default:"4"`
	PDFConcurrencyTimeout time.Duration `envconfig:"PDF_CONCURRENCY_TIMEOUT" default:"5s"`

	// THROTTLE_RPS=0 desliga o throttle global.
	ThrottleRPS   float64 `envconfig:"THROTTLE_RPS" default:"0"`
	ThrottleBurst int     `envconfig:"THROTTLE_BURST" default:"20"`

	StatsEnabled       bool          `envconfig:"RATE_STATS_ENABLED" default:"false"`
	StatsRedisAddr     string        `envconfig:"RATE_STATS_REDIS_ADDR"`
	StatsRedisPassword string        `envconfig:"RATE_STATS_REDIS_PASSWORD"`
	StatsRedisDB       int           `envconfig:"RATE_STATS_REDIS_DB" default:"0"`
	StatsPrefix        string        `envconfig:"RATE_STATS_PREFIX" default:"fitplan:stats"`
	StatsTTL           time.Duration `envconfig:"RATE_STATS_TTL" default:"24h"`
	StatsTrackKeys     bool          `envconfig:"RATE_STATS_TRACK_KEYS" default:"false"`

	// Limits vem do LIMITS_FILE; vazio mantém os padrões.
	Limits domain.Limits `ignored:"true"`
}

type limitsFile struct {
	Limits map[string]domain.Limit `yaml:"limits"`
}

// Load lê .env (se existir), o ambiente e o arquivo de limites, e valida o resultado.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	if cfg.LimitsFile != "" {
		limits, err := LoadLimits(cfg.LimitsFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Limits = limits
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadLimits lê um YAML no formato:
//
//	limits:
//	  PDF: {requests: 3, window: 1h}
//	  BURST: {requests: 10, window: 1m}
func LoadLimits(path string) (domain.Limits, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read limits file: %w", err)
	}

	var f limitsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse limits file %s: %w", path, err)
	}

	known := make(map[domain.Category]bool)
	for _, c := range domain.Categories() {
		known[c] = true
	}

	out := make(domain.Limits, len(f.Limits))
	for name, lim := range f.Limits {
		c := domain.Category(strings.ToUpper(strings.TrimSpace(name)))
		if !known[c] {
			return nil, fmt.Errorf("limits file: unknown category %q", name)
		}
		if lim.Requests <= 0 {
			return nil, fmt.Errorf("limits file: %s.requests must be > 0", c)
		}
		if lim.Window <= 0 {
			return nil, fmt.Errorf("limits file: %s.window must be > 0", c)
		}
		out[c] = lim
	}
	return out, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.UpstreamURL) == "" {
		return errors.New("UPSTREAM_URL is required")
	}
	if c.CleanupInterval <= 0 {
		return errors.New("CLEANUP_INTERVAL must be > 0")
	}
	if c.FingerprintCacheSize <= 0 {
		return errors.New("FINGERPRINT_CACHE_SIZE must be > 0")
	}
	if c.PDFConcurrencyMax < 0 {
		return errors.New("PDF_CONCURRENCY_MAX must be >= 0")
	}
	if c.ThrottleRPS < 0 {
		return errors.New("THROTTLE_RPS must be >= 0")
	}
	if c.ThrottleRPS > 0 && c.ThrottleBurst <= 0 {
		return errors.New("THROTTLE_BURST must be > 0 when THROTTLE_RPS is set")
	}
	if c.StatsEnabled && strings.TrimSpace(c.StatsRedisAddr) == "" {
		return errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	}
	if !strings.HasPrefix(c.ChatPath, "/") || !strings.HasPrefix(c.PDFPath, "/") {
		return errors.New("CHAT_PATH and PDF_PATH must start with /")
	}
	return nil
}
