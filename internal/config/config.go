package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/productconsole/pkg/config"
	"github.com/utafrali/productconsole/pkg/httpclient"
	"github.com/utafrali/productconsole/pkg/tracing"
	"github.com/utafrali/productconsole/pkg/validator"
)

// Session backends.
const (
	SessionFile   = "file"
	SessionRedis  = "redis"
	SessionMemory = "memory"
)

// DefaultDotenv is read by Load when no files are given.
const DefaultDotenv = ".env"

// Config holds all configuration for the product console.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"warn" validate:"oneof=debug info warn error"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=json text"`

	// Products API
	APIURL        string        `env:"PUBLIC_API_URL" envDefault:"http://localhost:3000/api/v1" validate:"required,url"`
	APITimeout    time.Duration `env:"API_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	APIMaxRetries int           `env:"API_MAX_RETRIES" envDefault:"2" validate:"gte=0,lte=10"`

	// Circuit breaker
	BreakerEnabled      bool          `env:"CIRCUIT_BREAKER_ENABLED" envDefault:"true"`
	BreakerTimeout      time.Duration `env:"CIRCUIT_BREAKER_TIMEOUT" envDefault:"30s"`
	BreakerFailureRatio float64       `env:"CIRCUIT_BREAKER_FAILURE_RATIO" envDefault:"0.5" validate:"gt=0,lte=1"`
	BreakerMinRequests  uint32        `env:"CIRCUIT_BREAKER_MIN_REQUESTS" envDefault:"5"`

	// Session
	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"file" validate:"oneof=file redis memory"`
	SessionFile    string        `env:"SESSION_FILE"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	LoginURL       string        `env:"LOGIN_URL" envDefault:"/login"`

	// Redis (SESSION_BACKEND=redis)
	RedisAddr      string `env:"REDIS_ADDR"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
	RedisNamespace string `env:"REDIS_SESSION_NAMESPACE" envDefault:"default"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from the given dotenv files, then the process
// environment. With no files, DefaultDotenv is read if present.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{DefaultDotenv}
	}

	cfg := &Config{}
	if err := pkgconfig.Load(cfg, files...); err != nil {
		return nil, fmt.Errorf("load console config: %w", err)
	}
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid console config: %w", err)
	}
	if cfg.OTELSampleRate < 0 || cfg.OTELSampleRate > 1.0 {
		return nil, fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", cfg.OTELSampleRate)
	}
	if cfg.SessionBackend == SessionRedis && cfg.RedisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is required when SESSION_BACKEND=redis")
	}
	return cfg, nil
}

// HTTPClient returns the transport settings for the products API.
func (c *Config) HTTPClient() httpclient.Config {
	hc := httpclient.DefaultConfig()
	hc.Timeout = c.APITimeout
	hc.MaxRetries = c.APIMaxRetries
	return hc
}

// CircuitBreaker returns the breaker settings for the products API.
func (c *Config) CircuitBreaker() httpclient.CircuitBreakerConfig {
	cb := httpclient.DefaultCircuitBreakerConfig("products-api")
	cb.Timeout = c.BreakerTimeout
	cb.FailureRatio = c.BreakerFailureRatio
	cb.MinRequests = c.BreakerMinRequests
	return cb
}

// Tracing returns the tracer settings.
func (c *Config) Tracing() tracing.Config {
	tc := tracing.DefaultConfig("productctl")
	tc.Environment = c.Environment
	tc.OTLPEndpoint = c.OTELEndpoint
	tc.SampleRate = c.OTELSampleRate
	tc.Enabled = c.OTELEnabled
	return tc
}
