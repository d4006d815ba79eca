package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/captain-yun7/facefalcon-sub001/pkg/models"
)

// Config holds every externally injected setting of the engine. The
// routing policy fields (DefaultProvider, DailyBudgetUSD,
// OperationOverrides) are the configuration surface the hybrid router
// evaluates on every request.
type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64

	// Routing policy
	DefaultProvider    models.ProviderID
	DailyBudgetUSD     decimal.Decimal
	OperationOverrides map[models.Operation]models.ProviderID

	// Self-hosted inference backend
	SelfHostedBaseURL string
	SelfHostedTimeout time.Duration

	// AWS Rekognition backend
	AWSRegion          string
	RekognitionTimeout time.Duration
	// FindSimilarWorkers bounds the per-candidate compare fan-out
	FindSimilarWorkers int
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// LoadFromEnv reads configuration from the environment, consulting an
// optional .env file first.
func LoadFromEnv() (*Config, error) {
	// Missing .env is the normal case in deployment
	_ = godotenv.Load()

	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 25*1024*1024), // 25MB

		SelfHostedBaseURL: getEnvOrDefault("SELFHOSTED_API_URL", "http://localhost:8000"),
		SelfHostedTimeout: parseDurationOrDefault("SELFHOSTED_TIMEOUT", 15*time.Second),

		AWSRegion:          getEnvOrDefault("AWS_REGION", "us-east-1"),
		RekognitionTimeout: parseDurationOrDefault("REKOGNITION_TIMEOUT", 15*time.Second),
		FindSimilarWorkers: int(parseIntOrDefault("FIND_SIMILAR_WORKERS", 4)),
	}

	provider, err := parseProvider(getEnvOrDefault("DEFAULT_PROVIDER", string(models.ProviderRekognition)))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_PROVIDER: %w", err)
	}
	cfg.DefaultProvider = provider

	budget, err := decimal.NewFromString(getEnvOrDefault("DAILY_BUDGET_USD", "5.00"))
	if err != nil || budget.IsNegative() {
		return nil, fmt.Errorf("invalid DAILY_BUDGET_USD: %q", os.Getenv("DAILY_BUDGET_USD"))
	}
	cfg.DailyBudgetUSD = budget

	overrides, err := parseOverrides(os.Getenv("OPERATION_OVERRIDES"))
	if err != nil {
		return nil, fmt.Errorf("invalid OPERATION_OVERRIDES: %w", err)
	}
	cfg.OperationOverrides = overrides

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.SelfHostedTimeout <= 0 || cfg.RekognitionTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, selfhosted=%s, rekognition=%s)",
			cfg.RequestTimeout, cfg.SelfHostedTimeout, cfg.RekognitionTimeout)
	}
	if cfg.FindSimilarWorkers < 1 {
		return nil, fmt.Errorf("FIND_SIMILAR_WORKERS must be >= 1 (got %d)", cfg.FindSimilarWorkers)
	}
	return cfg, nil
}

func parseProvider(value string) (models.ProviderID, error) {
	switch models.ProviderID(strings.TrimSpace(value)) {
	case models.ProviderRekognition:
		return models.ProviderRekognition, nil
	case models.ProviderSelfHosted:
		return models.ProviderSelfHosted, nil
	default:
		return "", fmt.Errorf("unknown provider %q", value)
	}
}

// parseOverrides parses "detectFaces=selfhosted,compareFaces=rekognition"
func parseOverrides(value string) (map[models.Operation]models.ProviderID, error) {
	overrides := make(map[models.Operation]models.ProviderID)
	if strings.TrimSpace(value) == "" {
		return overrides, nil
	}
	for _, pair := range strings.Split(value, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed override %q", pair)
		}
		op := models.Operation(strings.TrimSpace(parts[0]))
		switch op {
		case models.OperationDetectFaces, models.OperationCompareFaces, models.OperationFindSimilarFaces:
		default:
			return nil, fmt.Errorf("unknown operation %q", parts[0])
		}
		provider, err := parseProvider(parts[1])
		if err != nil {
			return nil, err
		}
		overrides[op] = provider
	}
	return overrides, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
