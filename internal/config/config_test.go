package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/captain-yun7/facefalcon-sub001/pkg/models"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DefaultProvider != models.ProviderRekognition {
		t.Errorf("Expected default provider rekognition, got %s", cfg.DefaultProvider)
	}
	if !cfg.DailyBudgetUSD.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("Expected default budget 5.00, got %s", cfg.DailyBudgetUSD)
	}
	if len(cfg.OperationOverrides) != 0 {
		t.Errorf("Expected no overrides by default, got %v", cfg.OperationOverrides)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected default request timeout 30s, got %s", cfg.RequestTimeout)
	}
}

func TestLoadFromEnv_CustomValues(t *testing.T) {
	t.Setenv("DEFAULT_PROVIDER", "selfhosted")
	t.Setenv("DAILY_BUDGET_USD", "12.50")
	t.Setenv("OPERATION_OVERRIDES", "detectFaces=selfhosted, compareFaces=rekognition")
	t.Setenv("FIND_SIMILAR_WORKERS", "8")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.DefaultProvider != models.ProviderSelfHosted {
		t.Errorf("Expected provider selfhosted, got %s", cfg.DefaultProvider)
	}
	if !cfg.DailyBudgetUSD.Equal(decimal.RequireFromString("12.50")) {
		t.Errorf("Expected budget 12.50, got %s", cfg.DailyBudgetUSD)
	}
	if cfg.OperationOverrides[models.OperationDetectFaces] != models.ProviderSelfHosted {
		t.Errorf("Expected detect override selfhosted, got %v", cfg.OperationOverrides)
	}
	if cfg.OperationOverrides[models.OperationCompareFaces] != models.ProviderRekognition {
		t.Errorf("Expected compare override rekognition, got %v", cfg.OperationOverrides)
	}
	if cfg.FindSimilarWorkers != 8 {
		t.Errorf("Expected 8 workers, got %d", cfg.FindSimilarWorkers)
	}
}

func TestLoadFromEnv_InvalidProvider(t *testing.T) {
	t.Setenv("DEFAULT_PROVIDER", "gcp-vision")

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestLoadFromEnv_InvalidBudget(t *testing.T) {
	t.Setenv("DAILY_BUDGET_USD", "-1")

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for negative budget")
	}
}

func TestLoadFromEnv_MalformedOverride(t *testing.T) {
	t.Setenv("OPERATION_OVERRIDES", "detectFaces")

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for malformed override pair")
	}
}

func TestLoadFromEnv_UnknownOverrideOperation(t *testing.T) {
	t.Setenv("OPERATION_OVERRIDES", "indexFaces=rekognition")

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for unknown operation")
	}
}

func TestServerAddress(t *testing.T) {
	cfg := &Config{Host: " 0.0.0.0 ", Port: " 9090 "}
	if addr := cfg.ServerAddress(); addr != "0.0.0.0:9090" {
		t.Errorf("Expected 0.0.0.0:9090, got %s", addr)
	}
}
