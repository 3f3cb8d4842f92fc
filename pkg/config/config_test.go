package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	testConfig := Config{
		AnthropicAPIKey: "test-key",
		Model:           "claude-sonnet-4-20250514",
		LaTeX: LaTeXConfig{
			Engine: "xelatex",
		},
		Pricing: PricingConfig{
			InputPerMillionUSD:  2.5,
			OutputPerMillionUSD: 12.0,
		},
		Defaults: DefaultConfig{
			OutputDir: "./test-output",
			UploadDir: "./test-uploads",
		},
	}

	data, err := json.MarshalIndent(testConfig, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal test config: %v", err)
	}

	err = os.WriteFile(configPath, data, 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OUTPUT_DIR", "")

	// Test loading the config.
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.AnthropicAPIKey != testConfig.AnthropicAPIKey {
		t.Errorf("Expected API key %s, got %s", testConfig.AnthropicAPIKey, cfg.AnthropicAPIKey)
	}

	if cfg.GetEngine() != "xelatex" {
		t.Errorf("Expected engine xelatex, got %s", cfg.GetEngine())
	}

	if cfg.Pricing.InputPerMillionUSD != 2.5 {
		t.Errorf("Expected input rate 2.5, got %v", cfg.Pricing.InputPerMillionUSD)
	}
}

func TestLoadMissingFileWithEnv(t *testing.T) {
	// An absent config file is fine when the environment carries the key.
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	t.Setenv("OUTPUT_DIR", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-config.json"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.AnthropicAPIKey != "env-key" {
		t.Errorf("Expected API key from environment, got %s", cfg.AnthropicAPIKey)
	}

	// Defaults are filled in.
	if cfg.Defaults.OutputDir != "./resume_output" {
		t.Errorf("Expected default output dir, got %s", cfg.Defaults.OutputDir)
	}

	if cfg.GetModel() != DefaultModel {
		t.Errorf("Expected default model, got %s", cfg.GetModel())
	}

	if cfg.GetEngine() != DefaultEngine {
		t.Errorf("Expected default engine, got %s", cfg.GetEngine())
	}
}

func TestLoadMissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := Load(filepath.Join(t.TempDir(), "no-such-config.json"))
	if err == nil {
		t.Error("Expected error without an API key, got nil")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	err := os.WriteFile(configPath, []byte(`{"anthropic_api_key": "file-key", "defaults": {"output_dir": "./from-file"}}`), 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	t.Setenv("OUTPUT_DIR", "/from-env")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.AnthropicAPIKey != "env-key" {
		t.Errorf("Expected environment to win, got %s", cfg.AnthropicAPIKey)
	}

	if cfg.Defaults.OutputDir != "/from-env" {
		t.Errorf("Expected environment output dir, got %s", cfg.Defaults.OutputDir)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	err := os.WriteFile(configPath, []byte("not json"), 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err = Load(configPath)
	if err == nil {
		t.Error("Expected error for malformed config, got nil")
	}
}

func TestPaths(t *testing.T) {
	cfg := Config{
		Defaults: DefaultConfig{OutputDir: "/data/out"},
	}

	if cfg.LedgerPath() != filepath.Join("/data/out", "applications.json") {
		t.Errorf("Unexpected ledger path %s", cfg.LedgerPath())
	}

	if cfg.UsageLogPath() != filepath.Join("/data/out", "token_usage.csv") {
		t.Errorf("Unexpected usage log path %s", cfg.UsageLogPath())
	}
}

func TestInitConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	err := InitConfig(configPath)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Expected config file to exist: %v", err)
	}

	var cfg Config
	err = json.Unmarshal(data, &cfg)
	if err != nil {
		t.Fatalf("Config file is not valid JSON: %v", err)
	}

	if cfg.Model != DefaultModel {
		t.Errorf("Expected default model in scaffold, got %s", cfg.Model)
	}

	// A second init must refuse to overwrite.
	err = InitConfig(configPath)
	if err == nil {
		t.Error("Expected error when config already exists, got nil")
	}
}
