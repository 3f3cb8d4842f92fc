package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	// DefaultModel is the model used when the config does not name one.
	DefaultModel = "claude-sonnet-4-20250514"
	// DefaultEngine is the typesetting engine used when the config does not name one.
	DefaultEngine = "pdflatex"
	// DefaultInputRate is the per-million input token price in USD.
	DefaultInputRate = 3.0
	// DefaultOutputRate is the per-million output token price in USD.
	DefaultOutputRate = 15.0
)

// Config represents the application configuration.
type Config struct {
	AnthropicAPIKey string        `json:"anthropic_api_key"`
	Model           string        `json:"model,omitempty"`
	LaTeX           LaTeXConfig   `json:"latex,omitempty"`
	Pricing         PricingConfig `json:"pricing,omitempty"`
	Defaults        DefaultConfig `json:"defaults"`
}

// LaTeXConfig holds typesetting-related configuration.
type LaTeXConfig struct {
	Engine string `json:"engine,omitempty"`
}

// PricingConfig holds per-million-token rates for cost estimation.
type PricingConfig struct {
	InputPerMillionUSD  float64 `json:"input_per_million_usd,omitempty"`
	OutputPerMillionUSD float64 `json:"output_per_million_usd,omitempty"`
}

// DefaultConfig holds default locations for command output.
type DefaultConfig struct {
	OutputDir string `json:"output_dir"`
	UploadDir string `json:"upload_dir"`
}

// GetModel returns the configured model or the default.
func (c *Config) GetModel() (model string) {
	if c.Model != "" {
		model = c.Model
		return model
	}
	model = DefaultModel
	return model
}

// GetEngine returns the configured typesetting engine or the default.
func (c *Config) GetEngine() (engine string) {
	if c.LaTeX.Engine != "" {
		engine = c.LaTeX.Engine
		return engine
	}
	engine = DefaultEngine
	return engine
}

// LedgerPath returns the fixed path of the applications ledger.
func (c *Config) LedgerPath() (path string) {
	path = filepath.Join(c.Defaults.OutputDir, "applications.json")
	return path
}

// UsageLogPath returns the fixed path of the token-usage CSV log.
func (c *Config) UsageLogPath() (path string) {
	path = filepath.Join(c.Defaults.OutputDir, "token_usage.csv")
	return path
}

// Load reads configuration from file with environment variable overrides.
// A missing config file is not an error as long as the environment carries
// the required values.
func Load(configPath string) (cfg Config, err error) {
	// Pick up a .env file if one is present
	_ = godotenv.Load()

	// Determine config file location
	path := configPath
	if path == "" {
		var homeDir string
		homeDir, err = os.UserHomeDir()
		if err != nil {
			err = errors.Wrap(err, "failed to get user home directory")
			return cfg, err
		}
		path = filepath.Join(homeDir, ".textailor", "config.json")
	}

	// Read config file if present
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			err = errors.Wrapf(err, "failed to read config file: %s", path)
			return cfg, err
		}
		err = nil
	} else {
		err = json.Unmarshal(data, &cfg)
		if err != nil {
			err = errors.Wrapf(err, "failed to parse config file: %s", path)
			return cfg, err
		}
	}

	// Override with environment variables if set
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		cfg.AnthropicAPIKey = apiKey
	}

	if outDir := os.Getenv("OUTPUT_DIR"); outDir != "" {
		cfg.Defaults.OutputDir = outDir
	}

	// Validate required fields
	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

// Validate checks required configuration and fills in defaults.
func (c *Config) Validate() (err error) {
	if c.AnthropicAPIKey == "" {
		err = errors.New("anthropic_api_key is required (set in config or ANTHROPIC_API_KEY env var)")
		return err
	}

	if c.Defaults.OutputDir == "" {
		c.Defaults.OutputDir = "./resume_output"
	}

	if c.Defaults.UploadDir == "" {
		c.Defaults.UploadDir = "./uploads"
	}

	if c.Pricing.InputPerMillionUSD == 0 {
		c.Pricing.InputPerMillionUSD = DefaultInputRate
	}

	if c.Pricing.OutputPerMillionUSD == 0 {
		c.Pricing.OutputPerMillionUSD = DefaultOutputRate
	}

	return err
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		var homeDir string
		homeDir, err = os.UserHomeDir()
		if err != nil {
			err = errors.Wrap(err, "failed to get user home directory")
			return err
		}
		path = filepath.Join(homeDir, ".textailor", "config.json")
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	// Check if file already exists
	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	// Create default config
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return err
	}

	defaultConfig := Config{
		AnthropicAPIKey: "sk-ant-api03-...",
		Model:           DefaultModel,
		LaTeX: LaTeXConfig{
			Engine: DefaultEngine,
		},
		Pricing: PricingConfig{
			InputPerMillionUSD:  DefaultInputRate,
			OutputPerMillionUSD: DefaultOutputRate,
		},
		Defaults: DefaultConfig{
			OutputDir: filepath.Join(homeDir, "Documents", "Applications"),
			UploadDir: filepath.Join(homeDir, ".textailor", "uploads"),
		},
	}

	// Write to file
	var data []byte
	data, err = json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}
