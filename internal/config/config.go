package config

import (
	"os"
	"strconv"
	"strings"

	"gotabstat/adapters/datareadiness/coercer"
	"gotabstat/adapters/stats/engine"
	"gotabstat/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig
	Data     DataConfig
	Server   ServerConfig
	Log      LogConfig
}

// AnalysisConfig holds the statistical thresholds
type AnalysisConfig struct {
	StrongCorrelationThreshold float64
	IQRMultiplier              float64
	MaxReportedOutliers        int
	Workers                    int
}

// DataConfig holds input settings
type DataConfig struct {
	ExcelFile     string
	Sheet         string
	NullTokens    []string
	LenientNumber bool
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port                  string
	GinMode               string
	MaxConcurrentAnalyses int
	MaxUploadMB           int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Analysis: loadAnalysisConfig(),
		Data:     loadDataConfig(),
		Server:   loadServerConfig(),
		Log:      LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadAnalysisConfig() AnalysisConfig {
	defaults := engine.DefaultConfig()
	return AnalysisConfig{
		StrongCorrelationThreshold: getEnvFloatOrDefault("STRONG_CORRELATION_THRESHOLD", defaults.StrongCorrelationThreshold),
		IQRMultiplier:              getEnvFloatOrDefault("IQR_MULTIPLIER", defaults.IQRMultiplier),
		MaxReportedOutliers:        getEnvIntOrDefault("MAX_REPORTED_OUTLIERS", defaults.MaxReportedOutliers),
		Workers:                    getEnvIntOrDefault("ANALYSIS_WORKERS", 0),
	}
}

func loadDataConfig() DataConfig {
	nulls := coercer.DefaultNullTokens()
	if raw, ok := os.LookupEnv("NULL_TOKENS"); ok {
		nulls = splitList(raw)
	}
	return DataConfig{
		ExcelFile:     getEnvOrDefault("EXCEL_FILE", ""),
		Sheet:         getEnvOrDefault("EXCEL_SHEET", ""),
		NullTokens:    nulls,
		LenientNumber: getEnvBoolOrDefault("LENIENT_NUMBERS", false),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:                  getEnvOrDefault("PORT", "8080"),
		GinMode:               getEnvOrDefault("GIN_MODE", "release"),
		MaxConcurrentAnalyses: getEnvIntOrDefault("MAX_CONCURRENT_ANALYSES", 4),
		MaxUploadMB:           getEnvIntOrDefault("MAX_UPLOAD_MB", 32),
	}
}

// Validate checks value ranges
func (c *Config) Validate() error {
	a := c.Analysis
	if a.StrongCorrelationThreshold < 0 || a.StrongCorrelationThreshold > 1 {
		return errors.ConfigInvalid("STRONG_CORRELATION_THRESHOLD must be within [0, 1]")
	}
	if a.IQRMultiplier < 0 {
		return errors.ConfigInvalid("IQR_MULTIPLIER must not be negative")
	}
	if a.MaxReportedOutliers < 0 {
		return errors.ConfigInvalid("MAX_REPORTED_OUTLIERS must not be negative")
	}
	if a.Workers < 0 {
		return errors.ConfigInvalid("ANALYSIS_WORKERS must not be negative")
	}
	if c.Server.MaxConcurrentAnalyses < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_ANALYSES must be at least 1")
	}
	if c.Server.MaxUploadMB < 1 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be at least 1")
	}
	return nil
}

// EngineConfig maps the analysis section onto the engine
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		StrongCorrelationThreshold: c.Analysis.StrongCorrelationThreshold,
		IQRMultiplier:              c.Analysis.IQRMultiplier,
		MaxReportedOutliers:        c.Analysis.MaxReportedOutliers,
		Workers:                    c.Analysis.Workers,
	}
}

// CoercionConfig maps the data section onto the cell coercer
func (c *Config) CoercionConfig() coercer.CoercionConfig {
	return coercer.CoercionConfig{
		NullTokens: c.Data.NullTokens,
		Lenient:    c.Data.LenientNumber,
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
