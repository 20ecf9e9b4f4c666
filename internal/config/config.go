package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"dbsinterval/domain/interval"
	"dbsinterval/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	API       APIConfig
	Chart     ChartConfig
	Model     ModelConfig
	Logging   LoggingConfig
	Profiling ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// APIConfig holds JSON API settings
type APIConfig struct {
	Port string
}

// ChartConfig holds chart canvas settings in pixels
type ChartConfig struct {
	Width  int
	Height int
}

// ModelConfig holds evaluation defaults
type ModelConfig struct {
	DefaultVariant string
}

// Variant resolves DefaultVariant against the known curve variants.
func (m ModelConfig) Variant() (interval.Variant, error) {
	v, err := interval.ParseVariant(m.DefaultVariant)
	if err != nil {
		return interval.Variant{}, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return v, nil
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level   string
	NoColor bool
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// LoadDotEnv loads a .env file when present. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		API:       APIConfig{Port: getEnvOrDefault("API_PORT", "8081")},
		Chart:     *loadChartConfig(),
		Model:     ModelConfig{DefaultVariant: getEnvOrDefault("DEFAULT_VARIANT", interval.VariantTEa.Name)},
		Logging:   *loadLoggingConfig(),
		Profiling: *loadProfilingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		GinMode:         getEnvOrDefault("GIN_MODE", "debug"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadChartConfig() *ChartConfig {
	return &ChartConfig{
		Width:  getEnvIntOrDefault("CHART_WIDTH", 1200),
		Height: getEnvIntOrDefault("CHART_HEIGHT", 900),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:   getEnvOrDefault("LOG_LEVEL", "INFO"),
		NoColor: getEnvBoolOrDefault("NO_COLOR", false),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	for name, port := range map[string]string{
		"PORT":     config.Server.Port,
		"API_PORT": config.API.Port,
	} {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 || n > 65535 {
			return errors.ConfigInvalid(name + " must be a port number")
		}
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be debug, release or test")
	}
	if config.Chart.Width < 320 || config.Chart.Height < 240 {
		return errors.ConfigInvalid("chart canvas must be at least 320x240")
	}
	if _, err := config.Model.Variant(); err != nil {
		return err
	}
	if config.Server.ShutdownTimeout <= 0 {
		return errors.ConfigInvalid("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
