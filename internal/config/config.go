package config

import (
	"os"
	"strconv"
	"time"

	"radartools/domain/target"
	"radartools/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	LogLevel string
	Server   ServerConfig
	Defaults DefaultsConfig
	Sweep    SweepConfig
	Output   OutputConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
}

// DefaultsConfig fills in request fields a caller leaves out
type DefaultsConfig struct {
	Pulses  int
	Pfa     float64
	Variant target.Variant
}

// SweepConfig holds curve sweep settings
type SweepConfig struct {
	Workers  int
	SNRMinDB float64
	SNRMaxDB float64
	StepDB   float64
}

// OutputConfig holds export settings
type OutputConfig struct {
	Dir string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	variant, err := target.ParseVariant(getEnvOrDefault("DEFAULT_VARIANT", "marcum"))
	if err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to load defaults configuration")
	}

	config := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
		Server: ServerConfig{
			Port:           getEnvOrDefault("PORT", "8080"),
			RequestTimeout: getEnvDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		},
		Defaults: DefaultsConfig{
			Pulses:  getEnvIntOrDefault("DEFAULT_PULSES", 1),
			Pfa:     getEnvFloatOrDefault("DEFAULT_PFA", 1e-6),
			Variant: variant,
		},
		Sweep: SweepConfig{
			Workers:  getEnvIntOrDefault("SWEEP_WORKERS", 4),
			SNRMinDB: getEnvFloatOrDefault("SWEEP_SNR_MIN_DB", -5),
			SNRMaxDB: getEnvFloatOrDefault("SWEEP_SNR_MAX_DB", 20),
			StepDB:   getEnvFloatOrDefault("SWEEP_SNR_STEP_DB", 0.5),
		},
		Output: OutputConfig{
			Dir: getEnvOrDefault("OUTPUT_DIR", "."),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration Load produces with an empty environment
func Default() *Config {
	return &Config{
		LogLevel: "INFO",
		Server:   ServerConfig{Port: "8080", RequestTimeout: 30 * time.Second},
		Defaults: DefaultsConfig{Pulses: 1, Pfa: 1e-6, Variant: target.NonFluctuating},
		Sweep:    SweepConfig{Workers: 4, SNRMinDB: -5, SNRMaxDB: 20, StepDB: 0.5},
		Output:   OutputConfig{Dir: "."},
	}
}

func validateConfig(config *Config) error {
	if config.Defaults.Pulses < 1 {
		return errors.ConfigInvalid("DEFAULT_PULSES must be at least 1")
	}
	if config.Defaults.Pfa <= 0 || config.Defaults.Pfa >= 1 {
		return errors.ConfigInvalid("DEFAULT_PFA must be strictly between 0 and 1")
	}
	if config.Sweep.Workers < 1 {
		return errors.ConfigInvalid("SWEEP_WORKERS must be at least 1")
	}
	if config.Sweep.StepDB <= 0 {
		return errors.ConfigInvalid("SWEEP_SNR_STEP_DB must be positive")
	}
	if config.Sweep.SNRMinDB >= config.Sweep.SNRMaxDB {
		return errors.ConfigInvalid("SWEEP_SNR_MIN_DB must be below SWEEP_SNR_MAX_DB")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
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
