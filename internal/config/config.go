package config

import (
	"os"
	"strconv"
	"strings"

	"catalogqa/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig  `validate:"required"`
	ACL       ACLConfig     `validate:"required"`
	Upload    UploadConfig  `validate:"required"`
	Forward   ForwardConfig `validate:"required"`
	Profiling ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string `validate:"required"`
	CORSOrigins []string
}

// ACLConfig holds upstream catalog service settings
type ACLConfig struct {
	BaseURL   string
	StoreName string
}

// UploadConfig holds spreadsheet upload settings
type UploadConfig struct {
	MaxUploadMB int64
}

// ForwardConfig holds batch forwarding settings
type ForwardConfig struct {
	BatchSize   int
	Concurrency int
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		ACL:       *loadACLConfig(),
		Upload:    *loadUploadConfig(),
		Forward:   *loadForwardConfig(),
		Profiling: *loadProfilingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	origins := strings.Split(getEnvOrDefault("CORS_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return &ServerConfig{
		Port:        getEnvOrDefault("PORT", "8080"),
		CORSOrigins: origins,
	}
}

func loadACLConfig() *ACLConfig {
	return &ACLConfig{
		BaseURL:   getEnvOrDefault("ACL_BASE_URL", ""),
		StoreName: getEnvOrDefault("STORE_NAME", "STORE"),
	}
}

func loadUploadConfig() *UploadConfig {
	return &UploadConfig{
		MaxUploadMB: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 25)),
	}
}

func loadForwardConfig() *ForwardConfig {
	return &ForwardConfig{
		BatchSize:   getEnvIntOrDefault("BATCH_SIZE", 500),
		Concurrency: getEnvIntOrDefault("BATCH_CONCURRENCY", 3),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Upload.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("max upload size must be positive")
	}
	if config.Forward.BatchSize <= 0 {
		return errors.ConfigInvalid("batch size must be positive")
	}
	if config.Forward.Concurrency <= 0 {
		return errors.ConfigInvalid("batch concurrency must be positive")
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
