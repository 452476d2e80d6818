package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	// Collection
	Source         string // kubectl, metrics-api, prometheus
	KubectlPath    string
	PrometheusURL  string
	SampleInterval time.Duration
	QueryTimeout   time.Duration
	LookupWorkers  int

	// Exposure
	ListenAddr string

	// Output
	ReportFormat string // html, csv
	ReportOutput string
	Verbose      bool
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	return &Config{
		Source:         getEnv("METRICS_SOURCE", "kubectl"),
		KubectlPath:    getEnv("KUBECTL_PATH", "kubectl"),
		PrometheusURL:  getEnv("PROMETHEUS_URL", "http://localhost:9090"),
		SampleInterval: getEnvDuration("SAMPLE_INTERVAL", time.Second),
		QueryTimeout:   getEnvDuration("QUERY_TIMEOUT", 5*time.Second),
		LookupWorkers:  getEnvInt("LOOKUP_WORKERS", 8),
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		ReportFormat:   getEnv("REPORT_FORMAT", "html"),
		ReportOutput:   getEnv("REPORT_OUTPUT", ""),
		Verbose:        getEnvBool("VERBOSE", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	switch c.Source {
	case "kubectl", "metrics-api", "prometheus":
	default:
		return fmt.Errorf("METRICS_SOURCE must be kubectl, metrics-api or prometheus, got %q", c.Source)
	}
	if c.Source == "prometheus" && c.PrometheusURL == "" {
		return fmt.Errorf("PROMETHEUS_URL must be set when the prometheus source is selected")
	}
	if c.SampleInterval < 100*time.Millisecond {
		return fmt.Errorf("sample interval must be at least 100ms")
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("query timeout must be positive")
	}
	if c.LookupWorkers < 1 {
		return fmt.Errorf("lookup workers must be at least 1")
	}
	return nil
}
