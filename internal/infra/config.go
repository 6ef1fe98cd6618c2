package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	CRMAPIKey        string
	CRMBaseURL       string
	CRMPageSize      int
	SummaryAPIKey    string
	SummaryModel     string
	SummaryBaseURL   string
	GeoIPDBPath      string
	CORSOrigins      []string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults
// where needed. A missing CRM credential or database URL is a configuration
// error: it fails here, before any network or database call is made.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		CRMAPIKey:        os.Getenv("CRM_API_KEY"),
		CRMBaseURL:       getEnv("CRM_BASE_URL", "https://api.bloomerang.co/v2"),
		CRMPageSize:      getEnvInt("CRM_PAGE_SIZE", 50),
		SummaryAPIKey:    os.Getenv("SUMMARY_API_KEY"),
		SummaryModel:     getEnv("SUMMARY_MODEL", "gemini-1.5-flash"),
		SummaryBaseURL:   getEnv("SUMMARY_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.CRMAPIKey == "" {
		return nil, fmt.Errorf("CRM_API_KEY is required")
	}

	if cfg.CRMPageSize < 1 {
		return nil, fmt.Errorf("CRM_PAGE_SIZE must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
