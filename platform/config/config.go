// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// WebhookConfig provides settings for the inbound webhook pipeline.
type WebhookConfig interface {
	GetWebhookSecret() string
	GetSourceTenantID() string
	GetDefaultApplicationID() string
	IsDryRun() bool
}

// VendorConfig provides settings for the identity platform API client.
type VendorConfig interface {
	GetVendorBaseURL() string
	GetVendorClientID() string
	GetVendorAPIKey() string
	GetVendorTokenTTL() time.Duration
}

// AlertConfig provides settings for operational alert emails.
type AlertConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetAlertFromName() string
	GetAlertFromAddress() string
	GetAlertToAddress() string
	IsAlertingEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	CORSAllowAll         bool
	CORSOrigins          []string
	CORSAllowCreds       bool
	WebhookSecret        string
	SourceTenantID       string
	DefaultApplicationID string
	DryRun               bool
	VendorBaseURL        string
	VendorClientID       string
	VendorAPIKey         string
	VendorTokenTTL       time.Duration
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	AlertFromName        string
	AlertFromAddress     string
	AlertToAddress       string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// WebhookConfig implementation
func (c *Config) GetWebhookSecret() string        { return c.WebhookSecret }
func (c *Config) GetSourceTenantID() string       { return c.SourceTenantID }
func (c *Config) GetDefaultApplicationID() string { return c.DefaultApplicationID }
func (c *Config) IsDryRun() bool                  { return c.DryRun }

// VendorConfig implementation
func (c *Config) GetVendorBaseURL() string         { return c.VendorBaseURL }
func (c *Config) GetVendorClientID() string        { return c.VendorClientID }
func (c *Config) GetVendorAPIKey() string          { return c.VendorAPIKey }
func (c *Config) GetVendorTokenTTL() time.Duration { return c.VendorTokenTTL }

// AlertConfig implementation
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetAlertFromName() string    { return c.AlertFromName }
func (c *Config) GetAlertFromAddress() string { return c.AlertFromAddress }
func (c *Config) GetAlertToAddress() string   { return c.AlertToAddress }
func (c *Config) IsAlertingEnabled() bool {
	return c.SMTPHost != "" && c.AlertToAddress != "" && c.AlertFromAddress != ""
}

// Load reads configuration from environment variables.
//
// Vendor credentials and the webhook secret are deliberately not required
// here: the pipeline validates them at call time, so a misconfigured
// instance still boots, serves health checks, and reports the missing
// value on the first request that needs it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		CORSAllowCreds:       strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		WebhookSecret:        getEnv("WEBHOOK_SECRET", ""),
		SourceTenantID:       getEnv("SOURCE_TENANT_ID", ""),
		DefaultApplicationID: getEnv("DEFAULT_APPLICATION_ID", ""),
		DryRun:               strings.EqualFold(getEnv("DRY_RUN", "false"), "true"),
		VendorBaseURL:        strings.TrimRight(getEnv("IDP_BASE_URL", ""), "/"),
		VendorClientID:       getEnv("IDP_CLIENT_ID", ""),
		VendorAPIKey:         getEnv("IDP_API_KEY", ""),
		VendorTokenTTL:       mustDuration(getEnv("IDP_TOKEN_TTL", "6h")),
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             int(mustInt64(getEnv("SMTP_PORT", "587"))),
		SMTPUsername:         getEnv("SMTP_USERNAME", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		AlertFromName:        getEnv("ALERT_FROM_NAME", "Tenantsync"),
		AlertFromAddress:     getEnv("ALERT_FROM_ADDRESS", ""),
		AlertToAddress:       getEnv("ALERT_TO_ADDRESS", ""),
	}

	if cfg.VendorTokenTTL <= 0 {
		return nil, fmt.Errorf("IDP_TOKEN_TTL must be a positive duration")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
