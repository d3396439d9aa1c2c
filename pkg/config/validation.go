package config

import (
	"fmt"
	"strconv"
	"strings"

	errs "fleet-crm/pkg/errors"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error for field '%s' with value '%s': %s", e.Field, e.Value, e.Message)
}

// ConfigValidator collects configuration errors so they can be reported together.
type ConfigValidator struct {
	errors []ValidationError
}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{errors: make([]ValidationError, 0)}
}

func (cv *ConfigValidator) AddError(field, value, message string) {
	cv.errors = append(cv.errors, ValidationError{Field: field, Value: value, Message: message})
}

func (cv *ConfigValidator) HasErrors() bool { return len(cv.errors) > 0 }

func (cv *ConfigValidator) GetErrors() []ValidationError { return cv.errors }

func (cv *ConfigValidator) GetErrorsAsString() string {
	var lines []string
	for _, err := range cv.errors {
		lines = append(lines, err.Error())
	}
	return strings.Join(lines, "\n")
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	v := NewConfigValidator()
	c.validateFormats(v)
	c.validateRanges(v)

	if v.HasErrors() {
		return errs.NewValidation("config.Validate", fmt.Sprintf("configuration validation failed:\n%s", v.GetErrorsAsString()), nil)
	}
	return nil
}

func (c *Config) validateFormats(v *ConfigValidator) {
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		v.AddError("PORT", c.Port, "invalid port number (must be 1-65535)")
	}

	// go-sql-driver DSN: user:pass@tcp(host:3306)/db
	if c.DatabaseURL != "" && (!strings.Contains(c.DatabaseURL, "@") || !strings.Contains(c.DatabaseURL, "/")) {
		v.AddError("DATABASE_URL", maskString(c.DatabaseURL, 8), "invalid database DSN format")
	}

	if c.RedisURL != "" && !strings.HasPrefix(c.RedisURL, "redis://") && !strings.HasPrefix(c.RedisURL, "rediss://") {
		v.AddError("REDIS_URL", maskString(c.RedisURL, 8), "redis URL must start with redis:// or rediss://")
	}

	validLogLevels := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if c.LogLevel != "" && !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		v.AddError("LOG_LEVEL", c.LogLevel, "invalid log level (must be one of: trace, debug, info, warn, error, fatal)")
	}
	if c.LogFormat != "" && c.LogFormat != "json" && c.LogFormat != "text" {
		v.AddError("LOG_FORMAT", c.LogFormat, "invalid log format (must be 'json' or 'text')")
	}
}

func (c *Config) validateRanges(v *ConfigValidator) {
	if c.MatchMinScore < 0 || c.MatchMinScore > 100 {
		v.AddError("MATCH_MIN_SCORE", strconv.FormatFloat(c.MatchMinScore, 'f', -1, 64), "match threshold must be between 0 and 100")
	}
	if c.MatchWorkers < 1 || c.MatchWorkers > 64 {
		v.AddError("MATCH_WORKERS", strconv.Itoa(c.MatchWorkers), "worker count must be between 1 and 64")
	}
	if c.MatchQueueSize < 1 {
		v.AddError("MATCH_QUEUE_SIZE", strconv.Itoa(c.MatchQueueSize), "queue size must be positive")
	}
	if c.MatchRunTimeout <= 0 {
		v.AddError("MATCH_RUN_TIMEOUT", c.MatchRunTimeout.String(), "run timeout must be positive")
	}
	if c.DatabaseURL != "" {
		if c.DBMaxOpenConns < 1 || c.DBMaxOpenConns > 1000 {
			v.AddError("DB_MAX_OPEN_CONNS", strconv.Itoa(c.DBMaxOpenConns), "max open connections must be between 1 and 1000")
		}
		if c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns {
			v.AddError("DB_MAX_IDLE_CONNS", strconv.Itoa(c.DBMaxIdleConns), "max idle connections must be between 0 and max open connections")
		}
	}
	if c.GeocodeRatePerSec <= 0 {
		v.AddError("GEOCODE_RATE_PER_SEC", strconv.FormatFloat(c.GeocodeRatePerSec, 'f', -1, 64), "rate must be positive")
	}
	if c.OpenAIMonthlyLimit < 0 {
		v.AddError("OPENAI_MONTHLY_LIMIT_USD", strconv.FormatFloat(c.OpenAIMonthlyLimit, 'f', -1, 64), "limit cannot be negative")
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// Summary returns the configuration with secrets masked, for logs and the admin page.
func (c *Config) Summary() map[string]interface{} {
	return map[string]interface{}{
		"env":                 c.Env,
		"port":                c.Port,
		"database_url":        maskString(c.DatabaseURL, 8),
		"redis_url":           maskString(c.RedisURL, 8),
		"google_maps_api_key": maskString(c.GoogleMapsAPIKey, 4),
		"openai_api_key":      maskString(c.OpenAIAPIKey, 4),
		"match_min_score":     c.MatchMinScore,
		"stack_name_rules":    c.StackNameRules,
		"match_workers":       c.MatchWorkers,
		"log_level":           c.LogLevel,
		"log_format":          c.LogFormat,
		"metrics_enabled":     c.MetricsEnabled,
	}
}

// maskString masks sensitive strings for logging/display
func maskString(s string, keepFirst int) string {
	if s == "" {
		return ""
	}
	if len(s) <= keepFirst {
		return strings.Repeat("*", len(s))
	}
	return s[:keepFirst] + strings.Repeat("*", len(s)-keepFirst)
}
