package constants

import "time"

// Centralized default values for timeouts, intervals, and related settings.
// These provide sane defaults; environment/config may override where supported.

const (
	// Database
	DBReadTimeoutDefault  = 8 * time.Second
	DBWriteTimeoutDefault = 6 * time.Second
	DBSchemaTimeout       = 30 * time.Second

	// Redis drafts
	RedisConnectTimeout = 10 * time.Second

	// External HTTP APIs (Google geocoding and the circuit default)
	ExternalOperationTimeout = 10 * time.Second
	ExternalOpenFor          = 30 * time.Second

	// OpenAI advisor
	AdvisorOpenFor = 45 * time.Second

	// Health
	HealthTimeoutDefault = 5 * time.Second

	// App shutdown
	GracefulShutdownTimeoutDefault = 10 * time.Second
	EngineStopTimeoutDefault       = 30 * time.Second
)
