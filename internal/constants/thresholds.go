package constants

// Centralized threshold values used across the application.
// These are not configuration knobs; use pkg/config for env-driven settings.

const (
	// Circuit breaker defaults for third-party HTTP APIs
	CircuitMaxConsecFailures = 5
	CircuitWindowSize        = 20
	CircuitMinSamples        = 10
	CircuitFailureRate       = 0.5
	// OpenAI fails in bursts; open on a smaller share of the window
	AdvisorCircuitFailureRate = 0.4

	// Processor health: degraded once more than this share of runs failed
	ProcessorFailedRunRatio = 0.5
)
