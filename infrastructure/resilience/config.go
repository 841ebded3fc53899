package resilience

import (
	"time"

	"github.com/timewave-computer/causality/infrastructure/logging"
	"github.com/timewave-computer/causality/infrastructure/metrics"
)

// BackendCircuitBreakerConfig carries the per-domain settings
// system/coordinator uses to build the CircuitBreaker it wraps around a
// domain's ZkBackend calls.
type BackendCircuitBreakerConfig struct {
	// Domain labels the metrics this configuration's breaker emits.
	Domain string

	// MaxFailures is the number of consecutive failures before opening the circuit
	MaxFailures int

	// TimeoutSeconds is the duration to wait in open state before trying half-open
	TimeoutSeconds int

	// HalfOpenMax is the maximum number of requests allowed in half-open state
	HalfOpenMax int

	// Logger for state change notifications (optional)
	Logger *logging.Logger
}

// DefaultBackendCBConfig returns a circuit breaker configuration suitable
// for most domain backends:
// - MaxFailures: 5
// - Timeout: 30 seconds
// - HalfOpenMax: 3
func DefaultBackendCBConfig(domain string, logger *logging.Logger) Config {
	return BackendCBConfig(BackendCircuitBreakerConfig{
		Domain:         domain,
		MaxFailures:    5,
		TimeoutSeconds: 30,
		HalfOpenMax:    3,
		Logger:         logger,
	})
}

// StrictBackendCBConfig returns a more conservative circuit breaker
// configuration for domains whose backend should fail fast:
// - MaxFailures: 3
// - Timeout: 60 seconds
// - HalfOpenMax: 1
func StrictBackendCBConfig(domain string, logger *logging.Logger) Config {
	return BackendCBConfig(BackendCircuitBreakerConfig{
		Domain:         domain,
		MaxFailures:    3,
		TimeoutSeconds: 60,
		HalfOpenMax:    1,
		Logger:         logger,
	})
}

// LenientBackendCBConfig returns a more lenient circuit breaker
// configuration for domains whose backend can tolerate more failures:
// - MaxFailures: 10
// - Timeout: 15 seconds
// - HalfOpenMax: 5
func LenientBackendCBConfig(domain string, logger *logging.Logger) Config {
	return BackendCBConfig(BackendCircuitBreakerConfig{
		Domain:         domain,
		MaxFailures:    10,
		TimeoutSeconds: 15,
		HalfOpenMax:    5,
		Logger:         logger,
	})
}

// BackendCBConfig builds a Config from cfg. Every state transition
// increments CircuitBreakerTransitions labelled by domain; if cfg.Logger
// is set it also logs the transition at warn level.
func BackendCBConfig(cfg BackendCircuitBreakerConfig) Config {
	cbConfig := Config{
		MaxFailures: cfg.MaxFailures,
		Timeout:     SecondsToDuration(cfg.TimeoutSeconds),
		HalfOpenMax: cfg.HalfOpenMax,
	}

	if cbConfig.MaxFailures <= 0 {
		cbConfig.MaxFailures = 5
	}
	if cbConfig.Timeout <= 0 {
		cbConfig.Timeout = 30 * time.Second
	}
	if cbConfig.HalfOpenMax <= 0 {
		cbConfig.HalfOpenMax = 3
	}

	domain := cfg.Domain
	if domain == "" {
		domain = "unknown"
	}
	cbConfig.OnStateChange = func(from, to State) {
		metrics.CircuitBreakerTransitions.WithLabelValues(domain, to.String()).Inc()
		if cfg.Logger != nil {
			cfg.Logger.WithFields(map[string]interface{}{
				"domain":     domain,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Warn("backend circuit breaker state changed")
		}
	}

	return cbConfig
}

// SecondsToDuration converts seconds to Duration
func SecondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
