package rcconfig

import "fmt"

// Validate performs ordered, fail-fast validation of every section: stop
// at the first violation and wrap it with the section name that produced
// it.
func (c Config) Validate() error {
	if err := c.validateTop(); err != nil {
		return fmt.Errorf("top-level validation failed: %w", err)
	}
	if err := c.Cache.validate(); err != nil {
		return fmt.Errorf("cache validation failed: %w", err)
	}
	if err := c.Session.validate(); err != nil {
		return fmt.Errorf("session validation failed: %w", err)
	}
	if err := c.Tournament.validate(); err != nil {
		return fmt.Errorf("tournament validation failed: %w", err)
	}
	if err := c.Health.validate(); err != nil {
		return fmt.Errorf("health validation failed: %w", err)
	}
	return nil
}

func (c Config) validateTop() error {
	if c.DefaultTimeBudgetSec <= 0 {
		return newValidationError("top", "default_time_budget_sec", fmt.Errorf("must be positive, got %d", c.DefaultTimeBudgetSec))
	}
	if c.MaxConcurrentRequests < 1 {
		return newValidationError("top", "max_concurrent_requests", fmt.Errorf("must be at least 1, got %d", c.MaxConcurrentRequests))
	}
	switch c.LogLevel {
	case LogLevelError, LogLevelWarn, LogLevelInfo, LogLevelDebug, LogLevelTrace:
	default:
		return newValidationError("top", "log_level", fmt.Errorf("unrecognized level %q", c.LogLevel))
	}
	return nil
}

func (c CacheConfig) validate() error {
	if c.MaxEntries < 1 {
		return newValidationError("cache", "cache_max_entries", fmt.Errorf("must be at least 1, got %d", c.MaxEntries))
	}
	if c.MaxBytes < 1 {
		return newValidationError("cache", "cache_max_bytes", fmt.Errorf("must be at least 1, got %d", c.MaxBytes))
	}
	if c.TTLSec <= 0 {
		return newValidationError("cache", "cache_ttl_sec", fmt.Errorf("must be positive, got %d", c.TTLSec))
	}
	if c.CleanupIntervalSec <= 0 {
		return newValidationError("cache", "cleanup_interval_sec", fmt.Errorf("must be positive, got %d", c.CleanupIntervalSec))
	}
	return nil
}

func (c SessionConfig) validate() error {
	// 50 is a hard ceiling, not a configurable one: callers may lower it
	// but never raise it.
	const hardMaxTurns = 50
	if c.MaxTurns < 1 || c.MaxTurns > hardMaxTurns {
		return newValidationError("session", "max_turns_per_session", fmt.Errorf("must be 1..%d, got %d", hardMaxTurns, c.MaxTurns))
	}
	if c.TimeoutMin <= 0 {
		return newValidationError("session", "session_timeout_min", fmt.Errorf("must be positive, got %d", c.TimeoutMin))
	}
	if c.SweepIntervalSec <= 0 {
		return newValidationError("session", "sweep_interval_sec", fmt.Errorf("must be positive, got %d", c.SweepIntervalSec))
	}
	return nil
}

func (c TournamentConfig) validate() error {
	if c.MaxParallel < 1 || c.MaxParallel > 5 {
		return newValidationError("tournament", "tournament_max_parallel", fmt.Errorf("must be 1..5, got %d", c.MaxParallel))
	}
	if c.DefaultPerMatchSec < 10 || c.DefaultPerMatchSec > 120 {
		return newValidationError("tournament", "tournament_default_per_match_sec", fmt.Errorf("must be 10..120, got %d", c.DefaultPerMatchSec))
	}
	return nil
}

func (c HealthConfig) validate() error {
	if c.CheckIntervalSec <= 0 {
		return newValidationError("health", "health_check_interval_sec", fmt.Errorf("must be positive, got %d", c.CheckIntervalSec))
	}
	return nil
}
