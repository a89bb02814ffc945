// Package rcconfig models the configuration contract the core reads: the
// shape, defaults, and validation of the values, plus Load, which overlays
// a YAML file on the defaults. Environment handling is left to the caller.
package rcconfig

import "time"

// LogLevel mirrors the recognized logLevel enum.
type LogLevel string

const (
	LogLevelError LogLevel = "error"
	LogLevelWarn  LogLevel = "warn"
	LogLevelInfo  LogLevel = "info"
	LogLevelDebug LogLevel = "debug"
	LogLevelTrace LogLevel = "trace"
)

// Config is the full set of recognized settings, plus the
// sub-structs each component validates and consumes directly.
type Config struct {
	DefaultTimeBudgetSec        int      `yaml:"default_time_budget_sec"`
	MaxConcurrentRequests       int      `yaml:"max_concurrent_requests"`
	LogLevel                    LogLevel `yaml:"log_level"`

	Cache      CacheConfig      `yaml:"cache"`
	Session    SessionConfig    `yaml:"session"`
	Tournament TournamentConfig `yaml:"tournament"`
	Health     HealthConfig     `yaml:"health"`
}

// CacheConfig is consumed by pkg/cache.
type CacheConfig struct {
	TTLSec     int `yaml:"cache_ttl_sec"`
	MaxEntries int `yaml:"cache_max_entries"`
	MaxBytes   int64 `yaml:"cache_max_bytes"`
	CleanupIntervalSec int `yaml:"cleanup_interval_sec"`
}

// SessionConfig is consumed by pkg/convo.
type SessionConfig struct {
	TimeoutMin      int `yaml:"session_timeout_min"`
	MaxTurns        int `yaml:"max_turns_per_session"`
	SweepIntervalSec int `yaml:"sweep_interval_sec"`
}

// TournamentConfig holds the tournament settings. It is loaded and
// validated only; pkg/tournament takes its Config per call and does not
// read these values.
type TournamentConfig struct {
	MaxParallel       int `yaml:"tournament_max_parallel"`
	DefaultPerMatchSec int `yaml:"tournament_default_per_match_sec"`
}

// HealthConfig holds the health-check interval. It is loaded and validated
// only; pkg/health runs checks on demand and does not read it.
type HealthConfig struct {
	CheckIntervalSec int `yaml:"health_check_interval_sec"`
}

// Defaults returns the baseline configuration: 60s default budget, 30min
// session timeout, 50-turn cap, 3-way max parallel tournament matches
// with a 30s per-match budget, 5min sweep.
func Defaults() Config {
	return Config{
		DefaultTimeBudgetSec:  60,
		MaxConcurrentRequests: 32,
		LogLevel:              LogLevelInfo,
		Cache: CacheConfig{
			TTLSec:             300,
			MaxEntries:         10_000,
			MaxBytes:           64 << 20,
			CleanupIntervalSec: 60,
		},
		Session: SessionConfig{
			TimeoutMin:       30,
			MaxTurns:         50,
			SweepIntervalSec: 300,
		},
		Tournament: TournamentConfig{
			MaxParallel:        3,
			DefaultPerMatchSec: 30,
		},
		Health: HealthConfig{
			CheckIntervalSec: 30,
		},
	}
}

// SessionTimeout returns the configured idle timeout as a time.Duration.
func (c SessionConfig) SessionTimeout() time.Duration {
	return time.Duration(c.TimeoutMin) * time.Minute
}

// SweepInterval returns the configured background sweep cadence.
func (c SessionConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSec) * time.Second
}

// TTL returns the configured default cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// CleanupInterval returns the configured cache sweep cadence.
func (c CacheConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSec) * time.Second
}

// PerMatchTimeout returns the configured default tournament match budget.
func (c TournamentConfig) PerMatchTimeout() time.Duration {
	return time.Duration(c.DefaultPerMatchSec) * time.Second
}

// CheckInterval returns the configured health-check polling cadence.
func (c HealthConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSec) * time.Second
}
