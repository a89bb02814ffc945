package rcconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_ValidatesClean(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestValidate_RejectsTournamentMaxParallelOutOfRange(t *testing.T) {
	cfg := Defaults()
	cfg.Tournament.MaxParallel = 6
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tournament validation failed")
}

func TestValidate_RejectsSessionMaxTurnsAboveHardCeiling(t *testing.T) {
	cfg := Defaults()
	cfg.Session.MaxTurns = 51
	require.Error(t, cfg.Validate())
}

func TestValidate_RejectsUnknownLogLevel(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "verbose"
	require.Error(t, cfg.Validate())
}

func TestValidate_FailsFastOnFirstSection(t *testing.T) {
	cfg := Defaults()
	cfg.Cache.MaxEntries = 0
	cfg.Session.MaxTurns = 999 // would also fail, but cache is checked first
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache validation failed")
}

func TestDurationHelpers(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 30*60, int(cfg.Session.SessionTimeout().Seconds()))
	assert.Equal(t, cfg.Cache.TTLSec, int(cfg.Cache.TTL().Seconds()))
	assert.Equal(t, cfg.Tournament.DefaultPerMatchSec, int(cfg.Tournament.PerMatchTimeout().Seconds()))
}
