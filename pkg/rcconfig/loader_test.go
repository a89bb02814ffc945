package rcconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_OverlaysYAMLOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reasonctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_concurrent_requests: 8\ncache:\n  cache_max_entries: 500\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxConcurrentRequests)
	assert.Equal(t, 500, cfg.Cache.MaxEntries)
	assert.Equal(t, Defaults().Session, cfg.Session, "sections not present in the file keep their default values")
}

func TestLoad_RejectsInvalidOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reasonctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_concurrent_requests: 0\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reasonctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
