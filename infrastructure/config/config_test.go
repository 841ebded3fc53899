package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()
	require.Equal(t, 50, cfg.TegExecutor.StealTimeoutMs)
	require.True(t, cfg.TegExecutor.AdaptiveScheduling)
	require.True(t, cfg.Zk.EnableCircuitCaching)
	require.Equal(t, 1000, cfg.Cache.MaxEntries)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "causality.yaml")
	yamlContent := []byte("teg_executor:\n  worker_count: 16\n  node_timeout_ms: 5000\n")
	require.NoError(t, os.WriteFile(path, yamlContent, 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 16, cfg.TegExecutor.WorkerCount)
	require.Equal(t, 5000, cfg.TegExecutor.NodeTimeoutMs)
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	cfg, err := LoadFile("/nonexistent/path/causality.yaml")
	require.NoError(t, err)
	require.NotNil(t, cfg)
}

func TestEnvOverridesWorkerCount(t *testing.T) {
	t.Setenv("TEG_WORKER_COUNT", "4")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 4, cfg.TegExecutor.WorkerCount)
}
