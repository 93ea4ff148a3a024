package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ensureFiles(t *testing.T, rootDir string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := rootify(f, rootDir)
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}
}

func TestEnsureRoot(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, EnsureRoot(tmpDir))

	data, err := os.ReadFile(filepath.Join(tmpDir, defaultConfigFilePath))
	require.NoError(t, err)
	checkConfig(t, string(data))
	require.Contains(t, string(data), "'plain' (plain text)")

	ensureFiles(t, tmpDir, "data", "config")
}

func TestEnsureRootKeepsExistingFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, EnsureRoot(tmpDir))

	path := filepath.Join(tmpDir, defaultConfigFilePath)
	require.NoError(t, os.WriteFile(path, []byte("log-level = \"debug\"\n"), 0600))

	require.NoError(t, EnsureRoot(tmpDir))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "log-level = \"debug\"\n", string(data))
}

func TestTemplateIsValidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, EnsureRoot(tmpDir))

	var raw map[string]interface{}
	_, err := toml.DecodeFile(filepath.Join(tmpDir, defaultConfigFilePath), &raw)
	require.NoError(t, err)
	require.Contains(t, raw, "sync")
	require.Contains(t, raw, "instrumentation")
}

func TestLoadFileRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, EnsureRoot(tmpDir))

	cfg := DefaultConfig()
	cfg.LogFormat = LogFormatJSON
	cfg.Sync.TargetHeight = 123
	cfg.Sync.BlockInterval = 250 * time.Millisecond
	cfg.Sync.WaitTimeout = time.Minute
	cfg.Instrumentation.Prometheus = true
	require.NoError(t, WriteConfigFile(tmpDir, cfg))

	loaded, err := LoadFile(tmpDir)
	require.NoError(t, err)
	require.Equal(t, tmpDir, loaded.RootDir)
	require.Equal(t, LogFormatJSON, loaded.LogFormat)
	require.Equal(t, int64(123), loaded.Sync.TargetHeight)
	require.Equal(t, 250*time.Millisecond, loaded.Sync.BlockInterval)
	require.Equal(t, time.Minute, loaded.Sync.WaitTimeout)
	require.True(t, loaded.Instrumentation.Prometheus)
}

func TestLoadFilePartial(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, EnsureRoot(tmpDir))

	path := filepath.Join(tmpDir, defaultConfigFilePath)
	require.NoError(t, os.WriteFile(path, []byte("[sync]\ntarget-height = 42\n"), 0600))

	loaded, err := LoadFile(tmpDir)
	require.NoError(t, err)
	require.Equal(t, int64(42), loaded.Sync.TargetHeight)
	require.Equal(t, DefaultSyncConfig().BatchSize, loaded.Sync.BatchSize)
	require.Equal(t, DefaultLogLevel, loaded.LogLevel)
}

func TestLoadFileErrors(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, EnsureRoot(tmpDir))
	path := filepath.Join(tmpDir, defaultConfigFilePath)

	require.NoError(t, os.WriteFile(path, []byte("[sync]\nblock-interval = \"soon\"\n"), 0600))
	_, err := LoadFile(tmpDir)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[sync]\nbatch-size = 0\n"), 0600))
	_, err = LoadFile(tmpDir)
	require.Error(t, err)

	_, err = LoadFile(filepath.Join(tmpDir, "missing"))
	require.Error(t, err)
}

func checkConfig(t *testing.T, configFile string) {
	t.Helper()
	// list of words we expect in the config
	var elems = []string{
		"log-level",
		"log-format",
		"chain-id",
		"peer-id",
		"target-height",
		"batch-size",
		"block-interval",
		"wait-timeout",
		"prometheus",
		"namespace",
	}
	for _, e := range elems {
		if !strings.Contains(configFile, e) {
			t.Errorf("config file was expected to contain %s but did not", e)
		}
	}
}
