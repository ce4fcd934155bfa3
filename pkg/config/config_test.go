package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.SessionDir)
	assert.Equal(t, DefaultHistoryLoadMax, cfg.HistoryLoadMax)
	assert.False(t, cfg.Compaction.Enabled)
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := strings.Join([]string{
		"session_dir: /tmp/scribe-session",
		"history_load_max: 25",
		"compaction:",
		"  enabled: true",
		"  trigger_messages: 120",
		"  chunk_messages: 60",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/scribe-session", cfg.SessionDir)
	assert.Equal(t, 25, cfg.HistoryLoadMax)
	assert.True(t, cfg.Compaction.Enabled)
	assert.Equal(t, 120, cfg.Compaction.TriggerMessages)
	assert.Equal(t, 60, cfg.Compaction.ChunkMessages)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session_dir: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session_dir: /from/file\nhistory_load_max: 10\n"), 0o600))

	t.Setenv("SCRIBE_SESSION", "/from/env")
	t.Setenv("SCRIBE_HISTORY_LOAD_MAX", "99")
	t.Setenv("SCRIBE_COMPACTION_ENABLE", "1")
	t.Setenv("SCRIBE_COMPACTION_TRIGGER_MESSAGES", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.SessionDir)
	assert.Equal(t, 99, cfg.HistoryLoadMax)
	assert.True(t, cfg.Compaction.Enabled)
	assert.Equal(t, 7, cfg.Compaction.TriggerMessages)
}

func TestEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("SCRIBE_HISTORY_LOAD_MAX", "not-a-number")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryLoadMax, cfg.HistoryLoadMax)
}

func TestResolveSessionDirExplicitWins(t *testing.T) {
	cfg := &Config{SessionDir: "/explicit"}
	dir, err := cfg.ResolveSessionDir()
	require.NoError(t, err)
	assert.Equal(t, "/explicit", dir)
}

func TestResolveSessionDirUsesXDGStateHome(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/xdg/state")
	cfg := &Config{}
	dir, err := cfg.ResolveSessionDir()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dir, filepath.Join("/xdg/state", "scribe", "sessions")+string(filepath.Separator)))
}

func TestSessionDirname(t *testing.T) {
	ts := time.Date(2025, 6, 1, 13, 4, 5, int(987*time.Millisecond), time.Local)
	assert.Equal(t, "20250601_130405_987", sessionDirname(ts))
}
