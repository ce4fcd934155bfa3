// Package config loads scribe's configuration: a YAML file under the user
// config directory, with environment variables taking precedence, and the
// rules for resolving which session directory a run uses.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultHistoryLoadMax bounds history loading when the file and
// environment are silent.
const DefaultHistoryLoadMax = 50

// Compaction holds the deterministic-compaction thresholds.
type Compaction struct {
	Enabled         bool `yaml:"enabled"`
	TriggerMessages int  `yaml:"trigger_messages"`
	ChunkMessages   int  `yaml:"chunk_messages"`
}

// Config is the full configuration for one run.
type Config struct {
	// SessionDir pins the session directory explicitly. Empty means the
	// XDG-based default is resolved per ResolveSessionDir.
	SessionDir string `yaml:"session_dir"`

	// HistoryLoadMax bounds how many reviewed turns are loaded back into
	// conversational history.
	HistoryLoadMax int `yaml:"history_load_max"`

	Compaction Compaction `yaml:"compaction"`
}

// DefaultPath returns the default config file location,
// ~/.scribe/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".scribe", "config.yaml"), nil
}

// Load reads the config file at path (DefaultPath when empty), then
// applies environment overrides. A missing file is not an error; defaults
// apply.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{HistoryLoadMax: DefaultHistoryLoadMax}
	body, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No file: defaults plus environment.
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(body, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if cfg.HistoryLoadMax <= 0 {
			cfg.HistoryLoadMax = DefaultHistoryLoadMax
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets the environment override file values. Invalid numeric
// values are ignored rather than fatal.
func (c *Config) applyEnv() {
	if v := os.Getenv("SCRIBE_SESSION"); v != "" {
		c.SessionDir = v
	}
	if n, ok := envInt("SCRIBE_HISTORY_LOAD_MAX"); ok && n > 0 {
		c.HistoryLoadMax = n
	}
	if v := os.Getenv("SCRIBE_COMPACTION_ENABLE"); v != "" {
		c.Compaction.Enabled = v == "1"
	}
	if n, ok := envInt("SCRIBE_COMPACTION_TRIGGER_MESSAGES"); ok && n > 0 {
		c.Compaction.TriggerMessages = n
	}
	if n, ok := envInt("SCRIBE_COMPACTION_CHUNK_MESSAGES"); ok && n > 0 {
		c.Compaction.ChunkMessages = n
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ResolveSessionDir picks the session directory for a run: an explicit
// SessionDir wins; otherwise a fresh timestamped name under
// $XDG_STATE_HOME/scribe/sessions (~/.local/state/scribe/sessions when
// XDG_STATE_HOME is unset).
//
// The returned directory is not created; session writers require the
// caller to have created it deliberately.
func (c *Config) ResolveSessionDir() (string, error) {
	if c.SessionDir != "" {
		return c.SessionDir, nil
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: resolve home directory: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "scribe", "sessions", sessionDirname(time.Now())), nil
}

// sessionDirname formats a session directory name as YYYYMMDD_HHMMSS_mmm
// in local time.
func sessionDirname(t time.Time) string {
	return fmt.Sprintf("%s_%03d", t.Format("20060102_150405"), t.Nanosecond()/int(time.Millisecond))
}
