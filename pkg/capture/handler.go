package capture

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/scribehq/scribe/pkg/identity"
	"github.com/scribehq/scribe/pkg/manifest"
	"github.com/scribehq/scribe/pkg/session"
)

// Event is a session lifecycle signal, already converted by the caller
// from its OS-level delivery mechanism into a plain value.
type Event int

const (
	// EventFlushRollover flushes buffered output into the console log and
	// rolls a non-empty log into a new immutable part file.
	EventFlushRollover Event = iota

	// EventTruncate discards the console log's content in place. No part
	// file is minted.
	EventTruncate

	// EventResize is forwarded to the terminal layer elsewhere; it has no
	// filesystem effect here.
	EventResize
)

// Handler owns the flush / rollover / truncate transitions for one
// session's console log.
//
// The active log file handle moves through Handle: the caller passes in
// the handle it owns, Handle may close it, and the caller must retain only
// the returned handle. No two live writable handles to the log may exist
// at once.
type Handler struct {
	logPath    string
	sessionDir string
	ids        *identity.Generator
}

// NewHandler returns a handler for the session's console log. A nil gen
// uses a fresh generator.
func NewHandler(sessionDir string, gen *identity.Generator) *Handler {
	if gen == nil {
		gen = identity.NewGenerator()
	}
	return &Handler{
		logPath:    session.ConsoleLogPath(sessionDir),
		sessionDir: sessionDir,
		ids:        gen,
	}
}

// Handle applies one event and returns the handle the caller keeps.
//
// While the mute flag exists in the session directory, flush, rollover and
// truncate are suppressed entirely and the current handle is returned
// unchanged; events are still accepted without error. The flag is checked
// fresh on every call, never cached.
//
// Any filesystem failure aborts the transition and is returned; retry
// policy belongs to the caller.
func (h *Handler) Handle(event Event, buffered []byte, logFile *os.File) (*os.File, error) {
	if event == EventResize {
		return logFile, nil
	}
	if session.Muted(h.sessionDir) {
		return logFile, nil
	}

	switch event {
	case EventFlushRollover:
		if len(buffered) > 0 {
			if _, err := logFile.Write(buffered); err != nil {
				return logFile, fmt.Errorf("capture: flush buffered output: %w", err)
			}
			if err := logFile.Sync(); err != nil {
				return logFile, fmt.Errorf("capture: sync console log: %w", err)
			}
		}
		if err := logFile.Close(); err != nil {
			return nil, fmt.Errorf("capture: close console log: %w", err)
		}
		if err := h.rollover(); err != nil {
			return nil, err
		}
	case EventTruncate:
		if err := logFile.Close(); err != nil {
			return nil, fmt.Errorf("capture: close console log: %w", err)
		}
		if err := truncateOrCreate(h.logPath); err != nil {
			return nil, err
		}
	}
	return h.reopen()
}

// rollover renames a non-empty console log into a new part file, then
// leaves an empty log in place. An empty log is never rolled over, so no
// empty part files are minted. The rename is a single filesystem
// operation: a session directory reader never sees a part file with
// partial content.
func (h *Handler) rollover() error {
	info, err := os.Stat(h.logPath)
	if err == nil && info.Size() > 0 {
		partName := session.PartFileName(h.ids.NextID(), manifest.RoleUser)
		if err := os.Rename(h.logPath, filepath.Join(h.sessionDir, partName)); err != nil {
			return fmt.Errorf("capture: rollover console log: %w", err)
		}
	} else if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("capture: stat console log: %w", err)
	}
	if err := truncateOrCreate(h.logPath); err != nil {
		return err
	}
	return nil
}

func truncateOrCreate(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("capture: reset console log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("capture: reset console log: %w", err)
	}
	return nil
}

func (h *Handler) reopen() (*os.File, error) {
	f, err := os.OpenFile(h.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("capture: reopen console log: %w", err)
	}
	return f, nil
}
