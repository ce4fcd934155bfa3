package session

import (
	"fmt"
	"os"
	"strconv"
)

// Muted reports whether the session's mute flag is present. Callers check
// this fresh before every capture-layer write; the result is never cached.
func Muted(sessionDir string) bool {
	_, err := os.Stat(MuteFlagPath(sessionDir))
	return err == nil
}

// SetMuted creates or removes the mute flag.
func SetMuted(sessionDir string, muted bool) error {
	if err := checkSessionDir(sessionDir); err != nil {
		return err
	}
	if muted {
		f, err := os.OpenFile(MuteFlagPath(sessionDir), os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("session: create mute flag: %w", err)
		}
		return f.Close()
	}
	if err := os.Remove(MuteFlagPath(sessionDir)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: remove mute flag: %w", err)
	}
	return nil
}

// WritePID records the owning shell's pid in the session's pid marker so
// other processes can signal it.
func WritePID(sessionDir string, pid int) error {
	if err := checkSessionDir(sessionDir); err != nil {
		return err
	}
	return os.WriteFile(PIDPath(sessionDir), []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

// ReadPID returns the recorded pid, or 0 when the marker is missing or
// unparseable.
func ReadPID(sessionDir string) int {
	body, err := os.ReadFile(PIDPath(sessionDir))
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(string(trimNewline(body)))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
