package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Filename is the manifest's name inside a session directory.
const Filename = "manifest.jsonl"

// Path returns the manifest path for a session directory.
func Path(sessionDir string) string {
	return filepath.Join(sessionDir, Filename)
}

// Append serializes rec and appends it, plus a trailing newline, to the
// session's manifest, creating the file if absent. The line and terminator
// are written as one write so concurrent appenders interleave only at line
// granularity. A failed append never leaves a partial line behind a
// successful return.
func Append(sessionDir string, rec Record) error {
	line, err := MarshalRecord(rec)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(Path(sessionDir), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("manifest: open for append: %w", err)
	}
	_, werr := f.Write(append(line, '\n'))
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("manifest: append record: %w", werr)
	}
	if cerr != nil {
		return fmt.Errorf("manifest: close after append: %w", cerr)
	}
	return nil
}

// LoadAll reads the session's manifest and returns every parseable record
// in file order, oldest first. A missing manifest is an empty log, not an
// error. Malformed lines are skipped with a warning.
func LoadAll(sessionDir string) ([]Record, error) {
	body, err := os.ReadFile(Path(sessionDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("manifest: read: %w", err)
	}
	return ParseLines(string(body)), nil
}
