package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scribehq/scribe/pkg/identity"
	"github.com/scribehq/scribe/pkg/manifest"
)

// PartStore writes raw, not-yet-reviewed part files into a session
// directory, naming each one with a freshly minted identifier.
type PartStore struct {
	ids *identity.Generator
}

// NewPartStore returns a store minting identifiers from gen. A nil gen
// uses the process-wide default generator.
func NewPartStore(gen *identity.Generator) *PartStore {
	if gen == nil {
		gen = identity.NewGenerator()
	}
	return &PartStore{ids: gen}
}

// SaveUser persists a user query as a new part file and returns its path.
// The stored bytes always end in exactly one newline: one is appended if
// missing, never duplicated. It fails with ErrInvalidSession if the
// session directory is missing or not a directory.
func (s *PartStore) SaveUser(sessionDir, content string) (string, error) {
	if err := checkSessionDir(sessionDir); err != nil {
		return "", err
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return s.write(sessionDir, manifest.RoleUser, content)
}

// SaveAssistant persists an assistant response verbatim as a new part file
// and returns its path.
func (s *PartStore) SaveAssistant(sessionDir, content string) (string, error) {
	if err := checkSessionDir(sessionDir); err != nil {
		return "", err
	}
	return s.write(sessionDir, manifest.RoleAssistant, content)
}

func (s *PartStore) write(sessionDir string, role manifest.Role, content string) (string, error) {
	name := PartFileName(s.ids.NextID(), role)
	path := filepath.Join(sessionDir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("session: write part file %s: %w", name, err)
	}
	return path, nil
}

// LoadPartHistory assembles a history from raw part files, oldest first.
// It is the fallback used when review is disabled; reviewed history comes
// from LoadReviewedHistory. A missing or non-directory session yields an
// empty history.
func LoadPartHistory(sessionDir string) (History, error) {
	if !sessionDirUsable(sessionDir) {
		return nil, nil
	}
	entries, err := os.ReadDir(sessionDir)
	if err != nil {
		return nil, fmt.Errorf("session: list session directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := PartRole(e.Name()); ok && e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	// Identifiers are time-ordered, so lexicographic order is
	// chronological order.
	return readHistoryFiles(sessionDir, names, PartRole), nil
}
