package session

import (
	"fmt"
	"os"
	"sort"
)

// ListReviewed returns the names of the session's well-formed reviewed
// files in lexicographic (hence chronological) order. Only regular files
// whose names match the reviewed convention exactly are returned. A
// missing or non-directory session yields an empty list.
func ListReviewed(sessionDir string) ([]string, error) {
	if !sessionDirUsable(sessionDir) {
		return nil, nil
	}
	entries, err := os.ReadDir(sessionDir)
	if err != nil {
		return nil, fmt.Errorf("session: list session directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if _, ok := ReviewedRole(e.Name()); ok && e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// LoadReviewedHistory assembles a history from reviewed files only. Part
// files are never read here: promotion through review is the boundary
// between captured bytes and content eligible to re-enter the
// conversation.
func LoadReviewedHistory(sessionDir string) (History, error) {
	names, err := ListReviewed(sessionDir)
	if err != nil {
		return nil, err
	}
	return readHistoryFiles(sessionDir, names, ReviewedRole), nil
}
