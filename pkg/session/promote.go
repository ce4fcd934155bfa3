package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/scribehq/scribe/pkg/manifest"
)

// evacuatedDirName holds processed part files after review so they are
// never scanned twice.
const evacuatedDirName = "leakscan_evacuated"

// Promotion is the outcome of the external sensitivity review of one part
// file. The scan itself happens outside this package; Promote only
// persists its result.
type Promotion struct {
	// PartName is the basename of the reviewed part file.
	PartName string

	// Decision is the reviewer's verdict.
	Decision manifest.Decision

	// Content is what the reviewed file will hold: the original text on
	// allow, the masked text on mask. Ignored on deny.
	Content string
}

// Promote applies a review decision: on allow or mask it writes the
// reviewed file, then moves the part file into the evacuated
// subdirectory and appends the message record. On deny no reviewed file
// is written and the record carries an empty reviewed path; the part is
// still evacuated so it is not re-reviewed. Returns the appended record.
func Promote(sessionDir string, p Promotion) (*manifest.MessageRecord, error) {
	if err := checkSessionDir(sessionDir); err != nil {
		return nil, err
	}
	role, ok := PartRole(p.PartName)
	if !ok {
		return nil, fmt.Errorf("session: not a part filename: %q", p.PartName)
	}
	if !p.Decision.Valid() {
		return nil, fmt.Errorf("session: unknown decision %q", p.Decision)
	}
	id := strings.TrimPrefix(p.PartName, partPrefix)[:idWidth]

	rec := manifest.MessageRecord{
		V:         manifest.RecordVersion,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		ID:        id,
		Role:      role,
		PartPath:  p.PartName,
		Decision:  p.Decision,
	}
	if p.Decision != manifest.DecisionDeny {
		reviewedName := ReviewedFileName(id, role)
		reviewedPath := filepath.Join(sessionDir, reviewedName)
		if err := os.WriteFile(reviewedPath, []byte(p.Content), 0o600); err != nil {
			return nil, fmt.Errorf("session: write reviewed file %s: %w", reviewedName, err)
		}
		rec.ReviewedPath = reviewedName
		rec.Bytes = int64(len(p.Content))
		rec.Hash64 = manifest.Fingerprint(p.Content)
	}

	if err := evacuatePart(sessionDir, p.PartName); err != nil {
		return nil, err
	}
	if err := manifest.Append(sessionDir, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func evacuatePart(sessionDir, partName string) error {
	evacuated := filepath.Join(sessionDir, evacuatedDirName)
	if err := os.MkdirAll(evacuated, 0o750); err != nil {
		return fmt.Errorf("session: create evacuated directory: %w", err)
	}
	src := filepath.Join(sessionDir, partName)
	if err := os.Rename(src, filepath.Join(evacuated, partName)); err != nil {
		return fmt.Errorf("session: evacuate part %s: %w", partName, err)
	}
	return nil
}

// PendingParts lists the session's part files awaiting review, oldest
// first. A missing or non-directory session yields an empty list.
func PendingParts(sessionDir string) ([]string, error) {
	if !sessionDirUsable(sessionDir) {
		return nil, nil
	}
	entries, err := os.ReadDir(sessionDir)
	if err != nil {
		return nil, fmt.Errorf("session: list session directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if _, ok := PartRole(e.Name()); ok && e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
