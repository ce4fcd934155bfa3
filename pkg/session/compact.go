package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/scribehq/scribe/pkg/manifest"
)

const (
	defaultCompactionTrigger = 200
	defaultCompactionChunk   = 100
	maxSummaryBulletChars    = 320
)

// CompactionConfig controls deterministic compaction.
type CompactionConfig struct {
	// Enabled gates compaction entirely.
	Enabled bool

	// TriggerMessages is how many un-compacted message records must
	// accumulate before a chunk is folded. Zero means the default (200).
	TriggerMessages int

	// ChunkMessages is how many records one compaction folds. Zero means
	// the default (100).
	ChunkMessages int
}

// MaybeCompact folds the oldest un-compacted chunk of message records into
// a summary file and appends a compaction record, when the configured
// trigger is exceeded. It returns the appended record, or nil when nothing
// was compacted. Prior manifest records are never touched: a compaction
// supersedes them logically, not physically.
func MaybeCompact(sessionDir string, records []manifest.Record, cfg CompactionConfig) (*manifest.CompactionRecord, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	trigger := cfg.TriggerMessages
	if trigger <= 0 {
		trigger = defaultCompactionTrigger
	}
	chunk := cfg.ChunkMessages
	if chunk <= 0 {
		chunk = defaultCompactionChunk
	}

	var messages []*manifest.MessageRecord
	lastToID := ""
	for _, rec := range records {
		if msg := manifest.Message(rec); msg != nil {
			messages = append(messages, msg)
		} else if comp := manifest.Compaction(rec); comp != nil {
			lastToID = comp.ToID
		}
	}
	if len(messages) <= trigger {
		return nil, nil
	}

	var candidates []*manifest.MessageRecord
	for _, msg := range messages {
		if lastToID == "" || msg.ID > lastToID {
			candidates = append(candidates, msg)
		}
	}
	if len(candidates) <= trigger {
		return nil, nil
	}

	selected := candidates
	if len(selected) > chunk {
		selected = selected[:chunk]
	}
	fromID := selected[0].ID
	toID := selected[len(selected)-1].ID

	summaryName := SummaryFileName(fromID, toID)
	summary := buildSummary(sessionDir, selected)
	if err := os.WriteFile(filepath.Join(sessionDir, summaryName), []byte(summary), 0o600); err != nil {
		return nil, fmt.Errorf("session: write compaction summary %s: %w", summaryName, err)
	}

	rec := manifest.CompactionRecord{
		V:           manifest.RecordVersion,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		FromID:      fromID,
		ToID:        toID,
		SummaryPath: summaryName,
		Method:      "deterministic",
		SourceCount: len(selected),
	}
	if err := manifest.Append(sessionDir, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// buildSummary renders one bullet per source record: the first line of its
// reviewed content, truncated. Unreadable sources get a placeholder so the
// summary still accounts for every folded record.
func buildSummary(sessionDir string, selected []*manifest.MessageRecord) string {
	var b strings.Builder
	b.WriteString("# Compaction summary (deterministic)\n")
	for _, msg := range selected {
		body := "[unreadable reviewed content]"
		if IsSafeReviewedBasename(msg.ReviewedPath) {
			if resolved := ResolveUnderSessionDir(sessionDir, filepath.Join(sessionDir, msg.ReviewedPath)); resolved != "" {
				if raw, err := os.ReadFile(resolved); err == nil {
					body = string(raw)
				}
			}
		}
		firstLine := strings.TrimSpace(strings.SplitN(body, "\n", 2)[0])
		fmt.Fprintf(&b, "- [%s][%s] %s\n", msg.ID, msg.Role, truncateChars(firstLine, maxSummaryBulletChars))
	}
	b.WriteString("\n(use the history tooling to retrieve full content)\n")
	return b.String()
}

func truncateChars(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
