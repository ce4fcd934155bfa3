package session

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/scribehq/scribe/pkg/manifest"
)

// Entry is one turn of reconstructed conversational history.
type Entry struct {
	Role    manifest.Role
	Content string
}

// History is an ordered conversation, oldest first.
type History []Entry

// PushUser appends a user turn.
func (h *History) PushUser(content string) {
	*h = append(*h, Entry{Role: manifest.RoleUser, Content: content})
}

// PushAssistant appends an assistant turn.
func (h *History) PushAssistant(content string) {
	*h = append(*h, Entry{Role: manifest.RoleAssistant, Content: content})
}

// readHistoryFiles reads the named session entries in sorted order,
// classifying each by roleOf. Unreadable files are logged and excluded so
// the rest of the history stays usable.
func readHistoryFiles(sessionDir string, names []string, roleOf func(string) (manifest.Role, bool)) History {
	sort.Strings(names)
	var h History
	for _, name := range names {
		body, err := os.ReadFile(filepath.Join(sessionDir, name))
		if err != nil {
			slog.Warn("session: skipping unreadable history file", "path", filepath.Join(sessionDir, name), "err", err)
			continue
		}
		role, ok := roleOf(name)
		if !ok {
			continue
		}
		if role == manifest.RoleUser {
			h.PushUser(string(body))
		} else {
			h.PushAssistant(string(body))
		}
	}
	return h
}

// HistoryLoader assembles the conversational history handed to the
// generation layer. Only reviewed content is eligible: the loader reads
// reviewed files and compaction summaries, never raw part files. When the
// session has a manifest the tail of its message records drives loading;
// otherwise the reviewed files themselves are scanned.
type HistoryLoader struct {
	// LoadMax bounds how many message turns are loaded.
	LoadMax int
}

// Load returns the history for sessionDir. A missing or non-directory
// session yields an empty history rather than an error.
func (l *HistoryLoader) Load(sessionDir string) (History, error) {
	if !sessionDirUsable(sessionDir) {
		return nil, nil
	}
	if _, err := os.Stat(manifest.Path(sessionDir)); err == nil {
		return l.loadFromManifest(sessionDir)
	}
	return l.loadFromReviewedScan(sessionDir)
}

func (l *HistoryLoader) loadFromManifest(sessionDir string) (History, error) {
	records, err := manifest.LoadAll(sessionDir)
	if err != nil {
		return nil, err
	}
	from := loadSendFromIndex(sessionDir)
	if from > len(records) {
		from = len(records)
	}
	tail := manifest.TailMessages(records[from:], l.LoadMax)

	var h History
	if len(tail) > 0 {
		oldestID := manifest.Message(tail[0]).ID
		if comp := latestCompactionBefore(records, oldestID); comp != nil {
			if body, ok := readSummary(sessionDir, comp.SummaryPath); ok {
				h.PushAssistant(body)
			}
		}
	}

	for _, rec := range tail {
		msg := manifest.Message(rec)
		if msg.Decision == manifest.DecisionDeny || msg.ReviewedPath == "" {
			continue
		}
		if !IsSafeReviewedBasename(msg.ReviewedPath) {
			slog.Warn("session: skipping manifest record with unsafe reviewed path", "path", msg.ReviewedPath)
			continue
		}
		resolved := ResolveUnderSessionDir(sessionDir, filepath.Join(sessionDir, msg.ReviewedPath))
		if resolved == "" {
			continue
		}
		body, err := os.ReadFile(resolved)
		if err != nil {
			slog.Warn("session: skipping unreadable reviewed file", "path", resolved, "err", err)
			continue
		}
		if msg.Role == manifest.RoleUser {
			h.PushUser(string(body))
		} else {
			h.PushAssistant(string(body))
		}
	}
	return h, nil
}

func (l *HistoryLoader) loadFromReviewedScan(sessionDir string) (History, error) {
	names, err := ListReviewed(sessionDir)
	if err != nil {
		return nil, err
	}
	if l.LoadMax > 0 && len(names) > l.LoadMax {
		names = names[len(names)-l.LoadMax:]
	}
	return readHistoryFiles(sessionDir, names, ReviewedRole), nil
}

// latestCompactionBefore returns the last compaction record whose range
// ends strictly before oldestTailID, or nil.
func latestCompactionBefore(records []manifest.Record, oldestTailID string) *manifest.CompactionRecord {
	var latest *manifest.CompactionRecord
	for _, rec := range records {
		if comp := manifest.Compaction(rec); comp != nil && comp.ToID < oldestTailID {
			latest = comp
		}
	}
	return latest
}

func readSummary(sessionDir, summaryPath string) (string, bool) {
	if !IsSafeSummaryBasename(summaryPath) {
		return "", false
	}
	resolved := ResolveUnderSessionDir(sessionDir, filepath.Join(sessionDir, summaryPath))
	if resolved == "" {
		return "", false
	}
	body, err := os.ReadFile(resolved)
	if err != nil {
		slog.Warn("session: skipping unreadable compaction summary", "path", resolved, "err", err)
		return "", false
	}
	return string(body), true
}

// loadSendFromIndex reads the persisted history start index. A missing or
// invalid file means the very front of the manifest.
func loadSendFromIndex(sessionDir string) int {
	body, err := os.ReadFile(filepath.Join(sessionDir, sendFromFilename))
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// WriteSendFromIndex persists the history start index for a session.
func WriteSendFromIndex(sessionDir string, index int) error {
	if err := checkSessionDir(sessionDir); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(sessionDir, sendFromFilename), []byte(strconv.Itoa(index)+"\n"), 0o600)
}
