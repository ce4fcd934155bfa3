// Package session implements the on-disk layout and lifecycle of one
// session directory: raw part files, promoted reviewed files, the active
// console log, control flags, history assembly, and compaction.
//
// A session directory is created by the caller before first use. This
// package reads and writes entries inside it but never creates or deletes
// the directory itself. Everything in it is append-or-rename: the only
// file mutated in place is the active console log.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/scribehq/scribe/pkg/manifest"
)

// Fixed entry names inside a session directory.
const (
	// ConsoleLogFilename is the active capture buffer file. It is the
	// only file in the layout that is truncated in place.
	ConsoleLogFilename = "console.txt"

	// MuteFlagFilename suppresses all capture-layer disk writes while it
	// exists. Presence is checked fresh on every capture event.
	MuteFlagFilename = "console.muted"

	// PIDFilename records the pid of the shell process owning the session.
	PIDFilename = "SCRIBE_PID"

	// sendFromFilename holds the manifest index history loading starts
	// from: a single non-negative integer line. Missing or invalid means 0.
	sendFromFilename = ".history_send_from"
)

const (
	partPrefix     = "part_"
	reviewedPrefix = "reviewed_"
	summaryPrefix  = "compaction_"
	txtSuffix      = ".txt"
	idWidth        = 8
)

// ErrInvalidSession is returned when a writer requires the session
// directory and it is missing or not a directory. The session is never
// silently created.
var ErrInvalidSession = errors.New("session: session directory is not valid")

// Filename shape matchers. The identifier segment is validated separately
// because glob's ? matches any non-separator byte, not just base62 digits.
var (
	partUserGlob          = glob.MustCompile(partPrefix + "????????_user" + txtSuffix)
	partAssistantGlob     = glob.MustCompile(partPrefix + "????????_assistant" + txtSuffix)
	reviewedUserGlob      = glob.MustCompile(reviewedPrefix + "????????_user" + txtSuffix)
	reviewedAssistantGlob = glob.MustCompile(reviewedPrefix + "????????_assistant" + txtSuffix)
)

// PartFileName returns `part_<id>_<role>.txt`.
func PartFileName(id string, role manifest.Role) string {
	return fmt.Sprintf("%s%s_%s%s", partPrefix, id, role, txtSuffix)
}

// ReviewedFileName returns `reviewed_<id>_<role>.txt`.
func ReviewedFileName(id string, role manifest.Role) string {
	return fmt.Sprintf("%s%s_%s%s", reviewedPrefix, id, role, txtSuffix)
}

// SummaryFileName returns `compaction_<from>_<to>.txt`.
func SummaryFileName(fromID, toID string) string {
	return fmt.Sprintf("%s%s_%s%s", summaryPrefix, fromID, toID, txtSuffix)
}

// ConsoleLogPath returns the active console log path for a session.
func ConsoleLogPath(sessionDir string) string {
	return filepath.Join(sessionDir, ConsoleLogFilename)
}

// MuteFlagPath returns the mute flag path for a session.
func MuteFlagPath(sessionDir string) string {
	return filepath.Join(sessionDir, MuteFlagFilename)
}

// PIDPath returns the pid marker path for a session.
func PIDPath(sessionDir string) string {
	return filepath.Join(sessionDir, PIDFilename)
}

func idSegmentValid(id string) bool {
	if len(id) != idWidth {
		return false
	}
	for _, c := range id {
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

func matchRole(name, prefix string, userGlob, assistantGlob glob.Glob) (manifest.Role, bool) {
	var role manifest.Role
	switch {
	case userGlob.Match(name):
		role = manifest.RoleUser
	case assistantGlob.Match(name):
		role = manifest.RoleAssistant
	default:
		return "", false
	}
	// The glob fixes the overall shape; the identifier segment must also
	// be base62 alphanumerics.
	if !idSegmentValid(name[len(prefix) : len(prefix)+idWidth]) {
		return "", false
	}
	return role, true
}

// PartRole reports whether name is a well-formed part filename and, if so,
// its role. Matching is case-sensitive and requires the fixed-width
// identifier segment.
func PartRole(name string) (manifest.Role, bool) {
	if !strings.HasPrefix(name, partPrefix) {
		return "", false
	}
	return matchRole(name, partPrefix, partUserGlob, partAssistantGlob)
}

// ReviewedRole reports whether name is a well-formed reviewed filename
// and, if so, its role.
func ReviewedRole(name string) (manifest.Role, bool) {
	if !strings.HasPrefix(name, reviewedPrefix) {
		return "", false
	}
	return matchRole(name, reviewedPrefix, reviewedUserGlob, reviewedAssistantGlob)
}

// IsSafeBasename reports whether s is a single path component: no
// separators, not empty, not "." or "..".
func IsSafeBasename(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`)
}

// IsSafeReviewedBasename reports whether s is acceptable as a
// manifest-supplied reviewed path: a single component of the reviewed
// filename shape. Manifest content is data, not trusted input, so paths
// are validated before they are joined to the session directory.
func IsSafeReviewedBasename(s string) bool {
	if !IsSafeBasename(s) {
		return false
	}
	_, ok := ReviewedRole(s)
	return ok
}

// IsSafeSummaryBasename reports whether s is acceptable as a
// manifest-supplied compaction summary path.
func IsSafeSummaryBasename(s string) bool {
	if !IsSafeBasename(s) {
		return false
	}
	return len(s) > len(summaryPrefix)+len(txtSuffix) &&
		strings.HasPrefix(s, summaryPrefix) && strings.HasSuffix(s, txtSuffix)
}

// ResolveUnderSessionDir returns the canonical form of path if it exists
// and resolves inside sessionDir, and "" otherwise.
func ResolveUnderSessionDir(sessionDir, path string) string {
	base, err := filepath.EvalSymlinks(sessionDir)
	if err != nil {
		return ""
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(base, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return resolved
}

// checkSessionDir verifies the session directory exists and is a
// directory. Writers call this before creating any file so a deleted or
// half-initialized session never silently accumulates orphan entries.
func checkSessionDir(sessionDir string) error {
	info, err := os.Stat(sessionDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrInvalidSession, sessionDir)
	}
	return nil
}

// sessionDirUsable reports whether the session directory exists and is a
// directory. Readers degrade to an empty result instead of erroring.
func sessionDirUsable(sessionDir string) bool {
	info, err := os.Stat(sessionDir)
	return err == nil && info.IsDir()
}
