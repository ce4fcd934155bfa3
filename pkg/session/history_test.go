package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scribehq/scribe/pkg/manifest"
)

func writeReviewed(t *testing.T, dir, id string, role manifest.Role, content string) string {
	t.Helper()
	name := ReviewedFileName(id, role)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	return name
}

func appendMessage(t *testing.T, dir, id string, role manifest.Role, reviewedPath string) {
	t.Helper()
	require.NoError(t, manifest.Append(dir, manifest.MessageRecord{
		V:            manifest.RecordVersion,
		Timestamp:    "2025-06-01T12:00:00Z",
		ID:           id,
		Role:         role,
		PartPath:     PartFileName(id, role),
		ReviewedPath: reviewedPath,
		Decision:     manifest.DecisionAllow,
		Bytes:        1,
		Hash64:       manifest.Fingerprint(reviewedPath),
	}))
}

func TestLoadReviewedHistoryReadsOnlyReviewedFiles(t *testing.T) {
	dir := t.TempDir()
	writeReviewed(t, dir, "0000A111", manifest.RoleUser, "question\n")
	writeReviewed(t, dir, "0000B222", manifest.RoleAssistant, "answer\n")
	// A raw part must never re-enter history without review.
	require.NoError(t, os.WriteFile(filepath.Join(dir, PartFileName("0000C333", manifest.RoleUser)), []byte("raw\n"), 0o600))

	h, err := LoadReviewedHistory(dir)
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, "question\n", h[0].Content)
	assert.Equal(t, manifest.RoleAssistant, h[1].Role)
}

func TestLoadReviewedHistoryMissingSessionIsEmpty(t *testing.T) {
	h, err := LoadReviewedHistory(filepath.Join(t.TempDir(), "gone"))
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestListReviewedSortsLexicographically(t *testing.T) {
	dir := t.TempDir()
	writeReviewed(t, dir, "0000B222", manifest.RoleUser, "b")
	writeReviewed(t, dir, "0000A111", manifest.RoleUser, "a")
	writeReviewed(t, dir, "0000C333", manifest.RoleAssistant, "c")

	names, err := ListReviewed(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"reviewed_0000A111_user.txt",
		"reviewed_0000B222_user.txt",
		"reviewed_0000C333_assistant.txt",
	}, names)
}

func TestHistoryLoaderFallsBackToReviewedScan(t *testing.T) {
	dir := t.TempDir()
	writeReviewed(t, dir, "0000A111", manifest.RoleUser, "hello\n")

	loader := &HistoryLoader{LoadMax: 10}
	h, err := loader.Load(dir)
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, "hello\n", h[0].Content)
}

func TestHistoryLoaderUsesManifestTail(t *testing.T) {
	dir := t.TempDir()
	ids := []string{"0000A111", "0000B222", "0000C333"}
	for i, id := range ids {
		role := manifest.RoleUser
		if i%2 == 1 {
			role = manifest.RoleAssistant
		}
		name := writeReviewed(t, dir, id, role, "turn "+id+"\n")
		appendMessage(t, dir, id, role, name)
	}

	loader := &HistoryLoader{LoadMax: 2}
	h, err := loader.Load(dir)
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, "turn 0000B222\n", h[0].Content)
	assert.Equal(t, "turn 0000C333\n", h[1].Content)
}

func TestHistoryLoaderSkipsDenyRecords(t *testing.T) {
	dir := t.TempDir()
	name := writeReviewed(t, dir, "0000A111", manifest.RoleUser, "allowed\n")
	appendMessage(t, dir, "0000A111", manifest.RoleUser, name)
	require.NoError(t, manifest.Append(dir, manifest.MessageRecord{
		V:         manifest.RecordVersion,
		Timestamp: "2025-06-01T12:00:00Z",
		ID:        "0000B222",
		Role:      manifest.RoleUser,
		PartPath:  PartFileName("0000B222", manifest.RoleUser),
		Decision:  manifest.DecisionDeny,
	}))

	loader := &HistoryLoader{LoadMax: 10}
	h, err := loader.Load(dir)
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, "allowed\n", h[0].Content)
}

func TestHistoryLoaderRejectsUnsafeManifestPaths(t *testing.T) {
	dir := t.TempDir()
	secret := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("leak\n"), 0o600))

	appendMessage(t, dir, "0000A111", manifest.RoleUser, "../"+filepath.Base(secret))
	appendMessage(t, dir, "0000B222", manifest.RoleUser, secret)

	loader := &HistoryLoader{LoadMax: 10}
	h, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestHistoryLoaderSkipsUnreadableReviewedFile(t *testing.T) {
	dir := t.TempDir()
	name := writeReviewed(t, dir, "0000A111", manifest.RoleUser, "ok\n")
	appendMessage(t, dir, "0000A111", manifest.RoleUser, name)
	// Recorded but never written: load must degrade, not fail.
	appendMessage(t, dir, "0000B222", manifest.RoleAssistant, ReviewedFileName("0000B222", manifest.RoleAssistant))

	loader := &HistoryLoader{LoadMax: 10}
	h, err := loader.Load(dir)
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, "ok\n", h[0].Content)
}

func TestHistoryLoaderPrependsCompactionSummary(t *testing.T) {
	dir := t.TempDir()
	summaryName := SummaryFileName("0000A111", "0000B222")
	require.NoError(t, os.WriteFile(filepath.Join(dir, summaryName), []byte("# summary\n"), 0o600))
	require.NoError(t, manifest.Append(dir, manifest.CompactionRecord{
		V:           manifest.RecordVersion,
		Timestamp:   "2025-06-01T12:00:00Z",
		FromID:      "0000A111",
		ToID:        "0000B222",
		SummaryPath: summaryName,
		Method:      "deterministic",
		SourceCount: 2,
	}))
	name := writeReviewed(t, dir, "0000C333", manifest.RoleUser, "recent\n")
	appendMessage(t, dir, "0000C333", manifest.RoleUser, name)

	loader := &HistoryLoader{LoadMax: 10}
	h, err := loader.Load(dir)
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, manifest.RoleAssistant, h[0].Role)
	assert.Equal(t, "# summary\n", h[0].Content)
	assert.Equal(t, "recent\n", h[1].Content)
}

func TestHistoryLoaderHonorsSendFromIndex(t *testing.T) {
	dir := t.TempDir()
	for _, id := range []string{"0000A111", "0000B222", "0000C333"} {
		name := writeReviewed(t, dir, id, manifest.RoleUser, id+"\n")
		appendMessage(t, dir, id, manifest.RoleUser, name)
	}
	require.NoError(t, WriteSendFromIndex(dir, 2))

	loader := &HistoryLoader{LoadMax: 10}
	h, err := loader.Load(dir)
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, "0000C333\n", h[0].Content)
}

func TestSendFromIndexMissingOrInvalidMeansZero(t *testing.T) {
	dir := t.TempDir()
	assert.Zero(t, loadSendFromIndex(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, sendFromFilename), []byte("not a number\n"), 0o600))
	assert.Zero(t, loadSendFromIndex(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, sendFromFilename), []byte("-3\n"), 0o600))
	assert.Zero(t, loadSendFromIndex(dir))

	require.NoError(t, WriteSendFromIndex(dir, 7))
	assert.Equal(t, 7, loadSendFromIndex(dir))
}
