// Package manifest reads and writes manifest.jsonl, the append-only event
// log that records review decisions and compaction events for one session.
//
// The manifest is UTF-8 JSON Lines: one tagged record per line, where the
// "kind" field discriminates between message records (a part file reviewed
// and, on allow/mask, promoted to a reviewed file) and compaction records
// (a range of earlier messages folded into a summary file). A record, once
// appended, is never rewritten; later compaction records supersede earlier
// messages logically, not physically.
package manifest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// RecordVersion is the version tag written into every new record.
const RecordVersion = 1

// Role identifies which side of the conversation a message record covers.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Decision is the outcome of the external sensitivity review of a part file.
type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionDeny  Decision = "deny"
	DecisionMask  Decision = "mask"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	return d == DecisionAllow || d == DecisionDeny || d == DecisionMask
}

// Kind discriminates the record variants in the serialized form.
type Kind string

const (
	KindMessage    Kind = "message"
	KindCompaction Kind = "compaction"
)

// Record is one manifest line. Exactly one of the variant accessors returns
// a non-nil result.
type Record interface {
	Kind() Kind
}

// MessageRecord records the review of one part file.
type MessageRecord struct {
	V            int      `json:"v"`
	Timestamp    string   `json:"ts"`
	ID           string   `json:"id"`
	Role         Role     `json:"role"`
	PartPath     string   `json:"part_path"`
	ReviewedPath string   `json:"reviewed_path"`
	Decision     Decision `json:"decision"`
	Bytes        int64    `json:"bytes"`
	Hash64       string   `json:"hash64"`
}

func (MessageRecord) Kind() Kind { return KindMessage }

// CompactionRecord records the folding of a message range into a summary.
type CompactionRecord struct {
	V           int    `json:"v"`
	Timestamp   string `json:"ts"`
	FromID      string `json:"from_id"`
	ToID        string `json:"to_id"`
	SummaryPath string `json:"summary_path"`
	Method      string `json:"method"`
	SourceCount int    `json:"source_count"`
}

func (CompactionRecord) Kind() Kind { return KindCompaction }

// Message returns r as a message record, or nil.
func Message(r Record) *MessageRecord {
	if m, ok := r.(MessageRecord); ok {
		return &m
	}
	return nil
}

// Compaction returns r as a compaction record, or nil.
func Compaction(r Record) *CompactionRecord {
	if c, ok := r.(CompactionRecord); ok {
		return &c
	}
	return nil
}

// envelope extracts the discriminant before the variant is known.
type envelope struct {
	Kind Kind `json:"kind"`
}

// MarshalRecord serializes one record to its single-line JSON form, without
// a trailing newline.
func MarshalRecord(r Record) ([]byte, error) {
	var tagged any
	switch rec := r.(type) {
	case MessageRecord:
		tagged = struct {
			Kind Kind `json:"kind"`
			MessageRecord
		}{KindMessage, rec}
	case *MessageRecord:
		tagged = struct {
			Kind Kind `json:"kind"`
			MessageRecord
		}{KindMessage, *rec}
	case CompactionRecord:
		tagged = struct {
			Kind Kind `json:"kind"`
			CompactionRecord
		}{KindCompaction, rec}
	case *CompactionRecord:
		tagged = struct {
			Kind Kind `json:"kind"`
			CompactionRecord
		}{KindCompaction, *rec}
	default:
		return nil, fmt.Errorf("manifest: unknown record type %T", r)
	}
	line, err := json.Marshal(tagged)
	if err != nil {
		return nil, fmt.Errorf("manifest: serialize %s record: %w", r.Kind(), err)
	}
	return line, nil
}

// UnmarshalRecord parses one serialized line into a record. Unknown kinds
// and structurally invalid lines are errors; the caller decides whether to
// abort or skip.
func UnmarshalRecord(line []byte) (Record, error) {
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, fmt.Errorf("manifest: parse record: %w", err)
	}
	switch env.Kind {
	case KindMessage:
		var rec MessageRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("manifest: parse message record: %w", err)
		}
		if !rec.Role.Valid() {
			return nil, fmt.Errorf("manifest: unknown role %q", rec.Role)
		}
		if !rec.Decision.Valid() {
			return nil, fmt.Errorf("manifest: unknown decision %q", rec.Decision)
		}
		return rec, nil
	case KindCompaction:
		var rec CompactionRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("manifest: parse compaction record: %w", err)
		}
		return rec, nil
	default:
		return nil, fmt.Errorf("manifest: unknown record kind %q", env.Kind)
	}
}

// ParseLines parses a whole manifest body. Lines that fail to parse are
// logged as warnings and skipped, so a half-written final line left by a
// crash never makes the rest of the manifest unreadable. Order is
// preserved (oldest first).
func ParseLines(body string) []Record {
	var out []Record
	for i, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		rec, err := UnmarshalRecord([]byte(trimmed))
		if err != nil {
			slog.Warn("manifest: skipping invalid line", "line", i+1, "err", err)
			continue
		}
		out = append(out, rec)
	}
	return out
}

// TailMessages returns, in original order, the last n records of rs that
// are message records. Compaction records are excluded from both the count
// and the result. n == 0 returns nil.
func TailMessages(rs []Record, n int) []Record {
	if n <= 0 {
		return nil
	}
	var out []Record
	for i := len(rs) - 1; i >= 0 && len(out) < n; i-- {
		if Message(rs[i]) != nil {
			out = append(out, rs[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
