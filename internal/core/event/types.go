package event

import (
	"time"
)

// Record is a single development-activity event as stored and broadcast by
// the ingestion server. Records are immutable once received; the timeline
// core only reads them.
type Record struct {
	Id         string  `json:"id"`
	Timestamp  string  `json:"timestamp"`
	Type       string  `json:"type"`
	ProjectId  string  `json:"project_id"`
	RuleId     *string `json:"rule_id"`
	Severity   *string `json:"severity"`
	File       *string `json:"file"`
	Line       *int    `json:"line"`
	Message    *string `json:"message"`
	Detail     *string `json:"detail"`
	Action     *string `json:"action"`
	Agent      *string `json:"agent"`
	Step       *string `json:"step"`
	DurationMs *int64  `json:"duration_ms"`
	Prompt     *string `json:"prompt"`
	Summary    *string `json:"summary"`
	Result     *string `json:"result"`
	TaskId     *string `json:"task_id"`
}

// Input is the payload accepted by POST /api/events. The server assigns the
// id and timestamp on receipt.
type Input struct {
	Type       string  `json:"type"`
	ProjectId  string  `json:"projectId"`
	RuleId     *string `json:"ruleId"`
	Severity   *string `json:"severity"`
	File       *string `json:"file"`
	Line       *int    `json:"line"`
	Message    *string `json:"message"`
	Detail     *string `json:"detail"`
	Action     *string `json:"action"`
	Agent      *string `json:"agent"`
	Step       *string `json:"step"`
	DurationMs *int64  `json:"durationMs"`
	Prompt     *string `json:"prompt"`
	Summary    *string `json:"summary"`
	Result     *string `json:"result"`
	TaskId     *string `json:"taskId"`
}

// TimeMs parses the record timestamp to epoch milliseconds.
// A malformed timestamp yields 0; the normalizer treats such records the
// same as any other (they sort to the front of the range).
func (r *Record) TimeMs() int64 {
	ts, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		// Tolerate the SQLite datetime('now') format the original server wrote
		ts, err = time.Parse("2006-01-02 15:04:05", r.Timestamp)
		if err != nil {
			return 0
		}
	}
	return ts.UnixMilli()
}

// HasPrompt reports whether the record carries a user prompt payload.
func (r *Record) HasPrompt() bool {
	return r.Prompt != nil && *r.Prompt != ""
}

// ActionValue returns the action field or "" when absent.
func (r *Record) ActionValue() string {
	if r.Action == nil {
		return ""
	}
	return *r.Action
}
