// Package fixtures generates deterministic event spools for tests.
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"

	"github.com/ibare/baden/internal/core/event"
)

// Ptr returns a pointer to v, for filling optional record fields.
func Ptr[T any](v T) *T {
	return &v
}

// Record builds an event record with the given id, time and type. Optional
// fields are set through the mutators below.
func Record(id string, ts time.Time, eventType string, mutate ...func(*event.Record)) event.Record {
	rec := event.Record{
		Id:        id,
		Timestamp: ts.UTC().Format(time.RFC3339),
		Type:      eventType,
		ProjectId: "test-project",
	}
	for _, m := range mutate {
		m(&rec)
	}
	return rec
}

func WithDuration(ms int64) func(*event.Record) {
	return func(r *event.Record) { r.DurationMs = &ms }
}

func WithRule(ruleId string) func(*event.Record) {
	return func(r *event.Record) { r.RuleId = &ruleId }
}

func WithTask(taskId string) func(*event.Record) {
	return func(r *event.Record) { r.TaskId = &taskId }
}

func WithFile(file string) func(*event.Record) {
	return func(r *event.Record) { r.File = &file }
}

func WithAction(action string) func(*event.Record) {
	return func(r *event.Record) { r.Action = &action }
}

func WithPrompt(prompt string) func(*event.Record) {
	return func(r *event.Record) { r.Prompt = &prompt }
}

// SpoolGenerator writes event spools under a base directory in the layout
// the scanner expects: <base>/<project>/<date>.jsonl.
type SpoolGenerator struct {
	baseDir string
}

// NewSpoolGenerator creates a new spool generator.
func NewSpoolGenerator(baseDir string) *SpoolGenerator {
	return &SpoolGenerator{baseDir: baseDir}
}

// WriteSpool writes records to <base>/<project>/<date>.jsonl, one JSON
// record per line.
func (g *SpoolGenerator) WriteSpool(project, date string, records []event.Record) (string, error) {
	projectDir := filepath.Join(g.baseDir, project)
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(projectDir, date+".jsonl")
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	encoder := sonic.ConfigDefault.NewEncoder(file)
	for _, rec := range records {
		if err := encoder.Encode(rec); err != nil {
			return "", err
		}
	}
	return path, nil
}

// AppendLine appends one raw line to a spool file, for torn-write and
// invalid-JSON cases.
func (g *SpoolGenerator) AppendLine(path, line string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = fmt.Fprintln(file, line)
	return err
}

// WorkSession generates a realistic morning of activity: a user prompt, a
// burst of implementation work, a long idle gap, then a verification pass.
// All timestamps derive from start, so layouts built from it are stable.
func WorkSession(start time.Time) []event.Record {
	return []event.Record{
		Record("ws-1", start, "user_prompt", WithPrompt("add retry handling")),
		Record("ws-2", start.Add(10*time.Second), "file_read",
			WithFile("internal/client/retry.go"), WithAction("read_file")),
		Record("ws-3", start.Add(30*time.Second), "code_modify",
			WithFile("internal/client/retry.go"), WithAction("update_file"), WithDuration(45_000)),
		Record("ws-4", start.Add(90*time.Second), "command_run",
			WithAction("run_test"), WithDuration(20_000)),
		// 25 minutes of silence, well past the gap threshold
		Record("ws-5", start.Add(27*time.Minute), "test_run",
			WithDuration(30_000)),
		Record("ws-6", start.Add(28*time.Minute), "lint_run",
			WithDuration(5_000)),
	}
}

// RuleChain generates n events sharing one rule id, spaced a minute apart.
func RuleChain(start time.Time, ruleId string, n int) []event.Record {
	records := make([]event.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, Record(
			fmt.Sprintf("%s-%d", ruleId, i+1),
			start.Add(time.Duration(i)*time.Minute),
			"rule_triggered",
			WithRule(ruleId),
			WithDuration(10_000),
		))
	}
	return records
}

// OverlapBurst generates n overlapping bar events in a single category,
// forcing the sub-row allocator to stack them.
func OverlapBurst(start time.Time, n int) []event.Record {
	records := make([]event.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, Record(
			fmt.Sprintf("ob-%d", i+1),
			start.Add(time.Duration(i)*time.Second),
			"file_edit",
			WithDuration(60_000),
		))
	}
	return records
}
