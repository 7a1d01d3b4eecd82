package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/ibare/baden/internal/core/timeline"
)

// CSVFormatter exports placed items, one row per item, for spreadsheet
// analysis of where the layout put things.
type CSVFormatter struct {
	out io.Writer
	loc *time.Location
}

func NewCSVFormatter(out io.Writer, loc *time.Location) *CSVFormatter {
	if loc == nil {
		loc = time.Local
	}
	return &CSVFormatter{out: out, loc: loc}
}

func (f *CSVFormatter) Format(layout *timeline.Layout) error {
	w := csv.NewWriter(f.out)
	defer w.Flush()

	headers := []string{
		"ID", "Category", "Label", "Start", "End", "Duration (ms)",
		"Instant", "Truncated", "Lane", "Sub-row", "X", "Width",
	}
	if err := w.Write(headers); err != nil {
		return err
	}

	for _, p := range layout.Placed {
		record := []string{
			p.Id,
			string(p.Category),
			p.ResolvedLabel,
			time.UnixMilli(p.StartMs).In(f.loc).Format(time.RFC3339),
			time.UnixMilli(p.EndMs).In(f.loc).Format(time.RFC3339),
			fmt.Sprintf("%d", p.EndMs-p.StartMs),
			fmt.Sprintf("%t", p.IsInstant),
			fmt.Sprintf("%t", p.Truncated),
			fmt.Sprintf("%d", p.Lane),
			fmt.Sprintf("%d", p.SubRow),
			fmt.Sprintf("%.1f", p.X),
			fmt.Sprintf("%.1f", p.Width),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return w.Error()
}
