package formatter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ibare/baden/internal/core/timeline"
	"github.com/ibare/baden/internal/util"
)

// SummaryFormatter prints a human-readable report of one layout pass.
type SummaryFormatter struct {
	out io.Writer
	loc *time.Location
}

// NewSummaryFormatter creates a summary formatter using the given timezone
// for clock labels. A nil location means time.Local.
func NewSummaryFormatter(out io.Writer, loc *time.Location) *SummaryFormatter {
	if loc == nil {
		loc = time.Local
	}
	return &SummaryFormatter{out: out, loc: loc}
}

// Format formats and outputs the summary of a computed layout.
func (f *SummaryFormatter) Format(layout *timeline.Layout) error {
	fmt.Fprintln(f.out, strings.Repeat("=", 60))
	fmt.Fprintln(f.out, "Activity Timeline Summary")
	fmt.Fprintln(f.out, strings.Repeat("=", 60))
	fmt.Fprintln(f.out)

	fmt.Fprintf(f.out, "Time Range: %s to %s (%s)\n",
		util.FormatClock(layout.RangeStart, f.loc),
		util.FormatClock(layout.RangeEnd, f.loc),
		util.FormatDurationMs(layout.RangeEnd-layout.RangeStart))
	fmt.Fprintln(f.out)

	if len(layout.Placed) == 0 {
		fmt.Fprintln(f.out, "No activity recorded")
		fmt.Fprintln(f.out)
		fmt.Fprintln(f.out, strings.Repeat("=", 60))
		return nil
	}

	fmt.Fprintln(f.out, "Lanes:")
	for _, row := range SummarizeLanes(layout) {
		fmt.Fprintf(f.out, "  %s: %d events (%d markers, %d bars), %d sub-rows, active %s\n",
			row.Label, row.Events, row.Instants, row.Bars, row.SubRows,
			util.FormatDurationMs(row.ActiveMs))
	}
	fmt.Fprintln(f.out)

	if layout.TimeMap != nil {
		var compressed int
		var compressedMs int64
		for _, seg := range layout.TimeMap.Segments {
			if seg.Kind != timeline.SegmentActive {
				compressed++
				compressedMs += seg.EndMs - seg.StartMs
			}
		}
		fmt.Fprintln(f.out, "Time Compression:")
		fmt.Fprintf(f.out, "  Segments: %d (%d compressed)\n", len(layout.TimeMap.Segments), compressed)
		if compressed > 0 {
			fmt.Fprintf(f.out, "  Compressed Time: %s\n", util.FormatDurationMs(compressedMs))
		}
		fmt.Fprintln(f.out)
	}

	counts := CountConnections(layout)
	if len(counts) > 0 {
		fmt.Fprintln(f.out, "Connections:")
		for _, kind := range []timeline.ConnectionKind{
			timeline.ConnRuleChain, timeline.ConnTaskChain, timeline.ConnFileLink,
		} {
			if n := counts[kind]; n > 0 {
				fmt.Fprintf(f.out, "  %s: %d\n", kind, n)
			}
		}
		fmt.Fprintln(f.out)
	}

	fmt.Fprintln(f.out, strings.Repeat("=", 60))
	return nil
}
