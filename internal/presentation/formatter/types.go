// Package formatter renders a computed timeline layout for the CLI: indented
// JSON for piping, a lane table or summary report for reading, CSV for
// spreadsheets.
package formatter

import (
	"github.com/ibare/baden/internal/core/event"
	"github.com/ibare/baden/internal/core/timeline"
)

// Formatter renders one layout to its output.
type Formatter interface {
	Format(layout *timeline.Layout) error
}

// LaneRow is the per-category aggregate the table and summary formatters
// print.
type LaneRow struct {
	Category event.Category
	Label    string
	Events   int
	Instants int
	Bars     int
	SubRows  int
	// ActiveMs is the summed duration of the lane's bar items
	ActiveMs int64
}

// SummarizeLanes aggregates placed items per lane, in lane order.
func SummarizeLanes(layout *timeline.Layout) []LaneRow {
	rows := make([]LaneRow, len(layout.Lanes))
	index := make(map[event.Category]int, len(layout.Lanes))
	for i, lane := range layout.Lanes {
		rows[i] = LaneRow{
			Category: lane.Category,
			Label:    lane.Label,
			SubRows:  lane.SubRowCount,
		}
		index[lane.Category] = i
	}

	for _, p := range layout.Placed {
		i, ok := index[p.Category]
		if !ok {
			continue
		}
		rows[i].Events++
		if p.IsInstant {
			rows[i].Instants++
		} else {
			rows[i].Bars++
			rows[i].ActiveMs += p.EndMs - p.StartMs
		}
	}
	return rows
}

// CountConnections tallies connections by kind.
func CountConnections(layout *timeline.Layout) map[timeline.ConnectionKind]int {
	counts := make(map[timeline.ConnectionKind]int)
	for _, c := range layout.Connections {
		counts[c.Kind]++
	}
	return counts
}
