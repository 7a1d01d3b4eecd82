package timeline

import (
	"math"
	"sort"

	"github.com/ibare/baden/internal/core/event"
)

// SubRowAssignment is the allocator result for one category's items:
// Rows[i] is the sub-row of items[i] (input order), Count the number of
// sub-rows opened.
type SubRowAssignment struct {
	Rows  []int
	Count int
}

// AssignSubRows performs greedy interval coloring: items are taken in start
// order and dropped into the lowest sub-row whose last bar ends early
// enough. Bars in one sub-row keep a RulerSpacingPx horizontal gap between
// them; instant markers pack with no gap. When all MaxSubRows rows are busy
// the item merges into the row with the smallest resulting overflow rather
// than being dropped. Identical input always yields identical assignment.
func AssignSubRows(items []Item, tm *TimeMap) SubRowAssignment {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return items[order[a]].StartMs < items[order[b]].StartMs
	})

	subRowEnds := make([]float64, 0, MaxSubRows)
	rows := make([]int, len(items))

	for _, idx := range order {
		it := items[idx]
		startPx := tm.MsToX(it.StartMs)
		var endPx float64
		var gap float64
		if it.IsInstant {
			endPx = startPx + MarkerSize + 2
		} else {
			endPx = startPx + tm.DurationToWidth(it.StartMs, it.EndMs-it.StartMs)
			gap = RulerSpacingPx
		}

		placed := false
		for row := 0; row < len(subRowEnds) && row < MaxSubRows; row++ {
			if subRowEnds[row]+gap <= startPx {
				subRowEnds[row] = endPx
				rows[idx] = row
				placed = true
				break
			}
		}
		if placed {
			continue
		}

		if len(subRowEnds) < MaxSubRows {
			subRowEnds = append(subRowEnds, endPx)
			rows[idx] = len(subRowEnds) - 1
			continue
		}

		// Cap reached: overlap is accepted, items are never hidden. Merge
		// into the row that overflows the least.
		best := 0
		bestOverflow := math.Inf(1)
		for row := 0; row < len(subRowEnds); row++ {
			overflow := subRowEnds[row] - startPx
			if overflow < bestOverflow {
				bestOverflow = overflow
				best = row
			}
		}
		if endPx > subRowEnds[best] {
			subRowEnds[best] = endPx
		}
		rows[idx] = best
	}

	count := len(subRowEnds)
	if count == 0 {
		count = 1
	}
	return SubRowAssignment{Rows: rows, Count: count}
}

// RowUnit is the vertical pitch of one sub-row at the given expand level.
func RowUnit(expandLevel int) int {
	if expandLevel < 0 {
		expandLevel = 0
	}
	if expandLevel >= len(DetailHeights) {
		expandLevel = len(DetailHeights) - 1
	}
	return SubRowHeight + DetailHeights[expandLevel]
}

// ComputeLanes lays out one lane per active category, in the fixed category
// order. Lane height is the sub-row count times the row unit plus a density
// bonus of up to two extra row units for lanes holding many events relative
// to the busiest lane.
func ComputeLanes(active map[event.Category]bool, subRowCounts, eventCounts map[event.Category]int, expandLevel int) []Lane {
	rowUnit := RowUnit(expandLevel)
	isActive := func(cat event.Category) bool {
		return len(active) == 0 || active[cat]
	}

	maxEvents := 1
	for _, cat := range event.CategoryOrder {
		if !isActive(cat) {
			continue
		}
		if n := eventCounts[cat]; n > maxEvents {
			maxEvents = n
		}
	}

	lanes := make([]Lane, 0, len(event.CategoryOrder))
	y := TimeAxisHeight
	for _, cat := range event.CategoryOrder {
		if !isActive(cat) {
			continue
		}
		subRows := subRowCounts[cat]
		if subRows < 1 {
			subRows = 1
		}
		evtCount := eventCounts[cat]

		height := subRows * rowUnit
		if maxEvents > 1 && evtCount > 2 {
			density := float64(evtCount) / float64(maxEvents)
			height += int(math.Round(density*2)) * rowUnit
		}
		if height < rowUnit {
			height = rowUnit
		}

		lanes = append(lanes, Lane{
			Category:    cat,
			Label:       event.CategoryLabels[cat],
			SubRowCount: subRows,
			Y:           y,
			Height:      height,
		})
		y += height + LaneGap
	}

	return lanes
}

// ContentHeight is the total pixel height of the laid-out lanes.
func ContentHeight(lanes []Lane) int {
	if len(lanes) == 0 {
		return 100
	}
	last := lanes[len(lanes)-1]
	return last.Y + last.Height + LanePadBottom
}

// StretchLanes distributes slack across lanes when the content is shorter
// than the viewport, so short timelines fill the screen instead of leaving
// dead space. Returns a fresh slice; sub-row assignment never depends on
// this step.
func StretchLanes(lanes []Lane, viewportHeight int) []Lane {
	contentHeight := ContentHeight(lanes)
	if len(lanes) == 0 || contentHeight >= viewportHeight {
		out := make([]Lane, len(lanes))
		copy(out, lanes)
		return out
	}

	extra := viewportHeight - contentHeight
	perLane := extra / len(lanes)
	remainder := extra - perLane*len(lanes)

	out := make([]Lane, len(lanes))
	y := lanes[0].Y
	for i, lane := range lanes {
		bonus := perLane
		if i == len(lanes)-1 {
			bonus += remainder
		}
		lane.Y = y
		lane.Height += bonus
		out[i] = lane
		y += lane.Height + LaneGap
	}
	return out
}
