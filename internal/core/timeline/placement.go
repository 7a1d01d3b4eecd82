package timeline

import (
	"github.com/ibare/baden/internal/core/event"
)

// PlaceItems combines the time map and the sub-row allocator into final
// pixel rectangles. Items are grouped per category (lane), assigned sub-rows
// within the lane, then given x/width from the time map and y from the lane
// offset plus the sub-row pitch. Pure function; output order is lane order,
// then item order within the lane.
func PlaceItems(items []Item, lanes []Lane, tm *TimeMap, expandLevel int) []PlacedItem {
	laneIndex := make(map[event.Category]int, len(lanes))
	for i, l := range lanes {
		laneIndex[l.Category] = i
	}

	byCategory := make(map[event.Category][]Item)
	for _, it := range items {
		byCategory[it.Category] = append(byCategory[it.Category], it)
	}

	rowUnit := RowUnit(expandLevel)
	placed := make([]PlacedItem, 0, len(items))

	// Iterate lanes (fixed category order) so output is deterministic
	for _, lane := range lanes {
		catItems := byCategory[lane.Category]
		if len(catItems) == 0 {
			continue
		}
		laneIdx := laneIndex[lane.Category]
		assignment := AssignSubRows(catItems, tm)

		for i, it := range catItems {
			subRow := assignment.Rows[i]
			x := tm.MsToX(it.StartMs)
			var width float64
			height := BarHeight
			if it.IsInstant {
				width = MarkerSize
				height = MarkerSize
			} else {
				width = tm.DurationToWidth(it.StartMs, it.EndMs-it.StartMs)
			}
			y := lane.Y + subRow*rowUnit + (SubRowHeight-BarHeight)/2

			placed = append(placed, PlacedItem{
				Item:   it,
				Lane:   laneIdx,
				SubRow: subRow,
				X:      x,
				Y:      y,
				Width:  width,
				Height: height,
			})
		}
	}

	return placed
}
