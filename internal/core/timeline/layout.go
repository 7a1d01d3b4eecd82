package timeline

import (
	"time"

	"github.com/ibare/baden/internal/core/event"
)

// Build runs the full layout pipeline: normalize events to items, compute
// the time range, build the compressed time map, allocate lanes and
// sub-rows, place items, and generate ticks and connections.
//
// Build is a pure function of its input. Re-running it on an unchanged
// input produces identical output, and every derived structure is freshly
// allocated so callers can swap whole layouts atomically.
func Build(in LayoutInput) *Layout {
	layout := BuildPartial(in)
	layout.Connections = BuildConnections(layout.Placed)
	return layout
}

// BuildPartial is Build without connection inference, for hosts that defer
// connections to an idle task (see application/monitor). The returned
// layout carries an empty, non-nil Connections slice.
func BuildPartial(in LayoutInput) *Layout {
	loc := in.Timezone
	if loc == nil {
		loc = time.Local
	}
	ppm := PixelsPerMinute(in.ZoomSec)

	items := NormalizeItems(in.Events, in.Resolver)

	allEvents := in.AllEvents
	if allEvents == nil {
		allEvents = in.Events
	}
	rangeStart, rangeEnd := ComputeRange(allEvents, in.SelectedDate, ppm, in.ViewportWidth, loc, in.Now)

	filtered := FilterByCategory(items, in.ActiveCategories)

	tm := NewTimeMap(filtered, rangeStart, rangeEnd, ppm, in.ViewportWidth)

	subRowCounts := make(map[event.Category]int)
	eventCounts := make(map[event.Category]int)
	byCategory := make(map[event.Category][]Item)
	for _, it := range filtered {
		byCategory[it.Category] = append(byCategory[it.Category], it)
	}
	for cat, catItems := range byCategory {
		subRowCounts[cat] = AssignSubRows(catItems, tm).Count
		eventCounts[cat] = len(catItems)
	}

	activeCats := in.ActiveCategories
	if len(activeCats) == 0 {
		// No filter: lanes for every category that has items
		activeCats = make(map[event.Category]bool, len(byCategory))
		for cat := range byCategory {
			activeCats[cat] = true
		}
	}

	// An empty day renders no lanes, just the ruler
	lanes := []Lane{}
	if len(activeCats) > 0 {
		lanes = ComputeLanes(activeCats, subRowCounts, eventCounts, in.ExpandLevel)
	}
	contentHeight := ContentHeight(lanes)
	lanes = StretchLanes(lanes, in.ViewportHeight)

	placed := PlaceItems(filtered, lanes, tm, in.ExpandLevel)
	ticks := GenerateTicks(tm, in.ZoomSec, loc)

	totalHeight := contentHeight
	if in.ViewportHeight > totalHeight {
		totalHeight = in.ViewportHeight
	}
	totalWidth := tm.TotalWidth()
	if float64(in.ViewportWidth) > totalWidth {
		totalWidth = float64(in.ViewportWidth)
	}

	return &Layout{
		Items:       items,
		Placed:      placed,
		Lanes:       lanes,
		Ticks:       ticks,
		Connections: []Connection{},
		TimeMap:     tm,
		RangeStart:  rangeStart,
		RangeEnd:    rangeEnd,
		TotalWidth:  totalWidth,
		TotalHeight: totalHeight,
	}
}
