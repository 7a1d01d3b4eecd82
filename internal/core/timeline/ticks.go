package timeline

import (
	"fmt"
	"math"
	"time"
)

// GenerateTicks walks the time map's segments and produces axis ticks.
// Active segments get clock ticks every zoomSec seconds, every
// TickMajorEvery-th one major; ticks landing within TickSuppressMargin
// pixels of a compressed-segment boundary are suppressed so duration labels
// never collide with clock labels. Each compressed segment gets exactly one
// centered tick labeled with its real duration.
func GenerateTicks(tm *TimeMap, zoomSec int, loc *time.Location) []Tick {
	if tm == nil || len(tm.Segments) == 0 {
		return []Tick{}
	}
	if loc == nil {
		loc = time.Local
	}
	if zoomSec < SliderMinSec {
		zoomSec = SliderMinSec
	}
	intervalMs := int64(zoomSec) * 1000

	// Pixel boundaries of compressed segments, for suppression
	var boundaries []float64
	for _, seg := range tm.Segments {
		if seg.Kind != SegmentActive {
			boundaries = append(boundaries, seg.PxOffset, seg.PxOffset+seg.PxWidth)
		}
	}
	nearBoundary := func(x float64) bool {
		for _, b := range boundaries {
			if math.Abs(x-b) < TickSuppressMargin {
				return true
			}
		}
		return false
	}

	ticks := make([]Tick, 0)
	for _, seg := range tm.Segments {
		if seg.Kind != SegmentActive {
			durationMs := seg.EndMs - seg.StartMs
			label := formatTickDuration(durationMs)
			if seg.Kind == SegmentEventGap {
				label = "~" + label
			}
			ticks = append(ticks, Tick{
				Ms:         seg.StartMs + durationMs/2,
				X:          seg.PxOffset + seg.PxWidth/2,
				Label:      label,
				IsMajor:    true,
				IsDuration: true,
			})
			continue
		}

		// Clock ticks on the absolute interval grid, so majorness and
		// positions are stable under panning and recomputation
		first := (seg.StartMs + intervalMs - 1) / intervalMs * intervalMs
		for ms := first; ms < seg.EndMs; ms += intervalMs {
			x := tm.MsToX(ms)
			if nearBoundary(x) {
				continue
			}
			ticks = append(ticks, Tick{
				Ms:      ms,
				X:       x,
				Label:   formatTickLabel(ms, zoomSec, loc),
				IsMajor: (ms/intervalMs)%TickMajorEvery == 0,
			})
		}
	}

	return ticks
}

func formatTickLabel(ms int64, zoomSec int, loc *time.Location) string {
	t := time.UnixMilli(ms).In(loc)
	if zoomSec < 60 && t.Second() != 0 {
		return t.Format("15:04:05")
	}
	return t.Format("15:04")
}

// formatTickDuration renders a compressed span as "2h 15m", "2h" or "15m".
func formatTickDuration(durationMs int64) string {
	totalMin := (durationMs + 30_000) / 60_000
	hours := totalMin / 60
	minutes := totalMin % 60

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
