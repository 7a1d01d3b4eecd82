package timeline

import (
	"time"

	"github.com/ibare/baden/internal/core/event"
)

const fallbackSpanMs = 3600_000

// ComputeRange determines the [rangeStart, rangeEnd] window the timeline
// covers. The range wraps all events with 3% padding, extends to the present
// (plus a small margin) when the selected date is today or to the end of the
// day otherwise, and always spans at least one viewport width of time.
//
// With no events at all the range is a synthetic window starting at 08:00 of
// the selected date, so an empty day still renders a valid ruler.
func ComputeRange(allEvents []event.Record, selectedDate string, ppm float64, viewportWidth int, loc *time.Location, now time.Time) (int64, int64) {
	if loc == nil {
		loc = time.Local
	}
	if now.IsZero() {
		now = time.Now()
	}

	// Smallest time span the viewport can display at this zoom
	viewportMs := int64(fallbackSpanMs)
	if ppm > 0 {
		viewportMs = int64(float64(viewportWidth) / ppm * 60_000)
	}

	if len(allEvents) == 0 {
		base := dayStart(selectedDate, loc).Add(8 * time.Hour).UnixMilli()
		return base, base + viewportMs
	}

	minMs := int64(1<<63 - 1)
	maxMs := int64(-1 << 63)
	for i := range allEvents {
		t := allEvents[i].TimeMs()
		if t < minMs {
			minMs = t
		}
		if t > maxMs {
			maxMs = t
		}
	}

	span := maxMs - minMs
	if span == 0 {
		span = fallbackSpanMs
	}
	padding := int64(float64(span) * 0.03)
	start := minMs - padding
	end := maxMs + padding + DefaultLastDurationMs

	if selectedDate == now.In(loc).Format("2006-01-02") {
		if nowPadded := now.UnixMilli() + 5*60_000; nowPadded > end {
			end = nowPadded
		}
	} else {
		if eod := dayStart(selectedDate, loc).Add(24*time.Hour - time.Second).UnixMilli(); eod > end {
			end = eod
		}
	}

	if end-start < viewportMs {
		end = start + viewportMs
	}

	return start, end
}

func dayStart(date string, loc *time.Location) time.Time {
	t, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		t = time.Now().In(loc)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	}
	return t
}
