package timeline

// TimeMap is the piecewise time-to-pixel coordinate transform. Active
// segments scale linearly at PPM pixels per minute; compressed segments
// (gaps and elided long-event middles) occupy a fixed pixel width no matter
// how much real time they span. TimeMap is an immutable value: it is rebuilt
// from scratch whenever items, zoom, or viewport change, never patched.
type TimeMap struct {
	Segments    []Segment `json:"segments"`
	RangeStart  int64     `json:"rangeStart"`
	RangeEnd    int64     `json:"rangeEnd"`
	PPM         float64   `json:"ppm"`
	TotalWidthF float64   `json:"totalWidth"`
}

const minPPM = 1e-6

// NewTimeMap builds the coordinate transform for the given items and range.
// Compression candidates come from gap detection and long-event detection;
// overlaps resolve earlier-start-wins (ResolveRegions).
func NewTimeMap(items []Item, rangeStart, rangeEnd int64, ppm float64, viewportWidth int) *TimeMap {
	if ppm <= 0 {
		ppm = minPPM
	}
	if rangeEnd < rangeStart {
		rangeEnd = rangeStart
	}

	candidates := DetectGaps(items, rangeStart, rangeEnd)
	candidates = append(candidates, DetectLongEvents(items, ppm, viewportWidth)...)
	regions := ResolveRegions(candidates, rangeStart, rangeEnd)

	return newTimeMapFromRegions(regions, rangeStart, rangeEnd, ppm)
}

func newTimeMapFromRegions(regions []Region, rangeStart, rangeEnd int64, ppm float64) *TimeMap {
	if len(regions) == 0 {
		// Pure linear map: one active segment spanning the whole range
		totalWidth := linearWidth(rangeEnd-rangeStart, ppm)
		if totalWidth < MinBarWidthPx {
			totalWidth = MinBarWidthPx
		}
		return &TimeMap{
			Segments: []Segment{{
				StartMs:  rangeStart,
				EndMs:    rangeEnd,
				Kind:     SegmentActive,
				PxOffset: 0,
				PxWidth:  totalWidth,
			}},
			RangeStart:  rangeStart,
			RangeEnd:    rangeEnd,
			PPM:         ppm,
			TotalWidthF: totalWidth,
		}
	}

	segments := make([]Segment, 0, 2*len(regions)+1)
	cursor := rangeStart
	pxOffset := 0.0

	for _, r := range regions {
		if r.StartMs > cursor {
			w := linearWidth(r.StartMs-cursor, ppm)
			segments = append(segments, Segment{
				StartMs:  cursor,
				EndMs:    r.StartMs,
				Kind:     SegmentActive,
				PxOffset: pxOffset,
				PxWidth:  w,
			})
			pxOffset += w
		}

		w := float64(CompressedGapPx)
		if r.Kind == SegmentEventGap {
			w = CompressedEventGapPx
		}
		segments = append(segments, Segment{
			StartMs:  r.StartMs,
			EndMs:    r.EndMs,
			Kind:     r.Kind,
			PxOffset: pxOffset,
			PxWidth:  w,
		})
		pxOffset += w
		cursor = r.EndMs
	}

	if cursor < rangeEnd {
		w := linearWidth(rangeEnd-cursor, ppm)
		segments = append(segments, Segment{
			StartMs:  cursor,
			EndMs:    rangeEnd,
			Kind:     SegmentActive,
			PxOffset: pxOffset,
			PxWidth:  w,
		})
		pxOffset += w
	}

	return &TimeMap{
		Segments:    segments,
		RangeStart:  rangeStart,
		RangeEnd:    rangeEnd,
		PPM:         ppm,
		TotalWidthF: pxOffset,
	}
}

func linearWidth(durationMs int64, ppm float64) float64 {
	return float64(durationMs) / 60_000 * ppm
}

// TotalWidth is the pixel width of the full mapped range.
func (m *TimeMap) TotalWidth() float64 {
	return m.TotalWidthF
}

// findSegment returns the segment containing ms. Segments are sorted and
// non-overlapping, so this is a binary search over the end boundaries; it is
// on the hot path (once per visible item and tick per frame).
func (m *TimeMap) findSegment(ms int64) *Segment {
	lo, hi := 0, len(m.Segments)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if m.Segments[mid].EndMs <= ms {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return &m.Segments[lo]
}

// findSegmentByPx returns the segment containing pixel position x.
func (m *TimeMap) findSegmentByPx(x float64) *Segment {
	lo, hi := 0, len(m.Segments)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if m.Segments[mid].PxOffset+m.Segments[mid].PxWidth <= x {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return &m.Segments[lo]
}

// MsToX maps an instant to its pixel x-coordinate, clamped to
// [0, TotalWidth]. Inside a compressed segment the position interpolates
// linearly across the segment's fixed width.
func (m *TimeMap) MsToX(ms int64) float64 {
	if ms <= m.RangeStart {
		return 0
	}
	if ms >= m.RangeEnd {
		return m.TotalWidthF
	}

	seg := m.findSegment(ms)
	if seg.Kind != SegmentActive {
		frac := float64(ms-seg.StartMs) / float64(seg.EndMs-seg.StartMs)
		return seg.PxOffset + frac*seg.PxWidth
	}
	return seg.PxOffset + linearWidth(ms-seg.StartMs, m.PPM)
}

// XToMs is the inverse of MsToX, with the same clamping and interpolation.
func (m *TimeMap) XToMs(x float64) int64 {
	if x <= 0 {
		return m.RangeStart
	}
	if x >= m.TotalWidthF {
		return m.RangeEnd
	}

	seg := m.findSegmentByPx(x)
	offsetPx := x - seg.PxOffset
	if seg.Kind != SegmentActive {
		frac := offsetPx / seg.PxWidth
		return seg.StartMs + int64(frac*float64(seg.EndMs-seg.StartMs))
	}
	return seg.StartMs + int64(offsetPx/m.PPM*60_000)
}

// DurationToWidth maps a duration starting at startMs to a pixel width,
// never thinner than MinBarWidthPx.
func (m *TimeMap) DurationToWidth(startMs, durationMs int64) float64 {
	w := m.MsToX(startMs+durationMs) - m.MsToX(startMs)
	if w < MinBarWidthPx {
		return MinBarWidthPx
	}
	return w
}
