package timeline

import (
	"sort"
)

// cluster is a maximal run of padded item intervals.
type cluster struct {
	startMs int64
	endMs   int64
}

// DetectGaps finds stretches of empty time between event clusters. Items are
// padded by ClusterPaddingMs on both sides and merged with a standard
// interval merge; inter-cluster voids longer than GapThresholdMs become gap
// regions, including the voids before the first and after the last cluster.
func DetectGaps(items []Item, rangeStart, rangeEnd int64) []Region {
	if len(items) == 0 {
		return nil
	}

	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartMs < sorted[j].StartMs
	})

	clusters := make([]cluster, 0, len(sorted))
	cur := cluster{
		startMs: sorted[0].StartMs - ClusterPaddingMs,
		endMs:   sorted[0].EndMs + ClusterPaddingMs,
	}
	for _, it := range sorted[1:] {
		itemStart := it.StartMs - ClusterPaddingMs
		itemEnd := it.EndMs + ClusterPaddingMs
		if itemStart <= cur.endMs {
			if itemEnd > cur.endMs {
				cur.endMs = itemEnd
			}
		} else {
			clusters = append(clusters, cur)
			cur = cluster{startMs: itemStart, endMs: itemEnd}
		}
	}
	clusters = append(clusters, cur)

	// Clamp the outer clusters to the visible range
	if clusters[0].startMs < rangeStart {
		clusters[0].startMs = rangeStart
	}
	if last := len(clusters) - 1; clusters[last].endMs > rangeEnd {
		clusters[last].endMs = rangeEnd
	}

	var gaps []Region
	if clusters[0].startMs-rangeStart > GapThresholdMs {
		gaps = append(gaps, Region{StartMs: rangeStart, EndMs: clusters[0].startMs, Kind: SegmentGap})
	}
	for i := 0; i < len(clusters)-1; i++ {
		gapStart := clusters[i].endMs
		gapEnd := clusters[i+1].startMs
		if gapEnd-gapStart > GapThresholdMs {
			gaps = append(gaps, Region{StartMs: gapStart, EndMs: gapEnd, Kind: SegmentGap})
		}
	}
	if last := len(clusters) - 1; rangeEnd-clusters[last].endMs > GapThresholdMs {
		gaps = append(gaps, Region{StartMs: clusters[last].endMs, EndMs: rangeEnd, Kind: SegmentGap})
	}

	return gaps
}

// DetectLongEvents finds single events whose rendered width would exceed the
// viewport and which overlap no other item. Their middles are elided: a head
// and tail of EventHeadTailRatio viewport time-spans each stay linear and
// the region between them compresses to a fixed width. Events only slightly
// wider than the viewport (head and tail would meet) are left alone.
func DetectLongEvents(items []Item, ppm float64, viewportWidth int) []Region {
	if len(items) == 0 || ppm <= 0 || viewportWidth <= 0 {
		return nil
	}

	viewportSpanMs := float64(viewportWidth) / ppm * 60_000
	headTailMs := int64(viewportSpanMs * EventHeadTailRatio)

	var regions []Region
	for i, it := range items {
		durationMs := it.EndMs - it.StartMs
		widthPx := float64(durationMs) / 60_000 * ppm
		if widthPx <= float64(viewportWidth) {
			continue
		}

		overlaps := false
		for j, other := range items {
			if i == j {
				continue
			}
			if other.StartMs < it.EndMs && other.EndMs > it.StartMs {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}

		middleStart := it.StartMs + headTailMs
		middleEnd := it.EndMs - headTailMs
		if middleStart >= middleEnd {
			continue
		}
		regions = append(regions, Region{StartMs: middleStart, EndMs: middleEnd, Kind: SegmentEventGap})
	}

	return regions
}

// ResolveRegions merges gap and event-gap candidates into a conflict-free,
// time-sorted region list. When two candidates overlap, the earlier-starting
// one wins and the later one is dropped whole; equal starts keep gap
// candidates ahead of event-gap candidates by their position in the input.
func ResolveRegions(candidates []Region, rangeStart, rangeEnd int64) []Region {
	clamped := make([]Region, 0, len(candidates))
	for _, r := range candidates {
		if r.StartMs < rangeStart {
			r.StartMs = rangeStart
		}
		if r.EndMs > rangeEnd {
			r.EndMs = rangeEnd
		}
		if r.EndMs <= r.StartMs {
			continue
		}
		clamped = append(clamped, r)
	}

	sort.SliceStable(clamped, func(i, j int) bool {
		return clamped[i].StartMs < clamped[j].StartMs
	})

	resolved := make([]Region, 0, len(clamped))
	var lastEnd int64 = -1 << 63
	for _, r := range clamped {
		if r.StartMs < lastEnd {
			continue
		}
		resolved = append(resolved, r)
		lastEnd = r.EndMs
	}
	return resolved
}
