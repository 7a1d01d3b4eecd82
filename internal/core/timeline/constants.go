package timeline

// Layout dimensions (pixels)
const (
	LabelWidth     = 72
	TimeAxisHeight = 28
	SubRowHeight   = 28
	BarHeight      = 22
	LaneGap        = 6
	MarkerSize     = 10
	MinBarWidthPx  = 4
	LanePadBottom  = 8
	MaxSubRows     = 8
)

// DetailHeights is the extra per-sub-row height for each expand level
// (0 = compact, 1 = one detail line, 2 = two detail lines).
var DetailHeights = [3]int{0, 22, 44}

// Zoom: one ruler tick spans zoomSec seconds and a fixed pixel gap.
const (
	RulerSpacingPx = 80
	SliderMinSec   = 1
	SliderMaxSec   = 60
	SliderStepSec  = 1
	DefaultZoomSec = 2
)

// Duration inference (milliseconds)
const (
	InstantThresholdMs    = 5_000
	MaxGapDurationMs      = 5 * 60_000
	DefaultLastDurationMs = 30_000
)

// Gap compression
const (
	GapThresholdMs   = 3 * 60_000 // empty stretches longer than this compress
	CompressedGapPx  = 40
	ClusterPaddingMs = 30_000
)

// Long-event compression
const (
	CompressedEventGapPx = 60
	EventHeadTailRatio   = 0.35 // fraction of the viewport span kept as head and tail
)

// Ticks
const (
	TickMajorEvery     = 5
	TickSuppressMargin = 35 // px from a compressed-segment boundary
)

// Connections
const FileLinkWindowMs = 10 * 60_000
