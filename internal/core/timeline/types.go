package timeline

import (
	"time"

	"github.com/ibare/baden/internal/core/event"
	"github.com/ibare/baden/internal/core/registry"
)

// Item is the normalized form of one event record: a category plus a
// concrete [StartMs, EndMs] interval. Exactly one Item is derived per input
// record; items are never merged or split.
type Item struct {
	Id       string         `json:"id"`
	Event    *event.Record  `json:"event"`
	Category event.Category `json:"category"`
	StartMs  int64          `json:"startMs"`
	EndMs    int64          `json:"endMs"`
	// IsInstant marks near-zero-duration items rendered as point markers
	IsInstant bool `json:"isInstant"`
	// Truncated marks items whose end time was inferred rather than declared
	Truncated      bool   `json:"truncated"`
	ResolvedLabel  string `json:"resolvedLabel,omitempty"`
	ResolvedIcon   string `json:"resolvedIcon,omitempty"`
	ResolvedDetail string `json:"resolvedDetail,omitempty"`
}

// SegmentKind distinguishes linear time segments from compressed ones.
type SegmentKind string

const (
	SegmentActive   SegmentKind = "active"
	SegmentGap      SegmentKind = "gap"
	SegmentEventGap SegmentKind = "event_gap"
)

// Region is a candidate time interval for compression.
type Region struct {
	StartMs int64       `json:"startMs"`
	EndMs   int64       `json:"endMs"`
	Kind    SegmentKind `json:"kind"`
}

// Segment is one piece of the compressed time map. Segments tile
// [rangeStart, rangeEnd) with no gaps or overlaps, each carrying its own
// pixel offset and width.
type Segment struct {
	StartMs  int64       `json:"startMs"`
	EndMs    int64       `json:"endMs"`
	Kind     SegmentKind `json:"kind"`
	PxOffset float64     `json:"pxOffset"`
	PxWidth  float64     `json:"pxWidth"`
}

// Lane is the vertical band for one active category.
type Lane struct {
	Category    event.Category `json:"category"`
	Label       string         `json:"label"`
	SubRowCount int            `json:"subRowCount"`
	Y           int            `json:"y"`
	Height      int            `json:"height"`
}

// PlacedItem is an Item with final pixel geometry.
type PlacedItem struct {
	Item
	Lane   int     `json:"lane"`
	SubRow int     `json:"subRow"`
	X      float64 `json:"x"`
	Y      int     `json:"y"`
	Width  float64 `json:"width"`
	Height int     `json:"height"`
}

// ConnectionKind is the inferred relationship between two placed items.
type ConnectionKind string

const (
	ConnRuleChain ConnectionKind = "rule_chain"
	ConnFileLink  ConnectionKind = "file_link"
	ConnTaskChain ConnectionKind = "task_chain"
)

// Connection is a directed edge between two placed items. From and To are
// indexes into the Layout's Placed slice.
type Connection struct {
	From   int            `json:"from"`
	To     int            `json:"to"`
	FromId string         `json:"fromId"`
	ToId   string         `json:"toId"`
	Kind   ConnectionKind `json:"kind"`
}

// Tick is one axis mark. Duration ticks sit centered on compressed segments
// and carry a duration label instead of a clock label.
type Tick struct {
	Ms         int64   `json:"ms"`
	X          float64 `json:"x"`
	Label      string  `json:"label"`
	IsMajor    bool    `json:"isMajor"`
	IsDuration bool    `json:"isDuration"`
}

// LayoutInput is everything a layout computation depends on. Build is a pure
// function of this value; any change means a full recompute.
type LayoutInput struct {
	// Events to lay out (already filtered to the active scope)
	Events []event.Record
	// AllEvents determines the overall time range; defaults to Events when nil
	AllEvents []event.Record
	// SelectedDate is the active day in "2006-01-02" form
	SelectedDate string
	// ActiveCategories filters lanes; nil or empty means all categories
	ActiveCategories map[event.Category]bool
	// ZoomSec is the seconds-per-ruler-tick zoom control (1..60)
	ZoomSec        int
	ViewportWidth  int
	ViewportHeight int
	ExpandLevel    int
	// Resolver is the advisory action-registry snapshot; nil falls back to
	// the static type table
	Resolver registry.Resolver
	// Timezone for tick labels and day boundaries; nil means time.Local
	Timezone *time.Location
	// Now anchors "extend range to the present" for the current day; the
	// zero value means the wall clock
	Now time.Time
}

// Layout is the full renderable result of one Build pass. All slices are
// freshly constructed; callers must treat them as immutable.
type Layout struct {
	Items       []Item       `json:"items"`
	Placed      []PlacedItem `json:"placed"`
	Lanes       []Lane       `json:"lanes"`
	Ticks       []Tick       `json:"ticks"`
	Connections []Connection `json:"connections"`
	TimeMap     *TimeMap     `json:"timeMap"`
	RangeStart  int64        `json:"rangeStart"`
	RangeEnd    int64        `json:"rangeEnd"`
	TotalWidth  float64      `json:"totalWidth"`
	TotalHeight int          `json:"totalHeight"`
}

// PixelsPerMinute converts the seconds-per-tick zoom value to the linear
// scale: one ruler tick spans RulerSpacingPx pixels and zoomSec seconds.
func PixelsPerMinute(zoomSec int) float64 {
	if zoomSec < SliderMinSec {
		zoomSec = SliderMinSec
	}
	if zoomSec > SliderMaxSec {
		zoomSec = SliderMaxSec
	}
	return RulerSpacingPx / (float64(zoomSec) / 60.0)
}
