// Package monitor coordinates layout recomputation for a live event feed.
//
// The timeline core is pure: every input change (new events, zoom, filter,
// viewport) triggers a full rebuild, and the resulting Layout replaces the
// previous one wholesale. Connection inference is the one derived structure
// allowed to lag: it runs as a deferred, cancelable task so a burst of
// appended events never blocks interactive panning, and converges to the
// newest input once the burst settles.
package monitor

import (
	"sync"
	"time"

	"github.com/ibare/baden/internal/core/event"
	"github.com/ibare/baden/internal/core/timeline"
	"github.com/ibare/baden/internal/util"
)

// connectionDelay is the idle window before deferred connection inference
// runs; a newer recompute within the window supersedes the task.
const connectionDelay = 50 * time.Millisecond

// Orchestrator owns the current layout and rebuilds it on demand.
type Orchestrator struct {
	mu sync.RWMutex

	input  timeline.LayoutInput
	layout *timeline.Layout

	// generation identifies the input set a deferred task belongs to;
	// stale completions are dropped (last write wins by generation, not by
	// completion order)
	generation uint64
	// connGen is the generation whose connection pass has landed
	connGen   uint64
	connTimer *time.Timer

	recomputeMutex sync.Mutex // serialize full recomputes
}

// NewOrchestrator creates an orchestrator with the given initial input.
func NewOrchestrator(input timeline.LayoutInput) *Orchestrator {
	o := &Orchestrator{input: input}
	o.Recompute()
	return o
}

// Layout returns the current layout. The returned value is immutable by
// contract; callers must not modify it.
func (o *Orchestrator) Layout() *timeline.Layout {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.layout
}

// SetEvents replaces the event set (live feeds replace, never append) and
// recomputes.
func (o *Orchestrator) SetEvents(events []event.Record) {
	o.mu.Lock()
	o.input.Events = events
	o.input.AllEvents = nil
	o.mu.Unlock()
	o.Recompute()
}

// SetZoom updates the seconds-per-tick zoom control and recomputes.
func (o *Orchestrator) SetZoom(zoomSec int) {
	o.mu.Lock()
	o.input.ZoomSec = ClampZoom(zoomSec)
	o.mu.Unlock()
	o.Recompute()
}

// SetViewport updates the viewport dimensions and recomputes.
func (o *Orchestrator) SetViewport(width, height int) {
	o.mu.Lock()
	o.input.ViewportWidth = width
	o.input.ViewportHeight = height
	o.mu.Unlock()
	o.Recompute()
}

// ToggleCategory flips one category in the active filter and recomputes.
func (o *Orchestrator) ToggleCategory(cat event.Category) {
	o.mu.Lock()
	if o.input.ActiveCategories == nil {
		o.input.ActiveCategories = make(map[event.Category]bool, len(event.CategoryOrder))
		for _, c := range event.CategoryOrder {
			o.input.ActiveCategories[c] = true
		}
	}
	o.input.ActiveCategories[cat] = !o.input.ActiveCategories[cat]
	o.mu.Unlock()
	o.Recompute()
}

// SetExpandLevel updates the inline-detail level (0..2) and recomputes.
func (o *Orchestrator) SetExpandLevel(level int) {
	o.mu.Lock()
	o.input.ExpandLevel = level
	o.mu.Unlock()
	o.Recompute()
}

// Recompute rebuilds the layout from the current input. The placed
// geometry swaps in synchronously; connections arrive via the deferred
// task (stale for at most one frame).
func (o *Orchestrator) Recompute() {
	o.recomputeMutex.Lock()
	defer o.recomputeMutex.Unlock()

	o.mu.Lock()
	in := o.input
	o.generation++
	gen := o.generation
	if o.connTimer != nil {
		o.connTimer.Stop()
		o.connTimer = nil
	}
	o.mu.Unlock()

	start := time.Now()
	layout := timeline.BuildPartial(in)

	o.mu.Lock()
	// Carry the previous connections forward so the renderer does not
	// flicker; they are replaced when the deferred task lands
	if o.layout != nil && len(o.layout.Connections) > 0 {
		layout.Connections = o.layout.Connections
	}
	o.layout = layout
	o.connTimer = time.AfterFunc(connectionDelay, func() {
		o.finishConnections(gen)
	})
	o.mu.Unlock()

	util.LogDebugf("Recomputed layout: %d items, %d placed, %d lanes in %v",
		len(layout.Items), len(layout.Placed), len(layout.Lanes), time.Since(start))
}

// finishConnections completes the deferred connection inference for one
// generation. A generation mismatch means a newer input superseded this
// task; its result is discarded.
func (o *Orchestrator) finishConnections(gen uint64) {
	o.mu.RLock()
	if gen != o.generation || o.layout == nil {
		o.mu.RUnlock()
		return
	}
	layout := o.layout
	o.mu.RUnlock()

	connections := timeline.BuildConnections(layout.Placed)

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return
	}
	// Fresh Layout value; the published one is never mutated in place
	updated := *layout
	updated.Connections = connections
	o.layout = &updated
	o.connGen = gen
}

// WaitForConnections blocks until the deferred connection pass for the
// current generation has landed, or the timeout expires. Intended for
// one-shot renders and tests; the live server just serves whatever is
// current.
func (o *Orchestrator) WaitForConnections(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		o.mu.RLock()
		done := o.connGen == o.generation
		o.mu.RUnlock()
		if done {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

// ClampZoom snaps a seconds-per-tick value into the legal slider range.
func ClampZoom(zoomSec int) int {
	if zoomSec < timeline.SliderMinSec {
		return timeline.SliderMinSec
	}
	if zoomSec > timeline.SliderMaxSec {
		return timeline.SliderMaxSec
	}
	return zoomSec
}
