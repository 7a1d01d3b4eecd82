package timeline

import (
	"sort"

	"github.com/ibare/baden/internal/core/event"
	"github.com/ibare/baden/internal/core/registry"
)

// NormalizeItems converts raw event records into timeline items.
//
// Events are processed in timestamp order (stable, ties keep arrival order)
// so that end-time inference from the next event is deterministic. End times
// come from, in priority order: an explicit duration, the next event's start
// capped at MaxGapDurationMs, or DefaultLastDurationMs for the final event.
// Inferred end times are flagged as truncated.
func NormalizeItems(events []event.Record, resolve registry.Resolver) []Item {
	if len(events) == 0 {
		return []Item{}
	}

	sorted := make([]*event.Record, len(events))
	for i := range events {
		sorted[i] = &events[i]
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimeMs() < sorted[j].TimeMs()
	})

	items := make([]Item, 0, len(sorted))
	for i, e := range sorted {
		var resolved *registry.Resolved
		if resolve != nil {
			r := resolve(e.ActionValue(), e.Type)
			resolved = &r
		}

		var cat event.Category
		switch {
		case e.HasPrompt():
			cat = event.CategoryUser
		case resolved != nil:
			cat = resolved.Category
		default:
			cat = event.CategoryForType(e.Type)
		}

		startMs := e.TimeMs()
		var endMs int64
		truncated := false

		switch {
		case e.DurationMs != nil:
			// An explicit duration is authoritative, including zero
			endMs = startMs + *e.DurationMs
		case i < len(sorted)-1:
			gap := sorted[i+1].TimeMs() - startMs
			if gap > MaxGapDurationMs {
				endMs = startMs + MaxGapDurationMs
				truncated = true
			} else {
				endMs = startMs + gap
			}
		default:
			endMs = startMs + DefaultLastDurationMs
			truncated = true
		}
		if endMs < startMs {
			endMs = startMs
		}

		item := Item{
			Id:        e.Id,
			Event:     e,
			Category:  cat,
			StartMs:   startMs,
			EndMs:     endMs,
			IsInstant: endMs-startMs < InstantThresholdMs,
			Truncated: truncated,
		}
		if resolved != nil {
			item.ResolvedLabel = resolved.Label
			item.ResolvedIcon = resolved.Icon
			if resolved.Keyword != "" {
				item.ResolvedDetail = "[" + resolved.Keyword + "]"
			}
		}
		items = append(items, item)
	}

	return items
}

// FilterByCategory returns the items whose category is active. A nil or
// empty set means every category is active.
func FilterByCategory(items []Item, active map[event.Category]bool) []Item {
	if len(active) == 0 {
		out := make([]Item, len(items))
		copy(out, items)
		return out
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if active[it.Category] {
			out = append(out, it)
		}
	}
	return out
}
