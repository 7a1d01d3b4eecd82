package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibare/baden/internal/core/event"
	"github.com/ibare/baden/internal/core/registry"
	"github.com/ibare/baden/internal/testing/fixtures"
)

func workSessionInput() LayoutInput {
	return LayoutInput{
		Events:         fixtures.WorkSession(testBase),
		SelectedDate:   "2026-03-10",
		ZoomSec:        2,
		ViewportWidth:  1200,
		ViewportHeight: 600,
		Resolver:       registry.NewDefault().ResolverFunc(),
		Timezone:       time.UTC,
		Now:            time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC),
	}
}

func TestBuild(t *testing.T) {
	t.Run("empty_input_is_safe", func(t *testing.T) {
		in := workSessionInput()
		in.Events = nil
		layout := Build(in)

		require.NotNil(t, layout)
		assert.Empty(t, layout.Items)
		assert.Empty(t, layout.Placed)
		assert.Empty(t, layout.Lanes)
		assert.NotNil(t, layout.Connections)
		assert.NotNil(t, layout.Ticks)
		assert.NotNil(t, layout.TimeMap)
		assert.Less(t, layout.RangeStart, layout.RangeEnd)
	})

	t.Run("every_event_placed_exactly_once", func(t *testing.T) {
		in := workSessionInput()
		layout := Build(in)

		assert.Len(t, layout.Items, len(in.Events))
		require.Len(t, layout.Placed, len(in.Events))

		seen := make(map[string]bool)
		for _, p := range layout.Placed {
			assert.False(t, seen[p.Id], "item %s placed twice", p.Id)
			seen[p.Id] = true
		}
	})

	t.Run("placed_geometry_is_consistent", func(t *testing.T) {
		layout := Build(workSessionInput())

		for _, p := range layout.Placed {
			lane := layout.Lanes[p.Lane]
			assert.Equal(t, lane.Category, p.Category)
			assert.GreaterOrEqual(t, p.Y, lane.Y)
			assert.GreaterOrEqual(t, p.X, 0.0)
			assert.LessOrEqual(t, p.X, layout.TotalWidth)
			if p.IsInstant {
				assert.Equal(t, float64(MarkerSize), p.Width)
			} else {
				assert.GreaterOrEqual(t, p.Width, float64(MinBarWidthPx))
			}
		}
	})

	t.Run("lanes_in_fixed_order", func(t *testing.T) {
		layout := Build(workSessionInput())
		require.NotEmpty(t, layout.Lanes)

		orderIndex := make(map[event.Category]int, len(event.CategoryOrder))
		for i, cat := range event.CategoryOrder {
			orderIndex[cat] = i
		}
		for i := 1; i < len(layout.Lanes); i++ {
			assert.Less(t, orderIndex[layout.Lanes[i-1].Category], orderIndex[layout.Lanes[i].Category])
		}
	})

	t.Run("category_filter_drops_lanes_and_items", func(t *testing.T) {
		in := workSessionInput()
		in.ActiveCategories = map[event.Category]bool{event.CategoryVerification: true}
		layout := Build(in)

		require.Len(t, layout.Lanes, 1)
		assert.Equal(t, event.CategoryVerification, layout.Lanes[0].Category)
		require.NotEmpty(t, layout.Placed)
		for _, p := range layout.Placed {
			assert.Equal(t, event.CategoryVerification, p.Category)
		}
		// Unfiltered items still drive the overall range
		assert.Len(t, layout.Items, len(in.Events))
	})

	t.Run("deterministic", func(t *testing.T) {
		in := workSessionInput()
		first := Build(in)
		second := Build(in)
		assert.Equal(t, first, second)
	})

	t.Run("partial_plus_connections_equals_build", func(t *testing.T) {
		in := workSessionInput()
		full := Build(in)

		partial := BuildPartial(in)
		assert.Empty(t, partial.Connections)
		partial.Connections = BuildConnections(partial.Placed)

		assert.Equal(t, full, partial)
	})

	t.Run("fills_viewport", func(t *testing.T) {
		layout := Build(workSessionInput())
		assert.GreaterOrEqual(t, layout.TotalHeight, 600)
		assert.GreaterOrEqual(t, layout.TotalWidth, 1200.0)
	})

	t.Run("idle_gap_is_compressed", func(t *testing.T) {
		// The work session has a 25-minute hole; the map must compress it
		layout := Build(workSessionInput())
		require.NotNil(t, layout.TimeMap)

		var gapSegments int
		for _, seg := range layout.TimeMap.Segments {
			if seg.Kind == SegmentGap {
				gapSegments++
			}
		}
		assert.Greater(t, gapSegments, 0)
	})

	t.Run("connections_inferred_from_shared_file", func(t *testing.T) {
		layout := Build(workSessionInput())

		// ws-2 (exploration) and ws-3 (implementation) touch the same file
		var found bool
		for _, c := range layout.Connections {
			if c.Kind == ConnFileLink && c.FromId == "ws-2" && c.ToId == "ws-3" {
				found = true
			}
		}
		assert.True(t, found)
	})
}
