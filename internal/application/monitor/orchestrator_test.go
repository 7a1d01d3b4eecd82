package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibare/baden/internal/core/event"
	"github.com/ibare/baden/internal/core/registry"
	"github.com/ibare/baden/internal/core/timeline"
	"github.com/ibare/baden/internal/testing/fixtures"
)

var monitorBase = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func testInput(events []event.Record) timeline.LayoutInput {
	return timeline.LayoutInput{
		Events:         events,
		SelectedDate:   "2026-03-10",
		ZoomSec:        2,
		ViewportWidth:  1200,
		ViewportHeight: 600,
		Resolver:       registry.NewDefault().ResolverFunc(),
		Timezone:       time.UTC,
		Now:            time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC),
	}
}

func TestOrchestrator(t *testing.T) {
	t.Run("initial_layout_available_immediately", func(t *testing.T) {
		o := NewOrchestrator(testInput(fixtures.WorkSession(monitorBase)))
		layout := o.Layout()
		require.NotNil(t, layout)
		assert.NotEmpty(t, layout.Placed)
	})

	t.Run("connections_converge", func(t *testing.T) {
		o := NewOrchestrator(testInput(fixtures.RuleChain(monitorBase, "R1", 3)))
		require.True(t, o.WaitForConnections(2*time.Second))

		layout := o.Layout()
		require.Len(t, layout.Connections, 2)
		assert.Equal(t, timeline.ConnRuleChain, layout.Connections[0].Kind)
	})

	t.Run("matches_synchronous_build", func(t *testing.T) {
		in := testInput(fixtures.WorkSession(monitorBase))
		o := NewOrchestrator(in)
		require.True(t, o.WaitForConnections(2*time.Second))

		want := timeline.Build(in)
		got := o.Layout()
		assert.Equal(t, want.Placed, got.Placed)
		assert.Equal(t, want.Connections, got.Connections)
	})

	t.Run("set_events_replaces_layout", func(t *testing.T) {
		o := NewOrchestrator(testInput(nil))
		assert.Empty(t, o.Layout().Placed)

		o.SetEvents(fixtures.RuleChain(monitorBase, "R2", 2))
		require.True(t, o.WaitForConnections(2*time.Second))
		assert.Len(t, o.Layout().Placed, 2)
		assert.Len(t, o.Layout().Connections, 1)
	})

	t.Run("rapid_updates_converge_to_newest", func(t *testing.T) {
		o := NewOrchestrator(testInput(nil))

		// A burst of replacements; only the last may win
		for n := 1; n <= 5; n++ {
			o.SetEvents(fixtures.RuleChain(monitorBase, "R3", n))
		}
		require.True(t, o.WaitForConnections(2*time.Second))

		layout := o.Layout()
		assert.Len(t, layout.Placed, 5)
		assert.Len(t, layout.Connections, 4)
	})

	t.Run("toggle_category_filters_placed_items", func(t *testing.T) {
		o := NewOrchestrator(testInput(fixtures.WorkSession(monitorBase)))
		before := len(o.Layout().Placed)

		o.ToggleCategory(event.CategoryVerification)
		after := len(o.Layout().Placed)
		assert.Less(t, after, before)

		o.ToggleCategory(event.CategoryVerification)
		assert.Equal(t, before, len(o.Layout().Placed))
	})

	t.Run("set_zoom_clamps", func(t *testing.T) {
		o := NewOrchestrator(testInput(fixtures.WorkSession(monitorBase)))
		o.SetZoom(500)
		require.True(t, o.WaitForConnections(2*time.Second))
		assert.NotEmpty(t, o.Layout().Placed)
	})
}

func TestClampZoom(t *testing.T) {
	assert.Equal(t, timeline.SliderMinSec, ClampZoom(0))
	assert.Equal(t, timeline.SliderMinSec, ClampZoom(-5))
	assert.Equal(t, timeline.SliderMaxSec, ClampZoom(500))
	assert.Equal(t, 10, ClampZoom(10))
}
