package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibare/baden/internal/core/event"
)

func linearTestMap(span time.Duration) *TimeMap {
	return NewTimeMap(nil, testBase.UnixMilli(), testBase.Add(span).UnixMilli(), PixelsPerMinute(2), 1200)
}

func TestAssignSubRows(t *testing.T) {
	tm := linearTestMap(time.Hour)

	t.Run("overlapping_bars_stack", func(t *testing.T) {
		items := make([]Item, 10)
		for i := range items {
			items[i] = barItem(string(rune('a'+i)), testBase.Add(time.Duration(i)*time.Second), time.Minute)
		}
		got := AssignSubRows(items, tm)

		require.Len(t, got.Rows, 10)
		assert.Greater(t, got.Count, 1)
		assert.LessOrEqual(t, got.Count, MaxSubRows)
		for _, row := range got.Rows {
			assert.GreaterOrEqual(t, row, 0)
			assert.Less(t, row, MaxSubRows)
		}
	})

	t.Run("distant_bars_share_a_row", func(t *testing.T) {
		items := []Item{
			barItem("a", testBase, time.Minute),
			barItem("b", testBase.Add(10*time.Minute), time.Minute),
		}
		got := AssignSubRows(items, tm)
		assert.Equal(t, 1, got.Count)
		assert.Equal(t, []int{0, 0}, got.Rows)
	})

	t.Run("bars_keep_ruler_gap", func(t *testing.T) {
		// Second bar starts right after the first ends; the horizontal gap
		// rule pushes it to a new sub-row
		items := []Item{
			barItem("a", testBase, time.Minute),
			barItem("b", testBase.Add(time.Minute+time.Second), time.Minute),
		}
		got := AssignSubRows(items, tm)
		assert.Equal(t, 2, got.Count)
		assert.NotEqual(t, got.Rows[0], got.Rows[1])
	})

	t.Run("instants_pack_without_gap", func(t *testing.T) {
		items := []Item{
			barItem("a", testBase, 0),
			barItem("b", testBase.Add(time.Second), 0),
		}
		got := AssignSubRows(items, tm)
		assert.Equal(t, 1, got.Count)
	})

	t.Run("cap_merges_instead_of_hiding", func(t *testing.T) {
		items := make([]Item, MaxSubRows+5)
		for i := range items {
			items[i] = barItem(string(rune('a'+i)), testBase.Add(time.Duration(i)*time.Millisecond), 30*time.Minute)
		}
		got := AssignSubRows(items, tm)

		assert.Equal(t, MaxSubRows, got.Count)
		require.Len(t, got.Rows, len(items))
		for _, row := range got.Rows {
			assert.Less(t, row, MaxSubRows)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		items := make([]Item, 20)
		for i := range items {
			items[i] = barItem(string(rune('a'+i)), testBase.Add(time.Duration(i*13)*time.Second), 45*time.Second)
		}
		first := AssignSubRows(items, tm)
		second := AssignSubRows(items, tm)
		assert.Equal(t, first, second)
	})

	t.Run("empty_input_has_one_row", func(t *testing.T) {
		got := AssignSubRows(nil, tm)
		assert.Equal(t, 1, got.Count)
		assert.Empty(t, got.Rows)
	})
}

func TestRowUnit(t *testing.T) {
	assert.Equal(t, SubRowHeight, RowUnit(0))
	assert.Equal(t, SubRowHeight+DetailHeights[1], RowUnit(1))
	assert.Equal(t, SubRowHeight+DetailHeights[2], RowUnit(2))
	// Out-of-range levels clamp
	assert.Equal(t, RowUnit(0), RowUnit(-3))
	assert.Equal(t, RowUnit(2), RowUnit(99))
}

func TestComputeLanes(t *testing.T) {
	t.Run("fixed_category_order", func(t *testing.T) {
		active := map[event.Category]bool{
			event.CategoryDebugging:   true,
			event.CategoryUser:        true,
			event.CategoryExploration: true,
		}
		lanes := ComputeLanes(active, map[event.Category]int{}, map[event.Category]int{}, 0)
		require.Len(t, lanes, 3)
		assert.Equal(t, event.CategoryUser, lanes[0].Category)
		assert.Equal(t, event.CategoryExploration, lanes[1].Category)
		assert.Equal(t, event.CategoryDebugging, lanes[2].Category)
	})

	t.Run("lanes_do_not_overlap", func(t *testing.T) {
		active := map[event.Category]bool{
			event.CategoryUser:           true,
			event.CategoryImplementation: true,
		}
		subRows := map[event.Category]int{
			event.CategoryUser:           2,
			event.CategoryImplementation: 3,
		}
		lanes := ComputeLanes(active, subRows, map[event.Category]int{}, 0)
		require.Len(t, lanes, 2)

		assert.Equal(t, TimeAxisHeight, lanes[0].Y)
		assert.Equal(t, 2*RowUnit(0), lanes[0].Height)
		assert.Equal(t, lanes[0].Y+lanes[0].Height+LaneGap, lanes[1].Y)
		assert.Equal(t, 3*RowUnit(0), lanes[1].Height)
	})

	t.Run("density_bonus_for_busy_lanes", func(t *testing.T) {
		active := map[event.Category]bool{
			event.CategoryExploration:    true,
			event.CategoryImplementation: true,
		}
		subRows := map[event.Category]int{
			event.CategoryExploration:    1,
			event.CategoryImplementation: 1,
		}
		counts := map[event.Category]int{
			event.CategoryExploration:    2,
			event.CategoryImplementation: 20,
		}
		lanes := ComputeLanes(active, subRows, counts, 0)
		require.Len(t, lanes, 2)

		// Only the busy lane earns extra height; two or fewer events never do
		assert.Equal(t, RowUnit(0), lanes[0].Height)
		assert.Equal(t, RowUnit(0)+2*RowUnit(0), lanes[1].Height)
	})

	t.Run("no_active_categories_means_all", func(t *testing.T) {
		lanes := ComputeLanes(nil, map[event.Category]int{}, map[event.Category]int{}, 0)
		assert.Len(t, lanes, len(event.CategoryOrder))
	})
}

func TestContentHeight(t *testing.T) {
	assert.Equal(t, 100, ContentHeight(nil))

	lanes := []Lane{{Y: TimeAxisHeight, Height: 56}}
	assert.Equal(t, TimeAxisHeight+56+LanePadBottom, ContentHeight(lanes))
}

func TestStretchLanes(t *testing.T) {
	active := map[event.Category]bool{
		event.CategoryUser:        true,
		event.CategoryExploration: true,
	}
	lanes := ComputeLanes(active, map[event.Category]int{}, map[event.Category]int{}, 0)

	t.Run("short_content_fills_viewport", func(t *testing.T) {
		stretched := StretchLanes(lanes, 800)
		require.Len(t, stretched, len(lanes))
		assert.GreaterOrEqual(t, ContentHeight(stretched), 800-LanePadBottom)

		// Stretching never reorders or shrinks
		for i := range stretched {
			assert.Equal(t, lanes[i].Category, stretched[i].Category)
			assert.GreaterOrEqual(t, stretched[i].Height, lanes[i].Height)
		}
	})

	t.Run("tall_content_is_untouched", func(t *testing.T) {
		stretched := StretchLanes(lanes, 10)
		assert.Equal(t, lanes, stretched)
	})

	t.Run("input_not_mutated", func(t *testing.T) {
		before := make([]Lane, len(lanes))
		copy(before, lanes)
		_ = StretchLanes(lanes, 2000)
		assert.Equal(t, before, lanes)
	})
}
