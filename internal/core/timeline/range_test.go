package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibare/baden/internal/core/event"
	"github.com/ibare/baden/internal/testing/fixtures"
)

func TestComputeRange(t *testing.T) {
	ppm := PixelsPerMinute(2)
	now := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)

	t.Run("empty_day_gets_synthetic_window", func(t *testing.T) {
		start, end := ComputeRange(nil, "2026-03-10", ppm, 1200, time.UTC, now)

		want := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC).UnixMilli()
		assert.Equal(t, want, start)
		assert.Equal(t, start+30_000, end) // 1200px at zoom 2 spans 30s
	})

	t.Run("past_day_extends_to_end_of_day", func(t *testing.T) {
		events := []event.Record{
			fixtures.Record("a", testBase, "file_read"),
			fixtures.Record("b", testBase.Add(time.Hour), "file_read"),
		}
		start, end := ComputeRange(events, "2026-03-10", ppm, 1200, time.UTC, now)

		// 3% of the one-hour span of padding before the first event
		assert.Equal(t, testBase.UnixMilli()-108_000, start)
		eod := time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC).UnixMilli()
		assert.Equal(t, eod, end)
	})

	t.Run("today_extends_to_now", func(t *testing.T) {
		sameDayNow := testBase.Add(4 * time.Hour)
		events := []event.Record{
			fixtures.Record("a", testBase, "file_read"),
			fixtures.Record("b", testBase.Add(time.Hour), "file_read"),
		}
		_, end := ComputeRange(events, "2026-03-10", ppm, 1200, time.UTC, sameDayNow)

		assert.Equal(t, sameDayNow.UnixMilli()+5*60_000, end)
	})

	t.Run("at_least_one_viewport_span", func(t *testing.T) {
		events := []event.Record{
			fixtures.Record("a", testBase, "file_read"),
		}
		start, end := ComputeRange(events, "2026-03-10", ppm, 1200, time.UTC, now)
		require.Less(t, start, end)
		assert.GreaterOrEqual(t, end-start, int64(30_000))
	})
}
