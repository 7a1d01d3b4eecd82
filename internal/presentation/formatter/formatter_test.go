package formatter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibare/baden/internal/core/registry"
	"github.com/ibare/baden/internal/core/timeline"
	"github.com/ibare/baden/internal/testing/fixtures"
)

var formatterBase = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func testLayout() *timeline.Layout {
	return timeline.Build(timeline.LayoutInput{
		Events:         fixtures.WorkSession(formatterBase),
		SelectedDate:   "2026-03-10",
		ZoomSec:        2,
		ViewportWidth:  1200,
		ViewportHeight: 600,
		Resolver:       registry.NewDefault().ResolverFunc(),
		Timezone:       time.UTC,
		Now:            time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC),
	})
}

func TestSummarizeLanes(t *testing.T) {
	layout := testLayout()
	rows := SummarizeLanes(layout)
	require.Len(t, rows, len(layout.Lanes))

	var total int
	for i, row := range rows {
		assert.Equal(t, layout.Lanes[i].Category, row.Category)
		assert.Equal(t, row.Events, row.Instants+row.Bars)
		total += row.Events
	}
	assert.Equal(t, len(layout.Placed), total)
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).Format(testLayout()))

	var decoded timeline.Layout
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.Placed, len(testLayout().Placed))
	assert.NotNil(t, decoded.TimeMap)
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).Format(testLayout()))
	out := buf.String()

	assert.Contains(t, out, "Lane")
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "Verification")
	assert.Contains(t, out, "┌")
	assert.Contains(t, out, "└")

	// Every row has the same display width
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Greater(t, len(lines), 4)
	width := len([]rune(lines[0]))
	for _, line := range lines[1:] {
		assert.Equal(t, width, len([]rune(line)))
	}
}

func TestSummaryFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSummaryFormatter(&buf, time.UTC).Format(testLayout()))
	out := buf.String()

	assert.Contains(t, out, "Activity Timeline Summary")
	assert.Contains(t, out, "Time Range:")
	assert.Contains(t, out, "Lanes:")
	assert.Contains(t, out, "Connections:")
}

func TestSummaryFormatterEmpty(t *testing.T) {
	empty := timeline.Build(timeline.LayoutInput{
		SelectedDate:   "2026-03-10",
		ZoomSec:        2,
		ViewportWidth:  1200,
		ViewportHeight: 600,
		Timezone:       time.UTC,
		Now:            time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC),
	})

	var buf bytes.Buffer
	require.NoError(t, NewSummaryFormatter(&buf, time.UTC).Format(empty))
	assert.Contains(t, buf.String(), "No activity recorded")
}

func TestCSVFormatter(t *testing.T) {
	layout := testLayout()

	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter(&buf, time.UTC).Format(layout))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, len(layout.Placed)+1)
	assert.True(t, strings.HasPrefix(lines[0], "ID,Category,"))
}
