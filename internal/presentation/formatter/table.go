package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ibare/baden/internal/core/timeline"
	"github.com/ibare/baden/internal/util"
)

type TableFormatter struct {
	out     io.Writer
	headers []string
}

func NewTableFormatter(out io.Writer) *TableFormatter {
	return &TableFormatter{
		out: out,
		headers: []string{
			"Lane", "Events", "Markers", "Bars", "Sub-rows", "Active Time",
		},
	}
}

func (f *TableFormatter) Format(layout *timeline.Layout) error {
	rows := SummarizeLanes(layout)

	var totalEvents, totalInstants, totalBars int
	var totalActiveMs int64
	cells := make([][]string, 0, len(rows)+1)
	for _, row := range rows {
		cells = append(cells, []string{
			row.Label,
			util.FormatNumber(row.Events),
			util.FormatNumber(row.Instants),
			util.FormatNumber(row.Bars),
			util.FormatNumber(row.SubRows),
			util.FormatDurationMs(row.ActiveMs),
		})
		totalEvents += row.Events
		totalInstants += row.Instants
		totalBars += row.Bars
		totalActiveMs += row.ActiveMs
	}
	totalRow := []string{
		"Total",
		util.FormatNumber(totalEvents),
		util.FormatNumber(totalInstants),
		util.FormatNumber(totalBars),
		"",
		util.FormatDurationMs(totalActiveMs),
	}

	widths := f.calculateColumnWidths(cells, totalRow)

	f.printBorder(widths, "top")
	f.printRow(f.headers, widths)
	f.printBorder(widths, "middle")
	for _, row := range cells {
		f.printRow(row, widths)
	}
	f.printBorder(widths, "middle")
	f.printRow(totalRow, widths)
	f.printBorder(widths, "bottom")

	return nil
}

// calculateColumnWidths determines the width of each column from its widest
// cell. Lane labels may be non-ASCII, so display width is measured with
// runewidth, not len.
func (f *TableFormatter) calculateColumnWidths(cells [][]string, totalRow []string) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = runewidth.StringWidth(header)
	}

	consider := append(append([][]string{}, cells...), totalRow)
	for _, row := range consider {
		for i, value := range row {
			if w := runewidth.StringWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}

	for i := range widths {
		if widths[i] < 6 {
			widths[i] = 6
		}
	}
	return widths
}

func (f *TableFormatter) printBorder(widths []int, borderType string) {
	var left, middle, right string

	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	fmt.Fprint(f.out, left)
	for i, width := range widths {
		fmt.Fprint(f.out, strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			fmt.Fprint(f.out, middle)
		}
	}
	fmt.Fprintln(f.out, right)
}

func (f *TableFormatter) printRow(values []string, widths []int) {
	fmt.Fprint(f.out, "│")
	for i, value := range values {
		pad := widths[i] - runewidth.StringWidth(value)
		if pad < 0 {
			pad = 0
		}
		if i == 0 {
			// Lane column is left-aligned, numeric columns right-aligned
			fmt.Fprintf(f.out, " %s%s │", value, strings.Repeat(" ", pad))
		} else {
			fmt.Fprintf(f.out, " %s%s │", strings.Repeat(" ", pad), value)
		}
	}
	fmt.Fprintln(f.out)
}
