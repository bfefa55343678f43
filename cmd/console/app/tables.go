package app

import (
	"fmt"

	"github.com/boulder-sim/boulder/internal/results"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var summaryColumnWeights = []int{3, 4, 2, 2}

func summaryToRows(rows [][]string) []table.Row {
	out := make([]table.Row, len(rows))
	for i, row := range rows {
		out[i] = table.Row(row)
	}
	return out
}

func newSummaryTable() table.Model {
	return createTable(results.SummaryColumns, []int{16, 24, 12, 8}, true)
}

// resizeSummary fits the summary columns to width and rows to height.
func (m *Model) resizeSummary(width, height int) {
	if width <= 0 {
		return
	}
	m.summary.SetColumns(buildColumns(results.SummaryColumns, distributeWidths(width, summaryColumnWeights)))
	m.summary.SetWidth(width)
	m.summary.SetHeight(max(height, 3))
}

func createTable(titles []string, widths []int, focused bool) table.Model {
	columns := buildColumns(titles, widths)
	tbl := table.New(
		table.WithColumns(columns),
		table.WithHeight(10),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true)

	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("63")).
		Bold(false)

	tbl.SetStyles(styles)
	if focused {
		tbl.Focus()
	}
	return tbl
}

func buildColumns(titles []string, widths []int) []table.Column {
	columns := make([]table.Column, len(titles))
	for i, title := range titles {
		width := 12
		if i < len(widths) && widths[i] > 0 {
			width = widths[i]
		}
		columns[i] = table.Column{Title: title, Width: width}
	}

	return columns
}

func distributeWidths(total int, weights []int) []int {
	if len(weights) == 0 {
		return nil
	}

	if total <= 0 {
		total = len(weights) * 12
	}

	// one character gap between columns
	contentTotal := total - (len(weights) - 1)
	if contentTotal < len(weights)*6 {
		contentTotal = len(weights) * 6
	}

	sum := 0
	for _, w := range weights {
		sum += w
	}

	minWidth := 6
	widths := make([]int, len(weights))
	remaining := contentTotal

	for i, weight := range weights {
		if i == len(weights)-1 {
			widths[i] = max(remaining, minWidth)
			break
		}

		portion := max(weight*contentTotal/sum, minWidth)
		minRemaining := minWidth * (len(weights) - i - 1)
		if remaining-portion < minRemaining {
			portion = max(remaining-minRemaining, minWidth)
		}

		widths[i] = portion
		remaining -= portion
	}

	return widths
}

func formatElapsed(seconds float64) string {
	switch {
	case seconds <= 0:
		return "-"
	case seconds < 1:
		return fmt.Sprintf("%dms", int(seconds*1000))
	case seconds < 60:
		return fmt.Sprintf("%.1fs", seconds)
	default:
		return fmt.Sprintf("%dm%02ds", int(seconds)/60, int(seconds)%60)
	}
}
