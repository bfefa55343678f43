package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// locate finds id in the layout ranks.
func locate(ranks [][]string, id string) (rank, index int) {
	for r, ids := range ranks {
		for i, candidate := range ids {
			if candidate == id {
				return r, i
			}
		}
	}
	return -1, -1
}

func centerText(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return lipgloss.NewStyle().Align(lipgloss.Center).Render(value)
}
