// ABOUTME: Horizontal bar chart widget with an optional highlighted bar
// ABOUTME: Bars are scaled against the largest value in the chart

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

// Bar is one labeled row of a bar chart.
type Bar struct {
	Label     string
	Value     int
	Highlight bool
	Note      string // printed after the value, e.g. "best"
}

// BarChartConfig controls bar width and colors.
type BarChartConfig struct {
	Width          int
	Color          lipgloss.Color
	HighlightColor lipgloss.Color
}

// DefaultBarChartConfig returns a 40-column chart in the shared palette.
func DefaultBarChartConfig() BarChartConfig {
	return BarChartConfig{
		Width:          40,
		Color:          lipgloss.Color("#8B5CF6"), // Purple
		HighlightColor: lipgloss.Color("#10B981"), // Green
	}
}

// BarChart renders one line per bar: label, bar, value, and note.
// A non-zero value always gets at least one block.
func BarChart(bars []Bar, config BarChartConfig) string {
	if len(bars) == 0 {
		return ""
	}
	if config.Width <= 0 {
		config.Width = 40
	}

	labelWidth := lo.Max(lo.Map(bars, func(b Bar, _ int) int { return lipgloss.Width(b.Label) }))
	peak := lo.MaxBy(bars, func(a, b Bar) bool { return a.Value > b.Value }).Value

	lines := make([]string, 0, len(bars))
	for _, b := range bars {
		length := 0
		if peak > 0 && b.Value > 0 {
			length = max(1, b.Value*config.Width/peak)
		}

		color := config.Color
		if b.Highlight {
			color = config.HighlightColor
		}
		bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", length))
		pad := strings.Repeat(" ", config.Width-length)

		line := fmt.Sprintf("%*s │%s%s %d", labelWidth, b.Label, bar, pad, b.Value)
		if b.Note != "" {
			line += " " + lipgloss.NewStyle().Foreground(color).Bold(true).Render(b.Note)
		}
		lines = append(lines, strings.TrimRight(line, " "))
	}
	return strings.Join(lines, "\n")
}
