// ABOUTME: Progress bar with warn and critical threshold zones
// ABOUTME: Renders the idle-CPU share of each allocation as a colored bar

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBarConfig holds configuration for the progress bar
type ProgressBarConfig struct {
	Width         int
	WarnThreshold float64 // Percentage where the warning color starts (default 25)
	CritThreshold float64 // Percentage where the critical color starts (default 50)
	OKColor       lipgloss.Color
	WarnColor     lipgloss.Color
	CritColor     lipgloss.Color
	EmptyColor    lipgloss.Color
}

// DefaultProgressBarConfig returns thresholds tuned for waste rates
func DefaultProgressBarConfig() ProgressBarConfig {
	return ProgressBarConfig{
		Width:         20,
		WarnThreshold: 25,
		CritThreshold: 50,
		OKColor:       lipgloss.Color("#10B981"), // Green
		WarnColor:     lipgloss.Color("#F59E0B"), // Amber
		CritColor:     lipgloss.Color("#EF4444"), // Red
		EmptyColor:    lipgloss.Color("#374151"), // Dark gray
	}
}

// ProgressBar renders percent (0..100) as a bar colored by the zone it reaches.
func ProgressBar(percent float64, config ProgressBarConfig) string {
	if config.Width <= 0 {
		config.Width = 20
	}
	percent = max(0, min(percent, 100))

	filled := int(percent / 100.0 * float64(config.Width))
	color := config.colorFor(percent)

	var bar strings.Builder
	bar.WriteString("[")
	bar.WriteString(lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)))
	bar.WriteString(lipgloss.NewStyle().Foreground(config.EmptyColor).Render(strings.Repeat("░", config.Width-filled)))
	bar.WriteString("]")
	return bar.String()
}

// ProgressBarWithLabel appends the percentage, colored like the bar.
func ProgressBarWithLabel(percent float64, config ProgressBarConfig) string {
	label := lipgloss.NewStyle().
		Foreground(config.colorFor(percent)).
		Render(fmt.Sprintf("%5.1f%%", percent))
	return ProgressBar(percent, config) + " " + label
}

func (c ProgressBarConfig) colorFor(percent float64) lipgloss.Color {
	switch {
	case percent >= c.CritThreshold:
		return c.CritColor
	case percent >= c.WarnThreshold:
		return c.WarnColor
	default:
		return c.OKColor
	}
}
