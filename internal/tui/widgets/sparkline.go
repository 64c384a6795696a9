// ABOUTME: Sparkline widget renders a compact trend line using block characters
// ABOUTME: Used to show how billable CPUs move across a catalog's VM sizes

package widgets

import (
	"math"
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// SparklineBlocks are the Unicode block characters for different heights
var SparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders one block per value, scaled between the min and max value.
// When width is positive and differs from len(values), values are resampled.
func Sparkline(values []float64, width int, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	if width > 0 && width != len(values) {
		values = resample(values, width)
	}

	lo, hi := slices.Min(values), slices.Max(values)
	blocks := make([]rune, len(values))
	for i, v := range values {
		blocks[i] = blockFor(v, lo, hi)
	}

	style := lipgloss.NewStyle()
	if color != "" {
		style = style.Foreground(color)
	}
	return style.Render(string(blocks))
}

// resample stretches or shrinks values to exactly width points by nearest index.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	ratio := float64(len(values)) / float64(width)
	for i := range out {
		idx := int(float64(i) * ratio)
		if idx >= len(values) {
			idx = len(values) - 1
		}
		out[i] = values[idx]
	}
	return out
}

func blockFor(value, lo, hi float64) rune {
	if hi == lo {
		return SparklineBlocks[len(SparklineBlocks)/2]
	}

	idx := int(math.Round((value - lo) / (hi - lo) * float64(len(SparklineBlocks)-1)))
	idx = max(0, min(idx, len(SparklineBlocks)-1))
	return SparklineBlocks[idx]
}
