package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/fintrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := min(max(int(v/peak*float64(len(blocks)-1)), 0), len(blocks)-1)
		buf.WriteRune(blocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// Stack is one labeled bar made of parts drawn left to right.
type Stack struct {
	Label string
	Parts []float64
}

// StackedBars renders one horizontal bar per stack, scaled to the largest
// stack total. colors[i] paints Parts[i]; the total is printed after each
// bar using ShortAmount.
func StackedBars(stacks []Stack, colors []lipgloss.Color, width int) string {
	if len(stacks) == 0 {
		return ""
	}
	t := theme.Active

	labelW := 0
	peak := 0.0
	totals := make([]float64, len(stacks))
	for i, s := range stacks {
		labelW = max(labelW, lipgloss.Width(s.Label))
		for _, p := range s.Parts {
			totals[i] += max(p, 0)
		}
		peak = max(peak, totals[i])
	}
	if peak == 0 {
		peak = 1
	}

	const valueW = 7
	barW := max(width-labelW-valueW-2, 5)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for i, s := range stacks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW, s.Label)))
		b.WriteString(space.Render(" "))

		used := 0
		for j, p := range s.Parts {
			cells := int(math.Round(max(p, 0) / peak * float64(barW)))
			cells = min(cells, barW-used)
			color := t.Accent
			if j < len(colors) {
				color = colors[j]
			}
			b.WriteString(lipgloss.NewStyle().Foreground(color).Background(t.Surface).
				Render(strings.Repeat("█", cells)))
			used += cells
		}
		b.WriteString(space.Render(strings.Repeat(" ", barW-used+1)))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%*s", valueW, ShortAmount(totals[i]))))
	}
	return b.String()
}

// ShortAmount abbreviates large amounts for chart labels.
// e.g., 1500 -> "1.5k", 2000000 -> "2M"
func ShortAmount(v float64) string {
	scaled := func(div float64, suffix string) string {
		if v == math.Trunc(v/div)*div {
			return fmt.Sprintf("%.0f%s", v/div, suffix)
		}
		return fmt.Sprintf("%.1f%s", v/div, suffix)
	}
	switch {
	case v >= 1e9:
		return scaled(1e9, "B")
	case v >= 1e6:
		return scaled(1e6, "M")
	case v >= 1e3:
		return scaled(1e3, "k")
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
