package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	gaugeColor  = lipgloss.Color("42")
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	barStyle    = lipgloss.NewStyle().Foreground(gaugeColor)
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(gaugeColor)
	gaugeFill  = "█"
	gaugeEmpty = "░"
)

// Margin is the blank border kept around the whole grid.
const Margin = 1

// Compose paints f into a width x height block of text.
func Compose(f Frame, width, height int) string {
	innerW := width - 2*Margin
	innerH := height - 2*Margin
	if innerW < 1 || innerH < 1 {
		return ""
	}

	rendered := make([]string, 0, len(f.Rows))
	for _, row := range f.Rows {
		rowH := innerH * row.HeightPercent / 100
		if rowH < 1 {
			rowH = 1
		}
		cellW := innerW * row.WidthPercent / 100
		if cellW < 1 {
			cellW = 1
		}
		cells := make([]string, 0, len(row.Gauges))
		for _, g := range row.Gauges {
			cells = append(cells, renderGauge(g, cellW, rowH))
		}
		rendered = append(rendered, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, rendered...)
	return lipgloss.NewStyle().
		Margin(Margin).
		MaxWidth(width).
		MaxHeight(height).
		Render(body)
}

// renderGauge draws one gauge exactly w columns by h rows.
func renderGauge(g Gauge, w, h int) string {
	bordered := g.Border == BorderAll && w >= 4 && h >= 3
	contentW, contentH := w, h
	if bordered {
		contentW, contentH = w-2, h-2
	}

	var lines []string
	if contentH >= 2 {
		lines = append(lines, titleStyle.Render(truncate(g.Title, contentW)))
		lines = append(lines, barStyle.Render(gaugeBar(g.Ratio, contentW)))
	} else {
		barW := contentW - len([]rune(g.Title)) - 1
		lines = append(lines, barStyle.Render(truncate(g.Title+" "+gaugeBar(g.Ratio, barW), contentW)))
	}
	content := strings.Join(lines, "\n")

	style := lipgloss.NewStyle()
	if bordered {
		style = borderStyle
	}
	return style.
		Width(contentW).
		Height(contentH).
		MaxWidth(w).
		MaxHeight(h).
		Render(content)
}

// gaugeBar renders ratio as a bar followed by a percentage, fitting width columns.
func gaugeBar(ratio float64, width int) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	label := fmt.Sprintf(" %5.1f%%", ratio*100)
	barW := width - len(label)
	if barW < 1 {
		return truncate(strings.TrimSpace(label), width)
	}
	filled := int(ratio * float64(barW))
	if filled > barW {
		filled = barW
	}
	return strings.Repeat(gaugeFill, filled) + strings.Repeat(gaugeEmpty, barW-filled) + label
}

func truncate(s string, n int) string {
	if n < 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}
