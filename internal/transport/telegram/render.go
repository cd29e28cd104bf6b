package telegram

import (
	"fmt"
	"strings"

	"github.com/sandevgo/vizchat/internal/viz"
)

func renderVisualization(v viz.Visualization) string {
	switch t := v.(type) {
	case viz.Table:
		return renderTable(t)
	case viz.Chart:
		return renderChart(t)
	default:
		return fmt.Sprintf("📎 %s", v.VizTitle())
	}
}

// renderTable lays the table out as an aligned monospace block.
func renderTable(t viz.Table) string {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = len(c)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 **%s**\n```\n", t.Title)
	writeRow(&b, t.Columns, widths)
	for i, w := range widths {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(strings.Repeat("-", w))
	}
	b.WriteString("\n")
	for _, row := range t.Rows {
		writeRow(&b, row, widths)
	}
	b.WriteString("```")
	return b.String()
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	for i, w := range widths {
		if i > 0 {
			b.WriteString("  ")
		}
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		fmt.Fprintf(b, "%-*s", w, cell)
	}
	b.WriteString("\n")
}

// renderChart summarizes the chart, Telegram has no plot surface.
func renderChart(c viz.Chart) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 **%s** (%s chart)\n", c.Title, c.Type)
	if c.XAxisTitle != "" || c.YAxisTitle != "" {
		fmt.Fprintf(&b, "%s vs %s\n", c.XAxisTitle, c.YAxisTitle)
	}
	for _, s := range c.Series {
		fmt.Fprintf(&b, "• %s: %s\n", s.Name, joinValues(s.Values))
	}
	return strings.TrimRight(b.String(), "\n")
}

func joinValues(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	}
	return strings.Join(parts, ", ")
}
