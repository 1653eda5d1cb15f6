package chat

import (
	"fmt"
	"strings"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

const barWidth = 8

func (m *OutputWidgetMessage) Markdown() string {
	switch m.Kind {
	case OutputLineChart:
		return "Here's a line chart based on data:\n\n" + chartBlock(m.Data.Series, sparklines)
	case OutputBarChart:
		return "Here's a bar chart based on data:\n\n" + chartBlock(m.Data.Series, barRows)
	case OutputImage:
		return fmt.Sprintf("Here's an image:\n\n[%s](%s)\n\n*%s*",
			m.Data.Caption, m.Data.URL, m.Data.Caption)
	case OutputTable:
		return "Here's a table of data:\n\n" + markdownTable(m.Data.Columns)
	case OutputMarkdown:
		return "Here's some formatted text:\n\n" + m.Data.Body
	}
	return ""
}

func (m *InputWidgetMessage) Markdown() string {
	var b strings.Builder
	b.WriteString(m.Spec.Label)
	b.WriteString("\n\n")
	if m.Submitted {
		b.WriteString("> " + m.Value)
	} else {
		b.WriteString("_awaiting input_")
	}
	return b.String()
}

func chartBlock(rows [][]float64, render func([][]float64) []string) string {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return "```\n(no data)\n```"
	}
	return "```\n" + strings.Join(render(rows), "\n") + "\n```"
}

// Data is row major, one column per series, matching how chart frames
// arrive from the response generator.
func sparklines(rows [][]float64) []string {
	lo, hi := seriesBounds(rows)
	cols := len(rows[0])
	lines := make([]string, 0, cols+1)
	for c := 0; c < cols; c++ {
		var b strings.Builder
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			b.WriteRune(sparkRunes[scaled(row[c], lo, hi, len(sparkRunes)-1)])
		}
		lines = append(lines, fmt.Sprintf("%d  %s", c, b.String()))
	}
	lines = append(lines, fmt.Sprintf("min %.2f  max %.2f", lo, hi))
	return lines
}

func barRows(rows [][]float64) []string {
	lo, hi := seriesBounds(rows)
	lines := make([]string, 0, len(rows)+1)
	for r, row := range rows {
		bars := make([]string, len(row))
		for i, v := range row {
			n := scaled(v, lo, hi, barWidth)
			bars[i] = strings.Repeat("█", n) + strings.Repeat(" ", barWidth-n)
		}
		lines = append(lines, fmt.Sprintf("%2d  %s", r, strings.Join(bars, " ")))
	}
	lines = append(lines, fmt.Sprintf("min %.2f  max %.2f", lo, hi))
	return lines
}

func seriesBounds(rows [][]float64) (float64, float64) {
	lo, hi := rows[0][0], rows[0][0]
	for _, row := range rows {
		for _, v := range row {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}

func scaled(v, lo, hi float64, steps int) int {
	if hi <= lo {
		return steps / 2
	}
	n := int((v - lo) / (hi - lo) * float64(steps))
	if n < 0 {
		n = 0
	}
	if n > steps {
		n = steps
	}
	return n
}

func markdownTable(cols []TableColumn) string {
	if len(cols) == 0 {
		return "(empty table)"
	}
	names := make([]string, len(cols))
	rowCount := 0
	for i, c := range cols {
		names[i] = c.Name
		if len(c.Cells) > rowCount {
			rowCount = len(c.Cells)
		}
	}
	var b strings.Builder
	b.WriteString("| " + strings.Join(names, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(cols)) + "\n")
	for r := 0; r < rowCount; r++ {
		cells := make([]string, len(cols))
		for i, c := range cols {
			if r < len(c.Cells) {
				cells[i] = c.Cells[r]
			}
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
