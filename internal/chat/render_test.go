package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageMarkdown(t *testing.T) {
	m := &OutputWidgetMessage{
		Kind: OutputImage,
		Data: OutputData{URL: "https://via.placeholder.com/150", Caption: "A placeholder image"},
	}
	// Terminals cannot show the image, so the caption links to the URL
	// with an italic caption line underneath.
	want := "Here's an image:\n\n" +
		"[A placeholder image](https://via.placeholder.com/150)\n\n" +
		"*A placeholder image*"
	assert.Equal(t, want, m.Markdown())
}

func TestMarkdownWidgetMarkdown(t *testing.T) {
	m := &OutputWidgetMessage{
		Kind: OutputMarkdown,
		Data: OutputData{Body: "### This is a Markdown header\n\nHere is some **bold** text and *italic* text."},
	}
	got := m.Markdown()
	assert.True(t, strings.HasPrefix(got, "Here's some formatted text:\n\n"))
	assert.Contains(t, got, "### This is a Markdown header")
}

func TestTableMarkdown(t *testing.T) {
	m := &OutputWidgetMessage{
		Kind: OutputTable,
		Data: OutputData{Columns: []TableColumn{
			{Name: "Column 1", Cells: []string{"A", "B", "C"}},
			{Name: "Column 2", Cells: []string{"1", "2", "3"}},
			{Name: "Column 3", Cells: []string{"4.5", "5.5", "6.5"}},
		}},
	}
	got := m.Markdown()
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "Here's a table of data:", lines[0])
	assert.Equal(t, "| Column 1 | Column 2 | Column 3 |", lines[2])
	assert.Equal(t, "| --- | --- | --- |", lines[3])
	assert.Equal(t, "| A | 1 | 4.5 |", lines[4])
	assert.Equal(t, "| C | 3 | 6.5 |", lines[6])
}

func TestTableMarkdownRaggedColumns(t *testing.T) {
	m := &OutputWidgetMessage{
		Kind: OutputTable,
		Data: OutputData{Columns: []TableColumn{
			{Name: "a", Cells: []string{"1", "2"}},
			{Name: "b", Cells: []string{"x"}},
		}},
	}
	got := m.Markdown()
	assert.Contains(t, got, "| 2 |  |")
}

func TestChartMarkdownIsFencedAndDeterministic(t *testing.T) {
	series := [][]float64{{1, 2, 3}, {4, 5, 6}, {-1, 0, 1}}
	line := &OutputWidgetMessage{Kind: OutputLineChart, Data: OutputData{Series: series}}
	bar := &OutputWidgetMessage{Kind: OutputBarChart, Data: OutputData{Series: series}}

	assert.True(t, strings.HasPrefix(line.Markdown(), "Here's a line chart based on data:\n\n```\n"))
	assert.True(t, strings.HasPrefix(bar.Markdown(), "Here's a bar chart based on data:\n\n```\n"))
	assert.True(t, strings.HasSuffix(line.Markdown(), "```"))

	assert.Equal(t, line.Markdown(), line.Markdown())
	assert.Equal(t, bar.Markdown(), bar.Markdown())
}

func TestLineChartOneRowPerSeries(t *testing.T) {
	series := [][]float64{{1, 2, 3}, {4, 5, 6}}
	m := &OutputWidgetMessage{Kind: OutputLineChart, Data: OutputData{Series: series}}

	lines := strings.Split(m.Markdown(), "\n")
	// lead-in, blank, fence, three series rows, footer, fence
	require.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[3], "0  "))
	assert.True(t, strings.HasPrefix(lines[5], "2  "))
	assert.True(t, strings.HasPrefix(lines[6], "min "))
}

func TestBarChartOneRowPerPoint(t *testing.T) {
	series := [][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 8}}
	m := &OutputWidgetMessage{Kind: OutputBarChart, Data: OutputData{Series: series}}

	got := m.Markdown()
	assert.Contains(t, got, " 0  ")
	assert.Contains(t, got, " 3  ")
	assert.Contains(t, got, "█")
}

func TestChartEmptySeries(t *testing.T) {
	m := &OutputWidgetMessage{Kind: OutputLineChart}
	assert.Contains(t, m.Markdown(), "(no data)")
}

func TestScaledClampsAndHandlesFlatData(t *testing.T) {
	assert.Equal(t, 0, scaled(1, 1, 10, 7))
	assert.Equal(t, 7, scaled(10, 1, 10, 7))
	assert.Equal(t, 3, scaled(5, 5, 5, 7))
}

func TestInputWidgetMarkdown(t *testing.T) {
	w := NewInputWidget(InputText, "widget_1", InputSpec{Label: "Assistant asks: Please provide your name:"})

	pending := w.Markdown()
	assert.Equal(t, "Assistant asks: Please provide your name:\n\n_awaiting input_", pending)

	w.Value = "Ada"
	w.Submitted = true
	assert.Equal(t, "Assistant asks: Please provide your name:\n\n> Ada", w.Markdown())

	// same state, same output
	assert.Equal(t, w.Markdown(), w.Markdown())
}
