package report

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/smallnest/nodegraphgo/graph"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)

	stateColors = map[graph.NodeState]lipgloss.Color{
		graph.StateFresh:    lipgloss.Color("#04B575"),
		graph.StateRunnable: lipgloss.Color("#E6DB74"),
		graph.StateStale:    lipgloss.Color("#FF5F87"),
	}
)

// Terminal renders the report as a bordered table with states colour coded.
// Colours are dropped automatically when the output is not a terminal.
func (r *Report) Terminal() string {
	rows := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = row.cells()
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 2 && row >= 0 && row < len(r.Rows) {
				return cellStyle.Foreground(stateColors[r.Rows[row].State])
			}
			return cellStyle
		})

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Graph "+r.GraphID),
		r.Summary(),
		t.Render(),
	)
}
