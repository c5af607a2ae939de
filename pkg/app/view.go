package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kass/go-route-map/pkg/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	focusedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F1FA8C"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	canvasStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#50FA7B")).
			Padding(0, 1)

	statStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))
)

// canvasSize returns the character dimensions of the map canvas for the
// current terminal size.
func (m Model) canvasSize() (w, h int) {
	w = m.width - 36
	if w < 20 {
		w = 20
	}
	h = m.height - 8
	if h < 8 {
		h = 8
	}
	return w, h
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("route-map"))
	b.WriteString("\n")

	canvas := m.renderCanvas()
	side := lipgloss.JoinVertical(lipgloss.Left, m.renderForm(), m.renderPanel())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, canvas, " ", side))

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("tab: next field · enter: compute · arrows: drag focused marker · esc: quit"))

	return b.String()
}

// renderCanvas draws the route polyline and both markers projected onto
// the fitted viewport.
func (m Model) renderCanvas() string {
	w, h := m.canvasSize()

	grid := make([][]rune, h)
	for i := range grid {
		grid[i] = make([]rune, w)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	plot := func(c models.Coordinate, r rune) {
		if col, row, ok := m.viewport.Project(c, w, h); ok {
			grid[row][col] = r
		}
	}

	if cur := m.store.Current(); cur != nil {
		for _, c := range cur.Geometry {
			plot(c, '·')
		}
	}
	plot(m.snapshot.Origin, 'A')
	plot(m.snapshot.Destination, 'B')

	rows := make([]string, h)
	for i, line := range grid {
		rows[i] = string(line)
	}
	return canvasStyle.Render(strings.Join(rows, "\n"))
}

// renderForm lays out the input fields with the focused one
// highlighted.
func (m Model) renderForm() string {
	var b strings.Builder

	field := func(f focusArea, label, value string) {
		style := labelStyle
		if m.focus == f {
			style = focusedStyle
		}
		b.WriteString(style.Render(label))
		b.WriteString(" ")
		b.WriteString(value)
		b.WriteString("\n")
	}

	field(focusPlace, "place  ", m.inputs[focusPlace].View())
	field(focusOriginLat, "o.lat  ", m.inputs[focusOriginLat].View())
	field(focusOriginLon, "o.lon  ", m.inputs[focusOriginLon].View())
	field(focusDestLat, "d.lat  ", m.inputs[focusDestLat].View())
	field(focusDestLon, "d.lon  ", m.inputs[focusDestLon].View())
	field(focusAlgorithm, "algo   ", string(m.snapshot.Algorithm))
	field(focusWeight, "weight ", string(m.snapshot.Weight))
	field(focusAvoid, "avoid  ", checkbox(m.snapshot.AvoidHighways))
	field(focusOriginMarker, "marker ", "origin (A)")
	field(focusDestMarker, "marker ", "destination (B)")

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x] highways"
	}
	return "[ ] highways"
}

// renderPanel shows the summary of the displayed route: distance, ETA,
// echoed parameters, node count and marker snap distances. A failure
// message appears below the (still displayed) previous route.
func (m Model) renderPanel() string {
	var b strings.Builder

	if m.store.Loading() {
		b.WriteString(m.spinner.View())
		b.WriteString(" computing route...\n")
	}

	if cur := m.store.Current(); cur != nil {
		b.WriteString(fmt.Sprintf("distance  %s\n", statStyle.Render(FormatDistance(cur.DistanceMeters))))
		b.WriteString(fmt.Sprintf("eta       %s\n", statStyle.Render(FormatDuration(cur.DurationSeconds))))
		b.WriteString(fmt.Sprintf("algo      %s\n", string(cur.Algorithm)))
		b.WriteString(fmt.Sprintf("weight    %s\n", string(cur.Weight)))
		b.WriteString(fmt.Sprintf("highways  %t\n", cur.AvoidHighways))
		b.WriteString(fmt.Sprintf("nodes     %d\n", cur.NodeCount))

		if _, dist, ok := m.vertexIdx.Nearest(m.snapshot.Origin); ok {
			b.WriteString(dimStyle.Render(fmt.Sprintf("A snap    %.0f m\n", dist*1000)))
		}
		if _, dist, ok := m.vertexIdx.Nearest(m.snapshot.Destination); ok {
			b.WriteString(dimStyle.Render(fmt.Sprintf("B snap    %.0f m\n", dist*1000)))
		}
	} else if !m.store.Loading() {
		b.WriteString(dimStyle.Render("no route yet\n"))
	}

	if msg := m.store.Err(); msg != "" {
		b.WriteString(errorStyle.Render(msg))
		b.WriteString("\n")
	}

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}
