package ui

import (
	"fmt"
	"strings"

	"brake-hud.klederson.com/internal/display"
	"github.com/charmbracelet/lipgloss"
)

const minCellWidth = 26

// RenderDisplays lays the display panels out as a grid of bordered boxes,
// each showing the latest text it received.
func RenderDisplays(states []display.PanelState, width, height int) string {
	title := StylePanelTitle.Render(fmt.Sprintf("DISPLAYS [%d]", len(states)))
	innerW := width - 4
	if innerW < minCellWidth {
		innerW = minCellWidth
	}

	lines := []string{title}
	if len(states) == 0 {
		lines = append(lines, "", StyleHelp.Render(" No displays configured"))
		return clampHeight(StylePanelBorder.Width(width-2).Height(height-2).Render(strings.Join(lines, "\n")), height)
	}

	cols := innerW / minCellWidth
	if cols < 1 {
		cols = 1
	}
	if cols > len(states) {
		cols = len(states)
	}
	cellW := innerW / cols

	var rows []string
	for start := 0; start < len(states); start += cols {
		end := min(start+cols, len(states))
		cells := make([]string, 0, end-start)
		for _, st := range states[start:end] {
			cells = append(cells, renderDisplayCell(st, cellW))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	lines = append(lines, rows...)

	content := strings.Join(lines, "\n")
	return clampHeight(StylePanelBorder.Width(width-2).Height(height-2).Render(content), height)
}

func renderDisplayCell(st display.PanelState, width int) string {
	innerW := width - 2
	if innerW < 4 {
		innerW = 4
	}

	name := truncRaw(st.Name, innerW)
	body := make([]string, 0, 4)
	body = append(body, StyleRouteTarget.Render(name))

	text := st.Text
	if text == "" {
		text = "--"
	}
	for _, l := range strings.Split(text, "\n") {
		body = append(body, StylePanelText.Render(truncRaw(l, innerW)))
	}

	footer := fmt.Sprintf("writes %d", st.Writes)
	sty := StylePanelActive
	if st.Offline {
		footer = "OFFLINE"
		sty = StylePanelOffline
	}
	body = append(body, StyleHelp.Render(footer))

	return sty.Width(innerW).Render(strings.Join(body, "\n"))
}

// clampHeight pads or truncates rendered output to exactly height lines.
// lipgloss Height() only sets a minimum; it won't truncate overflow.
func clampHeight(rendered string, height int) string {
	out := strings.Split(rendered, "\n")
	if len(out) > height {
		out = out[:height]
	}
	for len(out) < height {
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}
