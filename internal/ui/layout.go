package ui

import "github.com/charmbracelet/lipgloss"

// ComposeLayout stacks the display grid above the estimate panel on the left,
// puts the route list on the right, with menu bar on top and status bar on
// bottom.
func ComposeLayout(menuBar, displays, estimate, routeList, statusBar string) string {
	left := lipgloss.JoinVertical(lipgloss.Left, displays, estimate)
	middle := lipgloss.JoinHorizontal(lipgloss.Top, left, routeList)
	return lipgloss.JoinVertical(lipgloss.Left, menuBar, middle, statusBar)
}
