package ui

import (
	"fmt"
	"strings"

	"brake-hud.klederson.com/internal/config"
	"github.com/charmbracelet/lipgloss"
)

// RenderMenuBar renders the top menu bar.
func RenderMenuBar(width int, sensorName string, running bool) string {
	title := fmt.Sprintf(" %s v%s ", config.AppName, config.AppVersion)

	keys := []struct{ key, label string }{
		{"S", "tart"},
		{"P", "ause"},
		{"O", "ffline"},
		{"Q", "uit"},
	}

	menu := ""
	for _, k := range keys {
		menu += "  " + StyleMenuKey.Render("["+k.key+"]") + StyleMenuLabel.Render(k.label)
	}

	status := ""
	if running {
		status = StyleStatusRunning.Render("RUNNING")
	} else {
		status = StyleStatusPaused.Render("PAUSED")
	}

	sensorInfo := StyleMenuLabel.Render(fmt.Sprintf("Sensor: %s", sensorName))

	left := StyleMenuKey.Render(title) + menu
	right := status + "  " + sensorInfo + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return StyleMenuBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
