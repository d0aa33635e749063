package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Status is the data shown in the bottom bar.
type Status struct {
	Running      bool
	Speed        float64
	Deceleration float64
	Ticks        int
	Routes       int
	Failed       int
	LastErr      string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s Status) string {
	state := ""
	if s.Running {
		state = StyleStatusRunning.Render("[RUNNING]")
	} else {
		state = StyleStatusPaused.Render("[PAUSED]")
	}

	info := fmt.Sprintf(" Speed: %.1fm/s  Decel: %.1fm/s2  Ticks: %d  Routes: %d  Failed: %d",
		s.Speed, s.Deceleration, s.Ticks, s.Routes, s.Failed)

	content := state + StyleStatusBar.Foreground(ColorGreen).Render(info)
	if s.LastErr != "" {
		content += "  " + StyleWarning.Render(s.LastErr)
	}

	gap := width - lipgloss.Width(content)
	if gap < 0 {
		gap = 0
	}

	return StyleStatusBar.Width(width).Render(content + strings.Repeat(" ", gap))
}
