package ui

import (
	"strings"
	"testing"

	"brake-hud.klederson.com/internal/display"
	"brake-hud.klederson.com/internal/estimator"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestRenderSparkline(t *testing.T) {
	assert.Empty(t, renderSparkline(nil, 10))
	assert.Equal(t, "_^", renderSparkline([]float64{0, 10}, 10))
	assert.Equal(t, "___", renderSparkline([]float64{5, 5, 5}, 10))

	// Only the newest width values are drawn.
	got := renderSparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8}, 4)
	assert.Len(t, got, 4)
	assert.Equal(t, byte('^'), got[3])
}

func TestTruncRaw(t *testing.T) {
	assert.Equal(t, "abc  ", truncRaw("abc", 5))
	assert.Equal(t, "abcde", truncRaw("abcdefgh", 5))
	assert.Equal(t, "abc", truncRaw("abc", 3))
}

func TestRenderDecelBar_Width(t *testing.T) {
	for _, decel := range []float64{-3, 0, 4.5, 10, 25} {
		bar := renderDecelBar(decel, 20)
		assert.Equal(t, 22, lipgloss.Width(bar), "decel %v", decel)
	}
}

func TestDecelColor(t *testing.T) {
	assert.Equal(t, ColorMatrixGreen, decelColor(0.1))
	assert.Equal(t, ColorWarning, decelColor(0.5))
	assert.Equal(t, ColorError, decelColor(0.9))
}

func TestRenderDisplays(t *testing.T) {
	states := []display.PanelState{
		{Name: "Cockpit[0]", Text: "T-3.3\nM-66.66", Writes: 4},
		{Name: "LCD1", Offline: true},
	}

	out := RenderDisplays(states, 80, 12)
	assert.Len(t, strings.Split(out, "\n"), 12)
	assert.Contains(t, out, "DISPLAYS [2]")
	assert.Contains(t, out, "Cockpit[0]")
	assert.Contains(t, out, "T-3.3")
	assert.Contains(t, out, "M-66.66")
	assert.Contains(t, out, "OFFLINE")

	empty := RenderDisplays(nil, 40, 6)
	assert.Contains(t, empty, "No displays configured")
}

func TestRenderRouteList(t *testing.T) {
	routes := []RouteRow{
		{Entry: "LCD1:l", Target: "LCD1", Index: -1, Verbose: true},
		{Entry: "Cockpit:0:s", Target: "Cockpit", Index: 0, WriteErr: true},
	}
	failures := []FailureRow{{Entry: "Nope:1", Reason: "target not found"}}

	out := RenderRouteList(routes, failures, 40, 20, -1)
	assert.Len(t, strings.Split(out, "\n"), 20)
	assert.Contains(t, out, "ROUTES [2/3]")
	assert.Contains(t, out, "[L]")
	assert.Contains(t, out, "Cockpit #0")
	assert.Contains(t, out, "[X] Nope:1")
	assert.Contains(t, out, "target not found")
}

func TestRenderEstimatePanel(t *testing.T) {
	p := estimator.Projection{Velocity: 40, Deceleration: 12, SecondsToRest: 3.3, DistanceToRest: 66.66}

	out := RenderEstimatePanel(p, []float64{50, 48, 46, 44, 42, 40}, 60, 16)
	assert.Len(t, strings.Split(out, "\n"), 16)
	assert.Contains(t, out, "[BRAKING]")
	assert.Contains(t, out, "3.3 s")
	assert.Contains(t, out, "66.66 m")
	assert.Contains(t, out, "Speed History:")

	idle := RenderEstimatePanel(estimator.Projection{Velocity: 30}, nil, 60, 16)
	assert.Contains(t, idle, "[COASTING]")
	assert.NotContains(t, idle, "Speed History:")
}

func TestRenderBars(t *testing.T) {
	menu := RenderMenuBar(100, "Cockpit", false)
	assert.Contains(t, menu, "PAUSED")
	assert.Contains(t, menu, "Sensor: Cockpit")

	status := RenderStatusBar(100, Status{Running: true, Speed: 12.34, Ticks: 7, Routes: 2, Failed: 1})
	assert.Contains(t, status, "[RUNNING]")
	assert.Contains(t, status, "Speed: 12.3m/s")
	assert.Contains(t, status, "Failed: 1")
}
