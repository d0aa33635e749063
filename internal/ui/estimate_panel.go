package ui

import (
	"fmt"
	"math"
	"strings"

	"brake-hud.klederson.com/internal/estimator"
	"github.com/charmbracelet/lipgloss"
)

// maxBarDecel is the deceleration that fills the bar, roughly a full stop on
// dry asphalt.
const maxBarDecel = 10.0

// RenderEstimatePanel renders the latest projection with a deceleration bar
// and a sparkline of recent speeds (oldest first).
func RenderEstimatePanel(p estimator.Projection, trace []float64, width, height int) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}

	title := StylePanelTitle.Render("STOPPING ESTIMATE")
	state := StyleHelp.Render("[COASTING]")
	if p.Slowing() {
		state = StyleWarning.Render("[BRAKING]")
	}
	titleLine := title + strings.Repeat(" ", max(0, innerW-lipgloss.Width(title)-lipgloss.Width(state))) + state

	lines := []string{titleLine, StyleSeparator.Render(strings.Repeat("-", innerW))}

	fields := []struct{ label, value string }{
		{"Speed", fmt.Sprintf("%.1f m/s", p.Velocity)},
		{"Decel", fmt.Sprintf("%.2f m/s2", p.Deceleration)},
		{"Standstill", fmt.Sprintf("%v s", p.SecondsToRest)},
		{"Distance", fmt.Sprintf("%.2f m", p.DistanceToRest)},
	}
	for _, f := range fields {
		lines = append(lines, StyleLabel.Render(fmt.Sprintf("  %-12s", f.label))+StyleValue.Render(f.value))
	}

	barWidth := innerW - 22
	if barWidth < 10 {
		barWidth = 10
	}
	lines = append(lines, "", StyleLabel.Render("  Braking ")+renderDecelBar(p.Deceleration, barWidth))

	if len(trace) > 0 {
		sparkW := innerW - 4
		if sparkW < 10 {
			sparkW = 10
		}
		lines = append(lines, "", StyleLabel.Render("  Speed History:"))
		lines = append(lines, "  "+lipgloss.NewStyle().Foreground(ColorGreen).Render(renderSparkline(trace, sparkW)))
	}

	content := strings.Join(lines, "\n")
	return clampHeight(StylePanelActive.Width(width-2).Height(height-2).Render(content), height)
}

func renderDecelBar(decel float64, width int) string {
	ratio := decel / maxBarDecel
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(math.Round(ratio * float64(width)))

	bar := strings.Repeat("|", filled) + strings.Repeat("-", width-filled)
	filledPart := lipgloss.NewStyle().Foreground(decelColor(ratio)).Render(bar[:filled])
	emptyPart := lipgloss.NewStyle().Foreground(ColorDimGreen).Render(bar[filled:])
	return StyleHelp.Render("[") + filledPart + emptyPart + StyleHelp.Render("]")
}

func decelColor(ratio float64) lipgloss.Color {
	switch {
	case ratio > 0.7:
		return ColorError
	case ratio > 0.4:
		return ColorWarning
	default:
		return ColorMatrixGreen
	}
}

func renderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	chars := []byte{'_', '.', '-', '~', '^'}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}

	rng := maxV - minV
	if rng < 1 {
		rng = 1
	}

	// Take last `width` values
	start := 0
	if len(values) > width {
		start = len(values) - width
	}

	var sb strings.Builder
	for i := start; i < len(values); i++ {
		idx := int((values[i] - minV) / rng * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		sb.WriteByte(chars[idx])
	}

	return sb.String()
}
