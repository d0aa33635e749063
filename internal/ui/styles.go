package ui

import "github.com/charmbracelet/lipgloss"

// Matrix color palette
var (
	ColorMatrixGreen  = lipgloss.Color("#00FF41")
	ColorGreen        = lipgloss.Color("#00CC33")
	ColorMidGreen     = lipgloss.Color("#008F11")
	ColorDimGreen     = lipgloss.Color("#004A0A")
	ColorBlack        = lipgloss.Color("#000000")
	ColorCompact      = lipgloss.Color("#00FFAA")
	ColorVerbose      = lipgloss.Color("#33FF66")
	ColorBorderBright = lipgloss.Color("#00FF41")
	ColorBorderNorm   = lipgloss.Color("#00AA22")
	ColorError        = lipgloss.Color("#FF3300")
	ColorWarning      = lipgloss.Color("#FFAA00")
)

// Pre-built styles
var (
	StyleMenuBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#002200")).
			Foreground(ColorMatrixGreen).
			Bold(true).
			Padding(0, 1)

	StyleMenuKey = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true)

	StyleMenuLabel = lipgloss.NewStyle().
			Foreground(ColorGreen)

	StyleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#002200")).
			Foreground(ColorGreen).
			Padding(0, 1)

	StyleStatusRunning = lipgloss.NewStyle().
				Foreground(ColorMatrixGreen).
				Bold(true)

	StyleStatusPaused = lipgloss.NewStyle().
				Foreground(ColorWarning).
				Bold(true)

	StylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorderNorm)

	StylePanelActive = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorderBright)

	StylePanelOffline = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorError)

	StylePanelTitle = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true).
			Padding(0, 1)

	StylePanelText = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true)

	StyleRouteEntry = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true)

	StyleRouteTarget = lipgloss.NewStyle().
				Foreground(ColorMidGreen)

	StyleRouteCompact = lipgloss.NewStyle().
				Foreground(ColorCompact)

	StyleRouteVerbose = lipgloss.NewStyle().
				Foreground(ColorVerbose)

	StyleRouteFailed = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)

	StyleSeparator = lipgloss.NewStyle().
			Foreground(ColorMidGreen)

	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorMidGreen)

	StyleValue = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorDimGreen)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)
)
