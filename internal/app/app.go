package app

import (
	"context"
	"slices"
	"time"

	"brake-hud.klederson.com/internal/config"
	"brake-hud.klederson.com/internal/display"
	"brake-hud.klederson.com/internal/history"
	"brake-hud.klederson.com/internal/loop"
	"brake-hud.klederson.com/internal/monitoring"
	"brake-hud.klederson.com/internal/route"
	"brake-hud.klederson.com/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// shared holds state shared between the Bubble Tea model copies and main.go.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	loop     *loop.Loop
	registry *display.Registry
	trace    *history.Rolling[float64]
}

// AppModel is the root Bubble Tea model for the HUD.
type AppModel struct {
	width  int
	height int

	running    bool
	sensorName string
	cursor     int

	shared *shared

	// Cached per-tick view data
	routes   []ui.RouteRow
	failures []ui.FailureRow
	panels   []display.PanelState
	last     loop.Report
	lastErr  string
}

// New creates a new AppModel. failures are the display entries that could not
// be routed at setup; they are listed but never written.
func New(l *loop.Loop, reg *display.Registry, failures []route.Failure, sensorName string) (AppModel, error) {
	trace, err := history.New[float64](config.SpeedTraceLength)
	if err != nil {
		return AppModel{}, err
	}

	m := AppModel{
		running:    true,
		sensorName: sensorName,
		shared: &shared{
			loop:     l,
			registry: reg,
			trace:    trace,
		},
		failures: failureRows(failures),
		panels:   reg.Snapshot(),
	}
	m.routes = routeRows(l.Routes(), loop.Report{})
	return m, nil
}

func (m AppModel) Init() tea.Cmd {
	return tickCmd(m.shared.loop.TickPeriod())
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		if m.running {
			m = m.runTick()
		}
		return m, tickCmd(m.shared.loop.TickPeriod())
	}

	return m, nil
}

func (m AppModel) runTick() AppModel {
	rep, err := m.shared.loop.Tick(context.Background())
	if err != nil {
		m.lastErr = err.Error()
		return m
	}

	m.lastErr = ""
	if rep.EstimateErr != nil {
		m.lastErr = rep.EstimateErr.Error()
	} else if err := rep.Err(); err != nil {
		m.lastErr = err.Error()
	}
	m.last = rep
	m.shared.trace.Push(m.shared.loop.History()[0])
	m.routes = routeRows(m.shared.loop.Routes(), rep)
	m.panels = m.shared.registry.Snapshot()
	return m
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "s", "S":
		m.running = true

	case "p", "P":
		m.running = false

	case "o", "O":
		m.toggleOffline()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.routes)+len(m.failures)-1 {
			m.cursor++
		}

	case "home":
		m.cursor = 0

	case "end":
		if n := len(m.routes) + len(m.failures); n > 0 {
			m.cursor = n - 1
		}
	}

	return m, nil
}

// toggleOffline takes the panel behind the route under the cursor offline, or
// back online. Writes to an offline panel fail, so the route shows as failed
// on the next tick while the other routes keep updating.
func (m *AppModel) toggleOffline() {
	routes := m.shared.loop.Routes()
	if m.cursor < 0 || m.cursor >= len(routes) {
		return
	}
	p, ok := routes[m.cursor].Surface().(*display.Panel)
	if !ok {
		return
	}
	offline := p.ToggleOffline()
	monitoring.Logf("display %q: offline=%t", p.Name(), offline)
	m.panels = m.shared.registry.Snapshot()
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing " + config.AppName + "..."
	}

	menuH := 1
	statusH := 1
	bodyH := m.height - menuH - statusH
	if bodyH < 10 {
		bodyH = 10
	}

	mainW := m.width * 2 / 3
	if mainW < 40 {
		mainW = 40
	}
	listW := m.width - mainW
	if listW < 20 {
		listW = 20
		mainW = m.width - listW
	}

	estimateH := 14
	displaysH := bodyH - estimateH
	if displaysH < 6 {
		displaysH = 6
	}

	menuBar := ui.RenderMenuBar(m.width, m.sensorName, m.running)
	displays := ui.RenderDisplays(m.panels, mainW, displaysH)

	trace := m.shared.trace.Values()
	slices.Reverse(trace)
	estimate := ui.RenderEstimatePanel(m.last.Projection, trace[max(0, len(trace)-m.shared.loop.Ticks()):], mainW, estimateH)

	routeList := ui.RenderRouteList(m.routes, m.failures, listW, bodyH, m.cursor)

	statusBar := ui.RenderStatusBar(m.width, ui.Status{
		Running:      m.running,
		Speed:        m.last.Projection.Velocity,
		Deceleration: m.last.Projection.Deceleration,
		Ticks:        m.shared.loop.Ticks(),
		Routes:       len(m.routes),
		Failed:       len(m.failures) + len(m.last.Failures),
		LastErr:      m.lastErr,
	})

	return ui.ComposeLayout(menuBar, displays, estimate, routeList, statusBar)
}

func routeRows(routes []route.Route, rep loop.Report) []ui.RouteRow {
	failed := make(map[string]bool, len(rep.Failures))
	for _, f := range rep.Failures {
		failed[f.Entry] = true
	}

	rows := make([]ui.RouteRow, 0, len(routes))
	for _, r := range routes {
		row := ui.RouteRow{
			Entry:    r.Entry(),
			Target:   r.Spec().TargetName(),
			Index:    -1,
			Verbose:  r.Verbosity() == route.Verbose,
			WriteErr: failed[r.Entry()],
		}
		if multi, ok := r.Spec().(route.MultiSurfaceSpec); ok {
			row.Index = multi.Index
		}
		rows = append(rows, row)
	}
	return rows
}

func failureRows(failures []route.Failure) []ui.FailureRow {
	rows := make([]ui.FailureRow, 0, len(failures))
	for _, f := range failures {
		rows = append(rows, ui.FailureRow{Entry: f.Entry, Reason: f.Err.Error()})
	}
	return rows
}

func tickCmd(period time.Duration) tea.Cmd {
	return tea.Tick(period, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
