// Package display provides the text surfaces the control loop writes to and
// the registry that resolves display names to them.
package display

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var ErrWrite = errors.New("display write failed")

// Panel is a single text surface. It keeps the most recent text written to
// it so the UI can draw it.
type Panel struct {
	mu        sync.RWMutex
	name      string
	text      string
	writes    int
	lastWrite time.Time
	offline   bool
	mirror    *WriterSurface
}

// NewPanel creates an empty, online panel.
func NewPanel(name string) *Panel {
	return &Panel{name: name}
}

func (p *Panel) Name() string { return p.name }

// WriteText replaces the panel contents. A failed write, offline or to the
// mirror, leaves the previous contents in place.
func (p *Panel) WriteText(text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.offline {
		return fmt.Errorf("%w: %s is offline", ErrWrite, p.name)
	}
	if p.mirror != nil {
		if err := p.mirror.WriteText(text); err != nil {
			return err
		}
	}
	p.text = text
	p.writes++
	p.lastWrite = time.Now()
	return nil
}

// Mirror copies every subsequent write to w as well. A nil w stops
// mirroring.
func (p *Panel) Mirror(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w == nil {
		p.mirror = nil
		return
	}
	p.mirror = NewWriterSurface(p.name, w)
}

// ToggleOffline flips the offline state and returns the new one.
func (p *Panel) ToggleOffline() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offline = !p.offline
	return p.offline
}

// PanelState is a point-in-time copy of a panel.
type PanelState struct {
	Name      string
	Text      string
	Writes    int
	LastWrite time.Time
	Offline   bool
}

// State returns a copy of the panel for rendering.
func (p *Panel) State() PanelState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return PanelState{
		Name:      p.name,
		Text:      p.text,
		Writes:    p.writes,
		LastWrite: p.lastWrite,
		Offline:   p.offline,
	}
}

// Group is a target with several independent panels, addressed by index.
type Group struct {
	name   string
	panels []*Panel
}

// NewGroup creates a group with n panels named "<name>[i]".
func NewGroup(name string, n int) *Group {
	g := &Group{name: name, panels: make([]*Panel, n)}
	for i := range g.panels {
		g.panels[i] = NewPanel(fmt.Sprintf("%s[%d]", name, i))
	}
	return g
}

func (g *Group) Name() string { return g.name }

// Surface returns panel i, or false when the group has no such panel.
func (g *Group) Surface(i int) (*Panel, bool) {
	if i < 0 || i >= len(g.panels) {
		return nil, false
	}
	return g.panels[i], true
}

// Len returns the number of panels in the group.
func (g *Group) Len() int { return len(g.panels) }

// WriterSurface writes each update as a framed block to w. It is used when
// running without the terminal UI.
type WriterSurface struct {
	mu   sync.Mutex
	name string
	w    io.Writer
}

// NewWriterSurface creates a surface that prints to w.
func NewWriterSurface(name string, w io.Writer) *WriterSurface {
	return &WriterSurface{name: name, w: w}
}

func (s *WriterSurface) Name() string { return s.name }

// WriteText prints text under a "[name]" header line.
func (s *WriterSurface) WriteText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("[" + s.name + "]\n")
	sb.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		sb.WriteByte('\n')
	}
	if _, err := io.WriteString(s.w, sb.String()); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, s.name, err)
	}
	return nil
}
