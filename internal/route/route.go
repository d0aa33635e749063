// Package route turns the display list of the configuration into the set of
// surfaces the control loop writes to.
//
// A display list is a semicolon-separated set of entries, each either
// "name:verbosity" for a single text surface or "name:index:verbosity" for
// one surface of a multi-surface target:
//
//	LCD1:l;Cockpit:0:s;Cockpit:1:l
//
// Entries that cannot be parsed or resolved are reported and skipped; the
// remaining entries still produce routes.
package route

import "errors"

var (
	ErrMalformedEntry = errors.New("malformed display entry")
	ErrTargetNotFound = errors.New("display target not found")
	ErrIndexNotFound  = errors.New("display surface index not found")
)

// Surface accepts rendered text.
type Surface interface {
	WriteText(text string) error
}

// Target is an addressable output sink. Single-surface targets also
// implement Surface.
type Target interface {
	Name() string
}

// Resolver looks up targets by name and, for multi-surface targets, one of
// their surfaces by index.
type Resolver interface {
	FindByName(name string) (Target, bool)
	Subsurface(t Target, index int) (Surface, bool)
}

// Route is a resolved display entry.
type Route struct {
	entry   string
	spec    Spec
	surface Surface
}

// Entry returns the configuration text the route was built from.
func (r Route) Entry() string { return r.entry }

// Spec returns the parsed entry.
func (r Route) Spec() Spec { return r.spec }

// Surface returns the resolved surface.
func (r Route) Surface() Surface { return r.surface }

// Verbosity returns the display's preferred rendering.
func (r Route) Verbosity() Verbosity { return r.spec.Preference() }

// PrefersCompact reports whether the compact rendering should be written.
func (r Route) PrefersCompact() bool { return r.spec.Preference() == Compact }

// Select returns compact or verbose according to the route's preference.
func (r Route) Select(compact, verbose string) string {
	if r.PrefersCompact() {
		return compact
	}
	return verbose
}

// Write sends the text matching the route's preference to its surface.
func (r Route) Write(compact, verbose string) error {
	return r.surface.WriteText(r.Select(compact, verbose))
}
