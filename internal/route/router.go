package route

import (
	"fmt"
	"strings"
)

// Failure records an entry that did not become a route.
type Failure struct {
	Entry string
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("display %q: %v", f.Entry, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// RouteSet is the outcome of parsing a display list. Routes and Failures
// both keep configuration order.
type RouteSet struct {
	Routes   []Route
	Failures []Failure
}

// Parse splits list on ";" and resolves every entry against r. A blank list
// yields an empty set; a blank entry inside a list is malformed.
func Parse(list string, r Resolver) RouteSet {
	var set RouteSet
	if strings.TrimSpace(list) == "" {
		return set
	}

	for _, entry := range strings.Split(list, ";") {
		entry = strings.TrimSpace(entry)
		route, err := Build(entry, r)
		if err != nil {
			set.Failures = append(set.Failures, Failure{Entry: entry, Err: err})
			continue
		}
		set.Routes = append(set.Routes, route)
	}
	return set
}

// Build parses and resolves a single entry.
func Build(entry string, r Resolver) (Route, error) {
	spec, err := ParseEntry(entry)
	if err != nil {
		return Route{}, err
	}
	surface, err := Resolve(spec, r)
	if err != nil {
		return Route{}, err
	}
	return Route{entry: entry, spec: spec, surface: surface}, nil
}

// Resolve finds the surface a parsed entry refers to.
func Resolve(spec Spec, r Resolver) (Surface, error) {
	target, ok := r.FindByName(spec.TargetName())
	if !ok || target == nil {
		return nil, fmt.Errorf("%w: %q", ErrTargetNotFound, spec.TargetName())
	}

	switch s := spec.(type) {
	case MultiSurfaceSpec:
		surface, ok := r.Subsurface(target, s.Index)
		if !ok || surface == nil {
			return nil, fmt.Errorf("%w: surface %d of %q", ErrIndexNotFound, s.Index, s.Name)
		}
		return surface, nil
	default:
		surface, ok := target.(Surface)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a text surface", ErrTargetNotFound, spec.TargetName())
		}
		return surface, nil
	}
}
