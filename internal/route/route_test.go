package route

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	name    string
	written []string
	err     error
}

func (s *fakeSurface) Name() string { return s.name }

func (s *fakeSurface) WriteText(text string) error {
	if s.err != nil {
		return s.err
	}
	s.written = append(s.written, text)
	return nil
}

type fakeGroup struct {
	name     string
	surfaces []*fakeSurface
}

func (g *fakeGroup) Name() string { return g.name }

type fakeResolver map[string]Target

func (r fakeResolver) FindByName(name string) (Target, bool) {
	t, ok := r[name]
	return t, ok
}

func (r fakeResolver) Subsurface(t Target, index int) (Surface, bool) {
	g, ok := t.(*fakeGroup)
	if !ok || index < 0 || index >= len(g.surfaces) {
		return nil, false
	}
	return g.surfaces[index], true
}

func entries(set RouteSet) (routes, failures []string) {
	for _, r := range set.Routes {
		routes = append(routes, r.Entry())
	}
	for _, f := range set.Failures {
		failures = append(failures, f.Entry)
	}
	return routes, failures
}

func TestParseVerbosity(t *testing.T) {
	tests := map[string]Verbosity{
		"l":     Verbose,
		"L":     Verbose,
		"s":     Compact,
		"S":     Compact,
		"":      Compact,
		"long":  Compact,
		"x":     Compact,
		"short": Compact,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseVerbosity(in), "ParseVerbosity(%q)", in)
	}
}

func TestParseEntry(t *testing.T) {
	tests := []struct {
		entry   string
		want    Spec
		wantErr error
	}{
		{"LCD1:l", SingleSurfaceSpec{Name: "LCD1", Verbosity: Verbose}, nil},
		{"LCD1:s", SingleSurfaceSpec{Name: "LCD1", Verbosity: Compact}, nil},
		{"Cockpit:2:L", MultiSurfaceSpec{Name: "Cockpit", Index: 2, Verbosity: Verbose}, nil},
		{"Cockpit:0:s", MultiSurfaceSpec{Name: "Cockpit", Index: 0, Verbosity: Compact}, nil},
		{"Cockpit:x:s", nil, ErrMalformedEntry},
		{"Foo:Bar:Baz:Qux", nil, ErrMalformedEntry},
		{"LCD1", nil, ErrMalformedEntry},
		{"", nil, ErrMalformedEntry},
	}

	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			got, err := ParseEntry(tt.entry)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_ResolvedAndMissingGroup(t *testing.T) {
	lcd := &fakeSurface{name: "LCD1"}
	r := fakeResolver{"LCD1": lcd}

	set := Parse("LCD1:l;LCDGroup:0:s", r)

	require.Len(t, set.Routes, 1)
	assert.Equal(t, "LCD1:l", set.Routes[0].Entry())
	assert.Equal(t, Verbose, set.Routes[0].Verbosity())
	assert.False(t, set.Routes[0].PrefersCompact())
	assert.Same(t, lcd, set.Routes[0].Surface())

	require.Len(t, set.Failures, 1)
	assert.Equal(t, "LCDGroup:0:s", set.Failures[0].Entry)
	assert.ErrorIs(t, set.Failures[0].Err, ErrTargetNotFound)
	assert.ErrorIs(t, set.Failures[0], ErrTargetNotFound)
}

func TestParse_MalformedDoesNotAbort(t *testing.T) {
	lcd := &fakeSurface{name: "LCD1"}
	group := &fakeGroup{name: "Cockpit", surfaces: []*fakeSurface{{name: "c0"}, {name: "c1"}}}
	r := fakeResolver{"LCD1": lcd, "Cockpit": group}

	set := Parse("Foo:Bar:Baz:Qux; LCD1:s ;Cockpit:1:l;Cockpit:5:s;Cockpit:l", r)

	routes, failures := entries(set)
	if diff := cmp.Diff([]string{"LCD1:s", "Cockpit:1:l"}, routes); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Foo:Bar:Baz:Qux", "Cockpit:5:s", "Cockpit:l"}, failures); diff != "" {
		t.Errorf("failures mismatch (-want +got):\n%s", diff)
	}

	assert.ErrorIs(t, set.Failures[0].Err, ErrMalformedEntry)
	assert.ErrorIs(t, set.Failures[1].Err, ErrIndexNotFound)
	// A multi-surface target addressed as a single surface is not a surface.
	assert.ErrorIs(t, set.Failures[2].Err, ErrTargetNotFound)

	assert.Same(t, group.surfaces[1], set.Routes[1].Surface())
}

func TestParse_BlankList(t *testing.T) {
	for _, list := range []string{"", "   "} {
		set := Parse(list, fakeResolver{})
		assert.Empty(t, set.Routes)
		assert.Empty(t, set.Failures)
	}
}

func TestParse_BlankEntryIsMalformed(t *testing.T) {
	r := fakeResolver{"A": &fakeSurface{name: "A"}}
	set := Parse("A:l;;A:s", r)

	routes, failures := entries(set)
	assert.Equal(t, []string{"A:l", "A:s"}, routes)
	assert.Equal(t, []string{""}, failures)
	assert.ErrorIs(t, set.Failures[0].Err, ErrMalformedEntry)
}

func TestParse_PreservesOrder(t *testing.T) {
	r := fakeResolver{
		"A": &fakeSurface{name: "A"},
		"B": &fakeSurface{name: "B"},
		"C": &fakeSurface{name: "C"},
	}
	set := Parse("C:l;A:s;B:l;A:l", r)

	routes, _ := entries(set)
	assert.Equal(t, []string{"C:l", "A:s", "B:l", "A:l"}, routes)
}

func TestRoute_Write(t *testing.T) {
	compact := &fakeSurface{name: "C"}
	verbose := &fakeSurface{name: "V"}
	broken := &fakeSurface{name: "B", err: errors.New("panel offline")}
	r := fakeResolver{"C": compact, "V": verbose, "B": broken}

	set := Parse("C:s;V:l;B:s", r)
	require.Len(t, set.Routes, 3)

	for _, rt := range set.Routes[:2] {
		require.NoError(t, rt.Write("short", "long"))
	}
	assert.Equal(t, []string{"short"}, compact.written)
	assert.Equal(t, []string{"long"}, verbose.written)
	assert.EqualError(t, set.Routes[2].Write("short", "long"), "panel offline")
}

func TestFailure_Error(t *testing.T) {
	f := Failure{Entry: "X:l", Err: ErrTargetNotFound}
	assert.Equal(t, `display "X:l": display target not found`, f.Error())
}
