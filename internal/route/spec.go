package route

import (
	"fmt"
	"strconv"
	"strings"
)

// Verbosity selects which rendering a display receives.
type Verbosity int

const (
	Compact Verbosity = iota
	Verbose
)

func (v Verbosity) String() string {
	if v == Verbose {
		return "verbose"
	}
	return "compact"
}

// ParseVerbosity maps the single-character preference of an entry. Only "l"
// (any case) asks for the long form; everything else is compact.
func ParseVerbosity(s string) Verbosity {
	if strings.EqualFold(s, "l") {
		return Verbose
	}
	return Compact
}

// Spec is a parsed display entry. It is either a SingleSurfaceSpec or a
// MultiSurfaceSpec.
type Spec interface {
	TargetName() string
	Preference() Verbosity
	isSpec()
}

// SingleSurfaceSpec addresses a target that is itself a text surface
// ("name:verbosity").
type SingleSurfaceSpec struct {
	Name      string
	Verbosity Verbosity
}

func (s SingleSurfaceSpec) TargetName() string    { return s.Name }
func (s SingleSurfaceSpec) Preference() Verbosity { return s.Verbosity }
func (SingleSurfaceSpec) isSpec()                 {}

// MultiSurfaceSpec addresses one surface of a multi-surface target
// ("name:index:verbosity").
type MultiSurfaceSpec struct {
	Name      string
	Index     int
	Verbosity Verbosity
}

func (s MultiSurfaceSpec) TargetName() string    { return s.Name }
func (s MultiSurfaceSpec) Preference() Verbosity { return s.Verbosity }
func (MultiSurfaceSpec) isSpec()                 {}

// ParseEntry parses one display entry. Two colon-separated fields give a
// SingleSurfaceSpec, three a MultiSurfaceSpec; anything else is malformed.
func ParseEntry(entry string) (Spec, error) {
	fields := strings.Split(entry, ":")
	switch len(fields) {
	case 2:
		return SingleSurfaceSpec{
			Name:      fields[0],
			Verbosity: ParseVerbosity(fields[1]),
		}, nil
	case 3:
		idx, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("%w: surface index %q is not an integer", ErrMalformedEntry, fields[1])
		}
		return MultiSurfaceSpec{
			Name:      fields[0],
			Index:     idx,
			Verbosity: ParseVerbosity(fields[2]),
		}, nil
	default:
		return nil, fmt.Errorf("%w: expected 2 or 3 fields, got %d", ErrMalformedEntry, len(fields))
	}
}
