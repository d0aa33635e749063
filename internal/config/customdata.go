// Package config holds the tunables, the YAML settings file and the parser
// for the two-line display configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrNoControllerFound    = errors.New("no controller found")
)

// Setup is the parsed two-line configuration: a controller name filter and
// the display list handed to route.Parse.
type Setup struct {
	ControllerFilter string
	Displays         string
}

// ParseCustomData splits blob into its two lines. A single trailing newline
// and CRLF line endings are accepted; any other line count is invalid.
func ParseCustomData(blob string) (Setup, error) {
	blob = strings.ReplaceAll(blob, "\r\n", "\n")
	blob = strings.TrimSuffix(blob, "\n")

	lines := strings.Split(blob, "\n")
	if len(lines) != 2 {
		return Setup{}, fmt.Errorf("%w: expected 2 lines (controller filter, displays), got %d", ErrInvalidConfiguration, len(lines))
	}
	return Setup{
		ControllerFilter: lines[0],
		Displays:         lines[1],
	}, nil
}

// SelectController returns the first name containing filter.
func SelectController(filter string, names []string) (string, error) {
	for _, name := range names {
		if strings.Contains(name, filter) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: none of %d controllers match %q", ErrNoControllerFound, len(names), filter)
}
