package ui

import (
	"fmt"
	"strings"
)

// RouteRow is one active route as shown in the route list.
type RouteRow struct {
	Entry    string
	Target   string
	Index    int // -1 for a single-surface target
	Verbose  bool
	WriteErr bool // last write to this route failed
}

// FailureRow is a configuration entry that could not be routed.
type FailureRow struct {
	Entry  string
	Reason string
}

// Cursor row style: black text on bright green = unmissable highlight
var cursorRowSty = StyleRouteEntry.
	Foreground(ColorBlack).
	Background(ColorMatrixGreen)

// RenderRouteList renders the scrollable route panel. Active routes come first,
// then the entries that failed to route. The title stays fixed; only the
// entries scroll.
func RenderRouteList(routes []RouteRow, failures []FailureRow, width, height int, cursorIndex int) string {
	innerW := width - 4
	if innerW < 10 {
		innerW = 10
	}

	title := StylePanelTitle.Render(fmt.Sprintf("ROUTES [%d/%d]", len(routes), len(routes)+len(failures)))
	separator := StyleSeparator.Render(strings.Repeat("-", innerW))
	headerLines := []string{title, separator}
	headerCount := len(headerLines)

	innerH := height - 2
	if innerH < headerCount+1 {
		innerH = headerCount + 1
	}
	space := innerH - headerCount

	var entries [][]string
	for i, r := range routes {
		entries = append(entries, renderRouteEntry(r, innerW, i == cursorIndex))
	}
	for i, f := range failures {
		entries = append(entries, renderFailureEntry(f, innerW, len(routes)+i == cursorIndex))
	}

	var body []string
	if len(entries) == 0 {
		body = append(body, "", StyleHelp.Render(" No routes..."), StyleHelp.Render(" Check custom data"))
	} else {
		linesPerEntry := 3 // 2 content + 1 blank
		maxVisible := max(space/linesPerEntry, 1)

		// Keep the cursor visible
		viewStart := 0
		if cursorIndex >= maxVisible {
			viewStart = cursorIndex - maxVisible + 1
		}

		for _, e := range entries[min(viewStart, len(entries)):] {
			body = append(body, e...)
			if len(body) >= space {
				break
			}
		}
	}

	if len(body) > space {
		body = body[:space]
	}
	for len(body) < space {
		body = append(body, "")
	}

	all := append(headerLines, body...)
	rendered := StylePanelBorder.Width(width - 2).Height(innerH).Render(strings.Join(all, "\n"))
	return clampHeight(rendered, height)
}

func renderRouteEntry(r RouteRow, maxW int, isCursor bool) []string {
	mode, modeSty := "[S]", StyleRouteCompact
	if r.Verbose {
		mode, modeSty = "[L]", StyleRouteVerbose
	}

	target := r.Target
	if r.Index >= 0 {
		target = fmt.Sprintf("%s #%d", r.Target, r.Index)
	}

	mark := " "
	if r.WriteErr {
		mark = "!"
	}

	cursor := "  "
	if isCursor {
		cursor = ">>"
	}

	raw1 := truncRaw(fmt.Sprintf("%s %s %s %s", cursor, mode, r.Entry, mark), maxW)
	raw2 := truncRaw(fmt.Sprintf("       -> %s", target), maxW)

	if isCursor {
		return []string{cursorRowSty.Render(raw1), cursorRowSty.Render(raw2), ""}
	}

	markSty := StyleRouteEntry
	if r.WriteErr {
		markSty = StyleRouteFailed
	}
	line1 := fmt.Sprintf("   %s %s %s", modeSty.Render(mode), StyleRouteEntry.Render(r.Entry), markSty.Render(mark))
	line2 := "       " + StyleRouteTarget.Render(truncRaw("-> "+target, max(maxW-7, 1)))
	return []string{line1, line2, ""}
}

func renderFailureEntry(f FailureRow, maxW int, isCursor bool) []string {
	cursor := "  "
	if isCursor {
		cursor = ">>"
	}

	raw1 := truncRaw(fmt.Sprintf("%s [X] %s", cursor, f.Entry), maxW)
	raw2 := truncRaw(fmt.Sprintf("       %s", f.Reason), maxW)

	if isCursor {
		return []string{cursorRowSty.Render(raw1), cursorRowSty.Render(raw2), ""}
	}
	return []string{StyleRouteFailed.Render(raw1), StyleHelp.Render(raw2), ""}
}

// truncRaw pads or truncates a raw string to exactly w characters.
func truncRaw(s string, w int) string {
	if len(s) > w {
		return s[:w]
	}
	if len(s) < w {
		return s + strings.Repeat(" ", w-len(s))
	}
	return s
}
