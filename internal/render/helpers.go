// Package render produces Graphviz DOT for block graphs.
package render

import (
	"fmt"
	"strings"
)

// dotEscape escapes a string for use in DOT HTML labels.
func dotEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

// truncLabel shortens a label to maxLen, appending "..." if truncated.
func truncLabel(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// elide keeps the first and last lines of a long label around a count of
// the omitted ones. The result never exceeds maxLines; below 3 lines there
// is no room for the marker and the label is cut.
func elide(lines []string, maxLines int) []string {
	if len(lines) <= maxLines {
		return lines
	}
	if maxLines < 3 {
		return lines[:max(maxLines, 0)]
	}
	k := (maxLines - 1) / 2
	out := append([]string{}, lines[:k]...)
	out = append(out, fmt.Sprintf("... (%d more)", len(lines)-2*k))
	return append(out, lines[len(lines)-k:]...)
}
