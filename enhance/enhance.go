// Package enhance renders raw transcript segments into a timestamped,
// heading-annotated representation for display.
package enhance

import (
	"fmt"
	"strings"

	"ytdigest/transcript"
)

const (
	// A pause this long between segments is treated as a topic boundary.
	sectionPause = 3.0
	// Minimum segments per section, so short pauses in rapid speech do not
	// fragment the output.
	minSectionSegments = 8
)

// Beautify transforms raw transcript segments into a markdown document with
// a timestamped section and a plain full-text section. Topic boundaries are
// heuristic: a long pause in speech starts a new timestamped section.
// Beautify is pure and never fails; if the segments are unusable it returns
// the raw text unchanged.
func Beautify(segments []transcript.Segment, raw string) string {
	lines, fullText := formatSegments(segments)
	if len(lines) == 0 {
		return raw
	}

	var b strings.Builder
	b.WriteString("# Timestamps and Text\n\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n# Full Text\n\n")
	b.WriteString(strings.Join(fullText, " "))

	return b.String()
}

func formatSegments(segments []transcript.Segment) (lines, fullText []string) {
	var (
		prevEnd      float64
		sinceHeading int
	)

	for i, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}

		if i == 0 || startsSection(seg.Start, prevEnd, sinceHeading) {
			if len(lines) > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, "## "+formatTimestamp(seg.Start), "")
			sinceHeading = 0
		}

		lines = append(lines, fmt.Sprintf("[%s] %s", formatTimestamp(seg.Start), text))
		fullText = append(fullText, text)
		prevEnd = seg.Start + seg.Duration
		sinceHeading++
	}

	return lines, fullText
}

func startsSection(start, prevEnd float64, sinceHeading int) bool {
	return start-prevEnd >= sectionPause && sinceHeading >= minSectionSegments
}

func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
