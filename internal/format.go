package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Render converts cues into the requested format. addTimestamps only affects FormatText.
func Render(cues []Cue, format Format, addTimestamps bool) (string, error) {
	switch format {
	case FormatText:
		return renderText(cues, addTimestamps), nil
	case FormatJSON:
		return renderJSON(cues)
	case FormatSRT:
		return renderSRT(cues), nil
	case FormatVTT:
		return renderVTT(cues), nil
	default:
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrInvalidFormat, format, strings.Join(FormatNames(), ", "))
	}
}

func renderText(cues []Cue, addTimestamps bool) string {
	lines := make([]string, 0, len(cues))
	for _, cue := range cues {
		if addTimestamps {
			lines = append(lines, "["+FormatTimestamp(cue.Start)+"] "+cue.Text)
		} else {
			lines = append(lines, cue.Text)
		}
	}
	return strings.Join(lines, "\n")
}

func renderJSON(cues []Cue) (string, error) {
	if cues == nil {
		cues = []Cue{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cues); err != nil {
		return "", fmt.Errorf("encoding transcript as JSON: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func renderSRT(cues []Cue) string {
	var sb strings.Builder
	for i, cue := range cues {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString("\n")
		sb.WriteString(formatCueTime(cue.Start, ','))
		sb.WriteString(" --> ")
		sb.WriteString(formatCueTime(cue.End(), ','))
		sb.WriteString("\n")
		sb.WriteString(cue.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderVTT(cues []Cue) string {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")
	for i, cue := range cues {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(formatCueTime(cue.Start, '.'))
		sb.WriteString(" --> ")
		sb.WriteString(formatCueTime(cue.End(), '.'))
		sb.WriteString("\n")
		sb.WriteString(cue.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatTimestamp renders whole seconds as M:SS, or H:MM:SS once an hour is reached
func FormatTimestamp(seconds float64) string {
	total := int64(math.Max(seconds, 0))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// formatCueTime renders HH:MM:SS<sep>mmm with the milliseconds truncated
func formatCueTime(seconds float64, sep byte) string {
	ms := toMillis(seconds)
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms)
}

// toMillis truncates seconds to whole milliseconds. The small epsilon keeps
// values such as 1.001 from landing on 1000.9999 after the multiplication.
func toMillis(seconds float64) int64 {
	if seconds <= 0 {
		return 0
	}
	return int64(math.Floor(seconds*1000 + 1e-6))
}
