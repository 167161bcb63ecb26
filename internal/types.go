package internal

import (
	"fmt"
	"strings"
)

// Cue is a single timed caption entry
type Cue struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// End returns the offset in seconds at which the cue stops being displayed
func (c Cue) End() float64 {
	return c.Start + c.Duration
}

// Format is an output encoding for a transcript
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
)

// Formats lists the supported output formats in help order
var Formats = []Format{FormatText, FormatJSON, FormatSRT, FormatVTT}

// ParseFormat validates a user supplied format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (supported: %s)", ErrInvalidFormat, s, strings.Join(FormatNames(), ", "))
}

// FormatNames returns the names of the supported formats
func FormatNames() []string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return names
}

// Extension returns the default file extension for the format, including the dot
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatSRT:
		return ".srt"
	case FormatVTT:
		return ".vtt"
	default:
		return ".txt"
	}
}

// Request describes a single transcript download
type Request struct {
	Input         string
	OutputFile    string
	Format        string
	AddTimestamps bool
	Verbose       bool
	Clipboard     bool
}

// String returns a compact description of the request for logging
func (r Request) String() string {
	return fmt.Sprintf("Request{input=%q, format=%s, output=%q, clipboard=%t}", r.Input, r.Format, r.OutputFile, r.Clipboard)
}
