package internal

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/term"
)

var (
	videoIDPattern = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
	// loose match used when the input is not a recognisable URL
	embeddedIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)
)

var youtubeHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
	"www.youtu.be":      true,
}

// ParseVideoID extracts the 11 character video ID from a bare ID or YouTube URL
func ParseVideoID(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidVideoID)
	}

	if IsValidYouTubeID(arg) {
		return arg, nil
	}

	if id, err := getVideoID(arg); err == nil {
		return id, nil
	}

	if m := embeddedIDPattern.FindStringSubmatch(arg); m != nil {
		return m[1], nil
	}

	return "", fmt.Errorf("%w: %s", ErrInvalidVideoID, arg)
}

// VideoIDExtractor extracts video IDs from YouTube URLs
type VideoIDExtractor func(string) (string, error)

// Default implementation of video ID extraction
var getVideoID VideoIDExtractor = func(youtubeURL string) (string, error) {
	if !strings.Contains(youtubeURL, "://") {
		youtubeURL = "https://" + youtubeURL
	}
	u, err := url.Parse(youtubeURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}

	host := strings.ToLower(u.Hostname())
	if !youtubeHosts[host] {
		return "", fmt.Errorf("not a YouTube URL: %s", youtubeURL)
	}

	if v := u.Query().Get("v"); v != "" {
		if IsValidYouTubeID(v) {
			return v, nil
		}
		return "", fmt.Errorf("invalid video ID in URL: %s", v)
	}

	// youtu.be/ID, /shorts/ID, /embed/ID, /live/ID, /v/ID
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch {
	case strings.HasSuffix(host, "youtu.be") && len(parts) >= 1:
		if IsValidYouTubeID(parts[0]) {
			return parts[0], nil
		}
	case len(parts) >= 2:
		switch parts[0] {
		case "shorts", "embed", "live", "v":
			if IsValidYouTubeID(parts[1]) {
				return parts[1], nil
			}
		}
	}

	return "", fmt.Errorf("could not extract video ID from URL: %s", youtubeURL)
}

// WatchURL returns the canonical watch page URL for a video ID
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// IsValidYouTubeID checks if a string looks like a valid YouTube video ID
func IsValidYouTubeID(id string) bool {
	return videoIDPattern.MatchString(id)
}

// IsLikelyCommand checks if a string looks like it might be a mistyped command
func IsLikelyCommand(arg string) bool {
	// short words without URL punctuation are more likely typos than IDs
	return len(arg) <= 10 && !strings.ContainsAny(arg, "/.:?=")
}

// SuggestCommands returns the commands that resemble a mistyped argument
func SuggestCommands(arg string, availableCommands []string) []string {
	arg = strings.ToLower(arg)
	var suggestions []string
	for _, cmdName := range availableCommands {
		if strings.Contains(cmdName, arg) || strings.Contains(arg, cmdName) ||
			(len(arg) > 1 && len(arg) <= len(cmdName) && strings.HasPrefix(cmdName, arg[:2])) {
			suggestions = append(suggestions, cmdName)
		}
	}
	return suggestions
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// EnsureDirs creates directories if needed
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if !FileExists(dir) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
	}
	return nil
}

// CleanupTempDir removes a temporary directory and everything in it
func CleanupTempDir(tempDir string) error {
	if tempDir == "" || !FileExists(tempDir) {
		return nil
	}
	if err := os.RemoveAll(tempDir); err != nil {
		return fmt.Errorf("removing temp directory %s: %w", tempDir, err)
	}
	return nil
}

// WithDefaultExtension appends the format's extension when the file name has no dot
func WithDefaultExtension(path string, format Format) string {
	if path == "" || strings.Contains(filepath.Base(path), ".") {
		return path
	}
	return path + format.Extension()
}

// getTerminalWidth gets terminal width with fallback
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// separator returns the dashed line framing verbose transcript output
func separator() string {
	return strings.Repeat("-", min(40, getTerminalWidth()))
}
