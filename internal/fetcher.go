package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// CueFetcher retrieves the timed captions of a video
type CueFetcher interface {
	FetchCues(ctx context.Context, videoID string) ([]Cue, error)
}

const (
	BackendInnertube = "innertube"
	BackendYtDlp     = "ytdlp"
)

// Backends lists the available fetch backends
var Backends = []string{BackendInnertube, BackendYtDlp}

// NewFetcher builds the fetcher selected by config.Backend
func NewFetcher(config *Config, ui UIManager, log zerolog.Logger) (CueFetcher, error) {
	switch strings.ToLower(config.Backend) {
	case "", BackendInnertube:
		return NewYouTube(
			WithLanguages(config.Languages...),
			WithTimeout(config.Timeout),
			WithLogger(log.With().Str("component", "innertube").Logger()),
			WithUI(ui),
		), nil
	case BackendYtDlp:
		return NewYtDlp(config.CacheDir, config.Languages, log.With().Str("component", "ytdlp").Logger()), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (supported: %s)", config.Backend, strings.Join(Backends, ", "))
	}
}
