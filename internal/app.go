package internal

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// MetadataFetcher retrieves video metadata
type MetadataFetcher interface {
	Metadata(ctx context.Context, videoID string) (*VideoMetadata, error)
}

// App holds the application state and dependencies
type App struct {
	fetcher   CueFetcher
	metadata  MetadataFetcher
	output    *Output
	clipboard Clipboard
	ui        UIManager
	config    *Config
	log       zerolog.Logger
}

// NewApp initializes the application
func NewApp(config *Config, options ...AppOption) (*App, error) {
	app := &App{
		config: config,
		log:    zerolog.Nop(),
	}

	// Apply any custom options
	for _, option := range options {
		option(app)
	}

	if app.ui == nil {
		app.ui = NewUIManager(config.Quiet)
	}
	if app.fetcher == nil {
		fetcher, err := NewFetcher(config, app.ui, app.log)
		if err != nil {
			return nil, err
		}
		app.fetcher = fetcher
	}
	if app.metadata == nil {
		app.metadata = NewYtDlp(config.CacheDir, config.Languages, app.log.With().Str("component", "ytdlp").Logger())
	}
	app.output = NewOutput(app.ui, app.clipboard)

	return app, nil
}

// AppOption customizes App creation
type AppOption func(*App)

// WithFetcher sets a custom transcript fetcher
func WithFetcher(fetcher CueFetcher) AppOption {
	return func(a *App) {
		a.fetcher = fetcher
	}
}

// WithMetadataFetcher sets a custom metadata source
func WithMetadataFetcher(metadata MetadataFetcher) AppOption {
	return func(a *App) {
		a.metadata = metadata
	}
}

// WithClipboard sets a custom clipboard
func WithClipboard(cb Clipboard) AppOption {
	return func(a *App) {
		a.clipboard = cb
	}
}

// WithUIManager sets a custom UI
func WithUIManager(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// WithAppLogger sets the diagnostic logger
func WithAppLogger(log zerolog.Logger) AppOption {
	return func(a *App) {
		a.log = log
	}
}

// Transcript fetches and renders the transcript of a video without delivering it.
// The format is validated before anything is fetched.
func (app *App) Transcript(ctx context.Context, input, format string, addTimestamps bool) (string, Format, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return "", "", err
	}

	videoID, err := ParseVideoID(input)
	if err != nil {
		return "", "", err
	}

	app.log.Debug().Str("video_id", videoID).Str("format", string(f)).Msg("fetching transcript")
	cues, err := app.fetcher.FetchCues(ctx, videoID)
	if err != nil {
		return "", "", err
	}

	rendered, err := Render(cues, f, addTimestamps)
	if err != nil {
		return "", "", err
	}
	app.log.Debug().Str("video_id", videoID).Int("cues", len(cues)).Int("bytes", len(rendered)).Msg("transcript rendered")
	return rendered, f, nil
}

// Run performs the complete workflow: parse -> fetch -> render -> deliver
func (app *App) Run(ctx context.Context, req Request) error {
	app.log.Debug().Stringer("request", req).Msg("run")

	rendered, format, err := app.Transcript(ctx, req.Input, req.Format, req.AddTimestamps)
	if err != nil {
		return err
	}

	return app.output.Deliver(rendered, Destination{
		File:      WithDefaultExtension(req.OutputFile, format),
		Clipboard: req.Clipboard,
		Verbose:   req.Verbose,
	})
}

// CopyTranscript renders a transcript and copies it to the clipboard only
func (app *App) CopyTranscript(ctx context.Context, input, format string, addTimestamps bool) error {
	rendered, _, err := app.Transcript(ctx, input, format, addTimestamps)
	if err != nil {
		return err
	}
	return app.output.CopyToClipboard(rendered)
}

// Metadata gets metadata for a video ID or URL
func (app *App) Metadata(ctx context.Context, input string) (*VideoMetadata, error) {
	videoID, err := ParseVideoID(input)
	if err != nil {
		return nil, err
	}

	metadata, err := app.metadata.Metadata(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("getting metadata for %s: %w", videoID, err)
	}
	return metadata, nil
}
