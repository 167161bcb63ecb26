package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
	log       zerolog.Logger
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App, version string, log zerolog.Logger) *MCPServer {
	mcpServer := server.NewMCPServer(
		AppName+"-server",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
		log:       log,
	}

	// Register tools
	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_transcript",
		mcp.WithDescription("Get the existing captions of a YouTube video as a transcript. Fails if the video has no captions in the configured languages."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or 11 character video ID"),
			mcp.Required(),
		),
		mcp.WithString("format",
			mcp.Description("Output format: plain text, JSON cues, SRT or WebVTT subtitles"),
			mcp.Enum(FormatNames()...),
			mcp.DefaultString(s.defaultFormat()),
		),
		mcp.WithBoolean("add_timestamps",
			mcp.Description("Prefix each line with [M:SS] (text format only)"),
			mcp.DefaultBool(false),
		),
	), s.handleGetTranscript)

	s.mcpServer.AddTool(mcp.NewTool("get_video_metadata",
		mcp.WithDescription("Get video metadata including title, channel, duration, chapters and caption availability. Use it to check 'Has Captions' before requesting a transcript."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or 11 character video ID"),
			mcp.Required(),
		),
	), s.handleGetMetadata)
}

// handleGetTranscript implements the get_transcript tool
func (s *MCPServer) handleGetTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	format := request.GetString("format", s.defaultFormat())
	addTimestamps := request.GetBool("add_timestamps", false)

	start := time.Now()
	transcript, _, err := s.app.Transcript(ctx, url, format, addTimestamps)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", "get_transcript").Str("url", url).Msg("tool failed")
		return mcp.NewToolResultErrorFromErr(transcriptErrorMessage(err), err), nil
	}

	s.log.Info().
		Str("tool", "get_transcript").
		Str("url", url).
		Str("format", format).
		Int("bytes", len(transcript)).
		Dur("took", time.Since(start)).
		Msg("tool called")
	return mcp.NewToolResultText(transcript), nil
}

// handleGetMetadata implements the get_video_metadata tool
func (s *MCPServer) handleGetMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	metadata, err := s.app.Metadata(ctx, url)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", "get_video_metadata").Str("url", url).Msg("tool failed")
		return mcp.NewToolResultErrorFromErr("metadata error", err), nil
	}

	s.log.Info().Str("tool", "get_video_metadata").Str("url", url).Msg("tool called")
	return mcp.NewToolResultText(formatMetadata(metadata)), nil
}

func (s *MCPServer) defaultFormat() string {
	if s.app.config != nil && s.app.config.Format != "" {
		return s.app.config.Format
	}
	return string(FormatText)
}

func transcriptErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidFormat):
		return "invalid format"
	case errors.Is(err, ErrInvalidVideoID):
		return "invalid video ID or URL"
	case errors.Is(err, ErrTranscriptUnavailable):
		return "no captions available - use get_video_metadata to check caption availability"
	default:
		return "transcript error"
	}
}

// formatMetadata renders metadata as "Key: value" lines
func formatMetadata(metadata *VideoMetadata) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Title: %s\n", metadata.Title)
	fmt.Fprintf(&buf, "Channel: %s\n", metadata.Channel)
	fmt.Fprintf(&buf, "Duration: %.0f seconds\n", metadata.Duration)
	fmt.Fprintf(&buf, "Description: %s\n", metadata.Description)

	// Caption availability information
	fmt.Fprintf(&buf, "Has Captions: %t\n", metadata.HasCaptions)

	if len(metadata.Tags) > 0 {
		fmt.Fprintf(&buf, "Tags: %s\n", strings.Join(metadata.Tags, ", "))
	}

	if len(metadata.Categories) > 0 {
		fmt.Fprintf(&buf, "Categories: %s\n", strings.Join(metadata.Categories, ", "))
	}

	for _, ch := range metadata.Chapters {
		fmt.Fprintf(&buf, "Chapter (%s-%s): %s\n", FormatTimestamp(ch.StartTime), FormatTimestamp(ch.EndTime), ch.Title)
	}
	return buf.String()
}

// Start starts the MCP server using the specified transport and blocks until ctx is done
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	switch transport {
	case "http":
		return s.serveHTTP(ctx, port)
	case "", "stdio":
		s.log.Info().Msg("serving MCP over stdio")
		stdio := server.NewStdioServer(s.mcpServer)
		stdio.SetErrorLogger(log.New(s.log, "", 0))
		err := stdio.Listen(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown transport %q (supported: stdio, http)", transport)
	}
}

func (s *MCPServer) serveHTTP(ctx context.Context, port int) error {
	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	addr := fmt.Sprintf(":%d", port)
	s.log.Info().Str("addr", addr).Msg("serving MCP over streamable HTTP")

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// GetServer returns the underlying MCP server for advanced configuration
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.mcpServer
}
