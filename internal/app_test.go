package internal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	*App
	fetcher   *mockFetcher
	metadata  *mockMetadata
	clipboard *mockClipboard
	out       *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	ta := &testApp{
		fetcher:   &mockFetcher{},
		metadata:  &mockMetadata{},
		clipboard: &mockClipboard{},
		out:       &bytes.Buffer{},
	}
	app, err := NewApp(&Config{CacheDir: t.TempDir()},
		WithFetcher(ta.fetcher),
		WithMetadataFetcher(ta.metadata),
		WithClipboard(ta.clipboard),
		WithUIManager(NewWriterUIManager(ta.out, false)),
	)
	require.NoError(t, err)
	ta.App = app
	return ta
}

func TestNewApp_UnknownBackend(t *testing.T) {
	_, err := NewApp(&Config{Backend: "carrier-pigeon", Quiet: true})
	assert.ErrorContains(t, err, "unknown backend")
}

func TestNewApp_DefaultFetchers(t *testing.T) {
	app, err := NewApp(&Config{Backend: BackendYtDlp, Quiet: true})
	require.NoError(t, err)
	assert.IsType(t, &YtDlp{}, app.fetcher)

	app, err = NewApp(&Config{Quiet: true})
	require.NoError(t, err)
	assert.IsType(t, &YouTube{}, app.fetcher)
}

func TestRun_Stdout(t *testing.T) {
	ta := newTestApp(t)
	ta.fetcher.On("FetchCues", mock.Anything, testVideoID).Return(sampleCues[:2], nil).Once()

	err := ta.Run(context.Background(), Request{
		Input:  "https://www.youtube.com/watch?v=" + testVideoID,
		Format: "text",
	})
	require.NoError(t, err)

	ta.fetcher.AssertExpectations(t)
	assert.Equal(t, "Hello world\nSecond line\n", ta.out.String())
}

func TestRun_FileWithDefaultExtension(t *testing.T) {
	ta := newTestApp(t)
	ta.fetcher.On("FetchCues", mock.Anything, testVideoID).Return(sampleCues[:1], nil).Once()
	base := filepath.Join(t.TempDir(), "talk")

	err := ta.Run(context.Background(), Request{Input: testVideoID, OutputFile: base, Format: "SRT"})
	require.NoError(t, err)

	data, err := os.ReadFile(base + ".srt")
	require.NoError(t, err)
	assert.Equal(t, "1\n00:00:00,000 --> 00:00:01,500\nHello world\n", string(data))
	assert.Contains(t, ta.out.String(), "Transcript saved to "+base+".srt")
}

func TestRun_KeepsExplicitExtension(t *testing.T) {
	ta := newTestApp(t)
	ta.fetcher.On("FetchCues", mock.Anything, testVideoID).Return(sampleCues[:1], nil).Once()
	path := filepath.Join(t.TempDir(), "talk.md")

	require.NoError(t, ta.Run(context.Background(), Request{Input: testVideoID, OutputFile: path, Format: "json"}))
	assert.FileExists(t, path)
	assert.NoFileExists(t, path+".json")
}

func TestRun_InvalidFormatFetchesNothing(t *testing.T) {
	ta := newTestApp(t)
	path := filepath.Join(t.TempDir(), "out")

	err := ta.Run(context.Background(), Request{Input: testVideoID, OutputFile: path, Format: "xml"})
	assert.ErrorIs(t, err, ErrInvalidFormat)

	ta.fetcher.AssertNotCalled(t, "FetchCues", mock.Anything, mock.Anything)
	ta.clipboard.AssertNotCalled(t, "WriteAll", mock.Anything)
	assert.NoFileExists(t, path)
	assert.Empty(t, ta.out.String())
}

func TestRun_InvalidVideoID(t *testing.T) {
	ta := newTestApp(t)

	err := ta.Run(context.Background(), Request{Input: "https://example.com/watch", Format: "text"})
	assert.ErrorIs(t, err, ErrInvalidVideoID)
	ta.fetcher.AssertNotCalled(t, "FetchCues", mock.Anything, mock.Anything)
}

func TestRun_FetchErrorPropagates(t *testing.T) {
	ta := newTestApp(t)
	ta.fetcher.On("FetchCues", mock.Anything, testVideoID).
		Return(nil, fetchFailed(testVideoID, ErrTranscriptsDisabled)).Once()
	path := filepath.Join(t.TempDir(), "out.txt")

	err := ta.Run(context.Background(), Request{Input: testVideoID, OutputFile: path, Format: "text", Clipboard: true})
	assert.ErrorIs(t, err, ErrTranscriptUnavailable)
	assert.ErrorIs(t, err, ErrTranscriptsDisabled)
	assert.NoFileExists(t, path)
	ta.clipboard.AssertNotCalled(t, "WriteAll", mock.Anything)
}

func TestRun_EmptyTranscript(t *testing.T) {
	ta := newTestApp(t)
	ta.fetcher.On("FetchCues", mock.Anything, testVideoID).Return([]Cue{}, nil).Once()

	require.NoError(t, ta.Run(context.Background(), Request{Input: testVideoID, Format: "vtt"}))
	assert.Equal(t, "WEBVTT\n\n\n", ta.out.String())
}

func TestRun_Clipboard(t *testing.T) {
	ta := newTestApp(t)
	ta.fetcher.On("FetchCues", mock.Anything, testVideoID).Return(sampleCues[:1], nil).Once()
	ta.clipboard.On("WriteAll", "[0:00] Hello world").Return(nil).Once()

	err := ta.Run(context.Background(), Request{Input: testVideoID, Format: "text", AddTimestamps: true, Clipboard: true})
	require.NoError(t, err)
	ta.clipboard.AssertExpectations(t)
	assert.Equal(t, "Transcript copied to clipboard\n", ta.out.String())
}

func TestCopyTranscript(t *testing.T) {
	ta := newTestApp(t)
	ta.fetcher.On("FetchCues", mock.Anything, testVideoID).Return(sampleCues[:1], nil).Once()
	ta.clipboard.On("WriteAll", "Hello world").Return(nil).Once()

	require.NoError(t, ta.CopyTranscript(context.Background(), "youtu.be/"+testVideoID, "text", false))
	ta.clipboard.AssertExpectations(t)
}

func TestTranscript(t *testing.T) {
	ta := newTestApp(t)
	ta.fetcher.On("FetchCues", mock.Anything, testVideoID).Return(sampleCues[:2], nil).Once()

	got, format, err := ta.Transcript(context.Background(), testVideoID, "json", false)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, format)
	assert.Contains(t, got, `"text": "Second line"`)
	assert.Empty(t, ta.out.String(), "Transcript does not deliver")
}

func TestMetadata(t *testing.T) {
	ta := newTestApp(t)
	md := &VideoMetadata{ID: testVideoID, Title: "Never Gonna Give You Up"}
	ta.metadata.On("Metadata", mock.Anything, testVideoID).Return(md, nil).Once()

	got, err := ta.Metadata(context.Background(), "https://youtube.com/shorts/"+testVideoID)
	require.NoError(t, err)
	assert.Equal(t, md, got)

	_, err = ta.Metadata(context.Background(), "not a video")
	assert.ErrorIs(t, err, ErrInvalidVideoID)
	ta.metadata.AssertNumberOfCalls(t, "Metadata", 1)
}
