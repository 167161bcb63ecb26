package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSRT(t *testing.T) {
	content := "\ufeff1\r\n00:00:01,500 --> 00:00:03,750\r\nHello\r\n\r\n" +
		"2\n00:00:04,000 --> 00:00:06,000 align:start position:0%\nline one\n  line two  \n\n" +
		"3\n00:01:00,000 --> 00:01:00,000\n\n\n" +
		"00:01:01.250 --> 01:00:00.000\nno index\n"

	cues, err := parseSRT(content)
	require.NoError(t, err)
	require.Len(t, cues, 3)

	assert.Equal(t, Cue{Text: "Hello", Start: 1.5, Duration: 2.25}, cues[0])
	assert.Equal(t, "line one\nline two", cues[1].Text)
	assert.InDelta(t, 4.0, cues[1].Start, 1e-9)
	assert.InDelta(t, 2.0, cues[1].Duration, 1e-9)
	assert.Equal(t, "no index", cues[2].Text)
	assert.InDelta(t, 61.25, cues[2].Start, 1e-9)
	assert.InDelta(t, 3600-61.25, cues[2].Duration, 1e-9)
}

func TestParseSRT_RoundTrip(t *testing.T) {
	rendered, err := Render(sampleCues, FormatSRT, false)
	require.NoError(t, err)

	cues, err := parseSRT(rendered)
	require.NoError(t, err)
	require.Len(t, cues, len(sampleCues))
	for i := range cues {
		assert.Equal(t, sampleCues[i].Text, cues[i].Text)
		assert.InDelta(t, sampleCues[i].Start, cues[i].Start, 0.001)
		assert.InDelta(t, sampleCues[i].Duration, cues[i].Duration, 0.002)
	}
}

func TestParseSRT_Errors(t *testing.T) {
	_, err := parseSRT("1\n00:00:01 --> 00:00:02\ntext\n")
	assert.Error(t, err)

	_, err = parseSRT("1\nnot a timing line\ntext\n")
	assert.Error(t, err)

	cues, err := parseSRT("")
	require.NoError(t, err)
	assert.Empty(t, cues)
}

func TestParseSRTTime(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"00:00:00,000", 0},
		{"00:00:01,500", 1.5},
		{"00:00:01.001", 1.001},
		{"01:01:01,250", 3661.25},
		{"00:00:01,5", 1.5},
		{"00:00:01.25", 1.25},
	}
	for _, tt := range tests {
		got, err := parseSRTTime(tt.in)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}

	for _, in := range []string{"", "00:00:01", "00:01,000", "aa:00:01,000", "00:00:01,xyz", "00:00:01,", "00:00:01,5000"} {
		_, err := parseSRTTime(in)
		assert.Error(t, err, in)
	}
}

func TestPickSubtitleFile(t *testing.T) {
	dir := t.TempDir()

	_, err := pickSubtitleFile(dir, []string{"en"})
	assert.ErrorIs(t, err, ErrNoTranscriptFound)

	for _, name := range []string{"abc.de.srt", "abc.en.srt", "abc.fr.srt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	got, err := pickSubtitleFile(dir, []string{"fr", "en"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc.fr.srt"), got)

	got, err = pickSubtitleFile(dir, []string{"ja"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc.de.srt"), got)
}

func TestParseMetadata(t *testing.T) {
	data := []byte(`{
		"id": "dQw4w9WgXcQ",
		"title": "Never Gonna Give You Up",
		"channel": "Rick Astley",
		"uploader": "Rick Astley",
		"duration": 213,
		"tags": ["music"],
		"chapters": [{"start_time": 0, "end_time": 10, "title": "Intro"}],
		"subtitles": {},
		"automatic_captions": {"en": [{"ext": "vtt"}]}
	}`)

	md, err := parseMetadata(data)
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", md.ID)
	assert.Equal(t, "Never Gonna Give You Up", md.Title)
	assert.Equal(t, 213.0, md.Duration)
	assert.Equal(t, []string{"music"}, md.Tags)
	require.Len(t, md.Chapters, 1)
	assert.Equal(t, "Intro", md.Chapters[0].Title)
	assert.True(t, md.HasCaptions)

	md, err = parseMetadata([]byte(`{"title": "silent", "subtitles": {}, "automatic_captions": {}}`))
	require.NoError(t, err)
	assert.False(t, md.HasCaptions)

	_, err = parseMetadata([]byte(`not json`))
	assert.Error(t, err)
}

func TestYtDlp_InstallFailure(t *testing.T) {
	cause := errors.New("dial tcp: no route to host")
	calls := 0
	origInstall := installYtDlp
	installYtDlp = func(context.Context) error {
		calls++
		return cause
	}
	installOnce, installErr = sync.Once{}, nil
	t.Cleanup(func() {
		installYtDlp = origInstall
		installOnce, installErr = sync.Once{}, nil
	})

	cacheDir := t.TempDir()
	y := NewYtDlp(cacheDir, nil, zerolog.Nop())

	_, err := y.FetchCues(context.Background(), testVideoID)
	assert.ErrorIs(t, err, ErrTranscriptUnavailable)
	assert.ErrorIs(t, err, cause)

	_, err = y.Metadata(context.Background(), testVideoID)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrTranscriptUnavailable)

	assert.Equal(t, 1, calls, "install is attempted once")
	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no work directory is left behind")
}
