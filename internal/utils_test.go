package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"bare id with spaces", "  dQw4w9WgXcQ\n", "dQw4w9WgXcQ"},
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url extra params", "https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"mobile", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"music", "https://music.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with time", "https://youtu.be/dQw4w9WgXcQ?t=10", "dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/abcdefghijk", "abcdefghijk"},
		{"embed", "https://www.youtube.com/embed/A-b_C1234xy", "A-b_C1234xy"},
		{"live", "https://www.youtube.com/live/A-b_C1234xy?feature=share", "A-b_C1234xy"},
		{"other host with v param", "https://example.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVideoID(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseVideoID_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "short", "https://www.youtube.com/", "https://www.youtube.com/watch?v=tooShort", "not a video id at all"} {
		_, err := ParseVideoID(in)
		assert.ErrorIs(t, err, ErrInvalidVideoID, "input %q", in)
	}
}

func TestIsValidYouTubeID(t *testing.T) {
	assert.True(t, IsValidYouTubeID("dQw4w9WgXcQ"))
	assert.True(t, IsValidYouTubeID("___________"))
	assert.False(t, IsValidYouTubeID("dQw4w9WgXc"))
	assert.False(t, IsValidYouTubeID("dQw4w9WgXcQQ"))
	assert.False(t, IsValidYouTubeID("dQw4w9WgX!Q"))
}

func TestIsLikelyCommand(t *testing.T) {
	assert.True(t, IsLikelyCommand("verison"))
	assert.True(t, IsLikelyCommand("mpc"))
	assert.False(t, IsLikelyCommand("dQw4w9WgXcQ"))
	assert.False(t, IsLikelyCommand("youtu.be/x"))
}

func TestSuggestCommands(t *testing.T) {
	commands := []string{"cp", "metadata", "mcp", "paths", "version", "help"}
	assert.Equal(t, []string{"version"}, SuggestCommands("verison", commands))
	assert.Equal(t, []string{"metadata"}, SuggestCommands("meta", commands))
	assert.Empty(t, SuggestCommands("zzz", commands))
}

func TestWithDefaultExtension(t *testing.T) {
	tests := []struct {
		path   string
		format Format
		want   string
	}{
		{"", FormatSRT, ""},
		{"talk", FormatText, "talk.txt"},
		{"talk", FormatJSON, "talk.json"},
		{"talk", FormatSRT, "talk.srt"},
		{"talk", FormatVTT, "talk.vtt"},
		{"talk.md", FormatSRT, "talk.md"},
		{filepath.Join("out.d", "talk"), FormatVTT, filepath.Join("out.d", "talk.vtt")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WithDefaultExtension(tt.path, tt.format), "path %q", tt.path)
	}
}

func TestEnsureDirsAndCleanup(t *testing.T) {
	base := t.TempDir()
	a := filepath.Join(base, "a", "b")
	c := filepath.Join(base, "c")

	require.NoError(t, EnsureDirs(a, c))
	assert.DirExists(t, a)
	assert.DirExists(t, c)

	require.NoError(t, os.WriteFile(filepath.Join(a, "x.srt"), []byte("x"), 0644))
	require.NoError(t, CleanupTempDir(filepath.Join(base, "a")))
	assert.NoDirExists(t, a)

	assert.NoError(t, CleanupTempDir(filepath.Join(base, "missing")))
	assert.NoError(t, CleanupTempDir(""))
}
