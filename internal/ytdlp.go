package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog"
)

// VideoMetadata contains YouTube video information
type VideoMetadata struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Channel     string         `json:"channel"`
	Uploader    string         `json:"uploader"`
	Duration    float64        `json:"duration"`
	Categories  []string       `json:"categories"`
	Tags        []string       `json:"tags"`
	Chapters    []VideoChapter `json:"chapters"`
	HasCaptions bool           `json:"has_captions"`
}

// VideoChapter represents a video chapter marker
type VideoChapter struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Title     string  `json:"title"`
}

var (
	installOnce sync.Once
	installErr  error

	// installYtDlp downloads yt-dlp into the go-ytdlp cache when it is not on PATH
	installYtDlp = func(ctx context.Context) error {
		_, err := ytdlp.Install(ctx, nil)
		return err
	}
)

// ensureYtDlp makes sure a yt-dlp binary is available before the first run.
// A failed install is remembered and returned on every later call.
func ensureYtDlp(ctx context.Context) error {
	installOnce.Do(func() {
		if err := installYtDlp(ctx); err != nil {
			installErr = fmt.Errorf("installing yt-dlp: %w", err)
		}
	})
	return installErr
}

// YtDlp fetches captions and metadata by driving yt-dlp
type YtDlp struct {
	cacheDir  string
	languages []string
	log       zerolog.Logger
}

// NewYtDlp creates a yt-dlp backed fetcher that works inside cacheDir
func NewYtDlp(cacheDir string, languages []string, log zerolog.Logger) *YtDlp {
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &YtDlp{
		cacheDir:  cacheDir,
		languages: languages,
		log:       log,
	}
}

// Metadata fetches video details using go-ytdlp
func (y *YtDlp) Metadata(ctx context.Context, videoID string) (*VideoMetadata, error) {
	if err := ensureYtDlp(ctx); err != nil {
		return nil, err
	}
	y.log.Debug().Str("video_id", videoID).Msg("extracting video metadata")

	dl := ytdlp.New().
		DumpSingleJSON().
		NoPlaylist().
		SkipDownload()

	result, err := dl.Run(ctx, WatchURL(videoID))
	if err != nil {
		if result != nil {
			y.log.Debug().Str("stderr", result.Stderr).Msg("yt-dlp metadata failed")
		}
		return nil, fmt.Errorf("extracting video metadata: %w", err)
	}

	return parseMetadata([]byte(result.Stdout))
}

// parseMetadata decodes yt-dlp's --dump-single-json output
func parseMetadata(data []byte) (*VideoMetadata, error) {
	var rawData map[string]any
	if err := json.Unmarshal(data, &rawData); err != nil {
		return nil, fmt.Errorf("parsing video metadata: %w", err)
	}

	var metadata VideoMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("parsing video metadata: %w", err)
	}

	metadata.HasCaptions = extractSubtitleInfo(rawData)
	return &metadata, nil
}

// FetchCues implements CueFetcher by letting yt-dlp write SRT subtitles
func (y *YtDlp) FetchCues(ctx context.Context, videoID string) ([]Cue, error) {
	if err := ensureYtDlp(ctx); err != nil {
		return nil, fetchFailed(videoID, err)
	}

	if err := EnsureDirs(y.cacheDir); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	workDir, err := os.MkdirTemp(y.cacheDir, "subs-"+videoID+"-")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	defer func() {
		if err := CleanupTempDir(workDir); err != nil {
			y.log.Warn().Err(err).Msg("cleanup failed")
		}
	}()

	y.log.Debug().Str("video_id", videoID).Str("dir", workDir).Strs("languages", y.languages).Msg("downloading subtitles")

	dl := ytdlp.New().
		WriteSubs().
		WriteAutoSubs().
		SubLangs(strings.Join(y.languages, ",")).
		ConvertSubs("srt").
		SkipDownload().
		NoPlaylist().
		Output(filepath.Join(workDir, "%(id)s"))

	result, err := dl.Run(ctx, WatchURL(videoID))
	if err != nil {
		if result != nil {
			y.log.Debug().Str("stderr", result.Stderr).Msg("yt-dlp subtitles failed")
		}
		return nil, fetchFailed(videoID, err)
	}

	path, err := pickSubtitleFile(workDir, y.languages)
	if err != nil {
		return nil, fetchFailed(videoID, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fetchFailed(videoID, fmt.Errorf("reading SRT file: %w", err))
	}

	cues, err := parseSRT(string(content))
	if err != nil {
		return nil, fetchFailed(videoID, err)
	}
	return cues, nil
}

// pickSubtitleFile returns the downloaded SRT that best matches the language preference
func pickSubtitleFile(dir string, languages []string) (string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.srt"))
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", ErrNoTranscriptFound
	}
	sort.Strings(files)

	// yt-dlp names files <id>.<lang>.srt
	for _, lang := range languages {
		for _, f := range files {
			if strings.HasSuffix(f, "."+lang+".srt") {
				return f, nil
			}
		}
	}
	return files[0], nil
}

// parseSRT turns SRT content into cues, keeping their timing
func parseSRT(content string) ([]Cue, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimPrefix(content, "\ufeff")

	var cues []Cue
	for block := range strings.SplitSeq(content, "\n\n") {
		lines := strings.Split(strings.Trim(block, "\n"), "\n")
		if len(lines) < 2 {
			continue
		}

		// the index line is optional in the wild
		timing := 1
		if strings.Contains(lines[0], "-->") {
			timing = 0
		}
		if timing >= len(lines) {
			continue
		}

		start, end, err := parseSRTTimingLine(lines[timing])
		if err != nil {
			return nil, fmt.Errorf("parsing SRT block %q: %w", lines[0], err)
		}

		var textLines []string
		for _, l := range lines[timing+1:] {
			if t := strings.TrimSpace(l); t != "" {
				textLines = append(textLines, t)
			}
		}
		if len(textLines) == 0 {
			continue
		}

		cues = append(cues, Cue{
			Text:     strings.Join(textLines, "\n"),
			Start:    start,
			Duration: max(end-start, 0),
		})
	}
	return cues, nil
}

func parseSRTTimingLine(line string) (float64, float64, error) {
	startStr, endStr, ok := strings.Cut(line, "-->")
	if !ok {
		return 0, 0, errors.New("invalid timing separator")
	}
	start, err := parseSRTTime(strings.TrimSpace(startStr))
	if err != nil {
		return 0, 0, fmt.Errorf("start time: %w", err)
	}
	// drop cue settings that may follow the end time
	endFields := strings.Fields(endStr)
	if len(endFields) == 0 {
		return 0, 0, errors.New("missing end time")
	}
	end, err := parseSRTTime(endFields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("end time: %w", err)
	}
	return start, end, nil
}

// parseSRTTime parses HH:MM:SS,mmm (a period is accepted too) into seconds
func parseSRTTime(s string) (float64, error) {
	hms, millis, ok := strings.Cut(strings.Replace(s, ".", ",", 1), ",")
	if !ok {
		return 0, errors.New("missing millis")
	}
	parts := strings.Split(hms, ":")
	if len(parts) != 3 {
		return 0, errors.New("invalid h:m:s")
	}

	var total int64
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, err
		}
		total = total*60 + int64(n)
	}
	// the fraction is read as decimal digits, so ",5" is 500ms
	if len(millis) == 0 || len(millis) > 3 {
		return 0, errors.New("invalid millis")
	}
	ms, err := strconv.Atoi(millis + strings.Repeat("0", 3-len(millis)))
	if err != nil {
		return 0, err
	}
	return float64(total*1000+int64(ms)) / 1000, nil
}

// extractSubtitleInfo extracts subtitle availability from yt-dlp JSON output
func extractSubtitleInfo(rawData map[string]any) bool {
	if subtitles, ok := rawData["subtitles"].(map[string]any); ok && len(subtitles) > 0 {
		return true
	}
	if autoCaptions, ok := rawData["automatic_captions"].(map[string]any); ok && len(autoCaptions) > 0 {
		return true
	}
	return false
}
