package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	defaultBaseURL       = "https://www.youtube.com"
	innertubeClientName  = "ANDROID"
	innertubeClientVer   = "20.10.38"
	maxResponseBodyBytes = 16 << 20
)

var (
	apiKeyRegex    = regexp.MustCompile(`"INNERTUBE_API_KEY":\s*"([a-zA-Z0-9_-]+)"`)
	consentRegex   = regexp.MustCompile(`action="https://consent\.youtube\.com/s`)
	consentValueRe = regexp.MustCompile(`name="v" value="(.*?)"`)
	htmlTagRegex   = regexp.MustCompile(`(?i)<[^>]*>`)
)

// CaptionTrack is one caption track listed by the player response
type CaptionTrack struct {
	BaseURL      string
	LanguageCode string
	Name         string
	Kind         string
}

// IsGenerated reports whether the track was produced by speech recognition
func (t CaptionTrack) IsGenerated() bool {
	return t.Kind == "asr"
}

// YouTube fetches captions through the watch page and the Innertube player API
type YouTube struct {
	client    *http.Client
	baseURL   string
	languages []string
	timeout   time.Duration
	log       zerolog.Logger
	ui        UIManager
}

// YouTubeOption customizes YouTube creation
type YouTubeOption func(*YouTube)

// WithHTTPClient sets the HTTP client used for all requests
func WithHTTPClient(client *http.Client) YouTubeOption {
	return func(y *YouTube) {
		y.client = client
	}
}

// WithBaseURL points the fetcher at a different host, mostly for tests
func WithBaseURL(baseURL string) YouTubeOption {
	return func(y *YouTube) {
		y.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithLanguages sets the caption language preference, most preferred first
func WithLanguages(languages ...string) YouTubeOption {
	return func(y *YouTube) {
		if len(languages) > 0 {
			y.languages = languages
		}
	}
}

// WithTimeout bounds the whole fetch
func WithTimeout(timeout time.Duration) YouTubeOption {
	return func(y *YouTube) {
		y.timeout = timeout
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(log zerolog.Logger) YouTubeOption {
	return func(y *YouTube) {
		y.log = log
	}
}

// WithUI enables progress reporting
func WithUI(ui UIManager) YouTubeOption {
	return func(y *YouTube) {
		y.ui = ui
	}
}

// NewYouTube creates a new Innertube caption fetcher
func NewYouTube(options ...YouTubeOption) *YouTube {
	y := &YouTube{
		client:    http.DefaultClient,
		baseURL:   defaultBaseURL,
		languages: []string{"en"},
		log:       zerolog.Nop(),
	}
	for _, option := range options {
		option(y)
	}
	return y
}

// FetchCues implements CueFetcher
func (y *YouTube) FetchCues(ctx context.Context, videoID string) ([]Cue, error) {
	if y.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.timeout)
		defer cancel()
	}

	var bar ProgressBar
	if y.ui != nil {
		bar = y.ui.NewProgressBar(3, "Fetching watch page")
		defer bar.Finish()
	}

	cues, err := y.fetchCues(ctx, videoID, bar)
	if err != nil {
		y.log.Debug().Err(err).Str("video_id", videoID).Msg("fetch failed")
		return nil, fetchFailed(videoID, err)
	}
	return cues, nil
}

func (y *YouTube) fetchCues(ctx context.Context, videoID string, bar ProgressBar) ([]Cue, error) {
	page, err := y.fetchVideoPage(ctx, videoID)
	if err != nil {
		return nil, err
	}

	apiKey, err := extractAPIKey(page)
	if err != nil {
		return nil, err
	}

	if bar != nil {
		bar.Describe("Fetching caption tracks")
		bar.Set(1)
	}

	player, err := y.fetchPlayer(ctx, videoID, apiKey)
	if err != nil {
		return nil, err
	}

	tracks, err := captionTracks(player)
	if err != nil {
		return nil, err
	}

	track, err := selectTrack(tracks, y.languages)
	if err != nil {
		return nil, err
	}
	y.log.Debug().
		Str("video_id", videoID).
		Str("language", track.LanguageCode).
		Bool("generated", track.IsGenerated()).
		Int("tracks", len(tracks)).
		Msg("selected caption track")

	if bar != nil {
		bar.Describe("Downloading captions")
		bar.Set(2)
	}

	body, err := y.get(ctx, strings.Replace(track.BaseURL, "&fmt=srv3", "", 1), nil)
	if err != nil {
		return nil, fmt.Errorf("downloading captions: %w", err)
	}

	cues, err := parseTimedText(body)
	if err != nil {
		return nil, fmt.Errorf("parsing captions: %w", err)
	}

	if bar != nil {
		bar.Set(3)
	}
	y.log.Debug().Str("video_id", videoID).Int("cues", len(cues)).Msg("captions parsed")
	return cues, nil
}

// fetchVideoPage loads the watch page, accepting the consent interstitial once if shown
func (y *YouTube) fetchVideoPage(ctx context.Context, videoID string) ([]byte, error) {
	videoURL := y.baseURL + "/watch?v=" + videoID
	y.log.Debug().Str("url", videoURL).Msg("fetching watch page")

	body, err := y.get(ctx, videoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching video page: %w", err)
	}

	if !consentRegex.Match(body) {
		return body, nil
	}

	y.log.Debug().Msg("consent required, retrying with cookie")
	cookie, err := consentCookie(body)
	if err != nil {
		return nil, err
	}

	body, err = y.get(ctx, videoURL, cookie)
	if err != nil {
		return nil, fmt.Errorf("fetching video page after consent: %w", err)
	}
	if consentRegex.Match(body) {
		return nil, fmt.Errorf("%w: consent cookie was not accepted", ErrVideoUnavailable)
	}
	return body, nil
}

func (y *YouTube) fetchPlayer(ctx context.Context, videoID, apiKey string) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"context": map[string]any{
			"client": map[string]string{
				"clientName":    innertubeClientName,
				"clientVersion": innertubeClientVer,
			},
		},
		"videoId": videoID,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding player request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.baseURL+"/youtubei/v1/player?key="+apiKey, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating player request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en-US")

	body, err := y.do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching player response: %w", err)
	}
	return body, nil
}

func (y *YouTube) get(ctx context.Context, url string, cookie *http.Cookie) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept-Language", "en-US")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return y.do(req)
}

func (y *YouTube) do(req *http.Request) ([]byte, error) {
	resp, err := y.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrTooManyRequests
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Path)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

func consentCookie(page []byte) (*http.Cookie, error) {
	match := consentValueRe.FindSubmatch(page)
	if len(match) < 2 {
		return nil, fmt.Errorf("%w: consent value not found in page", ErrVideoUnavailable)
	}
	return &http.Cookie{
		Name:   "CONSENT",
		Value:  "YES+" + string(match[1]),
		Domain: ".youtube.com",
	}, nil
}

func extractAPIKey(page []byte) (string, error) {
	if m := apiKeyRegex.FindSubmatch(page); m != nil {
		return string(m[1]), nil
	}
	if bytes.Contains(page, []byte(`class="g-recaptcha"`)) {
		return "", ErrTooManyRequests
	}
	return "", fmt.Errorf("%w: no Innertube API key in watch page", ErrVideoUnavailable)
}

// captionTracks reads the caption track list out of a player response
func captionTracks(player []byte) ([]CaptionTrack, error) {
	if !gjson.ValidBytes(player) {
		return nil, fmt.Errorf("%w: malformed player response", ErrVideoUnavailable)
	}

	status := gjson.GetBytes(player, "playabilityStatus.status").String()
	if status != "" && status != "OK" {
		reason := gjson.GetBytes(player, "playabilityStatus.reason").String()
		if reason == "" {
			reason = status
		}
		if status == "LOGIN_REQUIRED" && strings.Contains(reason, "not a bot") {
			return nil, ErrTooManyRequests
		}
		return nil, fmt.Errorf("%w: %s", ErrVideoUnavailable, reason)
	}

	list := gjson.GetBytes(player, "captions.playerCaptionsTracklistRenderer.captionTracks").Array()
	if len(list) == 0 {
		return nil, ErrTranscriptsDisabled
	}

	tracks := make([]CaptionTrack, 0, len(list))
	for _, t := range list {
		name := t.Get("name.simpleText").String()
		if name == "" {
			name = t.Get("name.runs.0.text").String()
		}
		tracks = append(tracks, CaptionTrack{
			BaseURL:      t.Get("baseUrl").String(),
			LanguageCode: t.Get("languageCode").String(),
			Name:         name,
			Kind:         t.Get("kind").String(),
		})
	}
	return tracks, nil
}

// selectTrack walks the language preference list; within one language a
// manually created track wins over an auto-generated one.
func selectTrack(tracks []CaptionTrack, languages []string) (CaptionTrack, error) {
	if len(languages) == 0 {
		languages = []string{"en"}
	}

	for _, lang := range languages {
		var generated *CaptionTrack
		for i := range tracks {
			if tracks[i].LanguageCode != lang {
				continue
			}
			if !tracks[i].IsGenerated() {
				return tracks[i], nil
			}
			if generated == nil {
				generated = &tracks[i]
			}
		}
		if generated != nil {
			return *generated, nil
		}
	}

	available := make([]string, 0, len(tracks))
	for _, t := range tracks {
		available = append(available, t.LanguageCode)
	}
	return CaptionTrack{}, fmt.Errorf("%w for languages %s (available: %s)",
		ErrNoTranscriptFound, strings.Join(languages, ", "), strings.Join(available, ", "))
}

// parseTimedText extracts cues from the timedtext XML format
func parseTimedText(data []byte) ([]Cue, error) {
	var doc struct {
		XMLName xml.Name `xml:"transcript"`
		Texts   []struct {
			Text     string `xml:",chardata"`
			Start    string `xml:"start,attr"`
			Duration string `xml:"dur,attr"`
		} `xml:"text"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	cues := make([]Cue, 0, len(doc.Texts))
	for _, entry := range doc.Texts {
		if entry.Text == "" {
			continue
		}
		text := html.UnescapeString(htmlTagRegex.ReplaceAllString(entry.Text, ""))

		start, err := strconv.ParseFloat(entry.Start, 64)
		if err != nil {
			start = 0
		}
		duration, err := strconv.ParseFloat(entry.Duration, 64)
		if err != nil {
			duration = 0
		}

		cues = append(cues, Cue{Text: text, Start: start, Duration: duration})
	}
	return cues, nil
}
