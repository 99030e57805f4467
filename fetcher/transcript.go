package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"ewintr.nl/vidqa/model"
	"github.com/asticode/go-astisub"
	"golang.org/x/exp/slog"
)

const (
	androidVersion  = "20.10.38"
	androidUA       = "com.google.android.youtube/" + androidVersion + " (Linux; U; Android 11) gzip"
	maxCaptionBytes = 2 * 1024 * 1024
	kindAutomatic   = "asr"
)

var ErrTranscriptUnavailable = errors.New("transcript unavailable")

type playerRequest struct {
	VideoID        string        `json:"videoId"`
	Context        playerContext `json:"context"`
	RacyCheckOk    bool          `json:"racyCheckOk"`
	ContentCheckOk bool          `json:"contentCheckOk"`
}

type playerContext struct {
	Client playerClient `json:"client"`
}

type playerClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []CaptionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

// CaptionTrack is one language's caption stream of a video.
type CaptionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// TranscriptFetcher lists the caption tracks of a video through the innertube
// player endpoint and downloads every one of them.
type TranscriptFetcher struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

func NewTranscriptFetcher(client *http.Client, baseURL string, logger *slog.Logger) *TranscriptFetcher {
	return &TranscriptFetcher{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// FetchTranscripts returns the normalized transcripts of a video keyed by
// language. Errors are logged and result in an empty or partial set.
func (tf *TranscriptFetcher) FetchTranscripts(ctx context.Context, id model.YoutubeVideoID) model.TranscriptSet {
	transcripts := model.TranscriptSet{}
	if id == "" {
		return transcripts
	}

	tracks, err := tf.ListTracks(ctx, id)
	if err != nil {
		tf.logger.Error("failed to list transcripts", slog.String("video", string(id)), slog.String("error", err.Error()))
		return transcripts
	}

	kinds := map[string]string{}
	for _, track := range tracks {
		if kind, ok := kinds[track.LanguageCode]; ok && (kind != kindAutomatic || track.Kind == kindAutomatic) {
			continue
		}
		text, err := tf.FetchTrack(ctx, track)
		if err != nil {
			tf.logger.Error("failed to fetch transcript", slog.String("video", string(id)), slog.String("language", track.LanguageCode), slog.String("error", err.Error()))
			continue
		}
		if text == "" {
			continue
		}
		transcripts[track.LanguageCode] = text
		kinds[track.LanguageCode] = track.Kind
	}
	tf.logger.Info("fetched transcripts", slog.String("video", string(id)), slog.Int("count", len(transcripts)))

	return transcripts
}

// ListTracks returns the caption tracks that can be downloaded without a
// browser session.
func (tf *TranscriptFetcher) ListTracks(ctx context.Context, id model.YoutubeVideoID) ([]CaptionTrack, error) {
	body, err := json.Marshal(playerRequest{
		VideoID: string(id),
		Context: playerContext{
			Client: playerClient{
				ClientName:        "ANDROID",
				ClientVersion:     androidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tf.baseURL+"/youtubei/v1/player?prettyPrint=false", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", androidUA)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", androidVersion)

	resp, err := tf.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscriptUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: player status %d", ErrTranscriptUnavailable, resp.StatusCode)
	}

	var pr playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("%w: decode player: %v", ErrTranscriptUnavailable, err)
	}
	if pr.Captions == nil {
		if pr.PlayabilityStatus != nil && pr.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("%w: %s", ErrTranscriptUnavailable, pr.PlayabilityStatus.Reason)
		}
		return nil, fmt.Errorf("%w: no captions", ErrTranscriptUnavailable)
	}

	var tracks []CaptionTrack
	for _, t := range pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks {
		if t.BaseURL == "" || t.LanguageCode == "" || needsPoToken(t.BaseURL) {
			continue
		}
		tracks = append(tracks, t)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no usable caption tracks", ErrTranscriptUnavailable)
	}

	return tracks, nil
}

// FetchTrack downloads a caption track as WebVTT and returns the normalized
// text, one cue per line.
func (tf *TranscriptFetcher) FetchTrack(ctx context.Context, track CaptionTrack) (string, error) {
	sep := "?"
	if strings.Contains(track.BaseURL, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.BaseURL+sep+"fmt=vtt", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", androidUA)

	resp, err := tf.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("caption status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCaptionBytes))
	if err != nil {
		return "", err
	}
	subs, err := astisub.ReadFromWebVTT(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse vtt: %w", err)
	}

	return Normalize(FormatSubtitles(subs)), nil
}

// needsPoToken reports whether a caption url can only be fetched by a browser.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// FormatSubtitles writes the text of every cue on its own line.
func FormatSubtitles(subs *astisub.Subtitles) string {
	lines := make([]string, 0, len(subs.Items))
	for _, item := range subs.Items {
		var parts []string
		for _, line := range item.Lines {
			for _, li := range line.Items {
				if t := strings.TrimSpace(li.Text); t != "" {
					parts = append(parts, t)
				}
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, " "))
		}
	}

	return strings.Join(lines, "\n")
}

var (
	timecodeRe = regexp.MustCompile(`\[\d+:\d+:\d+\]`)
	markupRe   = regexp.MustCompile(`</?[\w.:][^<>\n]*>`)
	spacesRe   = regexp.MustCompile(`[ \t]+`)
)

// Normalize removes [H:MM:SS] timecodes and markup tags and drops the lines
// that end up empty.
func Normalize(text string) string {
	text = timecodeRe.ReplaceAllString(text, "")
	text = markupRe.ReplaceAllString(text, "")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(spacesRe.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}
