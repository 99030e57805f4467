package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ewintr.nl/vidqa/model"
	"golang.org/x/exp/slog"
	"golang.org/x/net/html"
)

const (
	DefaultBaseURL = "https://www.youtube.com"
	maxPageBytes   = 6 * 1024 * 1024
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// WatchPage reads the title from the canonical watch page of a video.
type WatchPage struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

func NewWatchPage(client *http.Client, baseURL string, logger *slog.Logger) *WatchPage {
	return &WatchPage{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

func (wp *WatchPage) FetchTitle(ctx context.Context, id model.YoutubeVideoID) string {
	if id == "" {
		return model.UnknownTitle
	}
	title, err := wp.fetchTitle(ctx, id)
	if err != nil {
		wp.logger.Error("failed to fetch video title", slog.String("video", string(id)), slog.String("error", err.Error()))
		return model.UnknownTitle
	}

	return title
}

func (wp *WatchPage) fetchTitle(ctx context.Context, id model.YoutubeVideoID) (string, error) {
	u := fmt.Sprintf("%s/watch?v=%s", wp.baseURL, url.QueryEscape(string(id)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := wp.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrMetadataUnavailable, resp.StatusCode)
	}

	title, ok := PageTitle(io.LimitReader(resp.Body, maxPageBytes))
	if !ok {
		return "", fmt.Errorf("%w: no title element", ErrMetadataUnavailable)
	}

	return title, nil
}

// PageTitle returns the text of the first title element in the document, with
// the " - YouTube" suffix removed.
func PageTitle(r io.Reader) (string, bool) {
	z := html.NewTokenizer(r)
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken:
			name, _ := z.TagName()
			inTitle = string(name) == "title"
		case html.EndTagToken:
			if inTitle {
				return "", false
			}
		case html.TextToken:
			if !inTitle {
				continue
			}
			title := strings.TrimSpace(trimSiteSuffix(string(z.Text())))
			if title == "" {
				return "", false
			}
			return title, true
		}
	}
}

// trimSiteSuffix removes the trailing "- YouTube" when it is a separate word,
// including a title that is nothing but the suffix.
func trimSiteSuffix(title string) string {
	title = strings.TrimSpace(title)
	if title == "- YouTube" {
		return ""
	}
	return strings.TrimSuffix(title, " - YouTube")
}
