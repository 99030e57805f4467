package fetcher

import (
	"context"
	"fmt"

	"ewintr.nl/vidqa/model"
	"golang.org/x/exp/slog"
	"google.golang.org/api/youtube/v3"
)

// Youtube looks up titles with the YouTube Data API.
type Youtube struct {
	Client *youtube.Service
	logger *slog.Logger
}

func NewYoutube(client *youtube.Service, logger *slog.Logger) *Youtube {
	return &Youtube{
		Client: client,
		logger: logger,
	}
}

func (y *Youtube) FetchTitle(ctx context.Context, id model.YoutubeVideoID) string {
	if id == "" {
		return model.UnknownTitle
	}
	title, err := y.fetchTitle(ctx, id)
	if err != nil {
		y.logger.Error("failed to fetch video metadata", slog.String("video", string(id)), slog.String("error", err.Error()))
		return model.UnknownTitle
	}

	return title
}

func (y *Youtube) fetchTitle(ctx context.Context, id model.YoutubeVideoID) (string, error) {
	response, err := y.Client.Videos.
		List([]string{"snippet"}).
		Id(string(id)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}

	for _, item := range response.Items {
		if item.Snippet == nil || item.Snippet.Title == "" {
			continue
		}
		return item.Snippet.Title, nil
	}

	return "", fmt.Errorf("%w: video %s not listed", ErrMetadataUnavailable, id)
}
