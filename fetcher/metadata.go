package fetcher

import (
	"context"
	"errors"

	"ewintr.nl/vidqa/model"
	"golang.org/x/exp/slog"
)

var ErrMetadataUnavailable = errors.New("metadata unavailable")

// TitleFetcher returns the title of a video, or model.UnknownTitle when it
// cannot be determined. It never fails.
type TitleFetcher interface {
	FetchTitle(ctx context.Context, id model.YoutubeVideoID) string
}

// TitleChain asks each fetcher in turn and returns the first known title.
type TitleChain struct {
	fetchers []TitleFetcher
	logger   *slog.Logger
}

func NewTitleChain(logger *slog.Logger, fetchers ...TitleFetcher) *TitleChain {
	return &TitleChain{
		fetchers: fetchers,
		logger:   logger,
	}
}

func (tc *TitleChain) FetchTitle(ctx context.Context, id model.YoutubeVideoID) string {
	if id == "" {
		return model.UnknownTitle
	}
	for _, f := range tc.fetchers {
		if title := f.FetchTitle(ctx, id); title != model.UnknownTitle {
			return title
		}
	}
	tc.logger.Info("no title found", slog.String("video", string(id)))

	return model.UnknownTitle
}
