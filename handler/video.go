package handler

import (
	"errors"
	"fmt"
	"net/http"

	"ewintr.nl/vidqa/model"
	"golang.org/x/exp/slog"
)

type VideoAPI struct {
	pipeline Pipeline
	logger   *slog.Logger
}

func NewVideoAPI(pipeline Pipeline, logger *slog.Logger) *VideoAPI {
	return &VideoAPI{
		pipeline: pipeline,
		logger:   logger,
	}
}

func (v *VideoAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	subPath, _ := ShiftPath(r.URL.Path)

	switch {
	case r.Method == http.MethodPost && subPath == "":
		v.Load(w, r)
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s with subpath %q was not registered in the video api", r.Method, subPath))
	}
}

type videoResponse struct {
	VideoID     string            `json:"video_id"`
	Title       string            `json:"title"`
	Thumbnail   string            `json:"thumbnail"`
	Languages   []string          `json:"languages"`
	Transcripts map[string]string `json:"transcripts"`
}

func newVideoResponse(view model.VideoView) videoResponse {
	transcripts := map[string]string{}
	for lang, text := range view.Transcripts {
		transcripts[lang] = text
	}
	return videoResponse{
		VideoID:     string(view.ID),
		Title:       view.Title,
		Thumbnail:   view.Thumbnail,
		Languages:   view.Transcripts.Languages(),
		Transcripts: transcripts,
	}
}

func (v *VideoAPI) Load(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		returnErr(v.logger, w, http.StatusBadRequest, "could not read request", err)
		return
	}
	if req.URL == "" {
		returnErr(v.logger, w, http.StatusBadRequest, "could not read request", errors.New("url is required"))
		return
	}

	JSON(w, v.logger, http.StatusOK, newVideoResponse(v.pipeline.Load(r.Context(), req.URL)))
}
