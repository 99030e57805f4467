package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"ewintr.nl/vidqa/model"
	"ewintr.nl/vidqa/process"
	"ewintr.nl/vidqa/storage"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

type AskAPI struct {
	pipeline     Pipeline
	exchangeRepo storage.ExchangeRepository
	logger       *slog.Logger
}

func NewAskAPI(pipeline Pipeline, exchangeRepo storage.ExchangeRepository, logger *slog.Logger) *AskAPI {
	return &AskAPI{
		pipeline:     pipeline,
		exchangeRepo: exchangeRepo,
		logger:       logger,
	}
}

func (a *AskAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	subPath, _ := ShiftPath(r.URL.Path)

	switch {
	case r.Method == http.MethodPost && subPath == "":
		a.Ask(w, r)
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s with subpath %q was not registered in the ask api", r.Method, subPath))
	}
}

type askRequest struct {
	URL       string `json:"url"`
	Question  string `json:"question"`
	Language  string `json:"language"`
	SessionID string `json:"session_id"`
}

type askResponse struct {
	SessionID string          `json:"session_id"`
	VideoID   string          `json:"video_id"`
	Title     string          `json:"title"`
	Thumbnail string          `json:"thumbnail"`
	Language  string          `json:"language,omitempty"`
	Answer    string          `json:"answer"`
	Notice    string          `json:"notice,omitempty"`
	States    []process.State `json:"states"`
}

func (a *AskAPI) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeBody(w, r, &req); err != nil {
		returnErr(a.logger, w, http.StatusBadRequest, "could not read request", err)
		return
	}
	if req.URL == "" {
		returnErr(a.logger, w, http.StatusBadRequest, "could not read request", errors.New("url is required"))
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	res := a.pipeline.Ask(r.Context(), req.URL, req.Question, req.Language)

	if err := a.exchangeRepo.Append(req.SessionID, model.Exchange{
		ID:       uuid.New(),
		VideoID:  res.View.ID,
		Title:    res.View.Title,
		Question: req.Question,
		Answer:   res.Answer.Sanitized,
		AskedAt:  time.Now(),
	}); err != nil {
		a.logger.Error("failed to store exchange", slog.String("session", req.SessionID), slog.String("error", err.Error()))
	}

	JSON(w, a.logger, http.StatusOK, askResponse{
		SessionID: req.SessionID,
		VideoID:   string(res.View.ID),
		Title:     res.View.Title,
		Thumbnail: res.View.Thumbnail,
		Language:  res.Language,
		Answer:    res.Answer.Sanitized,
		Notice:    res.Notice,
		States:    res.States,
	})
}
