package handler

import (
	"fmt"
	"net/http"
	"time"

	"ewintr.nl/vidqa/storage"
	"golang.org/x/exp/slog"
)

type SessionAPI struct {
	exchangeRepo storage.ExchangeRepository
	logger       *slog.Logger
}

func NewSessionAPI(exchangeRepo storage.ExchangeRepository, logger *slog.Logger) *SessionAPI {
	return &SessionAPI{
		exchangeRepo: exchangeRepo,
		logger:       logger,
	}
}

func (s *SessionAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID, tail := ShiftPath(r.URL.Path)

	switch {
	case r.Method == http.MethodGet && sessionID != "" && tail == "/":
		s.History(w, r, sessionID)
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s with subpath %q was not registered in the session api", r.Method, sessionID))
	}
}

func (s *SessionAPI) History(w http.ResponseWriter, _ *http.Request, sessionID string) {
	history, err := s.exchangeRepo.History(sessionID)
	if err != nil {
		returnErr(s.logger, w, http.StatusInternalServerError, "could not list exchanges", err)
		return
	}

	type respExchange struct {
		ID       string    `json:"id"`
		VideoID  string    `json:"video_id"`
		Title    string    `json:"title"`
		Question string    `json:"question"`
		Answer   string    `json:"answer"`
		AskedAt  time.Time `json:"asked_at"`
	}
	resp := []respExchange{}
	for _, e := range history {
		resp = append(resp, respExchange{
			ID:       e.ID.String(),
			VideoID:  string(e.VideoID),
			Title:    e.Title,
			Question: e.Question,
			Answer:   e.Answer,
			AskedAt:  e.AskedAt,
		})
	}

	JSON(w, s.logger, http.StatusOK, resp)
}
