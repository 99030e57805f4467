package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/exp/slog"
)

func Index(w http.ResponseWriter) {
	Message(w, http.StatusOK, "vidqa index")
}

func Message(w http.ResponseWriter, status int, message string, details ...any) {
	w.WriteHeader(status)
	response := struct {
		Message string `json:"message"`
		Details []any  `json:"details,omitempty"`
	}{
		Message: message,
		Details: details,
	}
	body, marshalErr := json.Marshal(response)
	if marshalErr != nil {
		fmt.Fprintf(w, `{"message": %q, "details":%q}`, message, marshalErr.Error())
		return
	}
	w.Write(body)
}

func Error(w http.ResponseWriter, status int, message string, err error, details ...any) {
	w.WriteHeader(status)
	response := struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Details []any  `json:"details,omitempty"`
	}{
		Message: message,
		Error:   err.Error(),
		Details: details,
	}
	body, marshalErr := json.Marshal(response)
	if marshalErr != nil {
		fmt.Fprintf(w, `{"message": %q, "error": %q, "details":%q}`, message, err.Error(), marshalErr.Error())
		return
	}
	w.Write(body)
}

func JSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		returnErr(logger, w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}
	w.WriteHeader(status)
	w.Write(body)
}

func returnErr(logger *slog.Logger, w http.ResponseWriter, status int, message string, err error, details ...any) {
	logger.Error(message, slog.String("err", err.Error()), slog.String("details", fmt.Sprintf("%+v", details)))
	Error(w, status, message, err, details...)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
