package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"newsexecutor/src/queue"
)

// Result is the body of every acknowledgement style response.
type Result struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

const errInvalidPayload = "invalid_payload"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), Result{OK: false, Error: queue.Kind(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, queue.ErrCommandNotFound), errors.Is(err, queue.ErrTradeNotFound):
		return http.StatusNotFound
	case errors.Is(err, queue.ErrAlreadyAcknowledged), errors.Is(err, queue.ErrTradeClosed):
		return http.StatusConflict
	case errors.Is(err, queue.ErrInvalidOutcome), errors.Is(err, queue.ErrNoTicket):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(v)
}
