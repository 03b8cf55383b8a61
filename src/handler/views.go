package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"newsexecutor/src/engine"
	"newsexecutor/src/exposure"
	"newsexecutor/src/model"
)

// Views is the read-only state exposed for observability.
type Views interface {
	Snapshot(clientID string) (model.Snapshot, bool)
	Commands(clientID string) []model.Command
	Events() []model.NewsEvent
	Trades() []model.Trade
	Exposure() exposure.View
	Status() engine.Status
}

func HealthcheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			writeJSON(w, http.StatusInternalServerError, Result{Error: "internal"})
		}
	}
}

// PositionsHandler returns the last snapshot a client reported.
func PositionsHandler(v Views) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := v.Snapshot(chi.URLParam(r, "clientID"))
		if !ok {
			writeJSON(w, http.StatusNotFound, Result{Error: "client_not_found"})
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func ClientCommandsHandler(v Views) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, v.Commands(chi.URLParam(r, "clientID")))
	}
}

func EventsHandler(v Views) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, v.Events())
	}
}

func TradesHandler(v Views) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, v.Trades())
	}
}

func ExposureHandler(v Views) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, v.Exposure())
	}
}

func StatusHandler(v Views) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, v.Status())
	}
}
