package handler

import (
	"context"
	"net/http"
	"strings"

	logger "github.com/sirupsen/logrus"

	"newsexecutor/src/model"
)

// Venue is the polling protocol served to execution terminals.
type Venue interface {
	Poll(ctx context.Context, snap model.Snapshot) model.Message
	Next(ctx context.Context, clientID string) model.Message
	Ack(ctx context.Context, clientID, cmdID string, result model.CommandResult) error
	ReportOutcome(ctx context.Context, ticket int64, outcome model.Outcome) error
}

// AckPayload is the body of POST /commands/ack.
type AckPayload struct {
	ClientID  string `json:"client_id"`
	CommandID string `json:"command_id"`
	Success   bool   `json:"success"`
	Details   struct {
		Ticket *int64   `json:"ticket"`
		Price  *float64 `json:"price"`
		Error  string   `json:"error"`
	} `json:"details"`
}

// OutcomePayload is the body of POST /trades/outcome.
type OutcomePayload struct {
	Ticket  int64  `json:"ticket"`
	Outcome string `json:"outcome"`
}

// HeartbeatHandler applies a venue snapshot, runs one decision pass and
// answers with the next command for that client.
func HeartbeatHandler(v Venue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var snap model.Snapshot
		if err := decode(r, &snap); err != nil || snap.ClientID == "" {
			logger.WithError(err).Warn("invalid heartbeat payload")
			writeJSON(w, http.StatusBadRequest, Result{Error: errInvalidPayload})
			return
		}
		writeJSON(w, http.StatusOK, v.Poll(r.Context(), snap))
	}
}

// NextCommandHandler returns the next command without running a pass.
func NextCommandHandler(v Venue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := r.URL.Query().Get("client_id")
		if clientID == "" {
			writeJSON(w, http.StatusBadRequest, Result{Error: errInvalidPayload})
			return
		}
		writeJSON(w, http.StatusOK, v.Next(r.Context(), clientID))
	}
}

func AckHandler(v Venue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p AckPayload
		if err := decode(r, &p); err != nil || p.CommandID == "" {
			logger.WithError(err).Warn("invalid ack payload")
			writeJSON(w, http.StatusBadRequest, Result{Error: errInvalidPayload})
			return
		}
		result := model.CommandResult{
			Success: p.Success,
			Ticket:  p.Details.Ticket,
			Price:   p.Details.Price,
			Error:   p.Details.Error,
		}
		if err := v.Ack(r.Context(), p.ClientID, p.CommandID, result); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Result{OK: true})
	}
}

func OutcomeHandler(v Venue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p OutcomePayload
		if err := decode(r, &p); err != nil || p.Ticket == 0 {
			logger.WithError(err).Warn("invalid outcome payload")
			writeJSON(w, http.StatusBadRequest, Result{Error: errInvalidPayload})
			return
		}
		outcome := model.Outcome(strings.ToUpper(strings.TrimSpace(p.Outcome)))
		if err := v.ReportOutcome(r.Context(), p.Ticket, outcome); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Result{OK: true})
	}
}
