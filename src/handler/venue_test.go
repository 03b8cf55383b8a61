package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsexecutor/src/model"
	"newsexecutor/src/queue"
)

type mockVenue struct {
	msg        model.Message
	err        error
	snapshot   model.Snapshot
	clientID   string
	cmdID      string
	result     model.CommandResult
	ticket     int64
	outcome    model.Outcome
	calledPoll int
}

func (m *mockVenue) Poll(_ context.Context, snap model.Snapshot) model.Message {
	m.calledPoll++
	m.snapshot = snap
	return m.msg
}

func (m *mockVenue) Next(_ context.Context, clientID string) model.Message {
	m.clientID = clientID
	return m.msg
}

func (m *mockVenue) Ack(_ context.Context, clientID, cmdID string, result model.CommandResult) error {
	m.clientID, m.cmdID, m.result = clientID, cmdID, result
	return m.err
}

func (m *mockVenue) ReportOutcome(_ context.Context, ticket int64, outcome model.Outcome) error {
	m.ticket, m.outcome = ticket, outcome
	return m.err
}

func decodeResult(t *testing.T, rr *httptest.ResponseRecorder) Result {
	t.Helper()
	var res Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	return res
}

func TestHeartbeatHandler(t *testing.T) {
	sl := 20.0
	venue := &mockVenue{msg: model.Message{State: model.StateOpenBuy, CommandID: "c1", Instrument: "USDJPY", Volume: 0.1, SLPips: &sl}}
	h := HeartbeatHandler(venue)

	body := `{"client_id":"mt5-1","mode":"hedge","strategy":"S2","open_symbols":["EURUSD"],"balance":10000,"equity":10250}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/heartbeat", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, venue.calledPoll)
	assert.Equal(t, "S2", venue.snapshot.Strategy)
	assert.True(t, venue.snapshot.HasAccount())

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &msg))
	assert.Equal(t, float64(1), msg["state"])
	assert.Equal(t, "USDJPY", msg["instrument"])
	assert.Equal(t, float64(20), msg["sl_pips"])
	assert.NotContains(t, msg, "sl")
}

func TestHeartbeatHandler_InvalidPayload(t *testing.T) {
	venue := &mockVenue{}
	for _, body := range []string{`{`, `{"mode":"hedge"}`} {
		rr := httptest.NewRecorder()
		HeartbeatHandler(venue).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/heartbeat", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, errInvalidPayload, decodeResult(t, rr).Error)
	}
	assert.Zero(t, venue.calledPoll)
}

func TestNextCommandHandler(t *testing.T) {
	venue := &mockVenue{msg: model.Message{State: model.StateNoop}}

	rr := httptest.NewRecorder()
	NextCommandHandler(venue).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/commands/next?client_id=mt5-1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "mt5-1", venue.clientID)
	assert.JSONEq(t, `{"state":0}`, rr.Body.String())

	rr = httptest.NewRecorder()
	NextCommandHandler(venue).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/commands/next", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAckHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{name: "ok", status: http.StatusOK},
		{name: "unknown command", err: fmt.Errorf("ack x: %w", queue.ErrCommandNotFound), status: http.StatusNotFound, kind: "command_not_found"},
		{name: "second ack", err: queue.ErrAlreadyAcknowledged, status: http.StatusConflict, kind: "already_acknowledged"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			venue := &mockVenue{err: tt.err}
			body := `{"client_id":"mt5-1","command_id":"c1","success":true,"details":{"ticket":5001,"price":1.0845}}`
			rr := httptest.NewRecorder()
			AckHandler(venue).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/commands/ack", strings.NewReader(body)))

			require.Equal(t, tt.status, rr.Code)
			res := decodeResult(t, rr)
			assert.Equal(t, tt.err == nil, res.OK)
			assert.Equal(t, tt.kind, res.Error)
			assert.Equal(t, "c1", venue.cmdID)
			assert.Equal(t, int64(5001), *venue.result.Ticket)
			assert.Equal(t, 1.0845, *venue.result.Price)
		})
	}
}

func TestOutcomeHandler(t *testing.T) {
	venue := &mockVenue{}
	rr := httptest.NewRecorder()
	OutcomeHandler(venue).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/trades/outcome", strings.NewReader(`{"ticket":5001,"outcome":"tp"}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decodeResult(t, rr).OK)
	assert.Equal(t, int64(5001), venue.ticket)
	assert.Equal(t, model.OutcomeTP, venue.outcome)

	venue.err = queue.ErrTradeNotFound
	rr = httptest.NewRecorder()
	OutcomeHandler(venue).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/trades/outcome", strings.NewReader(`{"ticket":7,"outcome":"SL"}`)))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "trade_not_found", decodeResult(t, rr).Error)

	rr = httptest.NewRecorder()
	OutcomeHandler(venue).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/trades/outcome", strings.NewReader(`{"outcome":"SL"}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(queue.ErrInvalidOutcome))
	assert.Equal(t, http.StatusConflict, statusFor(fmt.Errorf("finish: %w", queue.ErrTradeClosed)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
	assert.Equal(t, "internal", queue.Kind(assert.AnError))
}
