package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"newsexecutor/src/model"
)

func clock() func() time.Time {
	at := time.Date(2025, 3, 7, 13, 30, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func fp(v float64) *float64 { return &v }
func ip(v int64) *int64     { return &v }

func TestCommands_IdempotentRedelivery(t *testing.T) {
	c := NewCommands(clock())

	msg, _ := c.NextPending("mt5-1")
	require.Equal(t, model.StateNoop, msg.State)

	cmd := c.Enqueue("mt5-1", model.StateOpenBuy, model.CommandPayload{Instrument: "EURUSD", Volume: 0.1})
	require.Equal(t, model.CommandStatusQueued, cmd.Status)
	require.NotEmpty(t, cmd.ID)

	for i := 0; i < 3; i++ {
		msg, sent := c.NextPending("mt5-1")
		require.Equal(t, cmd.ID, msg.CommandID)
		require.Equal(t, model.StateOpenBuy, msg.State)
		require.Equal(t, model.CommandStatusSent, sent.Status)
	}

	acked, err := c.Ack("mt5-1", cmd.ID, model.CommandResult{Success: true, Ticket: ip(42)})
	require.NoError(t, err)
	require.Equal(t, model.CommandStatusAck, acked.Status)
	require.Equal(t, int64(42), *acked.Result.Ticket)

	msg, _ = c.NextPending("mt5-1")
	require.Equal(t, model.StateNoop, msg.State)

	_, err = c.Ack("mt5-1", cmd.ID, model.CommandResult{Success: true})
	require.ErrorIs(t, err, ErrAlreadyAcknowledged)
	require.Equal(t, "already_acknowledged", Kind(err))

	require.Len(t, c.List("mt5-1"), 1, "acknowledged commands are retained")
}

func TestCommands_OrderAndClients(t *testing.T) {
	c := NewCommands(clock())
	first := c.Enqueue("a", model.StateClose, model.CommandPayload{Instrument: "USDJPY", Ticket: ip(7), Side: model.DirectionSell, Volume: 0.2})
	second := c.Enqueue("a", model.StateOpenBuy, model.CommandPayload{Instrument: "USDJPY"})
	c.Enqueue("b", model.StateOpenSell, model.CommandPayload{Instrument: "GBPUSD"})

	msg, _ := c.NextPending("a")
	require.Equal(t, first.ID, msg.CommandID)
	require.Equal(t, int64(7), *msg.Ticket)
	require.Equal(t, model.DirectionSell, msg.Side)
	require.Equal(t, 2, c.Pending("a"))

	_, err := c.Ack("b", first.ID, model.CommandResult{Success: true})
	require.ErrorIs(t, err, ErrCommandNotFound, "other client cannot acknowledge")

	_, err = c.Ack("", first.ID, model.CommandResult{Success: true})
	require.NoError(t, err)

	msg, _ = c.NextPending("a")
	require.Equal(t, second.ID, msg.CommandID)

	_, err = c.Ack("a", "missing", model.CommandResult{})
	require.ErrorIs(t, err, ErrCommandNotFound)
	require.Equal(t, "command_not_found", Kind(err))
}

func TestShape(t *testing.T) {
	abs := Shape(&model.Command{ID: "1", State: model.StateOpenSell, Payload: model.CommandPayload{
		Instrument: "EURUSD", Volume: 0.3, StopLoss: fp(1.1), TakeProfit: fp(1.0),
	}})
	require.Equal(t, 1.1, *abs.StopLoss)
	require.Nil(t, abs.SLPips)
	require.Nil(t, abs.Ticket)

	pips := Shape(&model.Command{ID: "2", State: model.StateOpenBuy, Payload: model.CommandPayload{
		Instrument: "EURUSD", StopLoss: fp(20), TakeProfit: fp(40), PipDistance: true,
	}})
	require.Nil(t, pips.StopLoss)
	require.Equal(t, 20.0, *pips.SLPips)
	require.Equal(t, 40.0, *pips.TPPips)
}

func TestTrades_Lifecycle(t *testing.T) {
	tr := NewTrades(clock())

	a := tr.Create(model.Trade{NID: 3, Instrument: "EURUSD", TriggerCurrency: "EUR"})
	b := tr.Create(model.Trade{NID: 3, Instrument: "EURJPY", TriggerCurrency: "EUR"})
	c := tr.Create(model.Trade{NID: 4, Instrument: "USDJPY", TriggerCurrency: "USD"})
	require.Equal(t, "TID_3_1", a.TID)
	require.Equal(t, "TID_3_2", b.TID)
	require.Equal(t, "TID_4_1", c.TID)
	require.Equal(t, model.TradeStatusQueued, a.Status)
	d := tr.Create(model.Trade{NID: 3, Instrument: "GBPUSD"})
	require.Equal(t, "TID_3_3", d.TID, "sequence continues per NID")

	tr.Link(a.TID, "cmd-a")
	got, ok := tr.Execute("cmd-a", ip(1001))
	require.True(t, ok)
	require.Equal(t, model.TradeStatusExecuted, got.Status)
	require.Equal(t, int64(1001), *got.Ticket)

	_, ok = tr.Execute("cmd-a", ip(2002))
	require.False(t, ok, "execution happens once")
	got, _ = tr.ByTicket(1001)
	require.Equal(t, a.TID, got.TID)
	_, ok = tr.ByTicket(2002)
	require.False(t, ok)

	require.Len(t, tr.Live("EUR"), 2)

	got, err := tr.Finish(a.TID, model.TradeStatusTP)
	require.NoError(t, err)
	require.Equal(t, model.TradeStatusTP, got.Status)

	_, err = tr.Finish(a.TID, model.TradeStatusSL)
	require.ErrorIs(t, err, ErrTradeClosed)
	_, err = tr.Finish("TID_9_9", model.TradeStatusSL)
	require.ErrorIs(t, err, ErrTradeNotFound)
	_, err = tr.Finish(b.TID, model.TradeStatusExecuted)
	require.Error(t, err, "only terminal targets")

	require.True(t, tr.Release(b.TID))
	require.False(t, tr.Release(b.TID))
	require.Empty(t, tr.Live("EUR"))
	require.Len(t, tr.All(), 4)
}

func TestTrades_ReopenAfterFailedClose(t *testing.T) {
	tr := NewTrades(clock())
	a := tr.Create(model.Trade{NID: 1, Instrument: "EURUSD", TriggerCurrency: "USD"})
	tr.Link(a.TID, "cmd-a")
	_, ok := tr.Execute("cmd-a", ip(500))
	require.True(t, ok)

	require.True(t, tr.MarkClosing(a.TID, "cmd-close"))
	require.True(t, tr.Release(a.TID))
	require.Empty(t, tr.Live("USD"))

	require.True(t, tr.Reopen(a.TID), "released exposure is held again")
	require.False(t, tr.Closing(a.TID))
	require.Len(t, tr.Live("USD"), 1)
	require.False(t, tr.Reopen(a.TID), "nothing to re-book twice")
	require.True(t, tr.MarkClosing(a.TID, "cmd-close-2"), "a new close can be issued")

	_, err := tr.Finish(a.TID, model.TradeStatusClosed)
	require.NoError(t, err)
	require.False(t, tr.Reopen(a.TID), "finished trades stay finished")
}

func TestTrades_ActiveByClient(t *testing.T) {
	tr := NewTrades(clock())
	a := tr.Create(model.Trade{NID: 1, ClientID: "mt5-1", Instrument: "EURUSD"})
	b := tr.Create(model.Trade{NID: 1, ClientID: "mt5-1", Instrument: "USDJPY"})
	tr.Create(model.Trade{NID: 1, ClientID: "mt5-2", Instrument: "GBPUSD"})

	require.True(t, tr.Release(a.TID))
	_, err := tr.Finish(b.TID, model.TradeStatusRejected)
	require.NoError(t, err)

	active := tr.Active("mt5-1")
	require.Len(t, active, 1)
	require.Equal(t, a.TID, active[0].TID, "released but unfinished trades are active")
	require.Len(t, tr.Active("mt5-2"), 1)
	require.Empty(t, tr.Active("mt5-3"))
}
