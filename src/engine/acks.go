package engine

import (
	"context"
	"fmt"

	"newsexecutor/src/exposure"
	"newsexecutor/src/model"
	"newsexecutor/src/queue"
	"newsexecutor/src/strategy"
)

// Ack records the venue outcome for a command. A successful open advances its
// queued trade to executed with the broker ticket and a successful close
// finishes the trade. A failed open rejects the trade and returns its
// exposure. A failed close keeps the position open.
func (e *Engine) Ack(ctx context.Context, clientID, cmdID string, result model.CommandResult) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	log := e.logger.WithFields(map[string]interface{}{
		"client_id":  clientID,
		"command_id": cmdID,
		"success":    result.Success,
	})
	cmd, err := e.commands.Ack(clientID, cmdID, result)
	if err != nil {
		log.WithError(err).Warn("Acknowledgement rejected")
		return err
	}
	e.mirror.SaveCommand(ctx, cmd)

	switch cmd.State {
	case model.StateOpenBuy, model.StateOpenSell:
		e.ackOpen(ctx, cmd, result)
	case model.StateClose:
		e.ackClose(ctx, cmd, result)
	}
	log.Info("Command acknowledged")
	return nil
}

func (e *Engine) ackOpen(ctx context.Context, cmd model.Command, result model.CommandResult) {
	if result.Success {
		if tr, ok := e.trades.Execute(cmd.ID, result.Ticket); ok {
			e.mirror.SaveTrade(ctx, tr)
		}
		return
	}
	tr, ok := e.trades.ByCommand(cmd.ID)
	if !ok {
		return
	}
	tr, err := e.trades.Finish(tr.TID, model.TradeStatusRejected)
	if err != nil {
		return
	}
	e.release(tr)
	e.untrack(tr)
	e.mirror.SaveTrade(ctx, tr)
	e.logger.WithFields(map[string]interface{}{
		"tid":   tr.TID,
		"error": result.Error,
	}).Warn("Open rejected by venue")
}

func (e *Engine) ackClose(ctx context.Context, cmd model.Command, result model.CommandResult) {
	if cmd.Payload.TID == "" {
		return
	}
	tr, ok := e.trades.Get(cmd.Payload.TID)
	if !ok {
		return
	}
	if !result.Success {
		e.closeFailed(tr, result)
		return
	}
	if !tr.Status.Terminal() {
		if done, err := e.trades.Finish(tr.TID, model.TradeStatusClosed); err == nil {
			tr = done
			e.mirror.SaveTrade(ctx, tr)
		}
	}
	e.release(tr)
}

// closeFailed keeps a position the venue could not close. Exposure returned
// ahead of the close is booked again and the trade can be closed later.
func (e *Engine) closeFailed(tr model.Trade, result model.CommandResult) {
	if tr.Status.Terminal() {
		return
	}
	if e.trades.Reopen(tr.TID) {
		e.ledger.Record(tr.Instrument, exposure.Add)
	}
	if e.policy.Preset().Kind == strategy.RollingReversal {
		if _, tracked := e.policy.Rolling[tr.TriggerCurrency]; !tracked {
			e.policy.TrackRolling(tr.TriggerCurrency, strategy.Position{
				Instrument: tr.Instrument,
				Direction:  tr.Direction,
				Bias:       currencyBias(tr.Instrument, tr.TriggerCurrency, tr.Direction),
				TID:        tr.TID,
			})
		}
	}
	e.logger.WithFields(map[string]interface{}{
		"tid":   tr.TID,
		"error": result.Error,
	}).Warn("Close rejected by venue, position kept")
}

// ReportOutcome records a TP or SL closure reported by broker ticket.
func (e *Engine) ReportOutcome(ctx context.Context, ticket int64, outcome model.Outcome) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	log := e.logger.WithFields(map[string]interface{}{
		"ticket":  ticket,
		"outcome": outcome,
	})
	var status model.TradeStatus
	switch outcome {
	case model.OutcomeTP:
		status = model.TradeStatusTP
	case model.OutcomeSL:
		status = model.TradeStatusSL
	default:
		err := fmt.Errorf("outcome %q: %w", outcome, queue.ErrInvalidOutcome)
		log.WithError(err).Warn("Outcome rejected")
		return err
	}

	tr, ok := e.trades.ByTicket(ticket)
	if !ok {
		err := fmt.Errorf("ticket %d: %w", ticket, queue.ErrTradeNotFound)
		log.WithError(err).Warn("Outcome rejected")
		return err
	}
	tr, err := e.trades.Finish(tr.TID, status)
	if err != nil {
		log.WithError(err).Warn("Outcome rejected")
		return err
	}
	if ev, ok := e.events.ByNID(tr.NID); ok {
		if status == model.TradeStatusTP {
			ev.TPHits++
		} else {
			ev.SLHits++
		}
		e.mirror.SaveEvent(ctx, *ev)
	}
	e.release(tr)
	e.untrack(tr)
	e.mirror.SaveTrade(ctx, tr)
	log.WithField("tid", tr.TID).Info("Outcome recorded")
	return nil
}

// reconcile closes the client's ticketed trades that the venue no longer
// reports open. Snapshots without an open list are not authoritative and are
// skipped. Sentiment accumulators left with no live trade are zeroed.
func (e *Engine) reconcile(ctx context.Context, snap model.Snapshot) {
	if snap.Open == nil {
		return
	}
	open := make(map[int64]bool, len(snap.Open))
	for _, p := range snap.Open {
		open[p.Ticket] = true
	}

	touched := map[string]bool{}
	for _, tr := range e.trades.Active(snap.ClientID) {
		if tr.Ticket == nil || open[*tr.Ticket] {
			continue
		}
		done, err := e.trades.Finish(tr.TID, model.TradeStatusClosed)
		if err != nil {
			continue
		}
		e.release(done)
		e.untrack(done)
		e.mirror.SaveTrade(ctx, done)
		touched[done.TriggerCurrency] = true
		e.logger.WithFields(map[string]interface{}{
			"client_id": snap.ClientID,
			"tid":       done.TID,
			"ticket":    *done.Ticket,
		}).Info("Position no longer open on venue, trade closed")
	}

	for cur := range touched {
		s, ok := e.policy.Sentiment[cur]
		if ok && !s.Waiting() && len(e.trades.Live(cur)) == 0 {
			s.Opened = 0
		}
	}
}

// untrack drops the rolling tracker entry pointing at a finished trade.
func (e *Engine) untrack(tr model.Trade) {
	if pos, ok := e.policy.Rolling[tr.TriggerCurrency]; ok && pos.TID == tr.TID {
		e.policy.Untrack(tr.TriggerCurrency)
	}
}
