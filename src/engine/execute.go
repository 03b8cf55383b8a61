package engine

import (
	"context"
	"fmt"

	"newsexecutor/src/catalog"
	"newsexecutor/src/exposure"
	"newsexecutor/src/model"
	"newsexecutor/src/queue"
	"newsexecutor/src/strategy"
)

// Execute opens positions for the pending verdicts of enabled instruments and
// returns how many were opened. Every pending verdict is cleared afterwards,
// whether it was filled or not.
func (e *Engine) Execute(ctx context.Context, clientID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.execute(ctx, clientID)
}

func (e *Engine) execute(ctx context.Context, clientID string) int {
	if len(e.affected) == 0 {
		return 0
	}
	preset := e.policy.Preset()
	halted := e.cfg.HaltOnGoal && e.sizer.GoalReached()
	opened := 0
	perNID := map[int64]int{}

	for _, ai := range e.affected {
		if !e.catalog.IsEnabled(ai.Instrument) {
			continue
		}
		log := e.logger.WithFields(map[string]interface{}{
			"client_id":  clientID,
			"instrument": ai.Instrument,
			"direction":  ai.Direction,
			"nid":        ai.NID,
			"strategy":   preset.Kind.String(),
		})
		if !preset.Opens() || halted {
			log.WithField("goal_reached", halted).Info("Not opening, trading halted or observe only")
			continue
		}

		bias := currencyBias(ai.Instrument, ai.TriggerCurrency, ai.Direction)

		if preset.Kind == strategy.RollingReversal {
			pos, action := e.policy.CheckRolling(ai.TriggerCurrency, bias)
			switch action {
			case strategy.RollDrop:
				log.WithField("tid", pos.TID).Info("Same direction already open, not stacking")
				continue
			case strategy.RollReverse:
				if err := e.reverse(ctx, pos); err != nil {
					log.WithError(err).WithField("tid", pos.TID).Warn("Cannot reverse position")
					continue
				}
				e.policy.Untrack(ai.TriggerCurrency)
			}
		}

		sym, dir := ai.Instrument, ai.Direction
		if !e.ledger.CanOpen(sym) {
			alt, ok := e.alternative(preset, ai)
			if !ok {
				log.Info("Exposure limit reached, no alternative pair")
				continue
			}
			log.WithField("alternative", alt).Info("Exposure limit reached, using alternative pair")
			sym, dir = alt, instrumentDirection(alt, ai.TriggerCurrency, bias, ai.Direction)
		}

		if preset.Kind == strategy.WeeklyLock && e.policy.IsLocked(sym) {
			log.WithField("opened", sym).Info("Instrument already traded this week")
			continue
		}

		tr := e.open(ctx, clientID, ai, sym, dir)
		switch preset.Kind {
		case strategy.RollingReversal:
			e.policy.TrackRolling(ai.TriggerCurrency, strategy.Position{Instrument: sym, Direction: dir, Bias: bias, TID: tr.TID})
		case strategy.WeeklyLock:
			e.policy.Lock(sym)
		case strategy.SentimentScaling:
			e.policy.RecordScaled(ai.TriggerCurrency)
		}
		perNID[ai.NID]++
		opened++
		log.WithFields(map[string]interface{}{
			"tid":    tr.TID,
			"opened": sym,
			"side":   dir,
			"volume": tr.Volume,
		}).Info("Trade queued")
	}

	e.affected = nil
	for nid, n := range perNID {
		if ev, ok := e.events.ByNID(nid); ok {
			ev.PairsExecuted += n
			e.mirror.SaveEvent(ctx, *ev)
		}
	}
	return opened
}

// open records the trade, enqueues its open command and books the exposure.
func (e *Engine) open(ctx context.Context, clientID string, ai model.AffectedInstrument, sym string, dir model.Direction) model.Trade {
	var sl, tp *float64
	if e.cfg.StopLoss > 0 {
		v := e.cfg.StopLoss
		sl = &v
	}
	if e.cfg.TakeProfit > 0 {
		v := e.cfg.TakeProfit
		tp = &v
	}

	tr := e.trades.Create(model.Trade{
		ClientID:        clientID,
		Instrument:      sym,
		Direction:       dir,
		Volume:          e.sizer.Volume(e.cfg.BaseVolume),
		StopLoss:        sl,
		TakeProfit:      tp,
		NID:             ai.NID,
		EventKey:        ai.EventKey,
		TriggerCurrency: ai.TriggerCurrency,
	})
	cmd := e.commands.Enqueue(clientID, model.OpenState(dir), model.CommandPayload{
		Instrument:  sym,
		Volume:      tr.Volume,
		StopLoss:    sl,
		TakeProfit:  tp,
		PipDistance: e.cfg.PipDistance,
		Side:        dir,
		Comment:     tr.TID,
		TID:         tr.TID,
	})
	e.trades.Link(tr.TID, cmd.ID)
	tr.CommandID = cmd.ID
	e.ledger.Record(sym, exposure.Add)

	e.mirror.SaveTrade(ctx, tr)
	e.mirror.SaveCommand(ctx, cmd)
	return tr
}

// alternative searches first-fit for a substitute instrument containing the
// trigger currency whose currencies are all under their caps.
func (e *Engine) alternative(preset strategy.Preset, ai model.AffectedInstrument) (string, bool) {
	if !preset.Fallback || ai.TriggerCurrency == "" {
		return "", false
	}
	candidates := e.catalog.Containing(ai.TriggerCurrency, true)
	if preset.SearchAll {
		candidates = append(candidates, e.catalog.Containing(ai.TriggerCurrency, false)...)
	}
	for _, c := range candidates {
		if c != ai.Instrument && e.ledger.CanOpen(c) {
			return c, true
		}
	}
	return "", false
}

// reverse closes the tracked position. Its exposure is returned immediately;
// the close is queued ahead of the new open for the same venue.
func (e *Engine) reverse(ctx context.Context, pos strategy.Position) error {
	tr, ok := e.trades.Get(pos.TID)
	if !ok {
		return fmt.Errorf("reverse %s: %w", pos.TID, queue.ErrTradeNotFound)
	}
	if err := e.closeTrade(ctx, tr); err != nil {
		return err
	}
	e.release(tr)
	return nil
}

// closeTrade enqueues a close command for a trade holding a ticket.
func (e *Engine) closeTrade(ctx context.Context, tr model.Trade) error {
	if tr.Ticket == nil {
		return fmt.Errorf("close %s: %w", tr.TID, queue.ErrNoTicket)
	}
	if e.trades.Closing(tr.TID) {
		return nil
	}
	ticket := *tr.Ticket
	cmd := e.commands.Enqueue(tr.ClientID, model.StateClose, model.CommandPayload{
		Instrument: tr.Instrument,
		Volume:     tr.Volume,
		Ticket:     &ticket,
		Side:       tr.Direction,
		Comment:    tr.TID,
		TID:        tr.TID,
	})
	e.trades.MarkClosing(tr.TID, cmd.ID)
	e.mirror.SaveCommand(ctx, cmd)
	e.logger.WithFields(map[string]interface{}{
		"tid":    tr.TID,
		"ticket": ticket,
	}).Info("Close queued")
	return nil
}

// release returns a trade's exposure to the ledger once.
func (e *Engine) release(tr model.Trade) {
	if e.trades.Release(tr.TID) {
		e.ledger.Record(tr.Instrument, exposure.Remove)
	}
}

// currencyBias converts an instrument direction into the direction it
// expresses for currency.
func currencyBias(sym, currency string, dir model.Direction) model.Direction {
	if catalog.Position(sym, currency) == 1 {
		return dir.Opposite()
	}
	return dir
}

// instrumentDirection converts a currency bias into a direction on sym.
// fallback is returned when sym does not contain currency.
func instrumentDirection(sym, currency string, bias, fallback model.Direction) model.Direction {
	switch catalog.Position(sym, currency) {
	case 0:
		return bias
	case 1:
		return bias.Opposite()
	default:
		return fallback
	}
}
