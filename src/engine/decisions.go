package engine

import (
	"context"

	"newsexecutor/src/affect"
	"newsexecutor/src/catalog"
	"newsexecutor/src/model"
	"newsexecutor/src/oracle"
	"newsexecutor/src/strategy"
)

// decideGroup generates decisions once per currency and timestamp, after the
// last member of the group has left monitoring.
func (e *Engine) decideGroup(ctx context.Context, ev *model.NewsEvent) {
	group := e.events.Group(ev)
	for _, m := range group {
		if m.Monitored() {
			return
		}
	}
	if e.decided[ev.GroupKey] {
		return
	}
	e.decided[ev.GroupKey] = true

	_, lead := resolve(group)
	if lead == nil {
		e.logger.WithField("group", ev.GroupKey).Info("Group is neutral, no decisions")
		return
	}
	decisions := e.generateDecisions(ctx, lead)
	e.updateAffected(ctx, lead, decisions)
}

// resolve aggregates a group and picks the event whose NID carries the
// resulting trades: the first scored member agreeing with the aggregate.
func resolve(group []*model.NewsEvent) (model.Affect, *model.NewsEvent) {
	agg := affect.Aggregate(group)
	if agg.IsNeutral() {
		return agg, nil
	}
	for _, m := range group {
		if m.NID != nil && m.Affect.Bias() == agg.Bias() {
			return agg, m
		}
	}
	return model.AffectNeutral, nil
}

// GenerateDecisions asks the oracle for instrument verdicts on the event's
// group. It returns nothing when the group is neutral or the confirmation
// gate holds the signal back.
func (e *Engine) GenerateDecisions(ctx context.Context, key string) []oracle.Decision {
	e.mu.Lock()
	defer e.mu.Unlock()
	ev, ok := e.events.Get(key)
	if !ok {
		return nil
	}
	_, lead := resolve(e.events.Group(ev))
	if lead == nil {
		return nil
	}
	return e.generateDecisions(ctx, lead)
}

func (e *Engine) generateDecisions(ctx context.Context, lead *model.NewsEvent) []oracle.Decision {
	group := e.events.Group(lead)
	agg, _ := resolve(group)
	bias, _ := model.DirectionFromBias(agg.Bias())
	log := e.logger.WithFields(map[string]interface{}{
		"event_key": lead.Key,
		"currency":  lead.Currency,
		"affect":    agg,
		"group":     len(group),
	})

	gate := e.policy.Confirm(lead.Currency, bias, e.now())
	if gate.Stale {
		log.WithField("opened", gate.Opened).Warn("Reversal closes not confirmed before timeout, keeping stale positions")
	}
	switch gate.Outcome {
	case strategy.Pass:
	case strategy.Conflict:
		log.WithField("opened", gate.Opened).Info("Sentiment reversed, closing currency positions")
		e.closeCurrency(ctx, lead.Currency)
		e.policy.AwaitFlat(lead.Currency, e.ledger.Flat(lead.Currency), e.now())
		return nil
	default:
		log.WithFields(map[string]interface{}{
			"gate":  gate.Outcome.String(),
			"count": gate.Count,
		}).Info("Signal held by confirmation gate")
		return nil
	}

	var summaries []oracle.EventSummary
	for _, m := range group {
		if m.Actual == nil {
			continue
		}
		summaries = append(summaries, oracle.EventSummary{
			Name:     m.Name,
			Forecast: reading(m.Forecast),
			Actual:   reading(m.Actual),
			Affect:   string(m.Affect),
		})
	}
	prompt := oracle.DecisionPrompt(lead.Currency, when(lead), summaries, string(agg), e.catalog.Containing(lead.Currency, false))
	text, err := e.oracle.Query(ctx, prompt, oracle.DecisionInstructions)
	if err != nil {
		log.WithError(err).Warn("Decision query failed")
		return nil
	}
	d, err := oracle.ParseDecisions(text)
	if err != nil {
		log.WithError(err).Warn("Decision answer unparseable")
		return nil
	}
	for _, seg := range d.Dropped {
		log.WithField("segment", seg).Info("Dropping decision segment without BUY/SELL")
	}
	return d.Items
}

// UpdateAffected stores verdicts for the next execution pass and counts the
// in-scope instruments onto the event.
func (e *Engine) UpdateAffected(ctx context.Context, key string, decisions []oracle.Decision) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ev, ok := e.events.Get(key); ok {
		e.updateAffected(ctx, ev, decisions)
	}
}

func (e *Engine) updateAffected(ctx context.Context, ev *model.NewsEvent, decisions []oracle.Decision) {
	if len(decisions) == 0 {
		return
	}
	nid := nidOf(ev)
	counted := 0
	for _, d := range decisions {
		ai := model.AffectedInstrument{
			Instrument:      d.Instrument,
			EventKey:        ev.Key,
			Description:     ev.Description(),
			Direction:       d.Direction,
			NID:             nid,
			TriggerCurrency: ev.Currency,
		}
		e.setAffected(ai)
		if e.inScope(d.Instrument) {
			counted++
		}
	}
	ev.PairsAffected += counted
	e.mirror.SaveEvent(ctx, *ev)
	e.logger.WithFields(map[string]interface{}{
		"event_key": ev.Key,
		"nid":       nid,
		"decisions": len(decisions),
		"in_scope":  counted,
	}).Info("Affected instruments updated")
}

// setAffected keeps one pending verdict per instrument, the latest winning.
func (e *Engine) setAffected(ai model.AffectedInstrument) {
	for i := range e.affected {
		if e.affected[i].Instrument == ai.Instrument {
			e.affected[i] = ai
			return
		}
	}
	e.affected = append(e.affected, ai)
}

func (e *Engine) inScope(sym string) bool {
	if e.cfg.AffectedScope == ScopeAll {
		return e.catalog.IsKnown(sym)
	}
	return e.catalog.IsEnabled(sym)
}

// closeCurrency enqueues a close for every live trade on an instrument
// quoting currency as base or quote, metals and crypto included. Trades
// without a ticket yet cannot be closed.
func (e *Engine) closeCurrency(ctx context.Context, currency string) {
	for _, tr := range e.trades.Live("") {
		if catalog.Position(tr.Instrument, currency) < 0 {
			continue
		}
		if err := e.closeTrade(ctx, tr); err != nil {
			e.logger.WithError(err).WithField("tid", tr.TID).Warn("Cannot close position")
		}
	}
}
