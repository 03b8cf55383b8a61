package engine

import (
	"newsexecutor/src/exposure"
	"newsexecutor/src/model"
	"newsexecutor/src/sizing"
	"newsexecutor/src/strategy"
)

// Status is a summary of the engine for the health surface.
type Status struct {
	Initialized bool              `json:"initialized"`
	Events      int               `json:"events"`
	Pending     int               `json:"pending_verdicts"`
	Strategy    strategy.Preset   `json:"strategy"`
	Selector    string            `json:"selector"`
	Targets     sizing.Targets    `json:"targets"`
	Trackers    strategy.Trackers `json:"trackers"`
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	preset := e.policy.Preset()
	return Status{
		Initialized: e.events.Initialized(),
		Events:      e.events.Len(),
		Pending:     len(e.affected),
		Strategy:    preset,
		Selector:    preset.Kind.Selector(),
		Targets:     e.sizer.Targets(),
		Trackers:    copyTrackers(e.policy.Trackers),
	}
}

func copyTrackers(t *strategy.Trackers) strategy.Trackers {
	out := strategy.Trackers{
		Rolling:   make(map[string]strategy.Position, len(t.Rolling)),
		Locked:    make(map[string]bool, len(t.Locked)),
		Sentiment: make(map[string]*strategy.Sentiment, len(t.Sentiment)),
	}
	for k, v := range t.Rolling {
		out.Rolling[k] = v
	}
	for k, v := range t.Locked {
		out.Locked[k] = v
	}
	for k, v := range t.Sentiment {
		s := *v
		out.Sentiment[k] = &s
	}
	return out
}

func (e *Engine) Events() []model.NewsEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.events.All()
}

func (e *Engine) Exposure() exposure.View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.View()
}

func (e *Engine) Commands(clientID string) []model.Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commands.List(clientID)
}

func (e *Engine) Trades() []model.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trades.All()
}

func (e *Engine) Snapshot(clientID string) (model.Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap, ok := e.snapshots[clientID]
	return snap, ok
}

// Affected returns the verdicts pending for the next execution pass.
func (e *Engine) Affected() []model.AffectedInstrument {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.AffectedInstrument(nil), e.affected...)
}
