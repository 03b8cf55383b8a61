package queue

import (
	"fmt"
	"time"

	"newsexecutor/src/model"
)

// Trades is the trade ledger. TIDs are sequenced per NID and never reused.
// It is not safe for concurrent use.
type Trades struct {
	byTID     map[string]*model.Trade
	order     []string
	seq       map[int64]int
	byCommand map[string]string
	byTicket  map[int64]string
	closing   map[string]string
	now       func() time.Time
}

func NewTrades(now func() time.Time) *Trades {
	if now == nil {
		now = time.Now
	}
	return &Trades{
		byTID:     map[string]*model.Trade{},
		seq:       map[int64]int{},
		byCommand: map[string]string{},
		byTicket:  map[int64]string{},
		closing:   map[string]string{},
		now:       now,
	}
}

// Create assigns the next TID under tr.NID and stores the trade as queued.
func (t *Trades) Create(tr model.Trade) model.Trade {
	t.seq[tr.NID]++
	tr.TID = model.TID(tr.NID, t.seq[tr.NID])
	if tr.Comment == "" {
		tr.Comment = tr.TID
	}
	tr.Status = model.TradeStatusQueued
	tr.Ticket = nil
	at := t.now()
	tr.CreatedAt, tr.UpdatedAt = at, at
	stored := tr
	t.byTID[tr.TID] = &stored
	t.order = append(t.order, tr.TID)
	return stored
}

// Link binds the open command that carries a trade.
func (t *Trades) Link(tid, commandID string) {
	if tr, ok := t.byTID[tid]; ok {
		tr.CommandID = commandID
		t.byCommand[commandID] = tid
	}
}

func (t *Trades) Get(tid string) (model.Trade, bool) {
	tr, ok := t.byTID[tid]
	if !ok {
		return model.Trade{}, false
	}
	return *tr, true
}

func (t *Trades) ByCommand(commandID string) (model.Trade, bool) {
	tid, ok := t.byCommand[commandID]
	if !ok {
		return model.Trade{}, false
	}
	return t.Get(tid)
}

func (t *Trades) ByTicket(ticket int64) (model.Trade, bool) {
	tid, ok := t.byTicket[ticket]
	if !ok {
		return model.Trade{}, false
	}
	return t.Get(tid)
}

// Execute advances the queued trade carried by commandID and records the
// broker ticket. The ticket is set once and never changed.
func (t *Trades) Execute(commandID string, ticket *int64) (model.Trade, bool) {
	tid, ok := t.byCommand[commandID]
	if !ok {
		return model.Trade{}, false
	}
	tr := t.byTID[tid]
	if tr.Status != model.TradeStatusQueued {
		return *tr, false
	}
	tr.Status = model.TradeStatusExecuted
	if tr.Ticket == nil && ticket != nil {
		tk := *ticket
		tr.Ticket = &tk
		t.byTicket[tk] = tid
	}
	tr.UpdatedAt = t.now()
	return *tr, true
}

// Finish moves a trade to a terminal status.
func (t *Trades) Finish(tid string, status model.TradeStatus) (model.Trade, error) {
	tr, ok := t.byTID[tid]
	if !ok {
		return model.Trade{}, fmt.Errorf("finish %s: %w", tid, ErrTradeNotFound)
	}
	if !tr.Status.CanAdvance(status) || !status.Terminal() {
		return *tr, fmt.Errorf("finish %s from %s to %s: %w", tid, tr.Status, status, ErrTradeClosed)
	}
	tr.Status = status
	tr.UpdatedAt = t.now()
	return *tr, nil
}

// MarkClosing records the close command issued for a trade. It reports false
// when a close was already issued.
func (t *Trades) MarkClosing(tid, commandID string) bool {
	if _, ok := t.closing[tid]; ok {
		return false
	}
	t.closing[tid] = commandID
	return true
}

func (t *Trades) Closing(tid string) bool {
	_, ok := t.closing[tid]
	return ok
}

// Reopen drops the close latch after the venue failed a close. It reports
// true when the trade's exposure had been released and is held again.
func (t *Trades) Reopen(tid string) bool {
	delete(t.closing, tid)
	tr, ok := t.byTID[tid]
	if !ok || tr.Status.Terminal() || !tr.ExposureReleased {
		return false
	}
	tr.ExposureReleased = false
	return true
}

// Release marks the trade's exposure as returned to the ledger. It reports
// true only the first time.
func (t *Trades) Release(tid string) bool {
	tr, ok := t.byTID[tid]
	if !ok || tr.ExposureReleased {
		return false
	}
	tr.ExposureReleased = true
	return true
}

// Live lists trades that still hold exposure, in creation order, filtered by
// trigger currency when currency is not empty.
func (t *Trades) Live(currency string) []model.Trade {
	var out []model.Trade
	for _, tid := range t.order {
		tr := t.byTID[tid]
		if tr.Status.Terminal() || tr.ExposureReleased {
			continue
		}
		if currency != "" && tr.TriggerCurrency != currency {
			continue
		}
		out = append(out, *tr)
	}
	return out
}

// Active lists the client's trades not yet in a terminal status, in creation
// order, released exposure included.
func (t *Trades) Active(clientID string) []model.Trade {
	var out []model.Trade
	for _, tid := range t.order {
		tr := t.byTID[tid]
		if tr.Status.Terminal() || tr.ClientID != clientID {
			continue
		}
		out = append(out, *tr)
	}
	return out
}

func (t *Trades) All() []model.Trade {
	out := make([]model.Trade, 0, len(t.order))
	for _, tid := range t.order {
		out = append(out, *t.byTID[tid])
	}
	return out
}
