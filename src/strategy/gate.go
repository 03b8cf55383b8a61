package strategy

import (
	"time"

	"newsexecutor/src/model"
)

type Outcome int

const (
	// Pass lets the signal through to decision generation.
	Pass Outcome = iota
	// Counting means agreement is below threshold.
	Counting
	// Saturated means the scaled position maximum is reached.
	Saturated
	// Conflict means the signal reversed an accumulator with open positions.
	// The caller closes every position in the currency and then calls
	// AwaitFlat.
	Conflict
	// Blocked means the currency waits for reversal closes to confirm.
	Blocked
)

func (o Outcome) String() string {
	switch o {
	case Pass:
		return "pass"
	case Counting:
		return "counting"
	case Saturated:
		return "saturated"
	case Conflict:
		return "conflict"
	default:
		return "blocked"
	}
}

// GateResult carries the outcome of one confirmation check. Stale is set when
// a flat wait expired before the ledger confirmed the closes; tracker state is
// kept as it was.
type GateResult struct {
	Outcome Outcome
	Count   int
	Opened  int
	Stale   bool
}

// Confirm runs the confirmation gate for a currency-level signal.
func (p *Policy) Confirm(currency string, bias model.Direction, now time.Time) GateResult {
	pre := p.preset
	if !pre.Confirmation {
		return GateResult{Outcome: Pass}
	}

	s, ok := p.Sentiment[currency]
	if !ok {
		s = &Sentiment{Direction: bias}
		p.Sentiment[currency] = s
	}

	var stale bool
	if s.pending != nil {
		select {
		case <-s.pending:
			s.Opened = 0
			s.pending = nil
		default:
			if now.Before(s.deadline) {
				return GateResult{Outcome: Blocked, Count: s.Count, Opened: s.Opened}
			}
			s.pending = nil
			stale = true
		}
	}

	if s.Count > 0 && s.Direction != bias {
		s.Direction = bias
		s.Count = 1
		if pre.ReverseOnConflict && s.Opened > 0 {
			return GateResult{Outcome: Conflict, Count: s.Count, Opened: s.Opened, Stale: stale}
		}
		s.Opened = 0
		res := GateResult{Outcome: Counting, Count: s.Count, Stale: stale}
		if s.Count >= pre.Threshold {
			res.Outcome = Pass
		}
		return res
	}

	s.Direction = bias
	s.Count++
	res := GateResult{Count: s.Count, Opened: s.Opened, Stale: stale}
	switch {
	case s.Count < pre.Threshold:
		res.Outcome = Counting
	case s.Opened >= pre.MaxScaled:
		res.Outcome = Saturated
	default:
		res.Outcome = Pass
	}
	return res
}

// AwaitFlat blocks later signals for currency until flat is closed or the
// flat timeout elapses from now.
func (p *Policy) AwaitFlat(currency string, flat <-chan struct{}, now time.Time) {
	s, ok := p.Sentiment[currency]
	if !ok {
		return
	}
	s.pending = flat
	s.deadline = now.Add(p.preset.FlatTimeout)
}

// RecordScaled counts one more opened position for currency.
func (p *Policy) RecordScaled(currency string) {
	if s, ok := p.Sentiment[currency]; ok {
		s.Opened++
	}
}
