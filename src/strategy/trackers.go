package strategy

import (
	"time"

	"newsexecutor/src/model"
)

// Position is the tracked open position for a currency under rolling reversal.
// Bias is the currency-level direction the position expresses.
type Position struct {
	Instrument string          `json:"instrument"`
	Direction  model.Direction `json:"direction"`
	Bias       model.Direction `json:"bias"`
	TID        string          `json:"tid"`
}

type RollAction int

const (
	RollOpen RollAction = iota
	RollDrop
	RollReverse
)

// Sentiment accumulates agreeing signals for one currency.
type Sentiment struct {
	Direction model.Direction `json:"direction"`
	Count     int             `json:"count"`
	Opened    int             `json:"opened"`

	pending  <-chan struct{}
	deadline time.Time
}

// Waiting reports whether the accumulator blocks on a flat confirmation.
func (s *Sentiment) Waiting() bool { return s.pending != nil }

type Trackers struct {
	Rolling   map[string]Position   `json:"rolling"`
	Locked    map[string]bool       `json:"locked"`
	Sentiment map[string]*Sentiment `json:"sentiment"`
}

func NewTrackers() *Trackers {
	t := &Trackers{}
	t.Reset()
	return t
}

func (t *Trackers) Reset() {
	t.Rolling = map[string]Position{}
	t.Locked = map[string]bool{}
	t.Sentiment = map[string]*Sentiment{}
}

// CheckRolling decides what a new signal with the given currency bias does
// against the tracked position.
func (t *Trackers) CheckRolling(currency string, bias model.Direction) (Position, RollAction) {
	pos, ok := t.Rolling[currency]
	switch {
	case !ok:
		return Position{}, RollOpen
	case pos.Bias == bias:
		return pos, RollDrop
	default:
		return pos, RollReverse
	}
}

func (t *Trackers) TrackRolling(currency string, pos Position) { t.Rolling[currency] = pos }

func (t *Trackers) Untrack(currency string) { delete(t.Rolling, currency) }

func (t *Trackers) IsLocked(instrument string) bool { return t.Locked[instrument] }

func (t *Trackers) Lock(instrument string) { t.Locked[instrument] = true }
