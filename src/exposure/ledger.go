package exposure

import (
	"sort"

	"newsexecutor/src/catalog"
)

// Limits caps open positions. Zero means unlimited.
type Limits struct {
	PerCurrency int `json:"per_currency"`
	Global      int `json:"global"`
}

// Op is the direction of a ledger adjustment.
type Op int

const (
	Add Op = iota
	Remove
)

// Ledger keeps live open-position counts per currency and per instrument.
// It is not safe for concurrent use; callers serialize access.
type Ledger struct {
	limits     Limits
	currency   map[string]int
	instrument map[string]int
	total      int
	waiters    map[string][]chan struct{}
}

func NewLedger(limits Limits) *Ledger {
	return &Ledger{
		limits:     limits,
		currency:   map[string]int{},
		instrument: map[string]int{},
		waiters:    map[string][]chan struct{}{},
	}
}

func (l *Ledger) Limits() Limits { return l.limits }

func (l *Ledger) SetLimits(limits Limits) { l.limits = limits }

// CanOpen reports whether a new position on sym fits under the global cap and
// every constituent currency cap.
func (l *Ledger) CanOpen(sym string) bool {
	if l.limits.Global > 0 && l.total >= l.limits.Global {
		return false
	}
	if l.limits.PerCurrency <= 0 {
		return true
	}
	for _, cur := range catalog.Decompose(sym) {
		if l.currency[cur] >= l.limits.PerCurrency {
			return false
		}
	}
	return true
}

// Record adjusts counters by one for sym. Removal never drives a count below zero.
func (l *Ledger) Record(sym string, op Op) {
	delta := 1
	if op == Remove {
		delta = -1
	}
	l.total = floor(l.total + delta)
	l.instrument[sym] = floor(l.instrument[sym] + delta)
	for _, cur := range catalog.Decompose(sym) {
		l.currency[cur] = floor(l.currency[cur] + delta)
		if l.currency[cur] == 0 {
			l.release(cur)
		}
	}
}

func (l *Ledger) Count(currency string) int { return l.currency[currency] }

func (l *Ledger) InstrumentCount(sym string) int { return l.instrument[sym] }

func (l *Ledger) Total() int { return l.total }

// InitInstruments registers a zero count for every instrument not yet tracked.
func (l *Ledger) InitInstruments(symbols []string) {
	for _, sym := range symbols {
		if _, ok := l.instrument[sym]; !ok {
			l.instrument[sym] = 0
		}
	}
}

// Reset zeroes every counter. Pending flat waiters are released.
func (l *Ledger) Reset() {
	for sym := range l.instrument {
		l.instrument[sym] = 0
	}
	for cur := range l.currency {
		l.currency[cur] = 0
	}
	l.total = 0
	for cur := range l.waiters {
		l.release(cur)
	}
}

// Flat returns a channel closed once the currency count reaches zero. An
// already flat currency yields a closed channel.
func (l *Ledger) Flat(currency string) <-chan struct{} {
	ch := make(chan struct{})
	if l.currency[currency] == 0 {
		close(ch)
		return ch
	}
	l.waiters[currency] = append(l.waiters[currency], ch)
	return ch
}

func (l *Ledger) release(currency string) {
	for _, ch := range l.waiters[currency] {
		close(ch)
	}
	delete(l.waiters, currency)
}

// View is a read-only copy of the ledger.
type View struct {
	Limits      Limits         `json:"limits"`
	Total       int            `json:"total"`
	Currencies  map[string]int `json:"currencies"`
	Instruments map[string]int `json:"instruments"`
}

func (l *Ledger) View() View {
	v := View{
		Limits:      l.limits,
		Total:       l.total,
		Currencies:  make(map[string]int, len(l.currency)),
		Instruments: make(map[string]int, len(l.instrument)),
	}
	for k, n := range l.currency {
		v.Currencies[k] = n
	}
	for k, n := range l.instrument {
		v.Instruments[k] = n
	}
	return v
}

// Busy lists currencies with at least one open position, sorted.
func (v View) Busy() []string {
	var out []string
	for cur, n := range v.Currencies {
		if n > 0 {
			out = append(out, cur)
		}
	}
	sort.Strings(out)
	return out
}

func floor(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
