package strategy

import (
	"fmt"
	"strings"
	"time"
)

// Kind is one of the mutually exclusive trading policies.
type Kind int

const (
	// Observe monitors and scores events but never opens positions.
	Observe Kind = iota
	Sequential
	MultiPair
	RollingReversal
	WeeklyLock
	SentimentScaling
)

func (k Kind) String() string {
	switch k {
	case Observe:
		return "observe"
	case Sequential:
		return "sequential"
	case MultiPair:
		return "multi_pair"
	case RollingReversal:
		return "rolling_reversal"
	case WeeklyLock:
		return "weekly_lock"
	case SentimentScaling:
		return "sentiment_scaling"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Selector is the venue-facing identifier, S0 to S5.
func (k Kind) Selector() string { return fmt.Sprintf("S%d", int(k)) }

func ParseSelector(s string) (Kind, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) == 2 && s[0] == 'S' && s[1] >= '0' && s[1] <= '5' {
		return Kind(s[1] - '0'), nil
	}
	return 0, fmt.Errorf("unknown strategy selector %q", s)
}

// Preset is the full parameter set loaded for a policy.
type Preset struct {
	Kind           Kind `json:"kind"`
	PerCurrencyCap int  `json:"per_currency_cap"`
	GlobalCap      int  `json:"global_cap"`
	Fallback       bool `json:"fallback"`
	SearchAll      bool `json:"search_all"`

	Confirmation      bool          `json:"confirmation"`
	Threshold         int           `json:"threshold"`
	MaxScaled         int           `json:"max_scaled"`
	ReverseOnConflict bool          `json:"reverse_on_conflict"`
	FlatTimeout       time.Duration `json:"flat_timeout"`
}

// Opens reports whether the policy ever opens positions.
func (p Preset) Opens() bool { return p.Kind != Observe }

func PresetFor(k Kind, cfg Config) Preset {
	p := Preset{Kind: k, PerCurrencyCap: cfg.PerCurrencyCap, GlobalCap: cfg.GlobalCap}
	switch k {
	case MultiPair:
		p.PerCurrencyCap = max(cfg.MultiPairCap, 1)
		p.Fallback = true
		p.SearchAll = cfg.SearchAll
	case SentimentScaling:
		p.Confirmation = true
		p.Threshold = max(cfg.ConfirmThreshold, 1)
		p.MaxScaled = max(cfg.MaxScaled, 1)
		p.PerCurrencyCap = p.MaxScaled
		p.ReverseOnConflict = cfg.ReverseOnConflict
		p.FlatTimeout = cfg.FlatTimeout
	}
	return p
}

// Policy holds the active preset and the trackers that belong to it.
type Policy struct {
	cfg    Config
	preset Preset
	*Trackers
}

func NewPolicy(cfg Config) (*Policy, error) {
	k, err := ParseSelector(cfg.Selector)
	if err != nil {
		return nil, err
	}
	return &Policy{cfg: cfg, preset: PresetFor(k, cfg), Trackers: NewTrackers()}, nil
}

func (p *Policy) Preset() Preset { return p.preset }

// Switch loads the preset for selector. Trackers are cleared whenever the
// active kind changes.
func (p *Policy) Switch(selector string) (bool, error) {
	k, err := ParseSelector(selector)
	if err != nil {
		return false, err
	}
	if k == p.preset.Kind {
		return false, nil
	}
	p.preset = PresetFor(k, p.cfg)
	p.Trackers.Reset()
	return true, nil
}
