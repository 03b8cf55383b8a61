package sizing

import (
	"github.com/shopspring/decimal"
)

// VolumePrecision is the number of decimals the broker accepts on lot sizes.
const VolumePrecision = 2

var hundred = decimal.NewFromInt(100)

// Targets is the derived account state after the last balance report.
type Targets struct {
	Balance     float64 `json:"balance"`
	Equity      float64 `json:"equity"`
	Tier        float64 `json:"tier"`
	Multiplier  float64 `json:"multiplier"`
	Baseline    float64 `json:"baseline"`
	Target      float64 `json:"target"`
	GoalReached bool    `json:"goal_reached"`
}

// Sizer classifies the account into a tier and scales lot sizes from it.
// It is not safe for concurrent use.
type Sizer struct {
	tiers     []decimal.Decimal
	reference decimal.Decimal
	band      decimal.Decimal
	targetPct decimal.Decimal
	minVolume decimal.Decimal

	balance     decimal.Decimal
	equity      decimal.Decimal
	tier        decimal.Decimal
	multiplier  decimal.Decimal
	baseline    *decimal.Decimal
	target      decimal.Decimal
	goalReached bool
}

func NewSizer(cfg Config) *Sizer {
	s := &Sizer{
		reference:  decimal.NewFromFloat(cfg.ReferenceTier),
		band:       decimal.NewFromFloat(cfg.Band),
		targetPct:  decimal.NewFromFloat(cfg.WeeklyTargetPct),
		minVolume:  decimal.NewFromFloat(cfg.MinVolume),
		multiplier: decimal.NewFromInt(1),
	}
	for _, t := range cfg.Tiers {
		s.tiers = append(s.tiers, decimal.NewFromFloat(t))
	}
	return s
}

// Classify returns the first tier within the tolerance band of balance, or
// the balance itself when none matches.
func (s *Sizer) Classify(balance decimal.Decimal) decimal.Decimal {
	for _, t := range s.tiers {
		if balance.Sub(t).Abs().LessThanOrEqual(t.Mul(s.band)) {
			return t
		}
	}
	return balance
}

// SetTargets re-derives tier, multiplier and weekly goal from a balance report.
// The first report of a week latches the baseline.
func (s *Sizer) SetTargets(balance, equity float64) Targets {
	s.balance = decimal.NewFromFloat(balance)
	s.equity = decimal.NewFromFloat(equity)
	s.tier = s.Classify(s.balance)

	s.multiplier = decimal.NewFromInt(1)
	if s.reference.IsPositive() {
		s.multiplier = s.tier.Div(s.reference)
	}

	if s.baseline == nil {
		b := s.balance
		s.baseline = &b
	}
	s.target = s.baseline.Add(s.tier.Mul(s.targetPct).Div(hundred))
	s.goalReached = s.equity.GreaterThanOrEqual(s.target)
	return s.Targets()
}

func (s *Sizer) GoalReached() bool { return s.goalReached }

func (s *Sizer) Multiplier() decimal.Decimal { return s.multiplier }

// Volume scales a base lot size by the tier multiplier and rounds it to the
// broker precision, never below the minimum lot.
func (s *Sizer) Volume(base float64) float64 {
	b := decimal.NewFromFloat(base)
	if !b.IsPositive() {
		return 0
	}
	v := b.Mul(s.multiplier).Round(VolumePrecision)
	if v.LessThan(s.minVolume) {
		v = s.minVolume
	}
	f, _ := v.Float64()
	return f
}

// ResetWeek drops the baseline so the next report latches a new one.
func (s *Sizer) ResetWeek() {
	s.baseline = nil
	s.goalReached = false
}

func (s *Sizer) Targets() Targets {
	t := Targets{GoalReached: s.goalReached}
	t.Balance, _ = s.balance.Float64()
	t.Equity, _ = s.equity.Float64()
	t.Tier, _ = s.tier.Float64()
	t.Multiplier, _ = s.multiplier.Float64()
	t.Target, _ = s.target.Float64()
	if s.baseline != nil {
		t.Baseline, _ = s.baseline.Float64()
	}
	return t
}
