package model

import "strings"

// Affect is the directional classification of a news surprise for a currency.
// An empty Affect means the event has not been scored yet.
type Affect string

const (
	AffectBull     Affect = "BULL"
	AffectBear     Affect = "BEAR"
	AffectNeutral  Affect = "NEUTRAL"
	AffectPositive Affect = "POSITIVE"
	AffectNegative Affect = "NEGATIVE"
)

// Bias maps an affect onto +1 (bullish), -1 (bearish) or 0.
func (a Affect) Bias() int {
	switch a {
	case AffectBull, AffectPositive:
		return 1
	case AffectBear, AffectNegative:
		return -1
	default:
		return 0
	}
}

func (a Affect) IsNeutral() bool { return a.Bias() == 0 }

// Direction is an instrument-level verdict.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

func (d Direction) Opposite() Direction {
	if d == DirectionBuy {
		return DirectionSell
	}
	return DirectionBuy
}

func (d Direction) Valid() bool { return d == DirectionBuy || d == DirectionSell }

// ParseDirection accepts BUY/SELL in any case, surrounding whitespace ignored.
func ParseDirection(s string) (Direction, bool) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	return d, d.Valid()
}

// DirectionFromBias returns BUY for a positive bias and SELL for a negative one.
func DirectionFromBias(bias int) (Direction, bool) {
	switch {
	case bias > 0:
		return DirectionBuy, true
	case bias < 0:
		return DirectionSell, true
	default:
		return "", false
	}
}
