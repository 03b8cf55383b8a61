package affect

import (
	"strings"

	"newsexecutor/src/model"
)

// Category ranks an indicator in the impact hierarchy. Higher wins.
type Category int

const (
	Sentiment Category = iota
	Activity
	Trade
	GDP
	Jobs
	Inflation
	Monetary
)

func (c Category) String() string {
	switch c {
	case Monetary:
		return "Monetary"
	case Inflation:
		return "Inflation"
	case Jobs:
		return "Jobs"
	case GDP:
		return "GDP"
	case Trade:
		return "Trade"
	case Sentiment:
		return "Sentiment"
	default:
		return "Activity"
	}
}

// checked from the highest category down, first match wins
var categoryKeywords = []struct {
	category Category
	words    []string
}{
	{Monetary, []string{"interest rate", "rate decision", "monetary policy", "fomc", "federal reserve", "central bank",
		"cash rate", "refinancing", "ecb", "boe ", "boj", "rba", "rbnz", "snb", "boc ", "press conference"}},
	{Inflation, []string{"cpi", "ppi", "inflation", "price index", "pce", "deflator", "hicp"}},
	{Jobs, []string{"employment", "payroll", "jobless", "claims", "non-farm", "nonfarm", "labor", "labour",
		"earnings", "wage", "jobs"}},
	{GDP, []string{"gdp", "gross domestic"}},
	{Trade, []string{"trade balance", "current account", "exports", "imports", "trade"}},
	{Activity, []string{"pmi", "retail", "production", "manufacturing", "services", "housing", "building",
		"durable", "orders", "sales"}},
	{Sentiment, []string{"sentiment", "confidence", "zew", "ifo", "expectations", "survey"}},
}

// Classify maps an event name onto the hierarchy, Activity when nothing matches.
func Classify(name string) Category {
	lower := strings.ToLower(name) + " "
	for _, ck := range categoryKeywords {
		if containsAny(lower, ck.words) {
			return ck.category
		}
	}
	return Activity
}

// Aggregate resolves co-occurring events for one currency into one affect.
func Aggregate(group []*model.NewsEvent) model.Affect {
	if len(group) == 1 {
		if group[0].Affect == "" {
			return model.AffectNeutral
		}
		return group[0].Affect
	}

	var scored []*model.NewsEvent
	for _, ev := range group {
		if ev.Forecast == nil || ev.Actual == nil || ev.Affect.IsNeutral() {
			continue
		}
		scored = append(scored, ev)
	}
	if len(scored) == 0 {
		return model.AffectNeutral
	}
	if agree(scored) {
		return scored[0].Affect
	}

	top := Sentiment
	for _, ev := range scored {
		if c := Classify(ev.Name); c > top {
			top = c
		}
	}
	var ranked []*model.NewsEvent
	for _, ev := range scored {
		if Classify(ev.Name) == top {
			ranked = append(ranked, ev)
		}
	}
	if agree(ranked) {
		return ranked[0].Affect
	}
	return model.AffectNeutral
}

func agree(evs []*model.NewsEvent) bool {
	for _, ev := range evs[1:] {
		if ev.Affect.Bias() != evs[0].Affect.Bias() {
			return false
		}
	}
	return true
}
