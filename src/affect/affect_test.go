package affect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"newsexecutor/src/model"
)

func f(v float64) *float64 { return &v }

func TestCalculate(t *testing.T) {
	tests := []struct {
		name     string
		event    string
		forecast *float64
		actual   *float64
		want     model.Affect
	}{
		{"inverse higher is bearish", "Unemployment Rate", f(7.0), f(7.5), model.AffectBear},
		{"inverse lower is bullish", "Initial Jobless Claims", f(220), f(210), model.AffectBull},
		{"normal higher is bullish", "Manufacturing PMI", f(49.6), f(51.2), model.AffectBull},
		{"normal lower is bearish", "CPI m/m", f(0.3), f(0.1), model.AffectBear},
		{"equal is neutral", "Manufacturing PMI", f(50), f(50), model.AffectNeutral},
		{"equal inverse is neutral", "Unemployment Rate", f(4.1), f(4.1), model.AffectNeutral},
		{"no forecast", "Manufacturing PMI", nil, f(51.2), model.AffectNeutral},
		{"no actual", "Manufacturing PMI", f(49.6), nil, model.AffectNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Calculate(tt.forecast, tt.actual, tt.event))
		})
	}
}

func TestClassify(t *testing.T) {
	require.Equal(t, Monetary, Classify("Federal Funds Rate Decision"))
	require.Equal(t, Monetary, Classify("ECB Main Refinancing Rate"))
	require.Equal(t, Inflation, Classify("Core CPI y/y"))
	require.Equal(t, Inflation, Classify("Consumer Inflation Expectations"))
	require.Equal(t, Jobs, Classify("Non-Farm Employment Change"))
	require.Equal(t, GDP, Classify("Prelim GDP q/q"))
	require.Equal(t, Trade, Classify("Trade Balance"))
	require.Equal(t, Activity, Classify("Manufacturing PMI"))
	require.Equal(t, Sentiment, Classify("ZEW Economic Sentiment"))
	require.Equal(t, Activity, Classify("Something Unheard Of"))
}

func ev(name string, a model.Affect) *model.NewsEvent {
	return &model.NewsEvent{Name: name, Currency: "EUR", Forecast: f(1), Actual: f(2), Affect: a}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name  string
		group []*model.NewsEvent
		want  model.Affect
	}{
		{"single returns raw", []*model.NewsEvent{ev("Manufacturing PMI", model.AffectBear)}, model.AffectBear},
		{"single unscored", []*model.NewsEvent{{Name: "PMI"}}, model.AffectNeutral},
		{"monetary beats jobs", []*model.NewsEvent{
			ev("Main Refinancing Rate", model.AffectBull),
			ev("Unemployment Rate", model.AffectBear),
		}, model.AffectBull},
		{"equal rank conflict", []*model.NewsEvent{
			ev("Manufacturing PMI", model.AffectBull),
			ev("Services PMI", model.AffectBear),
		}, model.AffectNeutral},
		{"agreement wins outright", []*model.NewsEvent{
			ev("Trade Balance", model.AffectBear),
			ev("CPI y/y", model.AffectNegative),
		}, model.AffectBear},
		{"neutral and missing discarded", []*model.NewsEvent{
			ev("CPI y/y", model.AffectNeutral),
			{Name: "GDP", Affect: model.AffectBull},
			ev("Retail Sales", model.AffectBear),
		}, model.AffectBear},
		{"nothing scored", []*model.NewsEvent{
			ev("CPI y/y", model.AffectNeutral),
			{Name: "GDP"},
		}, model.AffectNeutral},
		{"top category agrees", []*model.NewsEvent{
			ev("Core CPI", model.AffectBull),
			ev("CPI y/y", model.AffectBull),
			ev("GDP q/q", model.AffectBear),
		}, model.AffectBull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Aggregate(tt.group))
		})
	}
}
