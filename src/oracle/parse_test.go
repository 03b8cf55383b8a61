package oracle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"newsexecutor/src/model"
)

func TestParseReadings(t *testing.T) {
	r, err := ParseReadings("Forecast : 7.0\nActual : 7.5")
	require.NoError(t, err)
	require.Equal(t, 7.0, *r.Forecast)
	require.Equal(t, 7.5, *r.Actual)

	r, err = ParseReadings("forecast: 250K, actual: 1,275.5K")
	require.NoError(t, err)
	require.Equal(t, 250000.0, *r.Forecast)
	require.Equal(t, 1275500.0, *r.Actual)

	r, err = ParseReadings("Actual : -0.3%")
	require.NoError(t, err)
	require.Nil(t, r.Forecast)
	require.Equal(t, -0.3, *r.Actual)

	r, err = ParseReadings("Forecast : N/A\nActual : 51.2")
	require.NoError(t, err)
	require.Nil(t, r.Forecast)
	require.Equal(t, 51.2, *r.Actual)
}

func TestParseReadings_Failures(t *testing.T) {
	r, err := ParseReadings("NOT_RELEASED")
	require.ErrorIs(t, err, ErrNotReleased)
	require.True(t, r.NotReleased)

	_, err = ParseReadings("The data is not released yet. Forecast : 3.1")
	require.ErrorIs(t, err, ErrNotReleased)

	var perr *ParseError
	_, err = ParseReadings("Forecast : 3.1")
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "actual", perr.Field)

	_, err = ParseReadings("Forecast : 3.1\nActual : N/A")
	require.True(t, errors.As(err, &perr))

	_, err = ParseReadings("I can't help with that")
	require.Error(t, err)
}

func TestParseForecast(t *testing.T) {
	v, err := ParseForecast("Forecast : 0.4")
	require.NoError(t, err)
	require.Equal(t, 0.4, *v)

	v, err = ParseForecast("Forecast : N/A")
	require.NoError(t, err)
	require.Nil(t, v)

	_, err = ParseForecast("nothing")
	require.Error(t, err)
}

func TestParseDecisions(t *testing.T) {
	d, err := ParseDecisions("EURUSD : BUY, USD/JPY : sell, GBPUSD : HOLD, junk, EURUSD : SELL")
	require.NoError(t, err)
	require.Equal(t, []Decision{
		{Instrument: "EURUSD", Direction: model.DirectionBuy},
		{Instrument: "USDJPY", Direction: model.DirectionSell},
	}, d.Items)
	require.Equal(t, []string{"GBPUSD : HOLD", "junk"}, d.Dropped)

	d, err = ParseDecisions("**XAUUSD** : **BUY**\n- AUDUSD: SELL.")
	require.NoError(t, err)
	require.Equal(t, []Decision{
		{Instrument: "XAUUSD", Direction: model.DirectionBuy},
		{Instrument: "AUDUSD", Direction: model.DirectionSell},
	}, d.Items)

	d, err = ParseDecisions("NEUTRAL")
	require.NoError(t, err)
	require.Empty(t, d.Items)
	require.Empty(t, d.Dropped)

	_, err = ParseDecisions("   ")
	require.Error(t, err)
}
