package exposure

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLedger_CanOpenPerCurrencyCap(t *testing.T) {
	l := NewLedger(Limits{PerCurrency: 2})

	require.True(t, l.CanOpen("USDJPY"))
	l.Record("EURUSD", Add)
	l.Record("GBPUSD", Add)

	require.Equal(t, 2, l.Count("USD"))
	require.False(t, l.CanOpen("USDJPY"), "USD is at cap")
	require.True(t, l.CanOpen("CADJPY"))
}

func TestLedger_GlobalCap(t *testing.T) {
	l := NewLedger(Limits{Global: 1})
	l.Record("EURUSD", Add)

	require.False(t, l.CanOpen("CADJPY"))

	l.Record("EURUSD", Remove)
	require.True(t, l.CanOpen("CADJPY"))
}

func TestLedger_RemoveFloorsAtZero(t *testing.T) {
	l := NewLedger(Limits{})

	l.Record("EURUSD", Remove)
	l.Record("EURUSD", Remove)
	require.Equal(t, 0, l.Count("EUR"))
	require.Equal(t, 0, l.Count("USD"))
	require.Equal(t, 0, l.InstrumentCount("EURUSD"))
	require.Equal(t, 0, l.Total())

	l.Record("EURUSD", Add)
	require.Equal(t, 1, l.Count("USD"))
}

func TestLedger_SpecialSymbolsUsePseudoCurrency(t *testing.T) {
	l := NewLedger(Limits{PerCurrency: 1})
	l.Record("XAUUSD", Add)

	require.Equal(t, 1, l.Count("XAU"))
	require.Equal(t, 0, l.Count("USD"))
	require.False(t, l.CanOpen("XAUUSD"))
	require.True(t, l.CanOpen("EURUSD"))
}

func TestLedger_FlatAndReset(t *testing.T) {
	l := NewLedger(Limits{})

	select {
	case <-l.Flat("EUR"):
	default:
		t.Fatal("flat currency should resolve immediately")
	}

	l.Record("EURUSD", Add)
	l.Record("EURJPY", Add)
	flat := l.Flat("EUR")

	l.Record("EURUSD", Remove)
	select {
	case <-flat:
		t.Fatal("EUR still has one open position")
	default:
	}

	l.Record("EURJPY", Remove)
	select {
	case <-flat:
	default:
		t.Fatal("EUR should be flat")
	}

	l.InitInstruments([]string{"EURUSD", "USDJPY"})
	l.Record("USDJPY", Add)
	l.Reset()
	v := l.View()
	require.Equal(t, 0, v.Total)
	require.Equal(t, 0, v.Instruments["USDJPY"])
	require.Empty(t, v.Busy())
}
