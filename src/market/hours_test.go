package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func nyDate(year int, month time.Month, day, hour int) time.Time {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	}
	return time.Date(year, month, day, hour, 0, 0, 0, loc)
}

func TestGate_Closed(t *testing.T) {
	gate := Gate{Enabled: true}

	tests := []struct {
		name   string
		at     time.Time
		closed bool
	}{
		{"Tuesday US session", nyDate(2025, time.March, 4, 10), false},
		{"Friday before close", nyDate(2025, time.March, 7, 16), false},
		{"Friday at close", nyDate(2025, time.March, 7, 17), true},
		{"Saturday", nyDate(2025, time.March, 8, 12), true},
		{"Sunday before reopen", nyDate(2025, time.March, 9, 16), true},
		{"Sunday after reopen", nyDate(2025, time.March, 9, 18), false},
		{"Thanksgiving without holiday block", nyDate(2025, time.November, 27, 10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.closed, gate.Closed(tt.at))
		})
	}
}

func TestGate_Holidays(t *testing.T) {
	gate := Gate{Enabled: true, BlockHolidays: true}

	require.True(t, gate.Closed(nyDate(2025, time.November, 27, 10)), "Thanksgiving")
	require.True(t, gate.Closed(nyDate(2025, time.January, 20, 10)), "MLK day")
	require.True(t, gate.Closed(nyDate(2025, time.May, 26, 10)), "Memorial day")
	require.True(t, gate.Closed(nyDate(2022, time.December, 26, 10)), "Sunday Christmas observed Monday")
	require.False(t, gate.Closed(nyDate(2025, time.November, 26, 10)))
}

func TestGate_Disabled(t *testing.T) {
	require.False(t, Gate{}.Closed(nyDate(2025, time.March, 8, 12)))
}

func TestGate_Session(t *testing.T) {
	gate := Gate{Enabled: true}
	require.Equal(t, SessionAsia, gate.Session(nyDate(2025, time.March, 4, 21)))
	require.Equal(t, SessionLondon, gate.Session(nyDate(2025, time.March, 4, 4)))
	require.Equal(t, SessionUS, gate.Session(nyDate(2025, time.March, 4, 10)))
	require.Equal(t, SessionDeadZone, gate.Session(nyDate(2025, time.March, 4, 18)))
}

func TestBoundary_Due(t *testing.T) {
	start := nyDate(2025, time.March, 5, 12) // Wednesday
	b, err := NewBoundary("CRON_TZ=America/New_York 0 17 * * 5", start)
	require.NoError(t, err)
	require.True(t, b.Next().Equal(nyDate(2025, time.March, 7, 17)))

	require.False(t, b.Due(nyDate(2025, time.March, 7, 16)))
	require.True(t, b.Due(nyDate(2025, time.March, 7, 17)))
	require.False(t, b.Due(nyDate(2025, time.March, 7, 18)), "fires once per occurrence")

	require.True(t, b.Due(nyDate(2025, time.March, 28, 9)), "missed weeks fire once")
	require.False(t, b.Due(nyDate(2025, time.March, 28, 10)))
	require.True(t, b.Next().Equal(nyDate(2025, time.March, 28, 17)))
}

func TestBoundary_InvalidSpec(t *testing.T) {
	_, err := NewBoundary("not a cron", time.Now())
	require.Error(t, err)

	var b *Boundary
	require.False(t, b.Due(time.Now()))
}
