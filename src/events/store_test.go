package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"newsexecutor/src/calendar"
	"newsexecutor/src/model"
)

var now = time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)

func rows() calendar.Static {
	return calendar.Static{
		{Date: "2025.03.06 13:30", Event: "Jobless Claims", Currency: "USD", Impact: "High"},
		{Date: "2025.03.07 13:30", Event: "Non-Farm Employment Change", Currency: "USD", Impact: "High"},
		{Date: "2025.03.07 13:30", Event: "Unemployment Rate", Currency: "USD", Impact: "High"},
		{Date: "2025.03.07 13:30", Event: "Unemployment Rate", Currency: "USD", Impact: "High"},
		{Date: "garbage", Event: "Broken", Currency: "EUR", Impact: "Low"},
		{Date: "2025.03.07 15:00", Event: "ECB President Speaks", Currency: "eur", Impact: "High"},
	}
}

type failingSource struct{ calls int }

func (f *failingSource) Rows(context.Context) ([]calendar.Row, error) {
	f.calls++
	return nil, calendar.ErrSourceMissing
}

func TestStore_InitializeFutureOnly(t *testing.T) {
	s := NewStore(Config{}, nil)

	keys, err := s.Initialize(context.Background(), rows(), now)
	require.NoError(t, err)
	require.Equal(t, []string{
		"USD_2025.03.07 13:30",
		"USD_2025.03.07 13:30_2",
		"EUR_2025.03.07 15:00",
	}, keys)
	require.True(t, s.Initialized())

	ev, ok := s.Get("USD_2025.03.07 13:30_2")
	require.True(t, ok)
	require.Equal(t, "Unemployment Rate", ev.Name)
	require.Equal(t, "USD_2025.03.07 13:30", ev.GroupKey)
	require.Nil(t, ev.Forecast)
	require.Nil(t, ev.Actual)
	require.Len(t, s.Group(ev), 2)

	again, err := s.Initialize(context.Background(), rows(), now)
	require.NoError(t, err)
	require.Empty(t, again, "initialize runs once")
	require.Equal(t, 3, s.Len())
}

func TestStore_InitializeModes(t *testing.T) {
	test := NewStore(Config{TestMode: true}, nil)
	keys, err := test.Initialize(context.Background(), rows(), now)
	require.NoError(t, err)
	require.Equal(t, []string{"USD_2025.03.06 13:30"}, keys)

	past := NewStore(Config{AllowPast: true, MaxEvents: 2}, nil)
	keys, err = past.Initialize(context.Background(), rows(), now)
	require.NoError(t, err)
	require.Len(t, keys, 2)
}

func TestStore_InitializeMissingSourceRetries(t *testing.T) {
	s := NewStore(Config{}, nil)
	src := &failingSource{}

	_, err := s.Initialize(context.Background(), src, now)
	require.True(t, errors.Is(err, calendar.ErrSourceMissing))
	require.False(t, s.Initialized())

	_, err = s.Initialize(context.Background(), src, now)
	require.Error(t, err)
	require.Equal(t, 2, src.calls)

	_, err = s.Initialize(context.Background(), rows(), now)
	require.NoError(t, err)
	require.True(t, s.Initialized())
}

func TestStore_DueAndNID(t *testing.T) {
	s := NewStore(Config{}, nil)
	_, err := s.Initialize(context.Background(), rows(), now)
	require.NoError(t, err)

	require.Empty(t, s.Due(now))
	due := s.Due(now.Add(2 * time.Hour))
	require.Len(t, due, 2)

	first := s.AssignNID(due[0])
	second := s.AssignNID(due[1])
	require.Equal(t, int64(1), first)
	require.Equal(t, int64(2), second)
	require.Equal(t, first, s.AssignNID(due[0]), "NID is never reassigned")

	got, ok := s.ByNID(2)
	require.True(t, ok)
	require.Equal(t, due[1].Key, got.Key)

	actual := 4.1
	due[0].Actual = &actual
	due[1].Abandoned = true
	require.Empty(t, s.Due(now.Add(2*time.Hour)))

	s.Clear()
	require.Equal(t, 0, s.Len())
	key, added := s.Add(model.NewsEvent{Currency: "JPY", Name: "BOJ", ScheduledAt: now})
	require.True(t, added)
	ev, _ := s.Get(key)
	require.Equal(t, int64(3), s.AssignNID(ev), "counter survives clear")
}
