package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"newsexecutor/src/database"
	"newsexecutor/src/model"
)

// helper to create a new in memory gorm DB and migrate schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}

func fp(v float64) *float64 { return &v }
func ip(v int64) *int64     { return &v }

func TestMirrorRepository_EventUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewMirrorRepositoryWithDB(newTestDB(t), nil)

	at := time.Date(2025, 3, 7, 13, 30, 0, 0, time.UTC)
	ev := model.NewsEvent{
		Key:         "USD_2025.03.07 13:30",
		GroupKey:    "USD_2025.03.07 13:30",
		Currency:    "USD",
		Name:        "Non-Farm Employment Change",
		ScheduledAt: at,
		Forecast:    fp(160000),
	}
	require.NoError(t, repo.UpsertEvent(ctx, ev))

	nid := int64(4)
	ev.Actual = fp(275000)
	ev.Affect = model.AffectBull
	ev.NID = &nid
	ev.PairsAffected = 3
	require.NoError(t, repo.UpsertEvent(ctx, ev))

	events, err := repo.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, model.AffectBull, events[0].Affect)
	require.Equal(t, 275000.0, *events[0].Actual)
	require.Equal(t, int64(4), *events[0].NID)
	require.Equal(t, 3, events[0].PairsAffected)
}

func TestMirrorRepository_TradesAndCommands(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewMirrorRepositoryWithDB(db, nil)

	tr := model.Trade{
		TID:        "TID_2_1",
		ClientID:   "mt5-1",
		Instrument: "EURUSD",
		Direction:  model.DirectionSell,
		Volume:     0.1,
		Status:     model.TradeStatusQueued,
		NID:        2,
	}
	repo.SaveTrade(ctx, tr)
	repo.SaveTrade(ctx, model.Trade{TID: "TID_1_1", Instrument: "USDJPY", Status: model.TradeStatusQueued, NID: 1})

	tr.Status = model.TradeStatusExecuted
	tr.Ticket = ip(5001)
	repo.SaveTrade(ctx, tr)

	trades, err := repo.TradesByNID(ctx, 2)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	require.Equal(t, model.TradeStatusExecuted, trades[0].Status)
	require.Equal(t, int64(5001), *trades[0].Ticket)

	cmd := model.Command{
		ID:       "cmd-1",
		ClientID: "mt5-1",
		State:    model.StateOpenSell,
		Payload:  model.CommandPayload{Instrument: "EURUSD", Volume: 0.1, TID: "TID_2_1"},
		Status:   model.CommandStatusQueued,
	}
	repo.SaveCommand(ctx, cmd)
	cmd.Status = model.CommandStatusAck
	cmd.Result = &model.CommandResult{Success: true, Ticket: ip(5001)}
	repo.SaveCommand(ctx, cmd)

	var stored model.Command
	require.NoError(t, db.First(&stored, "id = ?", "cmd-1").Error)
	require.Equal(t, model.CommandStatusAck, stored.Status)
	require.Equal(t, "EURUSD", stored.Payload.Instrument)
	require.NotNil(t, stored.Result)
	require.Equal(t, int64(5001), *stored.Result.Ticket)
}

func TestMirrorRepository_FailuresAreLogged(t *testing.T) {
	db, mock := newMockDB(t)
	log, hook := logrustest.NewNullLogger()
	repo := NewMirrorRepositoryWithDB(db, logrus.NewEntry(log))

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	repo.SaveTrade(context.Background(), model.Trade{TID: "TID_1_1", Status: model.TradeStatusQueued})

	require.Len(t, hook.Entries, 1)
	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	require.Equal(t, "TID_1_1", hook.LastEntry().Data["tid"])
	require.NoError(t, mock.ExpectationsWereMet())
}
