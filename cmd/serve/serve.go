package serve

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"newsexecutor/src/calendar"
	"newsexecutor/src/catalog"
	"newsexecutor/src/database"
	"newsexecutor/src/engine"
	"newsexecutor/src/events"
	"newsexecutor/src/market"
	"newsexecutor/src/oracle"
	"newsexecutor/src/repository"
	"newsexecutor/src/server"
	"newsexecutor/src/sizing"
	"newsexecutor/src/strategy"
	"newsexecutor/src/trace"
)

type Serve struct{}

func (s *Serve) Start() error {
	config := GetConfig()
	log := logrus.WithField("app", config.AppName)

	if err := trace.Init(trace.GetConfig()); err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := trace.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("Tracer shutdown failed")
		}
	}()

	cat, err := catalog.FromConfig(catalog.GetConfig())
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	orc, err := oracle.New(oracle.GetConfig())
	if err != nil {
		return fmt.Errorf("build oracle: %w", err)
	}

	opts := engine.Options{
		Config:   engine.GetConfig(),
		Events:   events.GetConfig(),
		Strategy: strategy.GetConfig(),
		Sizing:   sizing.GetConfig(),
		Market:   market.GetConfig(),
		Catalog:  cat,
		Oracle:   orc,
		Logger:   log.WithField("component", "engine"),
	}

	calCfg := calendar.GetConfig()
	dbCfg := database.GetConfig()
	if dbCfg.EnableDB {
		db, err := database.InitMainDB(dbCfg)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to main database")
			return err
		}
		opts.Mirror = repository.NewMirrorRepositoryWithDB(db, log)
		if calCfg.Source == "db" {
			repo := repository.NewCalendarRepositoryWithDB(db)
			repo.Lookback, repo.Horizon = calCfg.Lookback, calCfg.Horizon
			opts.Source = repo
		}
	}
	if opts.Source == nil {
		src, err := calendar.NewSource(calCfg)
		if err != nil {
			return fmt.Errorf("build calendar source: %w", err)
		}
		opts.Source = src
	}

	eng, err := engine.New(opts)
	if err != nil {
		return err
	}

	log.WithFields(map[string]interface{}{
		"calendar": calCfg.Source,
		"strategy": opts.Strategy.Selector,
		"mirror":   dbCfg.EnableDB,
	}).Info("Starting news executor")

	srvCfg := server.GetConfig()
	server.StartServer(srvCfg.Port, server.NewRouter(eng), srvCfg.ShutdownTimeout)
	return nil
}
