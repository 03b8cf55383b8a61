package calendar

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	cal "newsexecutor/src/calendar"
	"newsexecutor/src/database"
	"newsexecutor/src/repository"
)

// Calendar fetches the TradingView calendar and writes it as CSV.
type Calendar struct {
	Output   string
	Lookback time.Duration
	Horizon  time.Duration
	Store    bool
	Print    bool
}

func (c *Calendar) Start(ctx context.Context) error {
	config := cal.GetConfig()
	lookback, horizon := config.Lookback, config.Horizon
	if c.Lookback > 0 {
		lookback = c.Lookback
	}
	if c.Horizon > 0 {
		horizon = c.Horizon
	}

	src := &cal.TradingViewSource{
		Client:        cal.NewTradingViewClient(config.BaseURL),
		Countries:     config.Countries,
		Lookback:      lookback,
		Horizon:       horizon,
		MinImportance: config.MinImportance,
	}

	rows, err := src.Rows(ctx)
	if err != nil {
		return err
	}

	logrus.Infof("Fetched %d events", len(rows))

	if c.Print {
		if err := cal.WriteCSV(os.Stdout, rows); err != nil {
			return err
		}
	}

	if c.Output != "" {
		if err := writeFile(c.Output, rows); err != nil {
			return err
		}
		logrus.WithField("file", c.Output).Info("Calendar written")
	}

	if c.Store {
		dbCfg := database.GetConfig()
		db, err := database.InitMainDB(dbCfg)
		if err != nil {
			return err
		}
		n, err := repository.NewCalendarRepositoryWithDB(db).SaveRows(ctx, rows, "tradingview")
		if err != nil {
			return fmt.Errorf("store calendar: %w", err)
		}
		logrus.WithField("rows", n).Info("Calendar stored")
	}

	return nil
}

func writeFile(path string, rows []cal.Row) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return cal.WriteCSV(f, rows)
}
