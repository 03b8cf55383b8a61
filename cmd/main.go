package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"newsexecutor/cmd/calendar"
	"newsexecutor/cmd/serve"
)

var Version string

type logConfig struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"debug"` // Expected to hold values like "debug", "info", "warn", "error"
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"` // Expected to hold values like "json" or "text"
}

func main() {
	app := cli.NewApp()
	app.Name = "News Executor CMD"
	app.Usage = "Macro news trade relay for polling execution terminals"
	app.Version = Version
	app.Before = func(_ *cli.Context) error {
		// .env is optional
		_ = godotenv.Load()
		return setupLogger()
	}

	app.Commands = []cli.Command{
		serveCMD,
		calendarCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	serveCMD = cli.Command{
		Name:        "serve",
		Usage:       "run the venue server",
		Action:      serveAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the decision engine behind the polling HTTP protocol`,
	}
	calendarCMD = cli.Command{
		Name:      "calendar",
		Usage:     "fetch the TradingView economic calendar",
		Action:    calendarAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "out", Value: "calendar.csv", Usage: "CSV file to write, empty to skip"},
			cli.DurationFlag{Name: "lookback", Usage: "window start before now (default CALENDAR_LOOKBACK)"},
			cli.DurationFlag{Name: "horizon", Usage: "window end after now (default CALENDAR_HORIZON)"},
			cli.BoolFlag{Name: "store", Usage: "also upsert the rows into the database"},
			cli.BoolFlag{Name: "print", Usage: "print the rows as CSV to stdout"},
		},
		Description: `Fetch calendar rows and write them in the CSV source format`,
	}
)

func setupLogger() error {
	var config logConfig
	if err := envconfig.Process("", &config); err != nil {
		return fmt.Errorf("error processing env config: %w", err)
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)

	if strings.EqualFold(config.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return nil
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return nil
}

func serveAction(_ *cli.Context) error {

	logrus.Info("Starting serve CMD")

	s := &serve.Serve{}
	err := s.Start()
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

func calendarAction(c *cli.Context) error {

	logrus.Info("Starting calendar CMD")

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	cal := &calendar.Calendar{
		Output:   c.String("out"),
		Lookback: c.Duration("lookback"),
		Horizon:  c.Duration("horizon"),
		Store:    c.Bool("store"),
		Print:    c.Bool("print"),
	}
	if err := cal.Start(ctx); err != nil {
		logrus.WithError(err).Error("Starting calendar cmd")
		return err
	}

	return nil
}
