package calendar

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Source        string        `envconfig:"CALENDAR_SOURCE" default:"csv"` // "csv", "tradingview" or "db"
	File          string        `envconfig:"CALENDAR_FILE" default:"calendar.csv"`
	BaseURL       string        `envconfig:"TRADINGVIEW_BASE_URL" default:"https://economic-calendar.tradingview.com"`
	Countries     []string      `envconfig:"CALENDAR_COUNTRIES" default:"US,EU,GB,JP,CA,AU,NZ,CH"`
	Lookback      time.Duration `envconfig:"CALENDAR_LOOKBACK" default:"24h"`
	Horizon       time.Duration `envconfig:"CALENDAR_HORIZON" default:"168h"`
	MinImportance int           `envconfig:"CALENDAR_MIN_IMPORTANCE" default:"1"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// NewSource builds the configured Source.
func NewSource(cfg Config) (Source, error) {
	switch cfg.Source {
	case "csv", "":
		return NewCSVSource(cfg.File), nil
	case "tradingview":
		return &TradingViewSource{
			Client:        NewTradingViewClient(cfg.BaseURL),
			Countries:     cfg.Countries,
			Lookback:      cfg.Lookback,
			Horizon:       cfg.Horizon,
			MinImportance: cfg.MinImportance,
		}, nil
	default:
		return nil, fmt.Errorf("unknown calendar source %q", cfg.Source)
	}
}
