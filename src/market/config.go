package market

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	EnableHoursGate     bool   `envconfig:"ENABLE_MARKET_HOURS_GATE" default:"true"`
	BlockHolidays       bool   `envconfig:"BLOCK_US_HOLIDAYS" default:"false"`
	WeeklyResetSchedule string `envconfig:"WEEKLY_RESET_SCHEDULE" default:"CRON_TZ=America/New_York 0 17 * * 5"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
