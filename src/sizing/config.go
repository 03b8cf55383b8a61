package sizing

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Tiers         []float64 `envconfig:"ACCOUNT_TIERS" default:"1000,2500,5000,10000,25000,50000,100000,250000"`
	ReferenceTier float64   `envconfig:"REFERENCE_TIER" default:"10000"`
	Band          float64   `envconfig:"TIER_BAND" default:"0.25"`
	// WeeklyTargetPct is the weekly equity goal as a percentage of the tier.
	WeeklyTargetPct float64 `envconfig:"WEEKLY_TARGET_PCT" default:"5"`
	MinVolume       float64 `envconfig:"MIN_VOLUME" default:"0.01"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
