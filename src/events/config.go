package events

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	TestMode         bool `envconfig:"TEST_MODE" default:"false"`
	AllowPast        bool `envconfig:"ALLOW_PAST_EVENTS" default:"false"`
	MaxEvents        int  `envconfig:"MAX_EVENTS" default:"0"`
	PrefetchForecast bool `envconfig:"PREFETCH_FORECAST" default:"false"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
