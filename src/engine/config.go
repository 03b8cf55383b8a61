package engine

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const (
	ScopeAll     = "all"
	ScopeEnabled = "enabled"
)

type Config struct {
	BaseVolume  float64 `envconfig:"BASE_VOLUME" default:"0.10"`
	StopLoss    float64 `envconfig:"STOP_LOSS" default:"20"`
	TakeProfit  float64 `envconfig:"TAKE_PROFIT" default:"40"`
	PipDistance bool    `envconfig:"SLTP_IN_PIPS" default:"true"`

	// AffectedScope selects which instruments count toward pairs affected.
	AffectedScope string `envconfig:"AFFECTED_SCOPE" default:"enabled"`
	HaltOnGoal    bool   `envconfig:"HALT_ON_WEEKLY_GOAL" default:"true"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
