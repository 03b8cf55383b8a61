package strategy

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Selector       string `envconfig:"STRATEGY" default:"S1"`
	PerCurrencyCap int    `envconfig:"MAX_PER_CURRENCY" default:"2"`
	GlobalCap      int    `envconfig:"MAX_OPEN_TRADES" default:"0"`
	SearchAll      bool   `envconfig:"FALLBACK_SEARCH_ALL" default:"true"`
	MultiPairCap   int    `envconfig:"MULTI_PAIR_CAP" default:"1"`

	ConfirmThreshold  int           `envconfig:"SENTIMENT_THRESHOLD" default:"2"`
	MaxScaled         int           `envconfig:"SENTIMENT_MAX_POSITIONS" default:"3"`
	ReverseOnConflict bool          `envconfig:"SENTIMENT_REVERSE_ON_CONFLICT" default:"true"`
	FlatTimeout       time.Duration `envconfig:"SENTIMENT_FLAT_TIMEOUT" default:"2m"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
