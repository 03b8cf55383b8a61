package catalog

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	CatalogFile string   `envconfig:"CATALOG_FILE" default:""`
	Instruments []string `envconfig:"INSTRUMENTS" default:""`
	Enabled     []string `envconfig:"ENABLED_INSTRUMENTS" default:""`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
