package util

import (
	"fmt"

	"github.com/spf13/viper"
)

// ReadConfig loads optimizer.yaml from the working directory or ./config/.
// every key has a viper default at its use site, so a missing file is not
// fatal to callers.
func ReadConfig() error {
	viper.SetConfigName("optimizer")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config/")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading optimizer config file: %w", err)
	}
	return nil
}
