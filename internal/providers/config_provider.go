package providers

import (
	"cpd/internal/structures"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "CPD_LOG_LEVEL")
	viper.BindEnv("refresh.interval", "CPD_REFRESH_INTERVAL")
	viper.BindEnv("refresh.lookbackDays", "CPD_LOOKBACK_DAYS")
	viper.BindEnv("persistence.saveInterval", "CPD_SAVE_INTERVAL")
	viper.BindEnv("cache.enabled", "CPD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "CPD_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "CompetitiveProgressDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
