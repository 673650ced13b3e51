package providers

import (
	"fmt"
	"jobdeck/internal/structures"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func setDefaults() {
	viper.SetDefault("storage.driver", "file")
	viper.SetDefault("storage.redisPrefix", "jobdeck")
	viper.SetDefault("storage.watchInterval", 2*time.Second)
	viper.SetDefault("state.recentLimit", 20)
	viper.SetDefault("state.historyLimit", 50)
	viper.SetDefault("state.milestones", []int{1, 10, 50})
	viper.SetDefault("state.maxProfiles", 1000)
	viper.SetDefault("state.profileTTL", 30*time.Minute)
	viper.SetDefault("state.evictInterval", time.Minute)
	viper.SetDefault("upstream.timeout", 10*time.Second)
	viper.SetDefault("upstream.staleTime", 10*time.Minute)
	viper.SetDefault("upstream.rateLimit", 5.0)
	viper.SetDefault("upstream.burst", 10)
	viper.SetDefault("upstream.locationDebounce", 300*time.Millisecond)
	viper.SetDefault("cache.ttl", 30*time.Minute)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")
	setDefaults()

	viper.BindEnv("logger.level", "JOBDECK_LOG_LEVEL")
	viper.BindEnv("storage.driver", "JOBDECK_STORAGE_DRIVER")
	viper.BindEnv("storage.redisURL", "JOBDECK_REDIS_URL")
	viper.BindEnv("storage.postgresURL", "JOBDECK_POSTGRES_URL")
	viper.BindEnv("upstream.baseURL", "JOBDECK_UPSTREAM_URL")
	viper.BindEnv("cache.enabled", "JOBDECK_CACHE_ENABLED")
	viper.BindEnv("cache.size", "JOBDECK_CACHE_SIZE")

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

	conf.AppName = "JobDeck"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
