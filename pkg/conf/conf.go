package conf

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/log"
)

func init() {
	viper.AutomaticEnv()
}

// LoadConfigFile reads config.toml from confDir into cfg, which must be a
// pointer. The file is watched and re-unmarshalled on change.
func LoadConfigFile(confDir string, cfg interface{}) (interface{}, error) {
	cfgValue := reflect.ValueOf(cfg)
	if cfgValue.Kind() != reflect.Ptr || cfgValue.IsNil() {
		return nil, errors.New("cfg must be a pointer")
	}

	vCfg := viper.New()
	vCfg.AddConfigPath(confDir)
	vCfg.SetConfigName("config")
	vCfg.SetConfigType("toml")

	if err := vCfg.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %v", err)
	}

	vCfg.WatchConfig()
	vCfg.OnConfigChange(func(e fsnotify.Event) {
		log.Infof("configuration changed, re-parsing: %s", e.Name)
		if err := vCfg.Unmarshal(cfg); err != nil {
			log.Errorf("failed to unmarshal configuration file: %v", err)
		}
	})
	if err := vCfg.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration file: %v", err)
	}

	log.Infof("configuration file path: %s", confDir)

	return cfgValue.Interface(), nil
}

func GetString(key string) string {
	return viper.GetString(key)
}

func GetInt(key string) int {
	return viper.GetInt(key)
}

func GetInt64(key string) int64 {
	return viper.GetInt64(key)
}

func GetBool(key string) bool {
	return viper.GetBool(key)
}

func GetStringSlice(key string) []string {
	return viper.GetStringSlice(key)
}

func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
