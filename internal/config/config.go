package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Load reads configuration from horizon.cfg.json and sets default values.
// configDir is the directory containing the config file. A missing file is
// not an error; defaults apply.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./horizonlogs")

	viper.SetDefault("selector.maxResults", 5)
	viper.SetDefault("selector.thumbnailSize", 100)
	viper.SetDefault("selector.minSeparationPx", 0) // 0 = follow thumbnailSize
	viper.SetDefault("selector.orientationFilter", false)
	viper.SetDefault("selector.orientationToleranceDeg", 45.0)

	viper.SetDefault("viewport.width", 800)
	viper.SetDefault("viewport.height", 600)
	viper.SetDefault("viewport.minZoom", 1.0)
	viper.SetDefault("viewport.maxZoom", 19.0)
	viper.SetDefault("viewport.debounceMs", 50)

	viper.SetDefault("catalog.type", "memory")
	viper.SetDefault("catalog.queryTimeoutMs", 500)
	viper.SetDefault("catalog.scanWorkers", 4)
	viper.SetDefault("catalog.sqlitePath", "./horizon.db")
	viper.SetDefault("catalog.db.host", "localhost")
	viper.SetDefault("catalog.db.port", "5432")
	viper.SetDefault("catalog.db.username", "postgres")
	viper.SetDefault("catalog.db.password", "postgres")
	viper.SetDefault("catalog.db.database", "horizon")
	viper.SetDefault("catalog.remote.url", "http://localhost:5000")
	viper.SetDefault("catalog.remote.apiKey", "")

	viper.SetDefault("render.type", "log")
	viper.SetDefault("render.thumbCacheSize", 256)
	viper.SetDefault("render.websocket.url", "ws://localhost:5001/strip")
	viper.SetDefault("render.websocket.secret", "")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "horizon-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetConfigName("horizon.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetFloat returns a float64 config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
