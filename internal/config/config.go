// README: Config loader; GOSNAP_* env vars override an optional gosnap.yaml and built-in defaults.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "GOSNAP"

var ErrMissingAPIKey = errors.New("maps.api_key (GOSNAP_MAPS_API_KEY) is required")

type MapsConfig struct {
	APIKey string
	Region string
}

type RouteConfig struct {
	RetryAttempts int
	RetryDelay    time.Duration
}

type Config struct {
	Env  string
	HTTP struct {
		Addr string
	}
	Maps  MapsConfig
	Route RouteConfig
	DB    struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	Booking struct {
		DraftTTL time.Duration
	}
}

func (c Config) Development() bool {
	return c.Env == "development"
}

// Load reads configuration. configPaths are searched for gosnap.yaml; a
// missing file is not an error.
func Load(configPaths ...string) (Config, error) {
	v := newViper(configPaths...)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	cfg.Env = v.GetString("env")
	cfg.HTTP.Addr = v.GetString("http_addr")
	cfg.Maps.APIKey = v.GetString("maps.api_key")
	cfg.Maps.Region = v.GetString("maps.region")
	cfg.Route.RetryAttempts = v.GetInt("route.retry_attempts")
	cfg.Route.RetryDelay = v.GetDuration("route.retry_delay")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Booking.DraftTTL = v.GetDuration("booking.draft_ttl")

	if cfg.Maps.APIKey == "" {
		return cfg, ErrMissingAPIKey
	}
	return cfg, nil
}

func newViper(configPaths ...string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("gosnap")
	v.SetConfigType("yaml")
	if len(configPaths) == 0 {
		configPaths = []string{"."}
	}
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", "production")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("maps.api_key", "")
	v.SetDefault("maps.region", "rw")
	v.SetDefault("route.retry_attempts", 2)
	v.SetDefault("route.retry_delay", time.Second)
	v.SetDefault("db.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("booking.draft_ttl", 24*time.Hour)
	return v
}
