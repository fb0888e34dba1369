package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alturino/storefront/internal/log"
)

const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

type Application struct {
	Env      string `mapstructure:"env"       json:"env"`
	Host     string `mapstructure:"host"      json:"host"`
	APIURL   string `mapstructure:"api_url"   json:"api_url"`
	LogPath  string `mapstructure:"log_path"  json:"log_path"`
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	Port     int    `mapstructure:"port"      json:"port"`
}

type Storage struct {
	Driver string `mapstructure:"driver" json:"driver"`
	Path   string `mapstructure:"path"   json:"path"`
}

type Cache struct {
	Host     string `mapstructure:"host"     json:"host"`
	Password string `mapstructure:"password" json:"-"`
	Database int    `mapstructure:"database" json:"database"`
	Port     uint16 `mapstructure:"port"     json:"port"`
}

type Otel struct {
	Host    string `mapstructure:"host"    json:"host"`
	Port    int    `mapstructure:"port"    json:"port"`
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
}

type Config struct {
	Application `mapstructure:"application" json:"application"`
	Storage     `mapstructure:"storage"     json:"storage"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Otel        `mapstructure:"otel"        json:"otel"`
}

var (
	once   sync.Once
	config *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.env", "production")
	v.SetDefault("application.host", "localhost")
	v.SetDefault("application.port", 3000)
	v.SetDefault("application.api_url", "http://localhost:8080/api")
	v.SetDefault("application.log_path", "")
	v.SetDefault("application.log_level", "warn")
	v.SetDefault("storage.driver", StorageFile)
	v.SetDefault("storage.path", "storefront.json")
	v.SetDefault("cache.host", "localhost")
	v.SetDefault("cache.port", 6379)
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.database", 0)
	v.SetDefault("otel.host", "otel-collector")
	v.SetDefault("otel.port", 4317)
	v.SetDefault("otel.enabled", false)
}

// Load reads <filename>.yaml from the given paths, then overrides values with
// STOREFRONT_* environment variables. A missing file is not an error.
func Load(filename string, paths ...string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error when reading config with error=%w", err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config with error=%w", err)
	}
	return cfg, nil
}

// Get loads the process configuration once.
func Get(c context.Context, filename string) *Config {
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "config Get").
			Str(log.KeyProcess, "init config").
			Str("filename", filename).
			Logger()

		logger.Debug().Msg("reading config")
		cfg, err := Load(filename, "./env", "$HOME/.storefront", ".")
		if err != nil {
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = &cfg
		logger.Debug().Any(log.KeyConfig, cfg).Msg("read config")
	})
	return config
}
