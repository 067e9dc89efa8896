package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Driver   string
		Path     string
		DSN      string
		MaxConns int
	}
	Auth struct {
		JWTSecret       string
		TokenTTLMinutes int
		BcryptCost      int
	}
	Geocoding struct {
		Token          string
		BaseURL        string
		TimeoutSeconds int
	}
	Storage struct {
		Bucket        string
		KeyPrefix     string
		Region        string
		Endpoint      string
		PublicBaseURL string
	}
	AWS struct {
		Profile string
	}
	Log struct {
		Level  string
		Format string
	}
	Seed struct {
		File string
	}
}

// legacyEnv maps keys to the variable names older deployments exported.
var legacyEnv = map[string]string{
	"auth.jwtsecret":  "JWT_SECRET",
	"geocoding.token": "MAPBOX_TOKEN",
}

// Load reads configuration from environment variables and an optional config
// file. An explicit configFile must exist; otherwise config.{yaml,json,toml}
// in the working directory is used when present.
func Load(configFile string) (Config, error) {
	// .env only fills variables that are not already set
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:3000")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/market.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.maxconns", 10)
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 0)
	v.SetDefault("auth.bcryptcost", 10)
	v.SetDefault("geocoding.token", "")
	v.SetDefault("geocoding.baseurl", "https://api.mapbox.com")
	v.SetDefault("geocoding.timeoutseconds", 10)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "course-market")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.publicbaseurl", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("seed.file", "seed/categories.yaml")

	for key, legacy := range legacyEnv {
		envName := "MARKET_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envName, legacy); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", legacy, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("auth jwt secret is required"))
	}
	if strings.TrimSpace(c.Geocoding.Token) == "" {
		errs = append(errs, errors.New("geocoding token is required"))
	}
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if strings.TrimSpace(c.Database.DSN) == "" {
			errs = append(errs, errors.New("database dsn is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	return errors.Join(errs...)
}

// TokenTTL is the lifetime of issued access tokens; zero means no expiry.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

// GeocodingTimeout bounds a single geocoding request.
func (c Config) GeocodingTimeout() time.Duration {
	return time.Duration(c.Geocoding.TimeoutSeconds) * time.Second
}
