// README: Config loader backed by viper; env (GUAVA_*) and an optional guava.yaml with defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "GUAVA"

type HTTPConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// RatePerMinute bounds public requests per client IP.
	RatePerMinute int `mapstructure:"rate_per_minute"`
	RateBurst     int `mapstructure:"rate_burst"`
	// ServiceToken guards the /tiers host routes; required when db.dsn is set.
	ServiceToken string `mapstructure:"service_token"`
}

type MapsConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Region  string `mapstructure:"region"`
	Country string `mapstructure:"country"`
}

type BackendConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Token          string `mapstructure:"token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type PlacesConfig struct {
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
	DebounceMillis  int `mapstructure:"debounce_ms"`
}

type SessionConfig struct {
	MaxIdleMinutes    int `mapstructure:"max_idle_minutes"`
	SweepEverySeconds int `mapstructure:"sweep_every_seconds"`
}

type Config struct {
	Env  string     `mapstructure:"env"`
	HTTP HTTPConfig `mapstructure:"http"`
	DB   struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Maps     MapsConfig    `mapstructure:"maps"`
	Backend  BackendConfig `mapstructure:"backend"`
	Firebase struct {
		ProjectID       string `mapstructure:"project_id"`
		CredentialsFile string `mapstructure:"credentials_file"`
	} `mapstructure:"firebase"`
	Places  PlacesConfig  `mapstructure:"places"`
	Session SessionConfig `mapstructure:"session"`
	Log     struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

func (c Config) IsProduction() bool { return c.Env == "production" }

// TimeoutOutsideRecommended reports a timeout outside the 8-10 s band outbound calls are tuned for.
func (c BackendConfig) TimeoutOutsideRecommended() bool {
	return c.TimeoutSeconds < 8 || c.TimeoutSeconds > 10
}

func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c PlacesConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c PlacesConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMillis) * time.Millisecond
}

func (c SessionConfig) MaxIdle() time.Duration {
	return time.Duration(c.MaxIdleMinutes) * time.Minute
}

func (c SessionConfig) SweepEvery() time.Duration {
	return time.Duration(c.SweepEverySeconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allowed_origins", []string{"*"})
	v.SetDefault("http.rate_per_minute", 120)
	v.SetDefault("http.rate_burst", 20)
	v.SetDefault("http.service_token", "")
	// Empty leaves the /tiers host unmounted.
	v.SetDefault("db.dsn", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("maps.api_key", "")
	v.SetDefault("maps.region", "in")
	v.SetDefault("maps.country", "in")
	v.SetDefault("backend.base_url", "http://localhost:8080")
	v.SetDefault("backend.token", "")
	v.SetDefault("backend.timeout_seconds", 10)
	v.SetDefault("firebase.project_id", "")
	v.SetDefault("firebase.credentials_file", "")
	v.SetDefault("places.cache_ttl_seconds", 600)
	v.SetDefault("places.debounce_ms", 300)
	v.SetDefault("session.max_idle_minutes", 30)
	v.SetDefault("session.sweep_every_seconds", 60)
	v.SetDefault("log.level", "info")
}

// Load reads guava.yaml from the working directory or ./config when present, then
// lets GUAVA_* env vars override (GUAVA_HTTP_ADDR, GUAVA_MAPS_API_KEY, ...).
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("guava")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Outbound calls to the pricing backend and directions provider stay bounded.
const (
	MinBackendTimeoutSeconds = 1
	MaxBackendTimeoutSeconds = 30
)

func (c Config) validate() error {
	if c.Backend.TimeoutSeconds < MinBackendTimeoutSeconds || c.Backend.TimeoutSeconds > MaxBackendTimeoutSeconds {
		return fmt.Errorf("backend.timeout_seconds must be between %d and %d, got %d",
			MinBackendTimeoutSeconds, MaxBackendTimeoutSeconds, c.Backend.TimeoutSeconds)
	}
	if c.DB.DSN != "" && c.HTTP.ServiceToken == "" {
		return errors.New("http.service_token is required when db.dsn is set")
	}
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}
	return nil
}
