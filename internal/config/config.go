package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"apkrisk/internal/domain/models"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Assessing AssessingConfig `mapstructure:"assessing"`
	Intel     IntelConfig     `mapstructure:"intel"`
}

// IntelConfig points at local threat intelligence feed files. Empty means
// runtime endpoints are never classified as malicious.
type IntelConfig struct {
	Feeds []string `mapstructure:"feeds"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// ScoringConfig holds deployment-level scoring settings: weight and cap
// overrides applied to every job plus the qualitative score bands. Per-job
// overrides from the API layer on top of these.
type ScoringConfig struct {
	Weights map[string]float64 `mapstructure:"weights"`
	Caps    map[string]int     `mapstructure:"caps"`
	Bands   models.ScoreBands  `mapstructure:"bands"`
}

// Overrides packages the configured weight/cap replacements in the form
// the scoring engine validates.
func (c ScoringConfig) Overrides() models.ScoringOverrides {
	return models.ScoringOverrides{Weights: c.Weights, Caps: c.Caps}
}

// AssessingConfig bounds job execution at the API boundary.
type AssessingConfig struct {
	DynamicTimeout time.Duration `mapstructure:"dynamic_timeout"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	MaxEvents      int           `mapstructure:"max_events"`
}

// Load reads configuration from file and environment variables. A missing
// config file is not an error; built-in defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/apkrisk")
	}

	// Environment variables
	v.SetEnvPrefix("APKRISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("redis.enabled", "APKRISK_REDIS_ENABLED")
	v.BindEnv("redis.host", "APKRISK_REDIS_HOST")
	v.BindEnv("redis.port", "APKRISK_REDIS_PORT")
	v.BindEnv("redis.password", "APKRISK_REDIS_PASSWORD")
	v.BindEnv("server.http_port", "APKRISK_SERVER_HTTP_PORT")
	v.BindEnv("app.environment", "APKRISK_APP_ENVIRONMENT")
	v.BindEnv("logger.level", "APKRISK_LOGGER_LEVEL")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default search paths
func LoadDefault() (*Config, error) {
	return Load("")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "apkrisk")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.key_prefix", "apkrisk:")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Content-Type"})
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	bands := models.DefaultScoreBands()
	v.SetDefault("scoring.bands.medium", bands.Medium)
	v.SetDefault("scoring.bands.high", bands.High)

	v.SetDefault("assessing.dynamic_timeout", 30*time.Second)
	v.SetDefault("assessing.cache_ttl", time.Hour)
	v.SetDefault("assessing.max_events", 100000)
}
